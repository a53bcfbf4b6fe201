package source

import (
	"unicode/utf16"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

// Tracker keeps line/column state while a cursor walks through text.
// The zero value starts at offset 0, line 0, column 0.
type Tracker struct {
	pos Position
}

// Pos returns the position of the next rune to be consumed.
func (t *Tracker) Pos() Position {
	return t.pos
}

// Advance consumes r, which occupies size bytes in the text, and returns the
// position before it. A newline moves to column 0 of the next line.
func (t *Tracker) Advance(r rune, size int) Position {
	before := t.pos
	t.pos.Offset = addSat(t.pos.Offset, size)
	if r == '\n' {
		t.pos.Line++
		t.pos.Column = 0
		return before
	}
	t.pos.Column = addSat(t.pos.Column, UnitLen(r))
	return before
}

// UnitLen returns how many UTF-16 code units r occupies: 2 above the Basic
// Multilingual Plane, 1 otherwise (including invalid runes).
func UnitLen(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// Units returns the UTF-16 length of s.
func Units(s string) uint32 {
	n := 0
	for _, r := range s {
		n += UnitLen(r)
	}
	return toUint32(n)
}

// Shift returns the position reached after advancing p over s, assuming s
// contains no newline.
func Shift(p Position, s string) Position {
	return Position{
		Offset: addSat(p.Offset, len(s)),
		Line:   p.Line,
		Column: addSat(p.Column, int(Units(s))),
	}
}

func addSat(base uint32, n int) uint32 {
	v := toUint32(n)
	if base > maxUint32-v {
		return maxUint32
	}
	return base + v
}

func toUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}
