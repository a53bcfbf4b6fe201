package lexer

import (
	"unicode/utf8"

	"codeproof/internal/source"
)

// Cursor walks a document rune by rune and tracks the LSP position of the
// next rune.
type Cursor struct {
	text    string
	off     int
	tracker source.Tracker
}

// NewCursor creates a cursor at the beginning of text.
func NewCursor(text string) Cursor {
	return Cursor{text: text}
}

// EOF reports whether the whole text has been consumed.
func (c *Cursor) EOF() bool {
	return c.off >= len(c.text)
}

// Pos returns the position of the next rune.
func (c *Cursor) Pos() source.Position {
	return c.tracker.Pos()
}

// Peek returns the current rune without consuming it. Invalid UTF-8 decodes
// as utf8.RuneError with size 1. At EOF it returns (0, 0).
func (c *Cursor) Peek() (r rune, size int) {
	if c.EOF() {
		return 0, 0
	}
	b := c.text[c.off]
	if b < utf8.RuneSelf {
		return rune(b), 1
	}
	return utf8.DecodeRuneInString(c.text[c.off:])
}

// PeekNext returns the rune following the current one.
func (c *Cursor) PeekNext() (rune, bool) {
	_, size := c.Peek()
	if size == 0 || c.off+size >= len(c.text) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.text[c.off+size:])
	return r, true
}

// Bump consumes the current rune and returns the position it started at.
func (c *Cursor) Bump() source.Position {
	r, size := c.Peek()
	if size == 0 {
		return c.tracker.Pos()
	}
	c.off += size
	return c.tracker.Advance(r, size)
}
