package source

import (
	"fmt"
)

// Span is a half-open [Start, End) range of positions.
type Span struct {
	Start Position
	End   Position
}

// Len returns the span length in bytes.
func (s Span) Len() uint32 {
	if s.End.Offset < s.Start.Offset {
		return 0
	}
	return s.End.Offset - s.Start.Offset
}

// Units returns the span width in UTF-16 code units. Spans crossing a line
// boundary report 0.
func (s Span) Units() uint32 {
	if s.Start.Line != s.End.Line || s.End.Column < s.Start.Column {
		return 0
	}
	return s.End.Column - s.Start.Column
}

// Contains reports whether pos lies inside the span (end exclusive).
func (s Span) Contains(pos Position) bool {
	return !pos.Before(s.Start) && pos.Before(s.End)
}

// Text returns the slice of text covered by the span, or "" when the span
// does not fit.
func (s Span) Text(text string) string {
	if s.Start.Offset > s.End.Offset || int(s.End.Offset) > len(text) {
		return ""
	}
	return text[s.Start.Offset:s.End.Offset]
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
