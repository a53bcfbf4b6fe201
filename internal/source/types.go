package source

import "fmt"

// Position is a location in a document.
//
// Line is zero-based. Column counts UTF-16 code units from the start of the
// line, which is what LSP clients expect. Offset is the byte offset into the
// document text.
type Position struct {
	Offset uint32
	Line   uint32
	Column uint32
}

// Before reports whether p is strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
