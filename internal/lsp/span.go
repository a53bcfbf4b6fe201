package lsp

import (
	"math"

	"fortio.org/safecast"

	"codeproof/internal/source"
)

func safeInt(n uint32) int {
	v, err := safecast.Conv[int](n)
	if err != nil {
		return math.MaxInt
	}
	return v
}

func positionFromSource(p source.Position) position {
	return position{Line: safeInt(p.Line), Character: safeInt(p.Column)}
}

func rangeForSpan(span source.Span) lspRange {
	return lspRange{
		Start: positionFromSource(span.Start),
		End:   positionFromSource(span.End),
	}
}

// covers reports whether pos lies on the first line of r, between its start
// and its end column.
func (r lspRange) covers(pos position) bool {
	if pos.Line != r.Start.Line || pos.Character < r.Start.Character {
		return false
	}
	if r.End.Line != r.Start.Line {
		return true
	}
	return pos.Character < r.End.Character
}
