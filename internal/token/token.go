package token

import (
	"unicode/utf8"

	"codeproof/internal/source"
)

// Token is a run of letters found in a document.
type Token struct {
	Lexeme string
	Start  source.Position
	End    source.Position // exclusive
}

// Span returns the [Start, End) range of the token.
func (t Token) Span() source.Span {
	return source.Span{Start: t.Start, End: t.End}
}

// Len returns the number of runes in the lexeme.
func (t Token) Len() int {
	return utf8.RuneCountInString(t.Lexeme)
}

// Valid reports whether the token has a lexeme and a consistent extent.
func (t Token) Valid() bool {
	if t.Lexeme == "" {
		return false
	}
	if t.End.Offset-t.Start.Offset != uint32(len(t.Lexeme)) {
		return false
	}
	return t.Start.Line == t.End.Line && t.End.Column-t.Start.Column == source.Units(t.Lexeme)
}

func (t Token) String() string {
	return t.Lexeme + "@" + t.Span().String()
}
