// Package expand splits identifiers written in a multi-word casing convention
// into their component words.
package expand

import (
	"unicode"
	"unicode/utf8"

	"codeproof/internal/source"
	"codeproof/internal/token"
)

// Convention names the casing convention recognized in a lexeme.
type Convention uint8

const (
	None Convention = iota
	Camel
	Pascal
)

func (c Convention) String() string {
	switch c {
	case Camel:
		return "camel"
	case Pascal:
		return "pascal"
	default:
		return "none"
	}
}

type recognizer struct {
	conv  Convention
	match func(string) bool
}

// recognizers are evaluated in order; the first match wins.
var recognizers = [...]recognizer{
	{Camel, isCamel},
	{Pascal, isPascal},
}

// Recognize reports which convention lexeme follows.
func Recognize(lexeme string) Convention {
	for _, rec := range recognizers {
		if rec.match(lexeme) {
			return rec.conv
		}
	}
	return None
}

// Expand splits tok into words. When no convention is recognized it returns
// a one-element slice holding tok itself.
func Expand(tok token.Token) []token.Token {
	if Recognize(tok.Lexeme) == None {
		return []token.Token{tok}
	}
	return splitUpper(tok)
}

// isCamel: first rune lowercase, some later rune uppercase.
func isCamel(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsLower(first) {
		return false
	}
	for _, r := range s[size:] {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// isPascal: first rune uppercase, the rest has both cases.
func isPascal(s string) bool {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 || !unicode.IsUpper(first) {
		return false
	}
	var upper, lower bool
	for _, r := range s[size:] {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
		if upper && lower {
			return true
		}
	}
	return false
}

// splitUpper starts a new word before every uppercase rune unless the
// current word is empty. Runs of capitals are not merged: "DataJSON" becomes
// Data, J, S, O, N.
func splitUpper(tok token.Token) []token.Token {
	out := make([]token.Token, 0, 4)
	start := tok.Start
	wordStart := 0
	for i, r := range tok.Lexeme {
		if i > wordStart && unicode.IsUpper(r) {
			part := subToken(tok.Lexeme[wordStart:i], start)
			out = append(out, part)
			start = part.End
			wordStart = i
		}
	}
	last := subToken(tok.Lexeme[wordStart:], start)
	last.End = tok.End
	return append(out, last)
}

func subToken(word string, start source.Position) token.Token {
	return token.Token{
		Lexeme: word,
		Start:  start,
		End:    source.Shift(start, word),
	}
}
