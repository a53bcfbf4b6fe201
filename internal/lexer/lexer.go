package lexer

import (
	"iter"

	"codeproof/internal/token"
)

// Lexer splits a document into word tokens. It knows nothing about the
// programming language of the document: any run of letters is a word.
type Lexer struct {
	text   string
	cursor Cursor
}

// New creates a lexer positioned at the start of text.
func New(text string) *Lexer {
	return &Lexer{
		text:   text,
		cursor: NewCursor(text),
	}
}

// Next returns the next word. Once the text is exhausted it keeps returning
// false.
func (lx *Lexer) Next() (token.Token, bool) {
	for !lx.cursor.EOF() {
		r, _ := lx.cursor.Peek()
		if IsLetter(r) {
			return lx.scanWord(), true
		}
		lx.cursor.Bump()
	}
	return token.Token{}, false
}

// Tokens returns a sequence over the words of text. Every iteration lexes
// from the beginning.
func Tokens(text string) iter.Seq[token.Token] {
	return func(yield func(token.Token) bool) {
		lx := New(text)
		for {
			tok, ok := lx.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// All collects every word of text.
func All(text string) []token.Token {
	var out []token.Token
	for tok := range Tokens(text) {
		out = append(out, tok)
	}
	return out
}

// scanWord consumes a run of letters. An apostrophe stays in the word only
// when a letter follows it ("don't"); otherwise it ends the run.
func (lx *Lexer) scanWord() token.Token {
	start := lx.cursor.Pos()
	end := start
loop:
	for !lx.cursor.EOF() {
		r, _ := lx.cursor.Peek()
		switch {
		case IsLetter(r):
			lx.cursor.Bump()
			end = lx.cursor.Pos()
		case isApostrophe(r):
			next, ok := lx.cursor.PeekNext()
			if !ok || !IsLetter(next) {
				break loop
			}
			lx.cursor.Bump()
			lx.cursor.Bump()
			end = lx.cursor.Pos()
		default:
			break loop
		}
	}
	return token.Token{
		Lexeme: lx.text[start.Offset:end.Offset],
		Start:  start,
		End:    end,
	}
}
