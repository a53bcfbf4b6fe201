// Package testkit holds invariant checks shared by the tokenizer tests.
package testkit

import (
	"fmt"

	"codeproof/internal/token"
)

// CheckTokenInvariants verifies tokens lexed from text:
// 1) every token is valid and its span slices its lexeme out of text
// 2) tokens are in document order and never overlap
func CheckTokenInvariants(text string, tokens []token.Token) error {
	for i, tok := range tokens {
		if !tok.Valid() {
			return fmt.Errorf("invalid token %s", tok)
		}
		if got := tok.Span().Text(text); got != tok.Lexeme {
			return fmt.Errorf("token %s: span text %q differs from lexeme", tok, got)
		}
		if i > 0 && tok.Start.Offset < tokens[i-1].End.Offset {
			return fmt.Errorf("token %s overlaps %s", tok, tokens[i-1])
		}
	}
	return nil
}

// CheckExpansion verifies that parts reconstruct orig exactly: they are
// valid, gapless, start and end where orig does and join to its lexeme.
func CheckExpansion(orig token.Token, parts []token.Token) error {
	if len(parts) == 0 {
		return fmt.Errorf("%s: no sub-tokens", orig)
	}
	if parts[0].Start != orig.Start {
		return fmt.Errorf("%s: first start %+v != %+v", orig, parts[0].Start, orig.Start)
	}
	if last := parts[len(parts)-1]; last.End != orig.End {
		return fmt.Errorf("%s: last end %+v != %+v", orig, last.End, orig.End)
	}
	joined := ""
	for i, p := range parts {
		if !p.Valid() {
			return fmt.Errorf("%s: invalid sub-token %s", orig, p)
		}
		if i > 0 && parts[i-1].End != p.Start {
			return fmt.Errorf("%s: gap between %s and %s", orig, parts[i-1], p)
		}
		joined += p.Lexeme
	}
	if joined != orig.Lexeme {
		return fmt.Errorf("%s: parts join to %q", orig, joined)
	}
	return nil
}
