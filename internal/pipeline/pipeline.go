// Package pipeline finds misspelled words in a document.
//
// A document is lexed into words, short words and reserved words of the
// document's language are dropped, identifiers are split at casing
// boundaries, and every remaining word is checked against the spell
// checker and the user's accepted words.
package pipeline

import (
	"context"
	"fmt"
	"unicode/utf8"

	"codeproof/internal/expand"
	"codeproof/internal/keywords"
	"codeproof/internal/lexer"
	"codeproof/internal/source"
	"codeproof/internal/token"
	"codeproof/internal/trace"
)

// DefaultMinLength drops words shorter than four runes.
const DefaultMinLength = 4

// Checker answers spell checks and suggestions. *bridge.Bridge implements
// it. An error means the checker could not answer; the word is then treated
// as known.
type Checker interface {
	Check(ctx context.Context, word string) (bool, error)
	Suggest(ctx context.Context, word string) ([]string, error)
}

// Acceptor holds words the user accepted. *dict.Set implements it.
type Acceptor interface {
	Contains(word string) bool
}

// Finding is one misspelled word.
type Finding struct {
	Start source.Position
	End   source.Position
	Word  string
}

// Span returns the range of the finding.
func (f Finding) Span() source.Span {
	return source.Span{Start: f.Start, End: f.End}
}

// Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	checker   Checker
	minLength int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMinLength sets the shortest word that is checked, in runes.
func WithMinLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minLength = n
		}
	}
}

// New creates a pipeline backed by checker. A nil checker knows every word.
func New(checker Checker, opts ...Option) *Pipeline {
	p := &Pipeline{checker: checker, minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MinLength returns the shortest checked word length.
func (p *Pipeline) MinLength() int {
	return p.minLength
}

// Check returns the misspelled words of text in source order.
func (p *Pipeline) Check(ctx context.Context, text, languageID string, accepted Acceptor) []Finding {
	ctx, span := trace.Start(ctx, trace.ScopeDocument, "pipeline.check")
	reserved := keywords.Reserved(languageID)
	verdicts := make(map[string]bool)
	var findings []Finding
	words := 0

	for tok := range lexer.Tokens(text) {
		if ctx.Err() != nil {
			break
		}
		if !p.longEnough(tok.Lexeme) || reserved.Contains(tok.Lexeme) {
			continue
		}
		for _, part := range expand.Expand(tok) {
			if !p.longEnough(part.Lexeme) {
				continue
			}
			words++
			if p.known(ctx, part, verdicts) {
				continue
			}
			if accepted != nil && accepted.Contains(part.Lexeme) {
				continue
			}
			findings = append(findings, Finding{Start: part.Start, End: part.End, Word: part.Lexeme})
		}
	}
	span.End(fmt.Sprintf("words=%d findings=%d", words, len(findings)))
	return findings
}

// Misspelled returns the distinct misspelled words of text in order of
// first appearance.
func (p *Pipeline) Misspelled(ctx context.Context, text, languageID string, accepted Acceptor) []string {
	findings := p.Check(ctx, text, languageID, accepted)
	seen := make(map[string]struct{}, len(findings))
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		if _, dup := seen[f.Word]; dup {
			continue
		}
		seen[f.Word] = struct{}{}
		out = append(out, f.Word)
	}
	return out
}

// Suggest returns replacements for word. It returns nil when the checker is
// unavailable.
func (p *Pipeline) Suggest(ctx context.Context, word string) []string {
	if p.checker == nil {
		return nil
	}
	out, err := p.checker.Suggest(ctx, word)
	if err != nil {
		trace.Error(trace.FromContext(ctx), trace.ScopeWord, "pipeline.suggest", err)
		return nil
	}
	return out
}

func (p *Pipeline) longEnough(word string) bool {
	return utf8.RuneCountInString(word) >= p.minLength
}

// known memoizes verdicts for the duration of one Check.
func (p *Pipeline) known(ctx context.Context, tok token.Token, verdicts map[string]bool) bool {
	if v, ok := verdicts[tok.Lexeme]; ok {
		return v
	}
	if p.checker == nil {
		return true
	}
	ok, err := p.checker.Check(ctx, tok.Lexeme)
	if err != nil {
		// fail open and do not memoize: the checker may come back
		return true
	}
	verdicts[tok.Lexeme] = ok
	return ok
}
