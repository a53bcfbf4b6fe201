package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"codeproof/internal/driver"
	"codeproof/internal/token"
)

// PositionJSON is a zero-based position as sent to editors.
type PositionJSON struct {
	Offset uint32 `json:"offset"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

type SpanJSON struct {
	Start PositionJSON `json:"start"`
	End   PositionJSON `json:"end"`
}

type TokenOutput struct {
	Text       string   `json:"text"`
	Convention string   `json:"convention"`
	Reserved   bool     `json:"reserved,omitempty"`
	Span       SpanJSON `json:"span"`
	Parts      []string `json:"parts,omitempty"`
}

type TokensOutput struct {
	File     string        `json:"file"`
	Language string        `json:"language"`
	Tokens   []TokenOutput `json:"tokens"`
}

func spanJSON(tok token.Token) SpanJSON {
	return SpanJSON{
		Start: PositionJSON{Offset: tok.Start.Offset, Line: tok.Start.Line, Column: tok.Start.Column},
		End:   PositionJSON{Offset: tok.End.Offset, Line: tok.End.Line, Column: tok.End.Column},
	}
}

func lexemes(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Lexeme
	}
	return out
}

// FormatTokensPretty prints one token per line with its zero-based span.
func FormatTokensPretty(w io.Writer, res *driver.TokenizeResult) error {
	if _, err := fmt.Fprintf(w, "%s (%s)\n", res.Path, res.Language); err != nil {
		return err
	}
	for i, info := range res.Tokens {
		fmt.Fprintf(w, "%4d: %-24q %-6s at %s", i+1, info.Token.Lexeme, info.Convention, info.Token.Span())
		if info.Reserved {
			fmt.Fprint(w, " reserved")
		}
		if len(info.Parts) > 1 {
			fmt.Fprintf(w, " -> %s", strings.Join(lexemes(info.Parts), " "))
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokensJSON writes the tokens of res as indented JSON.
func FormatTokensJSON(w io.Writer, res *driver.TokenizeResult) error {
	output := TokensOutput{
		File:     res.Path,
		Language: res.Language,
		Tokens:   make([]TokenOutput, 0, len(res.Tokens)),
	}
	for _, info := range res.Tokens {
		out := TokenOutput{
			Text:       info.Token.Lexeme,
			Convention: info.Convention.String(),
			Reserved:   info.Reserved,
			Span:       spanJSON(info.Token),
		}
		if info.Parts != nil {
			out.Parts = lexemes(info.Parts)
		}
		output.Tokens = append(output.Tokens, out)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
