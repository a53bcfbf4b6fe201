package expand_test

import (
	"slices"
	"testing"

	"codeproof/internal/expand"
	"codeproof/internal/lexer"
	"codeproof/internal/source"
	"codeproof/internal/testkit"
	"codeproof/internal/token"
)

func single(t *testing.T, text string) token.Token {
	t.Helper()
	tokens := lexer.All(text)
	if len(tokens) != 1 {
		t.Fatalf("expected one token for %q, got %d", text, len(tokens))
	}
	return tokens[0]
}

func lexemes(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Lexeme
	}
	return out
}

// checkContiguous verifies that parts reconstruct orig exactly.
func checkContiguous(t *testing.T, orig token.Token, parts []token.Token) {
	t.Helper()
	if err := testkit.CheckExpansion(orig, parts); err != nil {
		t.Fatal(err)
	}
}

func TestRecognize(t *testing.T) {
	tests := []struct {
		lexeme string
		want   expand.Convention
	}{
		{"helloWorld", expand.Camel},
		{"xY", expand.Camel},
		{"HelloWorld", expand.Pascal},
		{"ABBRCase", expand.Pascal},
		{"DataJSON", expand.Pascal},
		{"Hello", expand.None},
		{"HTTP", expand.None},
		{"hello", expand.None},
		{"A", expand.None},
		{"x", expand.None},
		{"Éclair", expand.None},
		{"ÉtéBrûlant", expand.Pascal},
		{"", expand.None},
	}
	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			if got := expand.Recognize(tt.lexeme); got != tt.want {
				t.Fatalf("Recognize(%q) = %s, want %s", tt.lexeme, got, tt.want)
			}
		})
	}
}

func TestExpandWords(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"HelloWorld", []string{"Hello", "World"}},
		{"helloWorld", []string{"hello", "World"}},
		{"getHTTPResponse", []string{"get", "H", "T", "T", "P", "Response"}},
		// regression fixture: capitals are never merged into an acronym
		{"ABBRCase", []string{"A", "B", "B", "R", "Case"}},
		{"DataJSON", []string{"Data", "J", "S", "O", "N"}},
		{"don'tStop", []string{"don't", "Stop"}},
		{"ÉtéBrûlant", []string{"Été", "Brûlant"}},
		{"simple", []string{"simple"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := single(t, tt.input)
			parts := expand.Expand(tok)
			if got := lexemes(parts); !slices.Equal(got, tt.want) {
				t.Fatalf("Expand(%q) = %v, want %v", tt.input, got, tt.want)
			}
			checkContiguous(t, tok, parts)
		})
	}
}

func TestExpandPositions(t *testing.T) {
	text := "  x := fooBar\n\tnaïveÉté"
	tokens := lexer.All(text)
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}

	parts := expand.Expand(tokens[1])
	want := []source.Position{
		{Offset: 7, Line: 0, Column: 7},
		{Offset: 10, Line: 0, Column: 10},
		{Offset: 13, Line: 0, Column: 13},
	}
	if parts[0].Start != want[0] || parts[0].End != want[1] || parts[1].Start != want[1] || parts[1].End != want[2] {
		t.Fatalf("unexpected positions: %+v", parts)
	}

	parts = expand.Expand(tokens[2])
	if got := lexemes(parts); !slices.Equal(got, []string{"naïve", "Été"}) {
		t.Fatalf("unexpected split %v", got)
	}
	// ï is two bytes but one UTF-16 unit
	if parts[1].Start != (source.Position{Offset: 21, Line: 1, Column: 6}) {
		t.Fatalf("unexpected start %+v", parts[1].Start)
	}
	for _, p := range parts {
		if got := p.Span().Text(text); got != p.Lexeme {
			t.Fatalf("span text %q != lexeme %q", got, p.Lexeme)
		}
	}
}

func TestExpandIsIdempotentOnSingletons(t *testing.T) {
	for _, text := range []string{"plain", "UPPER", "Title", "l'été", "a"} {
		tok := single(t, text)
		first := expand.Expand(tok)
		if len(first) != 1 || first[0] != tok {
			t.Fatalf("%q: expected singleton equal to input, got %v", text, first)
		}
		again := expand.Expand(first[0])
		if len(again) != 1 || again[0] != first[0] {
			t.Fatalf("%q: second expansion differs: %v", text, again)
		}
	}
}

func TestExpandRoundTripOverDocument(t *testing.T) {
	text := "func (s *HTTPServer) serveJSON(ctx context.Context, reqID string) {}\n" +
		"let mutRefCell = RefCell::new(vecOfThings); // 😀 emojiPrefixedName"
	for tok := range lexer.Tokens(text) {
		parts := expand.Expand(tok)
		checkContiguous(t, tok, parts)
		for _, p := range parts {
			if got := p.Span().Text(text); got != p.Lexeme {
				t.Fatalf("span text %q != lexeme %q", got, p.Lexeme)
			}
		}
	}
}
