package diag

import (
	"fmt"

	"codeproof/internal/source"
)

type FixEdit struct {
	Span    source.Span
	NewText string
}

type Fix struct {
	Title string
	Edits []FixEdit
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Primary  source.Span
	Word     string
	Fixes    []Fix
}

// UnknownWord builds the diagnostic reported for a misspelled word.
func UnknownWord(sev Severity, path string, span source.Span, word string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     CodeUnknownWord,
		Message:  UnknownWordMessage(word),
		Path:     path,
		Primary:  span,
		Word:     word,
	}
}

// UnknownWordMessage returns the message shown for word.
func UnknownWordMessage(word string) string {
	return fmt.Sprintf("Unknown word %q", word)
}

// WithReplacements attaches one fix per suggestion, each replacing the
// primary span.
func (d Diagnostic) WithReplacements(suggestions []string) Diagnostic {
	for _, s := range suggestions {
		d.Fixes = append(d.Fixes, Fix{
			Title: fmt.Sprintf("Replace with %q", s),
			Edits: []FixEdit{{Span: d.Primary, NewText: s}},
		})
	}
	return d
}

// Replacements returns the replacement texts of the fixes.
func (d Diagnostic) Replacements() []string {
	out := make([]string, 0, len(d.Fixes))
	for _, f := range d.Fixes {
		if len(f.Edits) == 1 {
			out = append(out, f.Edits[0].NewText)
		}
	}
	return out
}
