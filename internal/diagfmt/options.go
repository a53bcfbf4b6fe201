// Package diagfmt renders diagnostics and token listings for the terminal
// and for machines.
package diagfmt

import "codeproof/internal/source"

// Sources maps a diagnostic path to the text it was computed from.
type Sources map[string]string

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color    bool
	PathMode source.PathMode
	BaseDir  string
	// ShowSource prints the offending line with a caret under the word.
	ShowSource bool
	ShowFixes  bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode source.PathMode
	BaseDir  string
	Max      int // truncates the output, not the Bag
	// IncludeFixes adds the suggested replacements of each diagnostic.
	IncludeFixes bool
}
