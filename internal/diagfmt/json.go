package diagfmt

import (
	"encoding/json"
	"io"

	"codeproof/internal/diag"
	"codeproof/internal/observ"
	"codeproof/internal/source"
)

// LocationJSON is a one-based location of a diagnostic.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

// DiagnosticJSON is a diagnostic in JSON form.
type DiagnosticJSON struct {
	Severity    string       `json:"severity"`
	Code        string       `json:"code"`
	Source      string       `json:"source"`
	Message     string       `json:"message"`
	Word        string       `json:"word,omitempty"`
	Location    LocationJSON `json:"location"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// DiagnosticsOutput is the root object of JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Timings     *observ.Report   `json:"timings,omitempty"`
}

func makeLocation(path string, span source.Span, opts JSONOpts) LocationJSON {
	return LocationJSON{
		File:      source.FormatPath(path, opts.PathMode, opts.BaseDir),
		StartByte: span.Start.Offset,
		EndByte:   span.End.Offset,
		StartLine: span.Start.Line + 1,
		StartCol:  span.Start.Column + 1,
		EndLine:   span.End.Line + 1,
		EndCol:    span.End.Column + 1,
	}
}

// BuildDiagnosticsOutput collects the diagnostics of every bag in order
// without serializing them.
func BuildDiagnosticsOutput(bags []*diag.Bag, opts JSONOpts) DiagnosticsOutput {
	diagnostics := make([]DiagnosticJSON, 0)
	for _, bag := range bags {
		if bag == nil {
			continue
		}
		for _, d := range bag.Items() {
			if opts.Max > 0 && len(diagnostics) >= opts.Max {
				break
			}
			out := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code.String(),
				Source:   diag.Source,
				Message:  d.Message,
				Word:     d.Word,
				Location: makeLocation(d.Path, d.Primary, opts),
			}
			if opts.IncludeFixes {
				if repl := d.Replacements(); len(repl) > 0 {
					out.Suggestions = repl
				}
			}
			diagnostics = append(diagnostics, out)
		}
	}
	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
	}
}

// JSON writes output as indented JSON.
func JSON(w io.Writer, output DiagnosticsOutput) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
