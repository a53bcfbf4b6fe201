package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"codeproof/internal/diag"
	"codeproof/internal/source"
)

type palette struct {
	path    *color.Color
	sev     map[diag.Severity]*color.Color
	code    *color.Color
	gutter  *color.Color
	caret   *color.Color
	help    *color.Color
	summary *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		help:   color.New(color.FgGreen),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevHint:    color.New(color.FgWhite),
		},
		summary: color.New(color.Bold),
	}
	all := []*color.Color{p.path, p.code, p.gutter, p.caret, p.help, p.summary}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes one block per diagnostic of bag:
//
//	<path>:<line>:<col>: <SEV> <code>: <message>
//
// followed, when enabled, by the source line with a caret under the word
// and the suggested replacements. Lines and columns are printed one-based.
func Pretty(w io.Writer, bag *diag.Bag, sources Sources, opts PrettyOpts) error {
	if bag == nil {
		return nil
	}
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		if err := prettyOne(w, d, sources, opts, p); err != nil {
			return err
		}
	}
	return nil
}

func prettyOne(w io.Writer, d diag.Diagnostic, sources Sources, opts PrettyOpts, p palette) error {
	start := d.Primary.Start
	path := source.FormatPath(d.Path, opts.PathMode, opts.BaseDir)
	sev, ok := p.sev[d.Severity]
	if !ok {
		sev = p.code
	}
	if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, start.Line+1, start.Column+1),
		sev.Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.String()),
		d.Message,
	); err != nil {
		return err
	}

	if opts.ShowSource {
		if text, ok := sources[d.Path]; ok {
			line := source.LineText(text, start.Line)
			number := fmt.Sprintf("%d", start.Line+1)
			pad := strings.Repeat(" ", len(number))
			fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%s |", number), line)
			fmt.Fprintf(w, " %s %s%s\n",
				p.gutter.Sprintf("%s |", pad),
				caretPadding(line, start.Column),
				p.caret.Sprint(strings.Repeat("^", max(1, runewidth.StringWidth(d.Word)))),
			)
		}
	}

	if opts.ShowFixes {
		if repl := d.Replacements(); len(repl) > 0 {
			quoted := make([]string, len(repl))
			for i, r := range repl {
				quoted[i] = fmt.Sprintf("%q", r)
			}
			fmt.Fprintf(w, "  %s did you mean %s?\n", p.help.Sprint("= help:"), strings.Join(quoted, ", "))
		}
	}
	return nil
}

// caretPadding returns blanks that cover the first units UTF-16 code units
// of line in display width. Tabs are kept so the caret lines up with the
// terminal's tab stops.
func caretPadding(line string, units uint32) string {
	var b strings.Builder
	var seen uint32
	for _, r := range line {
		if seen >= units {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		seen += uint32(source.UnitLen(r))
	}
	return b.String()
}

// Summary writes a closing line counting diagnostics and files.
func Summary(w io.Writer, findings, files, skipped int, colored bool) {
	p := newPalette(colored)
	noun := "words"
	if findings == 1 {
		noun = "word"
	}
	line := fmt.Sprintf("%d unknown %s in %d files", findings, noun, files)
	if skipped > 0 {
		line += fmt.Sprintf(" (%d skipped)", skipped)
	}
	fmt.Fprintln(w, p.summary.Sprint(line))
}
