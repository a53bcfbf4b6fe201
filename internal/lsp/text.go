package lsp

import "unicode/utf8"

func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		text = replaceRange(text, *change.Range, change.Text)
	}
	return text
}

// replaceRange substitutes the text covered by r. Out of range positions are
// clamped to the text.
func replaceRange(text string, r lspRange, replacement string) string {
	start := offsetForPosition(text, r.Start)
	end := offsetForPosition(text, r.End)
	if end < start {
		end = start
	}
	return text[:start] + replacement + text[end:]
}

// offsetForPosition maps a line and UTF-16 column to a byte offset.
func offsetForPosition(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	line := 0
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return len(text)
	}
	units := 0
	for i < len(text) && units < pos.Character {
		if text[i] == '\n' || text[i] == '\r' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Character {
			break
		}
		units += need
		i += size
	}
	return i
}
