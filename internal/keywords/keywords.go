// Package keywords holds the reserved words of the languages whose
// identifiers are checked. Reserved words are never reported as misspelled.
package keywords

import (
	"sort"
	"sync"
)

// Set is an immutable set of reserved words.
type Set struct {
	words map[string]struct{}
}

// Contains reports whether word is reserved. The match is exact and case
// sensitive.
func (s Set) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of reserved words.
func (s Set) Len() int {
	return len(s.words)
}

// Words returns the reserved words in sorted order.
func (s Set) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func newSet(words ...string) Set {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return Set{words: m}
}

var (
	rustWords = sync.OnceValue(func() Set {
		return newSet(
			"as", "async", "await", "break", "const", "continue", "crate", "dyn",
			"else", "enum", "extern", "false", "fn", "for", "if", "impl", "in",
			"let", "loop", "match", "mod", "move", "mut", "pub", "ref", "return",
			"Self", "self", "static", "struct", "super", "trait", "true", "type",
			"unsafe", "use", "where", "while",
			// reserved for future use
			"abstract", "alignof", "become", "box", "do", "final", "macro",
			"offsetof", "override", "priv", "proc", "pure", "sizeof", "typeof",
			"unsized", "virtual", "yield",
		)
	})
	jsWords = sync.OnceValue(func() Set {
		return newSet(
			"await", "break", "case", "catch", "class", "const", "continue",
			"debugger", "default", "delete", "do", "else", "enum", "export",
			"extends", "false", "finally", "for", "function", "if", "implements",
			"import", "in", "instanceof", "interface", "let", "new", "null",
			"package", "private", "protected", "public", "return", "super",
			"switch", "static", "this", "throw", "true", "try", "typeof", "var",
			"void", "while", "with", "yield",
		)
	})
	tsWords = sync.OnceValue(func() Set {
		ts := []string{
			"abstract", "any", "asserts", "boolean", "declare", "infer", "is",
			"keyof", "module", "namespace", "never", "number", "readonly",
			"satisfies", "string", "symbol", "type", "undefined", "unique",
			"unknown",
		}
		return newSet(append(jsWords().Words(), ts...)...)
	})
	rubyWords = sync.OnceValue(func() Set {
		return newSet(
			"BEGIN", "END", "alias", "and", "begin", "break", "case", "class",
			"def", "defined", "do", "else", "elsif", "end", "ensure", "false",
			"for", "if", "in", "module", "next", "nil", "not", "or", "redo",
			"rescue", "retry", "return", "self", "super", "then", "true",
			"undef", "unless", "until", "when", "while", "yield",
		)
	})
	goWords = sync.OnceValue(func() Set {
		return newSet(
			"break", "case", "chan", "const", "continue", "default", "defer",
			"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
			"interface", "map", "package", "range", "return", "select", "struct",
			"switch", "type", "var",
			// predeclared identifiers
			"any", "bool", "byte", "comparable", "complex", "error", "false",
			"float", "imag", "int", "iota", "len", "make", "new", "nil", "panic",
			"print", "println", "real", "recover", "rune", "string", "true",
			"uint", "uintptr",
		)
	})
	pythonWords = sync.OnceValue(func() Set {
		return newSet(
			"False", "None", "True", "and", "as", "assert", "async", "await",
			"break", "class", "continue", "def", "del", "elif", "else", "except",
			"finally", "for", "from", "global", "if", "import", "in", "is",
			"lambda", "match", "nonlocal", "not", "or", "pass", "raise", "return",
			"try", "while", "with", "yield",
			"self", "cls",
		)
	})
)

var byLanguage = map[string]func() Set{
	"rust":            rustWords,
	"javascript":      jsWords,
	"javascriptreact": jsWords,
	"typescript":      tsWords,
	"typescriptreact": tsWords,
	"ruby":            rubyWords,
	"go":              goWords,
	"python":          pythonWords,
}

// Reserved returns the reserved words of the language identified by
// languageID (an LSP language identifier). Unknown languages get an empty
// set.
func Reserved(languageID string) Set {
	if build, ok := byLanguage[languageID]; ok {
		return build()
	}
	return Set{}
}

// Languages lists the language identifiers that have reserved words.
func Languages() []string {
	out := make([]string, 0, len(byLanguage))
	for lang := range byLanguage {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}
