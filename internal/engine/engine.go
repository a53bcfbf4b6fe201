// Package engine implements bridge.Engine on top of hunspell aff/dic
// dictionaries.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/client9/gospell"

	"codeproof/internal/bridge"
	"codeproof/internal/lexer"
	"codeproof/internal/resolve"
)

// maxCandidates bounds the suggestions one dictionary returns.
const maxCandidates = 10

// Dictionary is one loaded hunspell dictionary. It is not safe for
// concurrent use.
type Dictionary struct {
	name     string
	spell    *gospell.GoSpell
	alphabet []rune
	metric   *metrics.JaroWinkler
}

// Load parses the aff/dic pair named by paths.
func Load(paths resolve.Paths) (*Dictionary, error) {
	aff, err := os.Open(paths.Aff)
	if err != nil {
		return nil, fmt.Errorf("open affix file: %w", err)
	}
	defer aff.Close()
	dic, err := os.Open(paths.Dic)
	if err != nil {
		return nil, fmt.Errorf("open dictionary file: %w", err)
	}
	defer dic.Close()
	name := paths.Language
	if name == "" {
		name = paths.Dic
	}
	return LoadReader(name, aff, dic)
}

// LoadReader parses an aff/dic pair from readers.
func LoadReader(name string, aff, dic io.Reader) (*Dictionary, error) {
	spell, err := gospell.NewGoSpellReader(aff, dic)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: %w", name, err)
	}
	return &Dictionary{
		name:     name,
		spell:    spell,
		alphabet: lexer.Alphabet(),
		metric:   metrics.NewJaroWinkler(),
	}, nil
}

// Name returns the language or file the dictionary was loaded from.
func (d *Dictionary) Name() string {
	return d.name
}

// Check reports whether word is spelled correctly.
func (d *Dictionary) Check(word string) bool {
	return d.spell.Spell(word)
}

// Suggest returns known words one edit away from word, most similar first.
// Case is restored to match word.
func (d *Dictionary) Suggest(word string) []string {
	if word == "" {
		return nil
	}
	style := caseOf(word)
	lower := strings.ToLower(word)

	seen := make(map[string]struct{})
	type candidate struct {
		word  string
		score float64
	}
	var found []candidate
	for _, edit := range edits1(lower, d.alphabet) {
		if edit == lower || edit == "" {
			continue
		}
		if _, dup := seen[edit]; dup {
			continue
		}
		seen[edit] = struct{}{}
		restored := style.apply(edit)
		if !d.spell.Spell(restored) {
			continue
		}
		found = append(found, candidate{
			word:  restored,
			score: strutil.Similarity(word, restored, d.metric),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].word < found[j].word
	})
	if len(found) > maxCandidates {
		found = found[:maxCandidates]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.word
	}
	return out
}

// edits1 returns every string one deletion, transposition, replacement or
// insertion away from word.
func edits1(word string, alphabet []rune) []string {
	runes := []rune(word)
	n := len(runes)
	out := make([]string, 0, n*2+len(alphabet)*(2*n+1))
	buf := make([]rune, 0, n+1)
	build := func(parts ...[]rune) string {
		buf = buf[:0]
		for _, p := range parts {
			buf = append(buf, p...)
		}
		return string(buf)
	}
	for i := 0; i <= n; i++ {
		left, right := runes[:i], runes[i:]
		if len(right) > 0 {
			out = append(out, build(left, right[1:]))
		}
		if len(right) > 1 {
			out = append(out, build(left, []rune{right[1], right[0]}, right[2:]))
		}
		for _, r := range alphabet {
			if len(right) > 0 && r != right[0] {
				out = append(out, build(left, []rune{r}, right[1:]))
			}
			out = append(out, build(left, []rune{r}, right))
		}
	}
	return out
}

type caseStyle uint8

const (
	caseLower caseStyle = iota
	caseTitle
	caseUpper
)

func caseOf(word string) caseStyle {
	first, size := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(first) {
		return caseLower
	}
	rest := word[size:]
	if rest != "" && strings.ToUpper(rest) == rest {
		return caseUpper
	}
	return caseTitle
}

func (s caseStyle) apply(word string) string {
	switch s {
	case caseUpper:
		return strings.ToUpper(word)
	case caseTitle:
		first, size := utf8.DecodeRuneInString(word)
		return string(unicode.ToUpper(first)) + word[size:]
	default:
		return word
	}
}

// Loader returns a bridge.Loader that loads one Dictionary per entry of
// paths, in order. Every call produces fresh engines.
func Loader(paths ...resolve.Paths) bridge.Loader {
	return func() ([]bridge.Engine, error) {
		engines := make([]bridge.Engine, 0, len(paths))
		for _, p := range paths {
			d, err := Load(p)
			if err != nil {
				return nil, err
			}
			engines = append(engines, d)
		}
		return engines, nil
	}
}

// Resolved returns a bridge.Loader that resolves specs on first use and
// loads the resulting dictionaries. Resolution runs once and is shared by
// every worker; loading runs per call.
func Resolved(ctx context.Context, r *resolve.Resolver, specs []resolve.Spec) bridge.Loader {
	resolveOnce := sync.OnceValues(func() ([]resolve.Paths, error) {
		return r.ResolveAll(ctx, specs)
	})
	return func() ([]bridge.Engine, error) {
		paths, err := resolveOnce()
		if err != nil {
			return nil, err
		}
		return Loader(paths...)()
	}
}
