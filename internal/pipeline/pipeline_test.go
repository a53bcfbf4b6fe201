package pipeline_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeproof/internal/bridge"
	"codeproof/internal/dict"
	"codeproof/internal/pipeline"
	"codeproof/internal/source"
)

// fakeChecker knows a fixed vocabulary, compared case-insensitively.
type fakeChecker struct {
	words       map[string]bool
	suggestions map[string][]string
	calls       atomic.Int32
	err         error
}

func newChecker(words ...string) *fakeChecker {
	c := &fakeChecker{words: map[string]bool{}, suggestions: map[string][]string{}}
	for _, w := range words {
		c.words[strings.ToLower(w)] = true
	}
	return c
}

func (c *fakeChecker) Check(_ context.Context, word string) (bool, error) {
	c.calls.Add(1)
	if c.err != nil {
		return true, c.err
	}
	return c.words[strings.ToLower(word)], nil
}

func (c *fakeChecker) Suggest(_ context.Context, word string) ([]string, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.suggestions[word], nil
}

func words(findings []pipeline.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Word
	}
	return out
}

func TestCheckReportsUnknownWordsInOrder(t *testing.T) {
	p := pipeline.New(newChecker("print", "string", "helper", "hello", "world"))
	text := "fn print(s: string) {}\nlet helloWrold = hellp(wrold);"
	got := p.Check(context.Background(), text, "rust", nil)
	assert.Equal(t, []string{"Wrold", "hellp", "wrold"}, words(got))

	assert.Equal(t, source.Position{Offset: 32, Line: 1, Column: 9}, got[0].Start)
	assert.Equal(t, source.Position{Offset: 37, Line: 1, Column: 14}, got[0].End)
	for _, f := range got {
		assert.Equal(t, f.Word, f.Span().Text(text))
	}
}

func TestLengthFilterAppliesBeforeAndAfterExpansion(t *testing.T) {
	p := pipeline.New(newChecker())
	// "abc" is too short, "xyzAbcd" splits into too-short "xyz" and "Abcd"
	got := p.Check(context.Background(), "abc xyzAbcd qwerty", "", nil)
	assert.Equal(t, []string{"Abcd", "qwerty"}, words(got))

	p = pipeline.New(newChecker(), pipeline.WithMinLength(2))
	assert.Equal(t, 2, p.MinLength())
	got = p.Check(context.Background(), "a xy", "", nil)
	assert.Equal(t, []string{"xy"}, words(got))
}

func TestKeywordsUsePreExpansionLexeme(t *testing.T) {
	p := pipeline.New(newChecker())
	got := p.Check(context.Background(), "impl struct implStruct", "rust", nil)
	assert.Equal(t, []string{"impl", "Struct"}, words(got))

	got = p.Check(context.Background(), "impl struct", "python", nil)
	assert.Equal(t, []string{"impl", "struct"}, words(got))
}

func TestAcceptedWordsAreNeverReported(t *testing.T) {
	p := pipeline.New(newChecker())
	accepted := dict.NewSet(false)
	accepted.Add("Codeproof")
	got := p.Check(context.Background(), "codeproof CODEPROOF zzzzqq", "", accepted)
	assert.Equal(t, []string{"zzzzqq"}, words(got))
}

func TestUnavailableCheckerFailsOpen(t *testing.T) {
	unavailable := newChecker()
	unavailable.err = bridge.ErrUnavailable
	p := pipeline.New(unavailable)
	assert.Empty(t, p.Check(context.Background(), "qwzxv plorkt gribblefax", "", nil))
	assert.Nil(t, p.Suggest(context.Background(), "qwzxv"))

	var nilBridge *bridge.Bridge
	p = pipeline.New(nilBridge)
	assert.Empty(t, p.Check(context.Background(), "qwzxv plorkt gribblefax", "", nil))

	p = pipeline.New(nil)
	assert.Empty(t, p.Check(context.Background(), "qwzxv", "", nil))
	assert.Nil(t, p.Suggest(context.Background(), "qwzxv"))
}

func TestLoadingBridgeFailsOpen(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	b := bridge.Start(context.Background(), func() ([]bridge.Engine, error) {
		<-release
		return nil, nil
	}, bridge.Options{})
	defer b.Close()

	p := pipeline.New(b)
	assert.Empty(t, p.Check(context.Background(), "qwzxv plorkt", "", nil))
}

func TestVerdictsAreMemoized(t *testing.T) {
	c := newChecker("known")
	p := pipeline.New(c)
	got := p.Check(context.Background(), "known known wrongg wrongg known", "", nil)
	assert.Equal(t, []string{"wrongg", "wrongg"}, words(got))
	assert.Equal(t, int32(2), c.calls.Load())
}

func TestMisspelledIsUnique(t *testing.T) {
	p := pipeline.New(newChecker("alpha"))
	got := p.Misspelled(context.Background(), "betaa alpha gammma betaa", "", nil)
	assert.Equal(t, []string{"betaa", "gammma"}, got)
}

func TestSuggest(t *testing.T) {
	c := newChecker()
	c.suggestions["wrold"] = []string{"world", "would"}
	p := pipeline.New(c)
	assert.Equal(t, []string{"world", "would"}, p.Suggest(context.Background(), "wrold"))
}

func TestCancelledContextStops(t *testing.T) {
	p := pipeline.New(newChecker())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, p.Check(ctx, "qwzxv plorkt", "", nil))
}

func TestConcurrentDocuments(t *testing.T) {
	p := pipeline.New(newChecker("shared"))
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := p.Check(context.Background(), "shared unknownn", "go", nil)
			assert.Equal(t, []string{"unknownn"}, words(got))
		}()
	}
	wg.Wait()
}

func TestEmptyDocument(t *testing.T) {
	p := pipeline.New(newChecker())
	require.Empty(t, p.Check(context.Background(), "", "rust", nil))
	require.Empty(t, p.Check(context.Background(), "  {}()\n", "rust", nil))
}
