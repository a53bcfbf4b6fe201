package driver

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"codeproof/internal/diag"
	"codeproof/internal/expand"
	"codeproof/internal/pipeline"
)

type wordChecker struct {
	known map[string]bool
}

func (c wordChecker) Check(_ context.Context, word string) (bool, error) {
	return c.known[word], nil
}

func (c wordChecker) Suggest(_ context.Context, word string) ([]string, error) {
	if word == "wrold" {
		return []string{"world"}, nil
	}
	return nil, nil
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(wordChecker{known: map[string]bool{
		"hello": true, "world": true, "greeting": true, "value": true,
	}})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCollectFilesSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.go"), "")
	writeFile(t, filepath.Join(dir, "a", "c.rs"), "")
	writeFile(t, filepath.Join(dir, ".git", "config"), "")
	writeFile(t, filepath.Join(dir, ".hidden"), "")

	files, err := CollectFiles([]string{dir, filepath.Join(dir, "b.go")})
	if err != nil {
		t.Fatalf("CollectFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "c.rs"), filepath.Join(dir, "b.go")}
	if !slices.Equal(files, want) {
		t.Fatalf("CollectFiles = %v, want %v", files, want)
	}

	if _, err := CollectFiles([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestIsBinary(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}
	tests := []struct {
		name    string
		content []byte
		want    bool
	}{
		{name: "text", content: []byte("hello world\n"), want: false},
		{name: "empty", content: nil, want: false},
		{name: "png", content: png, want: true},
		{name: "nul byte", content: []byte("abc\x00def"), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBinary(tt.content); got != tt.want {
				t.Fatalf("IsBinary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLanguageID(t *testing.T) {
	tests := map[string]string{
		"main.go":     "go",
		"lib.RS":      "rust",
		"app.tsx":     "typescriptreact",
		"index.mjs":   "javascript",
		"script.py":   "python",
		"Rakefile":    "",
		"notes.adoc":  "",
		"config.yaml": "yaml",
	}
	for path, want := range tests {
		if got := LanguageID(path); got != want {
			t.Fatalf("LanguageID(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "func greeting() string { return \"hello wrold\" }\n")
	writeFile(t, filepath.Join(dir, "clean.py"), "value = 'hello world'\n")
	writeFile(t, filepath.Join(dir, "blob.bin"), "wrold\x00wrold")

	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(evt Event) {
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	})

	results, err := CheckFiles(context.Background(), Request{
		Paths:    []string{dir},
		Jobs:     2,
		Suggest:  true,
		Severity: diag.SevError,
		Pipeline: newPipeline(),
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	bin, clean, goFile := results[0], results[1], results[2]
	if !bin.Skipped || bin.Findings() != 0 {
		t.Fatalf("binary file not skipped: %+v", bin)
	}
	if clean.Language != "python" || clean.Findings() != 0 {
		t.Fatalf("unexpected clean result: language=%q findings=%d", clean.Language, clean.Findings())
	}
	if goFile.Language != "go" || goFile.Findings() != 1 {
		t.Fatalf("unexpected go result: language=%q findings=%d", goFile.Language, goFile.Findings())
	}
	d := goFile.Bag.Items()[0]
	if d.Word != "wrold" || d.Severity != diag.SevError || d.Path != goFile.Path {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Primary.Start.Line != 0 || d.Primary.Start.Column != 39 {
		t.Fatalf("unexpected position %v", d.Primary)
	}
	if got := d.Replacements(); !slices.Equal(got, []string{"world"}) {
		t.Fatalf("unexpected replacements %v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	var queued, done, skipped int
	for _, evt := range events {
		switch evt.Status {
		case StatusQueued:
			queued++
		case StatusDone:
			done++
		case StatusSkipped:
			skipped++
		}
	}
	if queued != 3 || done != 2 || skipped != 1 {
		t.Fatalf("unexpected events: queued=%d done=%d skipped=%d", queued, done, skipped)
	}
}

func TestCheckFilesLanguageOverrideAndLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, "func wrold fooo barr")

	results, err := CheckFiles(context.Background(), Request{
		Paths:          []string{path},
		Language:       "go",
		MaxDiagnostics: 2,
		Pipeline:       newPipeline(),
	})
	if err != nil {
		t.Fatalf("CheckFiles: %v", err)
	}
	if results[0].Language != "go" {
		t.Fatalf("language override ignored: %q", results[0].Language)
	}
	var got []string
	for _, d := range results[0].Bag.Items() {
		got = append(got, d.Word)
	}
	if !slices.Equal(got, []string{"wrold", "fooo"}) {
		t.Fatalf("unexpected words %v", got)
	}
}

func TestCheckFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "wrold")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := CheckFiles(ctx, Request{Paths: []string{dir}, Pipeline: newPipeline()}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestCheckFilesRequiresPipeline(t *testing.T) {
	if _, err := CheckFiles(context.Background(), Request{Paths: []string{t.TempDir()}}); err == nil {
		t.Fatal("expected error without pipeline")
	}
}

func TestTokenize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.rs")
	writeFile(t, path, "fn fizzBuzz() {}")

	res, err := Tokenize(path, "", true)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if res.Language != "rust" || len(res.Tokens) != 2 {
		t.Fatalf("unexpected result: language=%q tokens=%d", res.Language, len(res.Tokens))
	}
	if !res.Tokens[0].Reserved || res.Tokens[0].Token.Lexeme != "fn" {
		t.Fatalf("expected reserved fn, got %+v", res.Tokens[0])
	}
	second := res.Tokens[1]
	if second.Convention != expand.Camel || len(second.Parts) != 2 {
		t.Fatalf("unexpected expansion %+v", second)
	}
	if second.Parts[0].Lexeme != "fizz" || second.Parts[1].Lexeme != "Buzz" {
		t.Fatalf("unexpected parts %v", second.Parts)
	}

	plain, err := Tokenize(path, "", false)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if plain.Tokens[1].Parts != nil {
		t.Fatal("expected no parts without expansion")
	}
}
