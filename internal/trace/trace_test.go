package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"off", "error", "request", "detail", "debug"} {
		lvl, err := ParseLevel(name)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", name, err)
		}
		if lvl.String() != name {
			t.Fatalf("round trip %q -> %q", name, lvl.String())
		}
	}
	if _, err := ParseLevel("phase"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLevelScopes(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeServer, false},
		{LevelError, ScopeServer, false},
		{LevelRequest, ScopeServer, true},
		{LevelRequest, ScopeDocument, false},
		{LevelDetail, ScopeDocument, true},
		{LevelDetail, ScopeWord, false},
		{LevelDebug, ScopeWord, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tt.level, tt.scope, got, tt.want)
		}
	}
	if !LevelError.Accepts(&Event{Kind: KindError, Scope: ScopeWord}) {
		t.Error("error events must pass LevelError")
	}
	if LevelOff.Accepts(&Event{Kind: KindError}) {
		t.Error("LevelOff must drop error events")
	}
}

func TestWriterText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewWriter(&buf, LevelDetail, FormatText)

	span := Begin(tr, ScopeDocument, "pipeline.check", 0)
	Point(tr, ScopeWord, "check", "hidden at detail")
	span.Set("uri", "file:///a.go").End("findings=2")

	out := buf.String()
	if !strings.Contains(out, "→ pipeline.check") || !strings.Contains(out, "← pipeline.check (findings=2) {uri=file:///a.go}") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("word scope leaked at detail level:\n%s", out)
	}
}

func TestWriterNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewWriter(&buf, LevelError, FormatNDJSON)
	Error(tr, ScopeServer, "bridge.load", errors.New("no such file"))
	Point(tr, ScopeServer, "ignored", "")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one event, got %d:\n%s", len(lines), buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if ev["kind"] != "error" || ev["name"] != "bridge.load" || ev["detail"] != "no such file" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestNewOff(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Enabled() {
		t.Fatal("off tracer must be disabled")
	}
	if d := Begin(tr, ScopeServer, "x", 0).End(""); d != 0 {
		t.Fatalf("disabled span measured %v", d)
	}
}

func TestNewPicksFormatFromExtension(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelDebug, Output: &buf, OutputPath: "out.ndjson"})
	if err != nil {
		t.Fatal(err)
	}
	Point(tr, ScopeWord, "w", "")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Fatalf("expected ndjson, got %q", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("expected Nop without tracer")
	}
	var buf bytes.Buffer
	tr := NewWriter(&buf, LevelDebug, FormatText)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatal("tracer not propagated")
	}

	ctx, outer := Start(ctx, ScopeServer, "check")
	_, inner := Start(ctx, ScopeDocument, "pipeline.check")
	inner.End("")
	outer.End("")
	if outer.ID() == 0 || inner.parent != outer.ID() {
		t.Fatalf("inner span parent = %d, want %d", inner.parent, outer.ID())
	}
	if !strings.Contains(buf.String(), "]   → pipeline.check") {
		t.Fatalf("nested span not indented:\n%s", buf.String())
	}
}

func TestStartWithoutTracer(t *testing.T) {
	ctx := context.Background()
	got, span := Start(ctx, ScopeServer, "x")
	if got != ctx || span.ID() != 0 {
		t.Fatal("disabled span must not change the context")
	}
	span.Set("k", "v").End("")
}
