package source

import (
	"testing"
	"unicode/utf8"
)

func advanceAll(t *testing.T, text string) []Position {
	t.Helper()
	var tr Tracker
	out := make([]Position, 0, len(text))
	for _, r := range text {
		out = append(out, tr.Advance(r, utf8.RuneLen(r)))
	}
	return out
}

func TestTrackerColumnsCountUTF16Units(t *testing.T) {
	got := advanceAll(t, "a😀b")
	want := []Position{
		{Offset: 0, Line: 0, Column: 0},
		{Offset: 1, Line: 0, Column: 1},
		{Offset: 5, Line: 0, Column: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTrackerNewlineResetsColumn(t *testing.T) {
	var tr Tracker
	text := "ab\ncd"
	var positions []Position
	for _, r := range text {
		positions = append(positions, tr.Advance(r, utf8.RuneLen(r)))
	}
	// the newline itself is recorded at the end of its line
	if positions[2] != (Position{Offset: 2, Line: 0, Column: 2}) {
		t.Fatalf("newline recorded at %+v", positions[2])
	}
	if positions[3] != (Position{Offset: 3, Line: 1, Column: 0}) {
		t.Fatalf("first rune after newline at %+v", positions[3])
	}
	if tr.Pos() != (Position{Offset: 5, Line: 1, Column: 2}) {
		t.Fatalf("final position %+v", tr.Pos())
	}
}

func TestTrackerMonotonic(t *testing.T) {
	text := "héllo\r\n wörld 😀\n\n𝔘x"
	var tr Tracker
	prev := tr.Pos()
	for _, r := range text {
		tr.Advance(r, utf8.RuneLen(r))
		cur := tr.Pos()
		if cur.Before(prev) {
			t.Fatalf("position went backwards: %+v -> %+v", prev, cur)
		}
		if cur.Offset <= prev.Offset {
			t.Fatalf("offset did not advance: %+v -> %+v", prev, cur)
		}
		prev = cur
	}
	if int(prev.Offset) != len(text) {
		t.Fatalf("final offset %d, want %d", prev.Offset, len(text))
	}
}

func TestUnitsAndShift(t *testing.T) {
	tests := []struct {
		text  string
		units uint32
	}{
		{"", 0},
		{"abc", 3},
		{"é", 1},
		{"😀", 2},
		{"a😀b", 4},
	}
	for _, tt := range tests {
		if got := Units(tt.text); got != tt.units {
			t.Errorf("Units(%q) = %d, want %d", tt.text, got, tt.units)
		}
	}

	start := Position{Offset: 10, Line: 4, Column: 7}
	end := Shift(start, "a😀")
	if end != (Position{Offset: 15, Line: 4, Column: 10}) {
		t.Fatalf("Shift() = %+v", end)
	}
}
