package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Each level includes the ones below it.
type Level uint8

const (
	LevelOff     Level = iota // no tracing
	LevelError                // only failures
	LevelRequest              // LSP messages and CLI commands
	LevelDetail               // per-document work
	LevelDebug                // everything including per-word events
)

var levelNames = [...]string{"off", "error", "request", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// widest returns the finest scope the level emits, or 0 for none.
func (l Level) widest() Scope {
	switch {
	case l >= LevelDebug:
		return ScopeWord
	case l == LevelDetail:
		return ScopeDocument
	case l == LevelRequest:
		return ScopeServer
	}
	return 0
}

// ShouldEmit reports whether spans and points of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	w := l.widest()
	return w != 0 && scope <= w
}

// Accepts reports whether an event passes this level. Failures pass every
// level but off.
func (l Level) Accepts(ev *Event) bool {
	if ev.Kind == KindError {
		return l >= LevelError
	}
	return l.ShouldEmit(ev.Scope)
}
