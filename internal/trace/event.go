package trace

import "time"

// Kind says what an event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindError passes every level but off.
	KindError
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "error"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	// ScopeServer covers LSP messages, CLI commands and engine startup.
	ScopeServer Scope = iota + 1
	// ScopeDocument covers checking one document or file.
	ScopeDocument
	// ScopeWord covers single spell checks and suggestions.
	ScopeWord
)

var scopeNames = [...]string{"unknown", "server", "document", "word"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record. Seq is assigned by the tracer that writes it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots and points
	Name     string // e.g. "textDocument/didOpen", "pipeline.check"
	Detail   string
	Extra    map[string]string
}

func emit(t Tracer, kind Kind, scope Scope, name, detail string) {
	if t == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{Time: time.Now(), Kind: kind, Scope: scope, Name: name, Detail: detail})
}

// Point records an instant event.
func Point(t Tracer, scope Scope, name, detail string) {
	emit(t, KindPoint, scope, name, detail)
}

// Error records err under name; a nil err records nothing.
func Error(t Tracer, scope Scope, name string, err error) {
	if err != nil {
		emit(t, KindError, scope, name, err.Error())
	}
}
