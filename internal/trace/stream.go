package trace

import (
	"io"
	"sync"
)

// Writer formats each accepted event and writes it straight to w.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	level  Level
	format Format
}

// NewWriter returns a tracer writing to w. FormatAuto means text.
func NewWriter(w io.Writer, level Level, format Format) *Writer {
	if format == FormatAuto {
		format = FormatText
	}
	return &Writer{w: w, level: level, format: format}
}

func (t *Writer) Emit(ev *Event) {
	if ev == nil || !t.level.Accepts(ev) {
		return
	}
	ev.Seq = seqCounter.Add(1)
	line := FormatEvent(ev, t.format)

	t.mu.Lock()
	// write errors are dropped so tracing never fails a check
	_, _ = t.w.Write(line)
	t.mu.Unlock()
}

// Flush forwards to w when it buffers.
func (t *Writer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes, then closes w when it is an io.Closer.
func (t *Writer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *Writer) Level() Level { return t.level }

func (t *Writer) Enabled() bool { return t.level > LevelOff }
