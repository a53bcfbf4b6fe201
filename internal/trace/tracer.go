package trace

import (
	"fmt"
	"io"
	"os"
)

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	// Enabled is false only for LevelOff.
	Enabled() bool
}

// Config selects the level and destination of a tracer.
type Config struct {
	Level  Level
	Format Format
	// Output wins over OutputPath when set.
	Output io.Writer
	// OutputPath is a file to create, or "-" or "" for stderr.
	OutputPath string
}

// New returns Nop for LevelOff and a Writer tracer otherwise.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	format := cfg.Format
	if format == FormatAuto {
		format = formatFor(cfg.OutputPath)
	}

	var w io.Writer
	switch {
	case cfg.Output != nil:
		w = cfg.Output
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		// stderr stays open after Close
		w = struct{ io.Writer }{os.Stderr}
	default:
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open trace output: %w", err)
		}
		w = f
	}
	return NewWriter(w, cfg.Level, format), nil
}

type nop struct{}

func (nop) Emit(*Event)   {}
func (nop) Flush() error  { return nil }
func (nop) Close() error  { return nil }
func (nop) Level() Level  { return LevelOff }
func (nop) Enabled() bool { return false }

// Nop discards every event.
var Nop Tracer = nop{}
