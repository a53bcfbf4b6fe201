// Package bridge confines spell-checking engines to dedicated worker
// goroutines and exposes them to concurrent callers through channels.
//
// Two workers run, each locked to its own OS thread: one answers membership
// checks and the other computes suggestions, so a slow suggestion never
// delays a check. Each worker loads its own engines; an engine value is
// only ever touched by the goroutine that loaded it.
//
// The bridge fails open. While engines are loading, after a load error,
// after a worker panic and after Close, Check reports every word as known
// and Suggest returns nothing. Both return ErrUnavailable in that case.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unicode/utf8"
)

// ErrUnavailable reports that no engine could answer the request.
var ErrUnavailable = errors.New("spell checker unavailable")

// DefaultMaxSuggestions caps Suggest results when Options leaves it unset.
const DefaultMaxSuggestions = 6

const defaultQueueSize = 64

// Engine is a loaded spell-checking dictionary. Implementations need not be
// safe for concurrent use.
type Engine interface {
	Check(word string) bool
	Suggest(word string) []string
}

// Loader builds the engines of one worker, one per configured dictionary in
// configured order. It is called once by each worker on that worker's
// thread.
type Loader func() ([]Engine, error)

// Options tune a bridge.
type Options struct {
	MaxSuggestions int
	QueueSize      int
}

// State describes the lifecycle of a bridge.
type State int32

const (
	StateLoading State = iota
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

type checkRequest struct {
	word  string
	reply chan bool
}

type suggestRequest struct {
	word  string
	reply chan []string
}

// Bridge owns the worker goroutines. The zero value is not usable; a nil
// *Bridge is permanently unavailable.
type Bridge struct {
	checks   chan checkRequest
	suggests chan suggestRequest
	max      int

	state  atomic.Int32
	loaded atomic.Int32
	ready  chan struct{}
	done   chan struct{}

	stopOnce sync.Once
	mu       sync.Mutex
	err      error
}

// Start launches the workers and returns immediately. Loading happens in the
// background; use Ready to wait for it. Cancelling ctx closes the bridge.
func Start(ctx context.Context, load Loader, opts Options) *Bridge {
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = DefaultMaxSuggestions
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	b := &Bridge{
		checks:   make(chan checkRequest, opts.QueueSize),
		suggests: make(chan suggestRequest, opts.QueueSize),
		max:      opts.MaxSuggestions,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	b.state.Store(int32(StateLoading))

	go b.worker("check", load, b.serveChecks)
	go b.worker("suggest", load, b.serveSuggestions)

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.Close()
			case <-b.done:
			}
		}()
	}
	return b
}

// State returns the current lifecycle state.
func (b *Bridge) State() State {
	if b == nil {
		return StateClosed
	}
	return State(b.state.Load())
}

// Ready is closed once both workers have loaded their engines. It is never
// closed if loading fails.
func (b *Bridge) Ready() <-chan struct{} {
	if b == nil {
		return nil
	}
	return b.ready
}

// Done is closed when the bridge stops serving: after Close, a load error or
// a worker panic.
func (b *Bridge) Done() <-chan struct{} {
	if b == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return b.done
}

// Err returns the error that stopped the bridge, if any.
func (b *Bridge) Err() error {
	if b == nil {
		return ErrUnavailable
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Close stops the workers. Requests in flight fail open.
func (b *Bridge) Close() {
	if b == nil {
		return
	}
	b.stop(StateClosed, nil)
}

// Check reports whether any engine knows word.
func (b *Bridge) Check(ctx context.Context, word string) (bool, error) {
	if b.State() != StateReady {
		return true, ErrUnavailable
	}
	req := checkRequest{word: word, reply: make(chan bool, 1)}
	if err := send(ctx, b.done, b.checks, req); err != nil {
		return true, err
	}
	known, err := receive(ctx, b.done, req.reply)
	if err != nil {
		return true, err
	}
	return known, nil
}

// Suggest returns replacement candidates for word, merged across engines in
// configured order.
func (b *Bridge) Suggest(ctx context.Context, word string) ([]string, error) {
	if b.State() != StateReady {
		return nil, ErrUnavailable
	}
	req := suggestRequest{word: word, reply: make(chan []string, 1)}
	if err := send(ctx, b.done, b.suggests, req); err != nil {
		return nil, err
	}
	return receive(ctx, b.done, req.reply)
}

func send[T any](ctx context.Context, done <-chan struct{}, ch chan<- T, v T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case ch <- v:
		return nil
	case <-done:
		return ErrUnavailable
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

func receive[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		// the worker may have answered just before stopping
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		return zero, ErrUnavailable
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

func (b *Bridge) worker(name string, load Loader, serve func([]Engine)) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer func() {
		if r := recover(); r != nil {
			b.stop(StateFailed, fmt.Errorf("%s worker panicked: %v", name, r))
		}
	}()

	engines, err := load()
	if err != nil {
		b.stop(StateFailed, fmt.Errorf("%s worker: load dictionaries: %w", name, err))
		return
	}
	if len(engines) == 0 {
		b.stop(StateFailed, fmt.Errorf("%s worker: no dictionaries configured", name))
		return
	}
	b.markLoaded()
	serve(engines)
}

func (b *Bridge) markLoaded() {
	if b.loaded.Add(1) != 2 {
		return
	}
	if b.state.CompareAndSwap(int32(StateLoading), int32(StateReady)) {
		close(b.ready)
	}
}

func (b *Bridge) serveChecks(engines []Engine) {
	for {
		select {
		case <-b.done:
			return
		case req := <-b.checks:
			req.reply <- checkAll(engines, req.word)
		}
	}
}

func (b *Bridge) serveSuggestions(engines []Engine) {
	for {
		select {
		case <-b.done:
			return
		case req := <-b.suggests:
			req.reply <- suggestAll(engines, req.word, b.max)
		}
	}
}

func (b *Bridge) stop(state State, err error) {
	b.stopOnce.Do(func() {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
		b.state.Store(int32(state))
		close(b.done)
	})
}

func checkAll(engines []Engine, word string) bool {
	for _, e := range engines {
		if e.Check(word) {
			return true
		}
	}
	return false
}

// suggestAll merges suggestions in engine order, dropping duplicates and
// candidates of two runes or fewer.
func suggestAll(engines []Engine, word string, limit int) []string {
	seen := make(map[string]struct{}, limit)
	out := make([]string, 0, limit)
	for _, e := range engines {
		for _, s := range e.Suggest(word) {
			if utf8.RuneCountInString(s) <= 2 {
				continue
			}
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
