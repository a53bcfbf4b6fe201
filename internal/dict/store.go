package dict

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 100 * time.Millisecond

// Store persists a Set as a plain text file with one word per line. Lines
// starting with '#' and blank lines are ignored.
type Store struct {
	path string
	set  *Set
	mu   sync.Mutex // serializes file writes
}

// NewStore binds set to the file at path. Nothing is read until Load.
func NewStore(path string, set *Set) *Store {
	return &Store{path: path, set: set}
}

// Path returns the backing file.
func (st *Store) Path() string {
	return st.path
}

// Set returns the in-memory set.
func (st *Store) Set() *Set {
	return st.set
}

// Load replaces the set contents with the file contents. A missing file
// leaves the set empty.
func (st *Store) Load() error {
	words, err := ReadWords(st.path)
	if err != nil {
		return err
	}
	st.set.Replace(words)
	return nil
}

// ReadWords reads a word list file. A missing file yields no words.
func ReadWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()
	return parseWords(f)
}

func parseWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return words, nil
}

// Add accepts word and appends it to the file. It reports whether the word
// was new; known words are not written again.
func (st *Store) Add(word string) (bool, error) {
	n, err := st.AddAll([]string{word})
	return n > 0, err
}

// AddAll accepts words and appends the new ones to the file. It returns how
// many were new. When the file cannot be written the new words are taken
// back out of the set, so a retry writes them again.
func (st *Store) AddAll(words []string) (int, error) {
	var fresh []string
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || strings.ContainsAny(w, "\r\n") {
			continue
		}
		if st.set.Add(w) {
			fresh = append(fresh, w)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := st.append(fresh); err != nil {
		for _, w := range fresh {
			st.set.Remove(w)
		}
		return 0, err
	}
	return len(fresh), nil
}

func (st *Store) append(words []string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(st.path), 0o755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}
	f, err := os.OpenFile(st.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dictionary: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, word := range words {
		_, _ = w.WriteString(word)
		_ = w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write dictionary: %w", err)
	}
	return f.Close()
}

// Watch reloads the set whenever the file changes on disk, until ctx is
// done. onChange, if set, is called after every reload with its result.
func (st *Store) Watch(ctx context.Context, onChange func(error)) error {
	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files instead of writing in place
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	go st.watchLoop(ctx, watcher, onChange)
	return nil
}

func (st *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(error)) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	base := filepath.Base(st.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDelay, func() {
				err := st.Load()
				if onChange != nil {
					onChange(err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if onChange != nil {
				onChange(fmt.Errorf("watch dictionary: %w", err))
			}
		}
	}
}
