package resolve

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the manifest format changes
const cacheSchemaVersion uint16 = 1

const manifestName = "manifest.mp"

// Entry describes one downloaded file.
type Entry struct {
	URL     string
	File    string
	SHA256  string
	ETag    string
	Size    int64
	Fetched time.Time
}

type manifest struct {
	Schema  uint16
	Entries map[string]Entry
}

// Cache stores downloaded dictionary files together with a msgpack manifest
// keyed by URL. Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// DefaultCacheDir returns $XDG_CACHE_HOME/codeproof/dictionaries, falling
// back to ~/.cache.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "codeproof", "dictionaries"), nil
}

// OpenCache creates the cache directory if needed.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Lookup returns the entry for url if it exists and its file is still
// present.
func (c *Cache) Lookup(url string) (Entry, bool, error) {
	if c == nil {
		return Entry{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, err := c.readManifest()
	if err != nil {
		return Entry{}, false, err
	}
	e, ok := m.Entries[url]
	if !ok || !isFile(e.File) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Entries lists cached files ordered by URL.
func (c *Cache) Entries() ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, err := c.readManifest()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out, nil
}

// Store writes body as the cached copy of url and records it in the
// manifest.
func (c *Cache) Store(url string, body io.Reader, etag string) (Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := sha256.Sum256([]byte(url))
	name := hex.EncodeToString(key[:8]) + path.Ext(stripQuery(url))
	target := filepath.Join(c.dir, name)

	h := sha256.New()
	size, err := writeAtomic(target, io.TeeReader(body, h))
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		URL:     url,
		File:    target,
		SHA256:  hex.EncodeToString(h.Sum(nil)),
		ETag:    etag,
		Size:    size,
		Fetched: time.Now().UTC(),
	}

	m, err := c.readManifest()
	if err != nil {
		return Entry{}, err
	}
	m.Entries[url] = entry
	if err := c.writeManifest(m); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// DropAll removes every cached file.
func (c *Cache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

func (c *Cache) readManifest() (*manifest, error) {
	fresh := &manifest{Schema: cacheSchemaVersion, Entries: map[string]Entry{}}
	f, err := os.Open(filepath.Join(c.dir, manifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fresh, nil
		}
		return nil, err
	}
	defer f.Close()

	var m manifest
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		// unreadable manifests are rebuilt from scratch
		return fresh, nil
	}
	if m.Schema != cacheSchemaVersion || m.Entries == nil {
		return fresh, nil
	}
	return &m, nil
}

func (c *Cache) writeManifest(m *manifest) error {
	m.Schema = cacheSchemaVersion
	data, err := msgpack.Marshal(m)
	if err != nil {
		return err
	}
	_, err = writeAtomic(filepath.Join(c.dir, manifestName), bytes.NewReader(data))
	return err
}

// writeAtomic copies r into a temp file next to target and renames it.
func writeAtomic(target string, r io.Reader) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(target), "tmp-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(f.Name())

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return n, os.Rename(f.Name(), target)
}

func stripQuery(url string) string {
	for i := 0; i < len(url); i++ {
		if url[i] == '?' || url[i] == '#' {
			return url[:i]
		}
	}
	return url
}
