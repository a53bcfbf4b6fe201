// Package dict keeps the words a user accepted as correctly spelled.
package dict

import (
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

const shardCount = 32

type shard struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// Set is a concurrent set of accepted words. Words are spread over shards,
// each with its own lock, so readers of one shard never wait for a writer of
// another. Unless the set is case sensitive, words are compared after Unicode
// case folding.
type Set struct {
	shards        [shardCount]shard
	caseSensitive bool
}

// NewSet creates an empty set.
func NewSet(caseSensitive bool) *Set {
	s := &Set{caseSensitive: caseSensitive}
	for i := range s.shards {
		s.shards[i].words = make(map[string]struct{})
	}
	return s
}

// CaseSensitive reports how words are compared.
func (s *Set) CaseSensitive() bool {
	return s.caseSensitive
}

func (s *Set) key(word string) string {
	if s.caseSensitive {
		return word
	}
	// a Caser keeps state and cannot be shared between goroutines
	return cases.Fold().String(word)
}

func shardIndex(key string) uint32 {
	// FNV-1a
	h := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return h % shardCount
}

func (s *Set) shardFor(key string) *shard {
	return &s.shards[shardIndex(key)]
}

// Add inserts word and reports whether it was new.
func (s *Set) Add(word string) bool {
	if word == "" {
		return false
	}
	k := s.key(word)
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.words[k]; ok {
		return false
	}
	sh.words[k] = struct{}{}
	return true
}

// Remove deletes word and reports whether it was present.
func (s *Set) Remove(word string) bool {
	if word == "" {
		return false
	}
	k := s.key(word)
	sh := s.shardFor(k)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.words[k]; !ok {
		return false
	}
	delete(sh.words, k)
	return true
}

// Contains reports whether word was accepted. A nil set contains nothing.
func (s *Set) Contains(word string) bool {
	if s == nil || word == "" {
		return false
	}
	k := s.key(word)
	sh := s.shardFor(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	_, ok := sh.words[k]
	return ok
}

// Len returns the number of words.
func (s *Set) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.words)
		sh.mu.RUnlock()
	}
	return n
}

// Words returns the stored (folded) words in sorted order.
func (s *Set) Words() []string {
	var out []string
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for w := range sh.words {
			out = append(out, w)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}

// Replace swaps the contents of the set for words, one shard at a time.
func (s *Set) Replace(words []string) {
	var next [shardCount]map[string]struct{}
	for i := range next {
		next[i] = make(map[string]struct{})
	}
	for _, w := range words {
		if w == "" {
			continue
		}
		k := s.key(w)
		next[shardIndex(k)][k] = struct{}{}
	}
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		sh.words = next[i]
		sh.mu.Unlock()
	}
}
