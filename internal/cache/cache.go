// Package cache is the key-addressed query cache used by the client's
// data-fetching layer and the API's response cache. Entries are addressed
// by a composite key: a resource path segment followed by scoping
// qualifiers, e.g. ["/api/contracts", "5", "milestones"]. Mutating a
// resource invalidates every entry whose key starts with that resource's
// segments, so later reads refetch instead of serving stale data.
package cache

import (
	"context"
	"strings"
	"sync"
)

// Segment separator inside stored keys. Key parts must not contain it.
const sep = "|"

// Join flattens key parts into the stored key form.
func Join(parts ...string) string {
	return strings.Join(parts, sep)
}

func split(key string) []string {
	return strings.Split(key, sep)
}

// matchesPrefix reports whether a key's segments start with prefix,
// segment by segment ("5" is not a prefix of "55").
func matchesPrefix(keyParts, prefix []string) bool {
	if len(prefix) > len(keyParts) {
		return false
	}
	for i, p := range prefix {
		if keyParts[i] != p {
			return false
		}
	}
	return true
}

type Cache interface {
	// Get returns the cached value for the exact key, and whether it was present.
	Get(ctx context.Context, parts ...string) ([]byte, bool, error)
	Set(ctx context.Context, value []byte, parts ...string) error
	// Invalidate removes every entry whose key is a segment-prefix match.
	Invalidate(ctx context.Context, prefix ...string) error
}

// Memory is the in-process Cache used by the client app and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

func (m *Memory) Get(ctx context.Context, parts ...string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[Join(parts...)]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, value []byte, parts ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Join(parts...)] = value
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, prefix ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if matchesPrefix(split(key), prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len reports the number of live entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
