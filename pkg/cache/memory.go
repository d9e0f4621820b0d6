package cache

import (
	"context"
	"sync"
)

// Memory is a process-local Cache backed by a map. Entries live for the
// lifetime of the process only.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]string),
	}
}

// Get returns the entry stored for url, if any. It never fails.
func (m *Memory) Get(_ context.Context, url string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resolved, found := m.entries[url]

	return resolved, found, nil
}

// Set stores the resolved URL for url.
func (m *Memory) Set(_ context.Context, url string, resolved string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[url] = resolved

	return nil
}

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

var _ Cache = (*Memory)(nil)
