package content

import (
	"errors"
	"sync"
)

var (
	// ErrNoSnapshot is returned when the store has nothing published yet.
	ErrNoSnapshot = errors.New("content: no snapshot published")
	// ErrStalePublish is returned when prev is no longer the published snapshot.
	ErrStalePublish = errors.New("content: publish against a stale snapshot")
)

// MemoryStore holds the published snapshot and swaps it atomically.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewMemoryStore publishes initial as the current snapshot.
func NewMemoryStore(initial *Snapshot) *MemoryStore {
	return &MemoryStore{current: initial}
}

// Current returns the published snapshot. Callers must treat it as read-only.
func (s *MemoryStore) Current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrNoSnapshot
	}
	return s.current, nil
}

// Publish replaces prev with next. prev must still be the published snapshot.
func (s *MemoryStore) Publish(next, prev *Snapshot) error {
	if next == nil {
		return errors.New("content: cannot publish a nil snapshot")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != prev {
		return ErrStalePublish
	}
	s.current = next
	return nil
}
