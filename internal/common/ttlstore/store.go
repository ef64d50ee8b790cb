// Package ttlstore provides a keyed in-memory store whose entries expire
// after a fixed time-to-live. Expired entries are removed lazily on access,
// so no background sweeper goroutine is needed: every read path checks
// freshness before returning a value.
package ttlstore

import (
	"sync"
	"time"

	"github.com/velrin/cadence/internal/common/clock"
)

type entry[V any] struct {
	value    V
	deadline time.Time
}

// Store holds values of type V keyed by string, each with its own deadline.
// Contents are lost on process restart; nothing in here is durable.
type Store[V any] struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]entry[V]
}

// New creates an empty store. A nil clock falls back to the system clock.
func New[V any](clk clock.Clock) *Store[V] {
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	return &Store[V]{
		clock:   clk,
		entries: make(map[string]entry[V]),
	}
}

// Put stores a value under key, replacing any prior entry, expiring after ttl
func (s *Store[V]) Put(key string, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{
		value:    value,
		deadline: s.clock.Now().Add(ttl),
	}
}

// Get returns the live value for key. An expired entry is deleted and
// reported as absent.
func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if s.clock.Now().After(e.deadline) {
		delete(s.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Take returns and removes the live value for key in one step, so two
// concurrent resolvers cannot both act on the same entry.
func (s *Store[V]) Take(key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(s.entries, key)
	if s.clock.Now().After(e.deadline) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes the entry for key if present
func (s *Store[V]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len counts the live entries, sweeping expired ones as it goes
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	for k, e := range s.entries {
		if now.After(e.deadline) {
			delete(s.entries, k)
		}
	}
	return len(s.entries)
}
