// Package memory is a map-backed Store for tests and single-session use.
package memory

import (
	"context"
	"sync"

	"weekcal/event"
	"weekcal/storage"
)

// Store implements storage.Store with in-memory buckets.
type Store struct {
	mu      sync.RWMutex
	buckets map[storage.Bucket][]event.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{buckets: make(map[storage.Bucket][]event.Event)}
}

func (s *Store) GetEvents(_ context.Context, bucket storage.Bucket) ([]event.Event, error) {
	if !bucket.Known() {
		return nil, &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown bucket " + string(bucket)}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.buckets[bucket]
	out := make([]event.Event, len(events))
	copy(out, events)
	return out, nil
}

func (s *Store) SetEvents(_ context.Context, bucket storage.Bucket, events []event.Event) error {
	if !bucket.Known() {
		return &storage.Error{Type: storage.ErrInvalidInput, Message: "unknown bucket " + string(bucket)}
	}

	stored := make([]event.Event, len(events))
	copy(stored, events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = stored
	return nil
}
