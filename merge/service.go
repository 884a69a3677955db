// Package merge reconciles events from every origin (manually created,
// task-converted, externally synced) into one consistent collection.
package merge

import (
	"context"
	"fmt"
	"log/slog"

	"weekcal/event"
	"weekcal/storage"
)

// Service owns the manual and synced buckets. It is the only writer of
// either; expansion and layout are derived views that never touch
// storage.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// NewService creates a reconciliation service over the given store.
func NewService(store storage.Store, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}, nil
}

// Save partitions the full event list into the manual and synced buckets
// and writes each, deduplicated, wholesale. Generated occurrences never
// round-trip to storage and are dropped here.
func (s *Service) Save(ctx context.Context, events []event.Event) error {
	var manual, synced []event.Event
	for _, e := range events {
		if e.IsGenerated {
			continue
		}
		if e.Source.Synced() {
			synced = append(synced, e)
		} else {
			manual = append(manual, e)
		}
	}

	if err := s.store.SetEvents(ctx, storage.BucketManual, dedupe(manual)); err != nil {
		return fmt.Errorf("save manual bucket: %w", err)
	}
	if err := s.store.SetEvents(ctx, storage.BucketSynced, dedupe(synced)); err != nil {
		return fmt.Errorf("save synced bucket: %w", err)
	}
	return nil
}

// Sync replaces the synced bucket with the validated batch and returns
// the merged collection. A batch fully supersedes the previous synced
// set: external sources report their complete current state for the
// queried window, so this is a replace, not an append. Calling Sync
// twice with the same batch leaves the collection unchanged.
func (s *Service) Sync(ctx context.Context, batch []event.Event) ([]event.Event, error) {
	valid := s.validateBatch(batch)
	valid = dedupe(valid)

	if err := s.store.SetEvents(ctx, storage.BucketSynced, valid); err != nil {
		return nil, fmt.Errorf("replace synced bucket: %w", err)
	}

	manual, err := s.store.GetEvents(ctx, storage.BucketManual)
	if err != nil {
		return nil, fmt.Errorf("read manual bucket: %w", err)
	}
	return dedupe(append(manual, valid...)), nil
}

// Events returns the union of both buckets, deduplicated.
func (s *Service) Events(ctx context.Context) ([]event.Event, error) {
	manual, err := s.store.GetEvents(ctx, storage.BucketManual)
	if err != nil {
		return nil, fmt.Errorf("read manual bucket: %w", err)
	}
	synced, err := s.store.GetEvents(ctx, storage.BucketSynced)
	if err != nil {
		return nil, fmt.Errorf("read synced bucket: %w", err)
	}
	return dedupe(append(manual, synced...)), nil
}

// dedupe removes events sharing a composite key. First seen wins; the
// same rule applies wherever this package deduplicates.
func dedupe(events []event.Event) []event.Event {
	seen := make(map[event.Key]struct{}, len(events))
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		key := e.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
