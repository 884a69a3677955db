// Package storage defines the persistence gateway for event collections:
// two named buckets, each holding a JSON-serializable array of events.
package storage

import (
	"context"
	"fmt"

	"weekcal/event"
)

// Bucket names a persisted event partition.
type Bucket string

const (
	// BucketManual holds user-authored and task-converted events.
	BucketManual Bucket = "manual-events"
	// BucketSynced holds the last successful sync batch.
	BucketSynced Bucket = "synced-events"
)

// Known reports whether b is one of the defined buckets.
func (b Bucket) Known() bool {
	return b == BucketManual || b == BucketSynced
}

// ErrorType classifies storage failures.
type ErrorType string

const (
	ErrInvalidInput ErrorType = "invalid_input"
	ErrUnavailable  ErrorType = "unavailable"
)

// Error is the typed failure returned by Store implementations.
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Store is the interface persistence backends implement. Writes replace
// a bucket wholesale in one logical step; a concurrent read observes
// either the old or the new bucket, never a mix.
type Store interface {
	// GetEvents returns the bucket's events. A bucket that was never
	// written reads as empty, not as an error.
	GetEvents(ctx context.Context, bucket Bucket) ([]event.Event, error)
	// SetEvents overwrites the bucket with the given events.
	SetEvents(ctx context.Context, bucket Bucket, events []event.Event) error
}
