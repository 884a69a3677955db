// Package gateway translates provider-native calendar payloads,
// iCalendar documents and Exchange SOAP responses, into event batches
// for the reconciliation service. Provider authentication flows are out
// of scope; sources here speak plain HTTP with basic credentials.
package gateway

import (
	"context"
	"time"

	"weekcal/event"
)

// BatchSource supplies the current full synced state for its window.
type BatchSource interface {
	Fetch(ctx context.Context) ([]event.Event, error)
}

// minutesBetween converts an event's span into whole minutes, falling
// back to the 60-minute default when the span is missing or inverted.
func minutesBetween(start, end time.Time) int {
	if end.IsZero() || !end.After(start) {
		return 60
	}
	return int(end.Sub(start).Round(time.Minute) / time.Minute)
}
