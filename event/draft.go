package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Validation failures reported by Draft.Validate.
var (
	ErrUntitled      = errors.New("event has no title")
	ErrBadDate       = errors.New("event date is unparseable")
	ErrBadTime       = errors.New("event time is unparseable")
	ErrInconsistent  = errors.New("event time disagrees with date")
	ErrBadRecurrence = errors.New("unknown recurrence type")
)

// Draft is an event under construction, typically UI form state. It is
// deliberately a distinct type from Event: only Validate can turn one
// into a persisted record, and it is the single place where the
// date/time consistency invariant is enforced.
type Draft struct {
	Title          string        `json:"title"`
	Date           string        `json:"date"`
	Time           string        `json:"time"`
	Duration       int           `json:"duration,omitempty"`
	Description    string        `json:"description,omitempty"`
	Location       string        `json:"location,omitempty"`
	RecurrenceType Recurrence    `json:"recurrenceType,omitempty"`
	RecurrenceEnd  string        `json:"recurrenceEndDate,omitempty"`
	Participants   []Participant `json:"participants,omitempty"`
}

// Validate checks the draft and mints a manual Event from it. The new
// event gets a locally generated unique origin id.
func (d Draft) Validate() (Event, error) {
	if d.Title == "" {
		return Event{}, ErrUntitled
	}
	day, err := ParseDate(d.Date)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	hour, minute, err := ParseClock(d.Time)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadTime, err)
	}
	if d.RecurrenceType != RecurNone && !d.RecurrenceType.Known() {
		return Event{}, fmt.Errorf("%w: %q", ErrBadRecurrence, d.RecurrenceType)
	}
	if d.RecurrenceEnd != "" {
		if _, err := ParseDate(d.RecurrenceEnd); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrBadDate, err)
		}
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	id := uuid.New().String()
	return Event{
		ID:             id,
		OriginID:       id,
		Title:          d.Title,
		Date:           start.Format(time.RFC3339),
		Time:           FormatClock(hour, minute),
		Duration:       d.Duration,
		Description:    d.Description,
		Location:       d.Location,
		Source:         SourceManual,
		RecurrenceType: d.RecurrenceType,
		RecurrenceEnd:  d.RecurrenceEnd,
		Participants:   d.Participants,
	}, nil
}
