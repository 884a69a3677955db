package event

import (
	"fmt"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is a dated todo item. It can be converted into a calendar event;
// the caller removes the task once the conversion succeeds.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Completed   bool     `json:"completed"`
	// Date is the day the task is due, "YYYY-MM-DD".
	Date string `json:"date"`
}

// ToEvent converts the task into an event scheduled on the task's day at
// the given clock time. The event keeps the task id as its origin so
// repeated conversions of the same task stay idempotent under merge.
func (t Task) ToEvent(hour, minute int) (Event, error) {
	if t.Title == "" {
		return Event{}, ErrUntitled
	}
	day, err := time.Parse("2006-01-02", t.Date)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadDate, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Event{}, fmt.Errorf("%w: %02d:%02d", ErrBadTime, hour, minute)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	return Event{
		ID:          fmt.Sprintf("%s-%s", SourceTask, t.ID),
		OriginID:    t.ID,
		Title:       t.Title,
		Date:        start.Format(time.RFC3339),
		Time:        FormatClock(hour, minute),
		Description: t.Description,
		Source:      SourceTask,
	}, nil
}
