package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source identifies where an event record originated. Synced sources are
// read-only for the UI layer; the reconciliation service keeps the tag
// intact across re-syncs.
type Source string

const (
	SourceManual   Source = "manual"
	SourceTask     Source = "task"
	SourceOutlook  Source = "outlook"
	SourceCalDAV   Source = "caldav"
	SourceExternal Source = "external"
)

// Normalize maps the legacy empty and "default" tags onto SourceManual.
func (s Source) Normalize() Source {
	switch s {
	case "", "default":
		return SourceManual
	default:
		return s
	}
}

// Synced reports whether events of this source belong to the synced bucket.
func (s Source) Synced() bool {
	return s == SourceOutlook || s == SourceCalDAV
}

// Recurrence is an application-level recurrence kind. Empty means the
// event does not repeat.
type Recurrence string

const (
	RecurNone     Recurrence = ""
	RecurDaily    Recurrence = "daily"
	RecurWeekly   Recurrence = "weekly"
	RecurWeekdays Recurrence = "weekdays"
	RecurMonthly  Recurrence = "monthly"
)

// Known reports whether r is one of the supported recurrence kinds.
func (r Recurrence) Known() bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurWeekdays, RecurMonthly:
		return true
	default:
		return false
	}
}

type ParticipantStatus string

const (
	StatusNeedsAction ParticipantStatus = "NEEDS-ACTION"
	StatusAccepted    ParticipantStatus = "ACCEPTED"
	StatusDeclined    ParticipantStatus = "DECLINED"
	StatusTentative   ParticipantStatus = "TENTATIVE"
)

type ParticipantRole string

const (
	RoleRequired ParticipantRole = "REQ-PARTICIPANT"
	RoleOptional ParticipantRole = "OPT-PARTICIPANT"
	RoleChair    ParticipantRole = "CHAIR"
)

// Participant is one attendee or organizer entry on an event.
type Participant struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Avatar      string            `json:"avatar,omitempty"`
	Status      ParticipantStatus `json:"status,omitempty"`
	Role        ParticipantRole   `json:"role,omitempty"`
	IsOrganizer bool              `json:"isOrganizer,omitempty"`
}

// Event is the central calendar record. Date carries the concrete start
// instant; Time mirrors its clock portion and wins for grid placement.
// Mutations go through Reschedule so the two never drift apart.
type Event struct {
	ID       string `json:"id"`
	OriginID string `json:"originId,omitempty"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	// Duration in minutes; zero is treated as the 60-minute default.
	Duration       int           `json:"duration,omitempty"`
	Description    string        `json:"description,omitempty"`
	Location       string        `json:"location,omitempty"`
	Source         Source        `json:"source,omitempty"`
	RecurrenceType Recurrence    `json:"recurrenceType,omitempty"`
	RecurrenceEnd  string        `json:"recurrenceEndDate,omitempty"`
	IsGenerated    bool          `json:"isGenerated,omitempty"`
	Participants   []Participant `json:"participants,omitempty"`
}

// Key is the composite identity used for deduplication. Comparing it
// structurally avoids the string-splitting heuristics a concatenated id
// would need when several named sources are active.
type Key struct {
	Source   Source
	OriginID string
}

// Key returns the event's composite identity. Events that never got an
// explicit origin id (older manual records) fall back to their full id.
func (e Event) Key() Key {
	origin := e.OriginID
	if origin == "" {
		origin = e.ID
	}
	return Key{Source: e.Source.Normalize(), OriginID: origin}
}

// dateLayouts are the accepted encodings of the Date field. Synced
// batches arrive as RFC 3339; locally authored events may omit the zone.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses an event Date string.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event date %q", s)
}

// ParseClock parses an "H:MM"/"HH:MM" 24-hour string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unparseable event time %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable event time %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unparseable event time %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("event time %q out of range", s)
	}
	return hour, minute, nil
}

// StartsAt resolves the event's concrete start instant: the day comes
// from Date, the clock from Time when it parses.
func (e Event) StartsAt() (time.Time, error) {
	day, err := ParseDate(e.Date)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := ParseClock(e.Time)
	if err != nil {
		// Date alone still pins the instant for records without a
		// separate time string.
		return day, nil
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// StartMinute returns the minute-of-day used for grid placement.
func (e Event) StartMinute() (int, error) {
	hour, minute, err := ParseClock(e.Time)
	if err != nil {
		return 0, err
	}
	return hour*60 + minute, nil
}

// DurationOrDefault returns the duration in minutes. Zero means the
// field was absent and defaults to 60; an explicit negative value passes
// through raw, clamping is the renderer's concern.
func (e Event) DurationOrDefault() int {
	if e.Duration == 0 {
		return 60
	}
	return e.Duration
}

// RecurrenceEndAt parses the recurrence end bound, if one is set.
func (e Event) RecurrenceEndAt() (time.Time, bool) {
	if e.RecurrenceEnd == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(e.RecurrenceEnd)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Reschedule moves the event to the given day and clock time, rewriting
// Date and Time together.
func (e *Event) Reschedule(day time.Time, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("clock %02d:%02d out of range", hour, minute)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	e.Date = start.Format(time.RFC3339)
	e.Time = FormatClock(hour, minute)
	return nil
}

// FormatClock renders an "HH:MM" 24-hour string.
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
