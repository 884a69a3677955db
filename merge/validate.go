package merge

import (
	"fmt"
	"regexp"

	"github.com/samber/mo"

	"weekcal/event"
)

var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// validateBatch keeps the well-formed records of a sync batch. Invalid
// records are dropped with a logged warning; one bad record never fails
// the whole batch.
func (s *Service) validateBatch(batch []event.Event) []event.Event {
	out := make([]event.Event, 0, len(batch))
	for _, raw := range batch {
		res := validateRecord(raw)
		if res.IsError() {
			s.logger.Warn("dropping invalid synced record",
				"id", raw.ID, "title", raw.Title, "err", res.Error())
			continue
		}
		out = append(out, res.MustGet())
	}
	return out
}

// validateRecord checks one incoming synced record and normalizes its
// duration. The checks mirror what the gateways promise: id, title, a
// parseable date, and an in-range HH:MM time.
func validateRecord(e event.Event) mo.Result[event.Event] {
	if e.ID == "" {
		return mo.Err[event.Event](fmt.Errorf("missing id"))
	}
	if e.Title == "" {
		return mo.Err[event.Event](fmt.Errorf("missing title"))
	}
	if e.IsGenerated {
		return mo.Err[event.Event](fmt.Errorf("generated occurrence in sync batch"))
	}
	if _, err := event.ParseDate(e.Date); err != nil {
		return mo.Err[event.Event](err)
	}
	if !timePattern.MatchString(e.Time) {
		return mo.Err[event.Event](fmt.Errorf("malformed time %q", e.Time))
	}
	if _, _, err := event.ParseClock(e.Time); err != nil {
		return mo.Err[event.Event](err)
	}
	if e.Duration <= 0 {
		e.Duration = 60
	}
	return mo.Ok(e)
}
