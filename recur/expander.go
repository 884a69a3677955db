// Package recur materializes recurring base events into concrete
// occurrences over a bounded horizon.
package recur

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"weekcal/event"
)

const (
	// DefaultHorizonMonths bounds open-ended recurrences.
	DefaultHorizonMonths = 3
	// defaultMaxPerEvent caps occurrences of a single base event.
	defaultMaxPerEvent = 1000
)

// Expander turns recurring base events into generated occurrence
// records. Expansion is a pure function of (bases, horizon, now), so two
// runs with the same clock produce identical output.
type Expander struct {
	// HorizonMonths is the forward bound for open-ended recurrences.
	HorizonMonths int
	// MaxPerEvent caps how many occurrences one base event may emit.
	MaxPerEvent int
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time

	logger *slog.Logger
	cache  *Cache
}

// New creates an expander with default bounds and no result cache.
func New(logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{
		HorizonMonths: DefaultHorizonMonths,
		MaxPerEvent:   defaultMaxPerEvent,
		Now:           time.Now,
		logger:        logger,
	}
}

// NewWithCache creates an expander that memoizes expansion results.
func NewWithCache(logger *slog.Logger, cfg CacheConfig) *Expander {
	x := New(logger)
	x.cache = NewCache(cfg)
	return x
}

// Close releases the result cache, if any.
func (x *Expander) Close() {
	if x.cache != nil {
		x.cache.Close()
	}
}

// Expand returns the input events unchanged plus freshly generated
// occurrences for every recurring base event. Previously generated
// occurrences in the input are passed through untouched; the caller
// replaces its old generated set with this result wholesale.
func (x *Expander) Expand(events []event.Event) []event.Event {
	now := x.Now()
	out := make([]event.Event, 0, len(events))
	out = append(out, events...)

	if x.cache != nil {
		if hit, ok := x.cache.Get(events, x.HorizonMonths, now); ok {
			return append(out, hit...)
		}
	}

	var generated []event.Event
	for _, e := range events {
		if e.IsGenerated || e.RecurrenceType == event.RecurNone {
			continue
		}
		generated = append(generated, x.occurrences(e, now)...)
	}

	if x.cache != nil {
		x.cache.Set(events, x.HorizonMonths, now, generated)
	}
	return append(out, generated...)
}

// occurrences expands one recurring base event. The base instant itself
// is never re-emitted; it already represents the first instance.
func (x *Expander) occurrences(e event.Event, now time.Time) []event.Event {
	if !e.RecurrenceType.Known() {
		x.logger.Warn("skipping event with unknown recurrence type",
			"id", e.ID, "recurrence", string(e.RecurrenceType))
		return nil
	}

	start, err := e.StartsAt()
	if err != nil {
		x.logger.Warn("skipping recurring event with unparseable start",
			"id", e.ID, "err", err)
		return nil
	}

	windowEnd := now.AddDate(0, x.HorizonMonths, 0)
	if end, ok := e.RecurrenceEndAt(); ok && end.Before(windowEnd) {
		windowEnd = end
	}
	if windowEnd.Before(start) {
		return nil
	}

	rule, err := rrule.NewRRule(ruleOption(e.RecurrenceType, start, windowEnd))
	if err != nil {
		x.logger.Warn("skipping recurring event with unbuildable rule",
			"id", e.ID, "recurrence", string(e.RecurrenceType), "err", err)
		return nil
	}

	times := rule.Between(start, windowEnd, true)
	if len(times) > x.MaxPerEvent {
		x.logger.Warn("truncating recurrence expansion",
			"id", e.ID, "cap", x.MaxPerEvent, "dropped", len(times)-x.MaxPerEvent)
		times = times[:x.MaxPerEvent]
	}

	occurrences := make([]event.Event, 0, len(times))
	for _, t := range times {
		if t.Equal(start) {
			continue
		}
		occ := e
		occ.ID = fmt.Sprintf("%s-recurrence-%d", e.ID, t.UnixMilli())
		occ.Date = t.Format(time.RFC3339)
		occ.Time = event.FormatClock(t.Hour(), t.Minute())
		occ.IsGenerated = true
		occurrences = append(occurrences, occ)
	}
	return occurrences
}

// weekdays are Monday through Friday, ISO weekday 1-5.
var weekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}

// ruleOption translates an application recurrence kind into its RFC 5545
// rule. Monthly recurrence keeps the base day-of-month; months that do
// not contain that day are skipped, never rolled over.
func ruleOption(kind event.Recurrence, start, until time.Time) rrule.ROption {
	opt := rrule.ROption{Dtstart: start, Until: until}
	switch kind {
	case event.RecurDaily:
		opt.Freq = rrule.DAILY
	case event.RecurWeekly:
		opt.Freq = rrule.WEEKLY
	case event.RecurWeekdays:
		opt.Freq = rrule.DAILY
		opt.Byweekday = weekdays
	case event.RecurMonthly:
		opt.Freq = rrule.MONTHLY
	}
	return opt
}
