// Package layout computes the side-by-side packing of events that share
// a calendar day. Events whose time intervals transitively intersect
// form an overlap group; members of a group split the column evenly.
package layout

import (
	"sort"

	"weekcal/event"
)

// Config scales minute-based values into pixels.
type Config struct {
	PixelsPerMinute float64
}

// DefaultConfig renders one pixel per minute.
var DefaultConfig = Config{PixelsPerMinute: 1}

// Positioned is an event annotated with its visual placement. Top and
// Height are in pixels; WidthFraction and LeftFraction are fractions of
// the day column. Values are reported raw: clamping short events to a
// minimum visible height is the renderer's concern.
type Positioned struct {
	event.Event
	Top           float64 `json:"top"`
	Height        float64 `json:"height"`
	WidthFraction float64 `json:"widthFraction"`
	LeftFraction  float64 `json:"leftFraction"`
}

// interval is an event's [start, end) slot in minutes of the day.
type interval struct {
	ev         event.Event
	start, end int
}

// LayoutDay groups one day's events by time overlap and assigns each
// member its lane. Groups are all-or-nothing: every member of an n-event
// group gets width 1/n in insertion order, even when a tighter packing
// would fit. That equal split is deliberate; it keeps lane assignment
// stable as events are dragged around.
func (c Config) LayoutDay(events []event.Event) [][]Positioned {
	groups := groupOverlapping(events)

	out := make([][]Positioned, 0, len(groups))
	for _, group := range groups {
		n := len(group)
		positioned := make([]Positioned, 0, n)
		for i, iv := range group {
			positioned = append(positioned, Positioned{
				Event:         iv.ev,
				Top:           float64(iv.start) * c.PixelsPerMinute,
				Height:        float64(iv.ev.DurationOrDefault()) * c.PixelsPerMinute,
				WidthFraction: 1 / float64(n),
				LeftFraction:  float64(i) / float64(n),
			})
		}
		out = append(out, positioned)
	}
	return out
}

// groupOverlapping partitions events into maximal runs of transitively
// intersecting intervals: a single pass over the start-sorted events
// appends each one to the current group when it overlaps any member,
// and closes the group otherwise.
func groupOverlapping(events []event.Event) [][]interval {
	intervals := make([]interval, 0, len(events))
	for _, e := range events {
		start, err := e.StartMinute()
		if err != nil {
			// Records reach the layout engine already validated; an
			// unparseable time still gets drawn, pinned to midnight.
			start = 0
		}
		intervals = append(intervals, interval{
			ev:    e,
			start: start,
			end:   start + e.DurationOrDefault(),
		})
	}
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	var groups [][]interval
	var current []interval
	for _, iv := range intervals {
		if overlapsAny(iv, current) {
			current = append(current, iv)
			continue
		}
		if len(current) > 0 {
			groups = append(groups, current)
		}
		current = []interval{iv}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// overlapsAny tests iv against every group member with the half-open
// intersection rule: [a,b) and [c,d) overlap iff a < d and c < b.
func overlapsAny(iv interval, group []interval) bool {
	for _, member := range group {
		if iv.start < member.end && member.start < iv.end {
			return true
		}
	}
	return false
}
