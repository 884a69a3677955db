package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"weekcal/event"
)

func validRecord() event.Event {
	return event.Event{
		ID:       "caldav-a",
		OriginID: "a",
		Title:    "standup",
		Date:     "2025-05-06T10:00:00Z",
		Time:     "10:00",
		Duration: 15,
		Source:   event.SourceCalDAV,
	}
}

func TestValidateRecord(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*event.Event)
		ok     bool
	}{
		{"valid", func(e *event.Event) {}, true},
		{"missing id", func(e *event.Event) { e.ID = "" }, false},
		{"missing title", func(e *event.Event) { e.Title = "" }, false},
		{"generated occurrence", func(e *event.Event) { e.IsGenerated = true }, false},
		{"missing date", func(e *event.Event) { e.Date = "" }, false},
		{"garbage date", func(e *event.Event) { e.Date = "someday" }, false},
		{"date only", func(e *event.Event) { e.Date = "2025-05-06" }, true},
		{"empty time", func(e *event.Event) { e.Time = "" }, false},
		{"hour out of range", func(e *event.Event) { e.Time = "25:00" }, false},
		{"minute out of range", func(e *event.Event) { e.Time = "10:61" }, false},
		{"missing minutes", func(e *event.Event) { e.Time = "10" }, false},
		{"seconds not allowed", func(e *event.Event) { e.Time = "10:00:00" }, false},
		{"single digit hour", func(e *event.Event) { e.Time = "9:05" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validRecord()
			tc.mutate(&e)
			assert.Equal(t, tc.ok, validateRecord(e).IsOk())
		})
	}
}

func TestValidateRecordDefaultsDuration(t *testing.T) {
	e := validRecord()
	e.Duration = 0
	got := validateRecord(e)
	assert.True(t, got.IsOk())
	assert.Equal(t, 60, got.MustGet().Duration)

	e.Duration = -5
	got = validateRecord(e)
	assert.True(t, got.IsOk())
	assert.Equal(t, 60, got.MustGet().Duration)
}

func TestValidateBatchDropsWithoutFailing(t *testing.T) {
	bad := validRecord()
	bad.Title = ""
	good := validRecord()
	good.ID = "caldav-b"
	good.OriginID = "b"

	svc, _ := newTestService(t)
	out := svc.validateBatch([]event.Event{bad, good})
	assert.Len(t, out, 1)
	assert.Equal(t, "caldav-b", out[0].ID)
}

func TestDedupeFirstSeenWins(t *testing.T) {
	a := validRecord()
	a.Title = "first"
	b := validRecord()
	b.Title = "second"

	out := dedupe([]event.Event{a, b})
	assert.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Title)
}
