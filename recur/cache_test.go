package recur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekcal/event"
)

func TestCacheRoundTrip(t *testing.T) {
	c := NewCache(DefaultCacheConfig)
	defer c.Close()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	bases := []event.Event{{
		ID: "1", Title: "sync", Date: "2025-05-06T10:00:00Z", Time: "10:00",
		RecurrenceType: event.RecurWeekly,
	}}
	generated := []event.Event{{ID: "1-recurrence-1", IsGenerated: true}}

	_, ok := c.Get(bases, 3, now)
	assert.False(t, ok)

	c.Set(bases, 3, now, generated)
	got, ok := c.Get(bases, 3, now)
	require.True(t, ok)
	assert.Equal(t, generated, got)
	assert.Equal(t, 1, c.Len())
}

func TestCacheKeyIgnoresCosmeticFields(t *testing.T) {
	c := NewCache(DefaultCacheConfig)
	defer c.Close()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	bases := []event.Event{{
		ID: "1", Title: "sync", Date: "2025-05-06T10:00:00Z", Time: "10:00",
		RecurrenceType: event.RecurWeekly,
	}}
	c.Set(bases, 3, now, nil)

	// A description edit does not change the generated set.
	bases[0].Description = "bring notes"
	_, ok := c.Get(bases, 3, now)
	assert.True(t, ok)

	// Moving the event does.
	bases[0].Time = "11:00"
	_, ok = c.Get(bases, 3, now)
	assert.False(t, ok)

	// So does a different horizon.
	bases[0].Time = "10:00"
	_, ok = c.Get(bases, 4, now)
	assert.False(t, ok)
}

func TestCacheEvictsOverLimit(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Hour, MaxEntries: 2, CleanupInterval: time.Hour})
	defer c.Close()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		bases := []event.Event{{
			ID: string(rune('a' + i)), Date: "2025-05-06T10:00:00Z", Time: "10:00",
			RecurrenceType: event.RecurDaily,
		}}
		c.Set(bases, 3, now, nil)
	}
	assert.LessOrEqual(t, c.Len(), 2)
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(DefaultCacheConfig)
	defer c.Close()

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	bases := []event.Event{{
		ID: "1", Date: "2025-05-06T10:00:00Z", Time: "10:00",
		RecurrenceType: event.RecurDaily,
	}}
	c.Set(bases, 3, now, []event.Event{{ID: "occ", IsGenerated: true}})

	got, ok := c.Get(bases, 3, now)
	require.True(t, ok)
	got[0].ID = "mutated"

	fresh, ok := c.Get(bases, 3, now)
	require.True(t, ok)
	assert.Equal(t, "occ", fresh[0].ID)
}
