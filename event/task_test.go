package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskToEvent(t *testing.T) {
	task := Task{
		ID:          "t1",
		Title:       "write report",
		Description: "quarterly numbers",
		Priority:    PriorityHigh,
		Date:        "2025-05-06",
	}

	got, err := task.ToEvent(14, 0)
	require.NoError(t, err)

	assert.Equal(t, "task-t1", got.ID)
	assert.Equal(t, "t1", got.OriginID)
	assert.Equal(t, SourceTask, got.Source)
	assert.Equal(t, "14:00", got.Time)
	assert.Equal(t, "write report", got.Title)

	start, err := got.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 6, start.Day())

	// Converting the same task twice yields the same identity, so a
	// repeated conversion cannot duplicate the event under merge.
	again, err := task.ToEvent(9, 30)
	require.NoError(t, err)
	assert.Equal(t, got.Key(), again.Key())
}

func TestTaskToEventRejectsBadInput(t *testing.T) {
	_, err := Task{ID: "t1", Date: "2025-05-06"}.ToEvent(10, 0)
	require.ErrorIs(t, err, ErrUntitled)

	_, err = Task{ID: "t1", Title: "x", Date: "05/06/2025"}.ToEvent(10, 0)
	require.ErrorIs(t, err, ErrBadDate)

	_, err = Task{ID: "t1", Title: "x", Date: "2025-05-06"}.ToEvent(24, 0)
	require.ErrorIs(t, err, ErrBadTime)
}
