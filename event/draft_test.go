package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Title:    "dentist",
		Date:     "2025-05-06T00:00:00Z",
		Time:     "09:30",
		Duration: 45,
	}

	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantErr error
	}{
		{name: "valid", mutate: func(*Draft) {}},
		{name: "blank title", mutate: func(d *Draft) { d.Title = "" }, wantErr: ErrUntitled},
		{name: "bad date", mutate: func(d *Draft) { d.Date = "tomorrow" }, wantErr: ErrBadDate},
		{name: "bad time", mutate: func(d *Draft) { d.Time = "9" }, wantErr: ErrBadTime},
		{name: "unknown recurrence", mutate: func(d *Draft) { d.RecurrenceType = "yearly" }, wantErr: ErrBadRecurrence},
		{name: "bad recurrence end", mutate: func(d *Draft) { d.RecurrenceEnd = "later" }, wantErr: ErrBadDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.mutate(&d)
			got, err := d.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, got.ID, got.OriginID)
			assert.Equal(t, SourceManual, got.Source)
			assert.Equal(t, "09:30", got.Time)
			assert.False(t, got.IsGenerated)
		})
	}
}

func TestDraftValidateKeepsDateTimeConsistent(t *testing.T) {
	d := Draft{Title: "run", Date: "2025-05-06T18:00:00Z", Time: "07:15"}
	got, err := d.Validate()
	require.NoError(t, err)

	start, err := got.StartsAt()
	require.NoError(t, err)
	assert.Equal(t, 7, start.Hour())
	assert.Equal(t, 15, start.Minute())
	assert.Equal(t, "07:15", got.Time)
}

func TestDraftValidateMintsUniqueIDs(t *testing.T) {
	d := Draft{Title: "a", Date: "2025-05-06T00:00:00Z", Time: "10:00"}
	first, err := d.Validate()
	require.NoError(t, err)
	second, err := d.Validate()
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
