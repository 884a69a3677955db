package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekcal/event"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:abc-123\r\n" +
	"DTSTAMP:20250501T000000Z\r\n" +
	"DTSTART:20250506T100000Z\r\n" +
	"DTEND:20250506T103000Z\r\n" +
	"SUMMARY:Team standup\r\n" +
	"LOCATION:Room 4\r\n" +
	"DESCRIPTION:Daily check-in\r\n" +
	"ORGANIZER;CN=Alice:mailto:alice@example.com\r\n" +
	"ATTENDEE;CN=Bob;PARTSTAT=ACCEPTED;ROLE=REQ-PARTICIPANT:mailto:bob@example.com\r\n" +
	"ATTENDEE;PARTSTAT=TENTATIVE;ROLE=OPT-PARTICIPANT:mailto:carol@example.com\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"DTSTAMP:20250501T000000Z\r\n" +
	"DTSTART:20250507T100000Z\r\n" +
	"SUMMARY:No UID, should be skipped\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	events, err := ParseICS(strings.NewReader(sampleICS), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "caldav-abc-123", e.ID)
	assert.Equal(t, "abc-123", e.OriginID)
	assert.Equal(t, "Team standup", e.Title)
	assert.Equal(t, "2025-05-06T10:00:00Z", e.Date)
	assert.Equal(t, "10:00", e.Time)
	assert.Equal(t, 30, e.Duration)
	assert.Equal(t, "Room 4", e.Location)
	assert.Equal(t, "Daily check-in", e.Description)
	assert.Equal(t, event.SourceCalDAV, e.Source)
	assert.False(t, e.IsGenerated)
}

func TestParseICSParticipants(t *testing.T) {
	events, err := ParseICS(strings.NewReader(sampleICS), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ps := events[0].Participants
	require.Len(t, ps, 3)

	assert.Equal(t, "Alice", ps[0].Name)
	assert.Equal(t, "alice@example.com", ps[0].Email)
	assert.True(t, ps[0].IsOrganizer)

	assert.Equal(t, "Bob", ps[1].Name)
	assert.Equal(t, event.StatusAccepted, ps[1].Status)
	assert.Equal(t, event.RoleRequired, ps[1].Role)

	// No CN falls back to the address.
	assert.Equal(t, "carol@example.com", ps[2].Name)
	assert.Equal(t, event.StatusTentative, ps[2].Status)
}

func TestParseICSMissingDuration(t *testing.T) {
	ics := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:open-ended\r\n" +
		"DTSTAMP:20250501T000000Z\r\n" +
		"DTSTART:20250506T100000Z\r\n" +
		"SUMMARY:No end time\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	events, err := ParseICS(strings.NewReader(ics), nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 60, events[0].Duration)
}

func TestParseICSGarbage(t *testing.T) {
	_, err := ParseICS(strings.NewReader("not an icalendar payload"), nil)
	require.Error(t, err)
}

func TestCalDAVSourceFetch(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	src := &CalDAVSource{URL: srv.URL, Username: "user", Password: "pass"}
	events, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.NotEmpty(t, gotAuth)
}

func TestCalDAVSourceFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	src := &CalDAVSource{URL: srv.URL}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}
