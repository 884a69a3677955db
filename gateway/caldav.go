package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"weekcal/event"
)

// ParseICS decodes an iCalendar payload into a caldav-sourced event
// batch. VEVENTs without a UID or a parseable DTSTART are skipped with a
// logged warning; the rest of the document still parses.
func ParseICS(r io.Reader, logger *slog.Logger) ([]event.Event, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dec := ical.NewDecoder(r)
	var events []event.Event
	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode icalendar: %w", err)
		}

		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			e, err := eventFromVEvent(comp)
			if err != nil {
				logger.Warn("skipping unusable VEVENT", "err", err)
				continue
			}
			events = append(events, e)
		}
	}
	return events, nil
}

func eventFromVEvent(comp *ical.Component) (event.Event, error) {
	uidProp := comp.Props.Get(ical.PropUID)
	if uidProp == nil || uidProp.Value == "" {
		return event.Event{}, fmt.Errorf("VEVENT without UID")
	}
	uid := uidProp.Value

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return event.Event{}, fmt.Errorf("VEVENT %s without DTSTART", uid)
	}
	start, err := startProp.DateTime(time.UTC)
	if err != nil {
		return event.Event{}, fmt.Errorf("VEVENT %s: bad DTSTART: %w", uid, err)
	}

	var end time.Time
	if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if t, err := endProp.DateTime(time.UTC); err == nil {
			end = t
		}
	}

	e := event.Event{
		ID:       fmt.Sprintf("%s-%s", event.SourceCalDAV, uid),
		OriginID: uid,
		Title:    propText(comp, ical.PropSummary),
		Date:     start.Format(time.RFC3339),
		Time:     event.FormatClock(start.Hour(), start.Minute()),
		Duration: minutesBetween(start, end),
		Source:   event.SourceCalDAV,
	}
	e.Description = propText(comp, ical.PropDescription)
	e.Location = propText(comp, ical.PropLocation)
	e.Participants = participantsFromProps(comp)
	return e, nil
}

func propText(comp *ical.Component, name string) string {
	if prop := comp.Props.Get(name); prop != nil {
		return prop.Value
	}
	return ""
}

// participantsFromProps maps ORGANIZER and ATTENDEE properties onto the
// participant list, preserving PARTSTAT and ROLE.
func participantsFromProps(comp *ical.Component) []event.Participant {
	var out []event.Participant

	if org := comp.Props.Get(ical.PropOrganizer); org != nil {
		email := stripMailto(org.Value)
		out = append(out, event.Participant{
			ID:          email,
			Name:        nameOrEmail(org.Params.Get(ical.ParamCommonName), email),
			Email:       email,
			IsOrganizer: true,
		})
	}

	for _, att := range comp.Props.Values(ical.PropAttendee) {
		email := stripMailto(att.Value)
		out = append(out, event.Participant{
			ID:     email,
			Name:   nameOrEmail(att.Params.Get(ical.ParamCommonName), email),
			Email:  email,
			Status: event.ParticipantStatus(att.Params.Get(ical.ParamParticipationStatus)),
			Role:   event.ParticipantRole(att.Params.Get(ical.ParamRole)),
		})
	}
	return out
}

func stripMailto(v string) string {
	return strings.TrimPrefix(strings.TrimPrefix(v, "mailto:"), "MAILTO:")
}

func nameOrEmail(name, email string) string {
	if name != "" {
		return name
	}
	return email
}

// CalDAVSource fetches an iCalendar export over HTTP. It satisfies
// BatchSource for the auto-sync driver.
type CalDAVSource struct {
	URL      string
	Username string
	Password string
	Client   *http.Client
	Logger   *slog.Logger
}

func (s *CalDAVSource) Fetch(ctx context.Context) ([]event.Event, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build caldav request: %w", err)
	}
	if s.Username != "" {
		req.SetBasicAuth(s.Username, s.Password)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch caldav calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch caldav calendar: unexpected status %s", resp.Status)
	}
	return ParseICS(resp.Body, s.Logger)
}
