package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/beevik/etree"

	"weekcal/event"
)

// ParseEWS walks an Exchange Web Services FindItem response and maps its
// CalendarItem elements onto an outlook-sourced event batch. Element
// lookup matches local tag names only, so the caller's namespace
// prefixes do not matter.
func ParseEWS(r io.Reader, logger *slog.Logger) ([]event.Event, error) {
	if logger == nil {
		logger = slog.Default()
	}

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("decode ews response: %w", err)
	}

	var events []event.Event
	for _, item := range findAll(doc.Root(), "CalendarItem") {
		e, err := eventFromCalendarItem(item)
		if err != nil {
			logger.Warn("skipping unusable CalendarItem", "err", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func eventFromCalendarItem(item *etree.Element) (event.Event, error) {
	var id string
	if itemID := child(item, "ItemId"); itemID != nil {
		id = itemID.SelectAttrValue("Id", "")
	}
	if id == "" {
		return event.Event{}, fmt.Errorf("CalendarItem without ItemId")
	}

	startText := childText(item, "Start")
	start, err := time.Parse(time.RFC3339, startText)
	if err != nil {
		return event.Event{}, fmt.Errorf("CalendarItem %s: bad Start %q: %w", id, startText, err)
	}

	var end time.Time
	if endText := childText(item, "End"); endText != "" {
		if t, err := time.Parse(time.RFC3339, endText); err == nil {
			end = t
		}
	}

	title := childText(item, "Subject")
	if title == "" {
		title = "(untitled)"
	}

	e := event.Event{
		ID:          fmt.Sprintf("%s-%s", event.SourceOutlook, id),
		OriginID:    id,
		Title:       title,
		Date:        start.Format(time.RFC3339),
		Time:        event.FormatClock(start.Hour(), start.Minute()),
		Duration:    minutesBetween(start, end),
		Description: childText(item, "Body"),
		Location:    childText(item, "Location"),
		Source:      event.SourceOutlook,
	}
	e.Participants = participantsFromItem(item)
	return e, nil
}

func participantsFromItem(item *etree.Element) []event.Participant {
	var out []event.Participant

	if org := child(item, "Organizer"); org != nil {
		if mb := child(org, "Mailbox"); mb != nil {
			email := childText(mb, "EmailAddress")
			out = append(out, event.Participant{
				ID:          email,
				Name:        nameOrEmail(childText(mb, "Name"), email),
				Email:       email,
				IsOrganizer: true,
			})
		}
	}

	out = append(out, attendees(item, "RequiredAttendees", event.RoleRequired)...)
	out = append(out, attendees(item, "OptionalAttendees", event.RoleOptional)...)
	return out
}

func attendees(item *etree.Element, container string, role event.ParticipantRole) []event.Participant {
	group := child(item, container)
	if group == nil {
		return nil
	}

	var out []event.Participant
	for _, att := range findAll(group, "Attendee") {
		mb := child(att, "Mailbox")
		if mb == nil {
			continue
		}
		email := childText(mb, "EmailAddress")
		out = append(out, event.Participant{
			ID:     email,
			Name:   nameOrEmail(childText(mb, "Name"), email),
			Email:  email,
			Status: responseStatus(childText(att, "ResponseType")),
			Role:   role,
		})
	}
	return out
}

// responseStatus maps EWS ResponseType values onto iCalendar PARTSTAT.
func responseStatus(response string) event.ParticipantStatus {
	switch response {
	case "Accept", "Organizer":
		return event.StatusAccepted
	case "Decline":
		return event.StatusDeclined
	case "Tentative":
		return event.StatusTentative
	case "NoResponseReceived", "Unknown":
		return event.StatusNeedsAction
	default:
		return ""
	}
}

// findAll collects descendants with the given local tag name.
func findAll(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
		out = append(out, findAll(c, tag)...)
	}
	return out
}

// child returns the first descendant with the given local tag name.
func child(el *etree.Element, tag string) *etree.Element {
	all := findAll(el, tag)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

func childText(el *etree.Element, tag string) string {
	if c := child(el, tag); c != nil {
		return c.Text()
	}
	return ""
}

// EWSSource fetches the current month's appointments through a FindItem
// CalendarView request. It satisfies BatchSource.
type EWSSource struct {
	ServerURL string // e.g. https://mail.example.com/EWS/Exchange.asmx
	Email     string
	Password  string
	Client    *http.Client
	Logger    *slog.Logger
	Now       func() time.Time
}

func (s *EWSSource) Fetch(ctx context.Context) ([]event.Event, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	windowStart, windowEnd := monthWindow(now())
	body, err := findItemRequest(windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("build ews request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ServerURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build ews request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.SetBasicAuth(s.Email, s.Password)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ews appointments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ews appointments: unexpected status %s", resp.Status)
	}
	return ParseEWS(resp.Body, s.Logger)
}

// monthWindow spans the first through the last day of now's month.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0).Add(-time.Second)
}

// findItemRequest builds the FindItem SOAP envelope for a calendar view.
func findItemRequest(start, end time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", "http://schemas.xmlsoap.org/soap/envelope/")
	env.CreateAttr("xmlns:t", "http://schemas.microsoft.com/exchange/services/2006/types")
	env.CreateAttr("xmlns:m", "http://schemas.microsoft.com/exchange/services/2006/messages")

	findItem := env.CreateElement("soap:Body").CreateElement("m:FindItem")
	findItem.CreateAttr("Traversal", "Shallow")

	shape := findItem.CreateElement("m:ItemShape")
	shape.CreateElement("t:BaseShape").SetText("AllProperties")

	view := findItem.CreateElement("m:CalendarView")
	view.CreateAttr("StartDate", start.Format(time.RFC3339))
	view.CreateAttr("EndDate", end.Format(time.RFC3339))
	view.CreateAttr("MaxEntriesReturned", "1000")

	folder := findItem.CreateElement("m:ParentFolderIds").CreateElement("t:DistinguishedFolderId")
	folder.CreateAttr("Id", "calendar")

	return doc.WriteToBytes()
}
