package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/brokeriq/renewal-monitor/internal/domain"
)

// FetchCalendarEvents lists events from the primary calendar going back
// lookbackDays, with attendee addresses extracted and lowercased.
func (c *Connector) FetchCalendarEvents(ctx context.Context, lookbackDays int) ([]domain.CalendarEvent, error) {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	timeMin := time.Now().AddDate(0, 0, -lookbackDays)

	call := c.calendar.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}

	events := make([]domain.CalendarEvent, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, toCalendarEvent(item))
	}
	return events, nil
}

func toCalendarEvent(item *calendar.Event) domain.CalendarEvent {
	ev := domain.CalendarEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Start:       eventTime(item.Start),
		End:         eventTime(item.End),
	}
	for _, a := range item.Attendees {
		if a.Email != "" {
			ev.Attendees = append(ev.Attendees, strings.ToLower(a.Email))
		}
	}
	return ev
}

// eventTime handles both timed events (DateTime) and all-day events (Date).
func eventTime(t *calendar.EventDateTime) time.Time {
	if t == nil {
		return time.Time{}
	}
	if t.DateTime != "" {
		if parsed, err := time.Parse(time.RFC3339, t.DateTime); err == nil {
			return parsed
		}
	}
	if t.Date != "" {
		if parsed, err := time.Parse("2006-01-02", t.Date); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
