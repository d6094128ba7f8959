package domain

import "time"

// EmailMessage is one fetched mailbox message, already enriched by the
// connector with the parsed sender address and its domain. Timestamp is
// milliseconds since epoch (the mail API's internal date).
type EmailMessage struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet"`
	From      string `json:"from"`
	FromEmail string `json:"from_email"`
	Domain    string `json:"domain"`
	Timestamp int64  `json:"timestamp"`
}

// CalendarEvent is one fetched calendar event. Attendees holds bare
// email addresses, lowercased by the connector.
type CalendarEvent struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Attendees   []string  `json:"attendees"`
}

// CommunicationItem is the unified shape the matcher operates on.
// Emails and calendar events both project into it so one rule cascade
// implementation can serve both modes.
type CommunicationItem struct {
	ID        string
	ThreadID  string
	Subject   string
	Body      string
	FromEmail string
	Domain    string
	Attendees []string
	Timestamp int64
}

// Item projects an email into the matcher's unified shape.
func (e EmailMessage) Item() CommunicationItem {
	return CommunicationItem{
		ID:        e.ID,
		ThreadID:  e.ThreadID,
		Subject:   e.Subject,
		Body:      e.Snippet,
		FromEmail: e.FromEmail,
		Domain:    e.Domain,
		Timestamp: e.Timestamp,
	}
}

// Item projects a calendar event into the matcher's unified shape.
// Timestamp is the event start in epoch milliseconds; an event without
// a parseable start carries 0 so it never renders a pre-epoch date.
func (ev CalendarEvent) Item() CommunicationItem {
	it := CommunicationItem{
		ID:        ev.ID,
		Subject:   ev.Summary,
		Body:      ev.Description,
		Attendees: ev.Attendees,
	}
	if !ev.Start.IsZero() {
		it.Timestamp = ev.Start.UnixMilli()
	}
	return it
}
