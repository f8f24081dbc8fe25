package events

import (
	"time"

	"github.com/spec-kit/bug-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketChanged EventType = "ticket_changed"
)

// Event sources.
const (
	SourceReopenWorkflow = "reopen_workflow"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Username  string `json:"username"`
	AccountID int64  `json:"account_id"`
}

// Event carries only the changed identifier; subscribers re-fetch state as needed.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	TicketID   string            `json:"ticket_id"`
	TicketType domain.TicketType `json:"ticket_type"`
	Source     string            `json:"source"`
	Actor      Actor             `json:"actor"`
	Timestamp  time.Time         `json:"timestamp"`
}

// TicketChanged builds the event announcing that a ticket was modified.
func TicketChanged(ticketID string, ticketType domain.TicketType, source string, actor domain.Actor) Event {
	return Event{
		Type:       EventTicketChanged,
		TicketID:   ticketID,
		TicketType: ticketType,
		Source:     source,
		Actor:      Actor{Username: actor.Username, AccountID: actor.AccountID},
	}
}
