package domain

import "time"

// Comment is a sanitized audit note attached to a ticket.
type Comment struct {
	ID         string
	TicketID   string
	TicketType TicketType
	ProjectID  string
	Body       string
	Author     string
	CreatedAt  time.Time
	AccountID  int64
}
