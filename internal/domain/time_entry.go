package domain

import "time"

// TimeEntry records work logged against a ticket.
type TimeEntry struct {
	ID             string
	OrganizationID string
	TicketID       string
	UserID         string
	Description    string
	StartedAt      time.Time
	Minutes        int
	Billable       bool
	Billed         bool
	InvoiceID      *string
	CreatedAt      time.Time
}
