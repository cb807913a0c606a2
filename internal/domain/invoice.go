package domain

import "time"

// InvoiceStatus enumerates invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
	InvoiceStatusVoid  InvoiceStatus = "void"
)

// Invoice aggregates billable time for a client over a period.
// Money is carried in integer cents.
type Invoice struct {
	ID             string
	OrganizationID string
	ClientID       string
	ContractID     string
	Number         string
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalCents     int64
	Status         InvoiceStatus
	Lines          []InvoiceLine
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// InvoiceLine prices one time entry on an invoice.
type InvoiceLine struct {
	ID          string
	InvoiceID   string
	TimeEntryID string
	TicketID    string
	Description string
	Minutes     int
	RateCents   int64
	AmountCents int64
}
