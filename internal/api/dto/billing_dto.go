package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// GenerateInvoiceRequest bills a client's unbilled time for a period.
type GenerateInvoiceRequest struct {
	ClientID    string    `json:"client_id" validate:"required,uuid4"`
	PeriodStart time.Time `json:"period_start" validate:"required"`
	PeriodEnd   time.Time `json:"period_end" validate:"required"`
}

// InvoiceLineResponse is the wire shape of one invoice line.
type InvoiceLineResponse struct {
	ID          string `json:"id"`
	TimeEntryID string `json:"time_entry_id"`
	TicketID    string `json:"ticket_id"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
	RateCents   int64  `json:"rate_cents"`
	AmountCents int64  `json:"amount_cents"`
}

// InvoiceResponse is the wire shape of an invoice.
type InvoiceResponse struct {
	ID          string                `json:"id"`
	ClientID    string                `json:"client_id"`
	ContractID  string                `json:"contract_id"`
	Number      string                `json:"number"`
	PeriodStart time.Time             `json:"period_start"`
	PeriodEnd   time.Time             `json:"period_end"`
	TotalCents  int64                 `json:"total_cents"`
	Status      string                `json:"status"`
	Lines       []InvoiceLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// InvoiceFromDomain maps an invoice with its lines.
func InvoiceFromDomain(inv *domain.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			ID:          line.ID,
			TimeEntryID: line.TimeEntryID,
			TicketID:    line.TicketID,
			Description: line.Description,
			Minutes:     line.Minutes,
			RateCents:   line.RateCents,
			AmountCents: line.AmountCents,
		})
	}
	return InvoiceResponse{
		ID:          inv.ID,
		ClientID:    inv.ClientID,
		ContractID:  inv.ContractID,
		Number:      inv.Number,
		PeriodStart: inv.PeriodStart,
		PeriodEnd:   inv.PeriodEnd,
		TotalCents:  inv.TotalCents,
		Status:      string(inv.Status),
		Lines:       lines,
		CreatedAt:   inv.CreatedAt,
	}
}
