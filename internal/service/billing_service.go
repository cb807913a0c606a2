package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// BillingService turns unbilled billable time into invoices. Line
// amounts are computed in integer cents; rounding on each line is
// toward zero so a generated invoice total is the exact sum of its
// lines.
type BillingService struct {
	invoices    repository.InvoiceRepository
	timeEntries repository.TimeEntryRepository
	contracts   repository.ContractRepository
	clients     repository.ClientRepository
	audit       *AuditService
}

func NewBillingService(invoiceRepo repository.InvoiceRepository, timeEntryRepo repository.TimeEntryRepository, contractRepo repository.ContractRepository, clientRepo repository.ClientRepository, audit *AuditService) *BillingService {
	return &BillingService{
		invoices:    invoiceRepo,
		timeEntries: timeEntryRepo,
		contracts:   contractRepo,
		clients:     clientRepo,
		audit:       audit,
	}
}

// GenerateInvoice bills all unbilled billable time for a client in the
// period against the client's active hourly contract. The selection,
// invoice insert, and billed-flag update run in one transaction, so an
// entry can never land on two invoices.
func (s *BillingService) GenerateInvoice(ctx context.Context, actor domain.SubjectType, actorID *string, clientID string, periodStart, periodEnd time.Time) (*domain.Invoice, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if !periodEnd.After(periodStart) {
		return nil, apperrors.NewValidationError("period end must be after period start", nil)
	}
	if _, err := s.clients.GetByID(ctx, orgID, clientID); err != nil {
		return nil, err
	}
	contract, err := s.contracts.GetActiveForClient(ctx, orgID, clientID)
	if err != nil {
		return nil, err
	}
	if contract.BillingModel != domain.BillingModelHourly {
		return nil, apperrors.NewConflict("active contract is not hourly billed", map[string]any{
			"billing_model": contract.BillingModel,
		})
	}

	tx, err := s.invoices.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	entries, err := s.timeEntries.ListUnbilled(ctx, tx, orgID, clientID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, apperrors.NewConflict("no unbilled billable time in period", nil)
	}

	invoice := &domain.Invoice{
		OrganizationID: orgID,
		ClientID:       clientID,
		ContractID:     contract.ID,
		Number:         invoiceNumber(time.Now().UTC()),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		Status:         domain.InvoiceStatusDraft,
	}
	entryIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		amount := int64(entry.Minutes) * contract.HourlyRateCents / 60
		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			TimeEntryID: entry.ID,
			TicketID:    entry.TicketID,
			Description: entry.Description,
			Minutes:     entry.Minutes,
			RateCents:   contract.HourlyRateCents,
			AmountCents: amount,
		})
		invoice.TotalCents += amount
		entryIDs = append(entryIDs, entry.ID)
	}

	if err := s.invoices.CreateInTx(ctx, tx, invoice); err != nil {
		return nil, err
	}
	if err := s.timeEntries.MarkBilled(ctx, tx, entryIDs, invoice.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, orgID, "invoice.generated", "invoice", invoice.ID,
		nil, map[string]any{
			"client_id":   clientID,
			"total_cents": invoice.TotalCents,
			"line_count":  len(invoice.Lines),
		}, actor, actorID)
	return invoice, nil
}

// GetInvoice fetches one invoice with lines.
func (s *BillingService) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, orgID, id)
}

// ListInvoices lists invoices in scope.
func (s *BillingService) ListInvoices(ctx context.Context, limit, offset int) ([]domain.Invoice, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.invoices.ListByOrganization(ctx, orgID, limit, offset)
}

func invoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%d", now.Format("200601"), now.UnixNano()%1_000_000)
}
