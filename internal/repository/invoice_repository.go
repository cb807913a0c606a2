package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// InvoiceRepository persists invoices and their lines.
type InvoiceRepository interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.Invoice, error)
	ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]domain.Invoice, error)
}

type invoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository builds repository.
func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

func (r *invoiceRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *invoiceRepository) CreateInTx(ctx context.Context, tx pgx.Tx, invoice *domain.Invoice) error {
	const query = `
        INSERT INTO invoices (organization_id, client_id, contract_id, number, period_start, period_end, total_cents, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		invoice.OrganizationID,
		invoice.ClientID,
		invoice.ContractID,
		invoice.Number,
		invoice.PeriodStart,
		invoice.PeriodEnd,
		invoice.TotalCents,
		invoice.Status,
	).Scan(&invoice.ID, &invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
		return err
	}

	const lineQuery = `
        INSERT INTO invoice_lines (invoice_id, time_entry_id, ticket_id, description, minutes, rate_cents, amount_cents)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	for i := range invoice.Lines {
		line := &invoice.Lines[i]
		line.InvoiceID = invoice.ID
		if err := tx.QueryRow(ctx, lineQuery,
			line.InvoiceID,
			line.TimeEntryID,
			line.TicketID,
			line.Description,
			line.Minutes,
			line.RateCents,
			line.AmountCents,
		).Scan(&line.ID); err != nil {
			return err
		}
	}
	return nil
}

const invoiceColumns = `id, organization_id, client_id, contract_id, number, period_start, period_end, total_cents, status, created_at, updated_at`

func (r *invoiceRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id=$1 AND organization_id=$2`
	invoice, err := scanInvoice(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		return nil, err
	}

	const lineQuery = `
        SELECT id, invoice_id, time_entry_id, ticket_id, description, minutes, rate_cents, amount_cents
        FROM invoice_lines WHERE invoice_id=$1 ORDER BY id`
	rows, err := r.pool.Query(ctx, lineQuery, invoice.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var line domain.InvoiceLine
		if err := rows.Scan(
			&line.ID,
			&line.InvoiceID,
			&line.TimeEntryID,
			&line.TicketID,
			&line.Description,
			&line.Minutes,
			&line.RateCents,
			&line.AmountCents,
		); err != nil {
			return nil, err
		}
		invoice.Lines = append(invoice.Lines, line)
	}
	return invoice, rows.Err()
}

func (r *invoiceRepository) ListByOrganization(ctx context.Context, organizationID string, limit, offset int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + invoiceColumns + `
        FROM invoices WHERE organization_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *invoice)
	}
	return result, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := row.Scan(
		&invoice.ID,
		&invoice.OrganizationID,
		&invoice.ClientID,
		&invoice.ContractID,
		&invoice.Number,
		&invoice.PeriodStart,
		&invoice.PeriodEnd,
		&invoice.TotalCents,
		&invoice.Status,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &invoice, nil
}
