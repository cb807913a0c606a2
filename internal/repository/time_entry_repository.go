package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// TimeEntryRepository persists logged work.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.TimeEntry, error)
	ListUnbilled(ctx context.Context, tx pgx.Tx, organizationID, clientID string, from, to time.Time) ([]domain.TimeEntry, error)
	MarkBilled(ctx context.Context, tx pgx.Tx, entryIDs []string, invoiceID string) error
}

type timeEntryRepository struct {
	pool *pgxpool.Pool
}

// NewTimeEntryRepository builds repository.
func NewTimeEntryRepository(pool *pgxpool.Pool) TimeEntryRepository {
	return &timeEntryRepository{pool: pool}
}

const timeEntryColumns = `id, organization_id, ticket_id, user_id, description, started_at, minutes, billable, billed, invoice_id, created_at`

func (r *timeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        INSERT INTO time_entries (organization_id, ticket_id, user_id, description, started_at, minutes, billable)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.OrganizationID,
		entry.TicketID,
		entry.UserID,
		entry.Description,
		entry.StartedAt,
		entry.Minutes,
		entry.Billable,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timeEntryRepository) ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + `
        FROM time_entries WHERE organization_id=$1 AND ticket_id=$2 ORDER BY started_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimeEntries(rows)
}

// ListUnbilled reads inside the invoicing transaction with FOR UPDATE
// so two concurrent invoice runs cannot bill the same entry twice.
func (r *timeEntryRepository) ListUnbilled(ctx context.Context, tx pgx.Tx, organizationID, clientID string, from, to time.Time) ([]domain.TimeEntry, error) {
	query := `SELECT ` + timeEntryColumns + `
        FROM time_entries te
        WHERE te.organization_id=$1 AND te.billable AND NOT te.billed
          AND te.started_at >= $3 AND te.started_at < $4
          AND te.ticket_id IN (SELECT id FROM tickets WHERE organization_id=$1 AND client_id=$2)
        ORDER BY te.started_at ASC
        FOR UPDATE`
	rows, err := tx.Query(ctx, query, organizationID, clientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTimeEntries(rows)
}

func (r *timeEntryRepository) MarkBilled(ctx context.Context, tx pgx.Tx, entryIDs []string, invoiceID string) error {
	const query = `UPDATE time_entries SET billed=true, invoice_id=$1 WHERE id = ANY($2)`
	_, err := tx.Exec(ctx, query, invoiceID, entryIDs)
	return err
}

func scanTimeEntries(rows pgx.Rows) ([]domain.TimeEntry, error) {
	var result []domain.TimeEntry
	for rows.Next() {
		var entry domain.TimeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.OrganizationID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Description,
			&entry.StartedAt,
			&entry.Minutes,
			&entry.Billable,
			&entry.Billed,
			&entry.InvoiceID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
