package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// SlaViolationRepository persists derived violation records.
//
// The violations table carries a partial unique index on
// (ticket_id, violation_type) WHERE NOT is_resolved, so EnsureOpen is
// idempotent even when two detector passes race past the lock.
type SlaViolationRepository interface {
	EnsureOpen(ctx context.Context, violation *domain.SlaViolation) (created bool, err error)
	GetOpen(ctx context.Context, organizationID, ticketID string, violationType domain.SlaViolationType) (*domain.SlaViolation, error)
	Resolve(ctx context.Context, organizationID, ticketID string, violationType domain.SlaViolationType, actualTime time.Time) error
	ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.SlaViolation, error)
	ListByOrganization(ctx context.Context, organizationID string, onlyOpen bool, limit, offset int) ([]domain.SlaViolation, error)
	CountOpen(ctx context.Context, organizationID string) (int, error)
}

type slaViolationRepository struct {
	pool *pgxpool.Pool
}

// NewSlaViolationRepository builds the repository.
func NewSlaViolationRepository(pool *pgxpool.Pool) SlaViolationRepository {
	return &slaViolationRepository{pool: pool}
}

const violationColumns = `id, organization_id, ticket_id, violation_type,
       expected_time, actual_time, is_resolved, resolved_at, created_at`

// EnsureOpen inserts the open violation if absent. ON CONFLICT DO
// NOTHING keeps re-runs from creating duplicate rows.
func (r *slaViolationRepository) EnsureOpen(ctx context.Context, violation *domain.SlaViolation) (bool, error) {
	const query = `
        INSERT INTO sla_violations (organization_id, ticket_id, violation_type, expected_time)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (ticket_id, violation_type) WHERE NOT is_resolved DO NOTHING
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		violation.OrganizationID,
		violation.TicketID,
		violation.ViolationType,
		violation.ExpectedTime,
	).Scan(&violation.ID, &violation.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *slaViolationRepository) GetOpen(ctx context.Context, organizationID, ticketID string, violationType domain.SlaViolationType) (*domain.SlaViolation, error) {
	query := `SELECT ` + violationColumns + `
        FROM sla_violations
        WHERE organization_id=$1 AND ticket_id=$2 AND violation_type=$3 AND NOT is_resolved`
	return scanViolation(r.pool.QueryRow(ctx, query, organizationID, ticketID, violationType))
}

func (r *slaViolationRepository) Resolve(ctx context.Context, organizationID, ticketID string, violationType domain.SlaViolationType, actualTime time.Time) error {
	const query = `
        UPDATE sla_violations SET is_resolved=true, resolved_at=NOW(), actual_time=$1
        WHERE organization_id=$2 AND ticket_id=$3 AND violation_type=$4 AND NOT is_resolved`
	_, err := r.pool.Exec(ctx, query, actualTime, organizationID, ticketID, violationType)
	return err
}

func (r *slaViolationRepository) ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.SlaViolation, error) {
	query := `SELECT ` + violationColumns + `
        FROM sla_violations WHERE organization_id=$1 AND ticket_id=$2 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanViolations(rows)
}

func (r *slaViolationRepository) ListByOrganization(ctx context.Context, organizationID string, onlyOpen bool, limit, offset int) ([]domain.SlaViolation, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + violationColumns + ` FROM sla_violations WHERE organization_id=$1`
	if onlyOpen {
		query += ` AND NOT is_resolved`
	}
	query += ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanViolations(rows)
}

func (r *slaViolationRepository) CountOpen(ctx context.Context, organizationID string) (int, error) {
	const query = `SELECT COUNT(*) FROM sla_violations WHERE organization_id=$1 AND NOT is_resolved`
	var count int
	err := r.pool.QueryRow(ctx, query, organizationID).Scan(&count)
	return count, err
}

func scanViolation(row pgx.Row) (*domain.SlaViolation, error) {
	var v domain.SlaViolation
	if err := row.Scan(
		&v.ID,
		&v.OrganizationID,
		&v.TicketID,
		&v.ViolationType,
		&v.ExpectedTime,
		&v.ActualTime,
		&v.IsResolved,
		&v.ResolvedAt,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanViolations(rows pgx.Rows) ([]domain.SlaViolation, error) {
	var result []domain.SlaViolation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}
