package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// EscalationEventRepository records rule firings. Uniqueness on
// (rule_id, ticket_id, occurrence) backs the exactly-once contract.
type EscalationEventRepository interface {
	// RecordOnce inserts the firing record; returns false when the same
	// occurrence was already recorded.
	RecordOnce(ctx context.Context, event *domain.EscalationEvent) (bool, error)
	ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.EscalationEvent, error)
}

type escalationEventRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationEventRepository builds the repository.
func NewEscalationEventRepository(pool *pgxpool.Pool) EscalationEventRepository {
	return &escalationEventRepository{pool: pool}
}

func (r *escalationEventRepository) RecordOnce(ctx context.Context, event *domain.EscalationEvent) (bool, error) {
	const query = `
        INSERT INTO escalation_events (organization_id, rule_id, ticket_id, occurrence)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (rule_id, ticket_id, occurrence) DO NOTHING
        RETURNING id, fired_at`
	err := r.pool.QueryRow(ctx, query,
		event.OrganizationID,
		event.RuleID,
		event.TicketID,
		event.Occurrence,
	).Scan(&event.ID, &event.FiredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *escalationEventRepository) ListByTicket(ctx context.Context, organizationID, ticketID string) ([]domain.EscalationEvent, error) {
	const query = `
        SELECT id, organization_id, rule_id, ticket_id, occurrence, fired_at
        FROM escalation_events WHERE organization_id=$1 AND ticket_id=$2 ORDER BY fired_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.EscalationEvent
	for rows.Next() {
		var event domain.EscalationEvent
		if err := rows.Scan(
			&event.ID,
			&event.OrganizationID,
			&event.RuleID,
			&event.TicketID,
			&event.Occurrence,
			&event.FiredAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
