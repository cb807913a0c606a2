package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// ErrNoDefinition marks the defined "no SLA applies" condition for a
// (priority, ticket type) pair with no active definition.
var ErrNoDefinition = errors.New("no matching sla definition")

// SlaDefinitionRepository persists SLA policy definitions.
type SlaDefinitionRepository interface {
	Create(ctx context.Context, def *domain.SlaDefinition) error
	Update(ctx context.Context, def *domain.SlaDefinition) error
	Deactivate(ctx context.Context, organizationID, id string) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.SlaDefinition, error)
	GetActive(ctx context.Context, organizationID string, priority domain.TicketPriority, ticketType domain.TicketType) (*domain.SlaDefinition, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.SlaDefinition, error)
}

type slaDefinitionRepository struct {
	pool *pgxpool.Pool
}

// NewSlaDefinitionRepository builds the repository.
func NewSlaDefinitionRepository(pool *pgxpool.Pool) SlaDefinitionRepository {
	return &slaDefinitionRepository{pool: pool}
}

const slaDefinitionColumns = `id, organization_id, priority, ticket_type,
       response_time_hours, resolution_time_hours,
       business_hours_start, business_hours_end, business_days, holidays,
       is_active, created_at, updated_at`

func (r *slaDefinitionRepository) Create(ctx context.Context, def *domain.SlaDefinition) error {
	const query = `
        INSERT INTO sla_definitions (organization_id, priority, ticket_type,
            response_time_hours, resolution_time_hours,
            business_hours_start, business_hours_end, business_days, holidays, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		def.OrganizationID,
		def.Priority,
		def.TicketType,
		def.ResponseTimeHours,
		def.ResolutionTimeHours,
		def.BusinessHoursStart,
		def.BusinessHoursEnd,
		def.BusinessDays,
		def.Holidays,
		def.IsActive,
	).Scan(&def.ID, &def.CreatedAt, &def.UpdatedAt)
}

func (r *slaDefinitionRepository) Update(ctx context.Context, def *domain.SlaDefinition) error {
	const query = `
        UPDATE sla_definitions SET response_time_hours=$1, resolution_time_hours=$2,
            business_hours_start=$3, business_hours_end=$4, business_days=$5, holidays=$6,
            is_active=$7, updated_at=NOW()
        WHERE id=$8 AND organization_id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		def.ResponseTimeHours,
		def.ResolutionTimeHours,
		def.BusinessHoursStart,
		def.BusinessHoursEnd,
		def.BusinessDays,
		def.Holidays,
		def.IsActive,
		def.ID,
		def.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaDefinitionRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	const query = `UPDATE sla_definitions SET is_active=false, updated_at=NOW() WHERE id=$1 AND organization_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, organizationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaDefinitionRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.SlaDefinition, error) {
	query := `SELECT ` + slaDefinitionColumns + ` FROM sla_definitions WHERE id=$1 AND organization_id=$2`
	return r.fetchSingle(ctx, query, id, organizationID)
}

func (r *slaDefinitionRepository) GetActive(ctx context.Context, organizationID string, priority domain.TicketPriority, ticketType domain.TicketType) (*domain.SlaDefinition, error) {
	query := `SELECT ` + slaDefinitionColumns + `
        FROM sla_definitions
        WHERE organization_id=$1 AND priority=$2 AND ticket_type=$3 AND is_active=true`
	def, err := r.fetchSingle(ctx, query, organizationID, priority, ticketType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoDefinition
	}
	return def, err
}

func (r *slaDefinitionRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.SlaDefinition, error) {
	query := `SELECT ` + slaDefinitionColumns + `
        FROM sla_definitions WHERE organization_id=$1 ORDER BY priority, ticket_type`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SlaDefinition
	for rows.Next() {
		def, err := scanSlaDefinition(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *def)
	}
	return result, rows.Err()
}

func (r *slaDefinitionRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.SlaDefinition, error) {
	return scanSlaDefinition(r.pool.QueryRow(ctx, query, args...))
}

func scanSlaDefinition(row pgx.Row) (*domain.SlaDefinition, error) {
	var def domain.SlaDefinition
	if err := row.Scan(
		&def.ID,
		&def.OrganizationID,
		&def.Priority,
		&def.TicketType,
		&def.ResponseTimeHours,
		&def.ResolutionTimeHours,
		&def.BusinessHoursStart,
		&def.BusinessHoursEnd,
		&def.BusinessDays,
		&def.Holidays,
		&def.IsActive,
		&def.CreatedAt,
		&def.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &def, nil
}
