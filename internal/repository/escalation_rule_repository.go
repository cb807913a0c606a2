package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// EscalationRuleRepository persists escalation policy rules.
type EscalationRuleRepository interface {
	Create(ctx context.Context, rule *domain.EscalationRule) error
	Update(ctx context.Context, rule *domain.EscalationRule) error
	Deactivate(ctx context.Context, organizationID, id string) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.EscalationRule, error)
	ListActive(ctx context.Context, organizationID string, trigger domain.EscalationTriggerType) ([]domain.EscalationRule, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.EscalationRule, error)
}

type escalationRuleRepository struct {
	pool *pgxpool.Pool
}

// NewEscalationRuleRepository builds the repository.
func NewEscalationRuleRepository(pool *pgxpool.Pool) EscalationRuleRepository {
	return &escalationRuleRepository{pool: pool}
}

const escalationRuleColumns = `id, organization_id, name, trigger_type, action_type,
       trigger_hours, trigger_priority, trigger_status,
       recipients, target_user_id, target_role, new_priority,
       is_active, created_at, updated_at`

func (r *escalationRuleRepository) Create(ctx context.Context, rule *domain.EscalationRule) error {
	const query = `
        INSERT INTO escalation_rules (organization_id, name, trigger_type, action_type,
            trigger_hours, trigger_priority, trigger_status,
            recipients, target_user_id, target_role, new_priority, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.OrganizationID,
		rule.Name,
		rule.TriggerType,
		rule.ActionType,
		rule.TriggerHours,
		rule.TriggerPriority,
		rule.TriggerStatus,
		rule.Recipients,
		rule.TargetUserID,
		rule.TargetRole,
		rule.NewPriority,
		rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *escalationRuleRepository) Update(ctx context.Context, rule *domain.EscalationRule) error {
	const query = `
        UPDATE escalation_rules SET name=$1, trigger_type=$2, action_type=$3,
            trigger_hours=$4, trigger_priority=$5, trigger_status=$6,
            recipients=$7, target_user_id=$8, target_role=$9, new_priority=$10,
            is_active=$11, updated_at=NOW()
        WHERE id=$12 AND organization_id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		rule.Name,
		rule.TriggerType,
		rule.ActionType,
		rule.TriggerHours,
		rule.TriggerPriority,
		rule.TriggerStatus,
		rule.Recipients,
		rule.TargetUserID,
		rule.TargetRole,
		rule.NewPriority,
		rule.IsActive,
		rule.ID,
		rule.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *escalationRuleRepository) Deactivate(ctx context.Context, organizationID, id string) error {
	const query = `UPDATE escalation_rules SET is_active=false, updated_at=NOW() WHERE id=$1 AND organization_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, organizationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *escalationRuleRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.EscalationRule, error) {
	query := `SELECT ` + escalationRuleColumns + ` FROM escalation_rules WHERE id=$1 AND organization_id=$2`
	return scanEscalationRule(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *escalationRuleRepository) ListActive(ctx context.Context, organizationID string, trigger domain.EscalationTriggerType) ([]domain.EscalationRule, error) {
	query := `SELECT ` + escalationRuleColumns + `
        FROM escalation_rules
        WHERE organization_id=$1 AND trigger_type=$2 AND is_active=true
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID, trigger)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalationRules(rows)
}

func (r *escalationRuleRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.EscalationRule, error) {
	query := `SELECT ` + escalationRuleColumns + `
        FROM escalation_rules WHERE organization_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEscalationRules(rows)
}

func scanEscalationRule(row pgx.Row) (*domain.EscalationRule, error) {
	var rule domain.EscalationRule
	if err := row.Scan(
		&rule.ID,
		&rule.OrganizationID,
		&rule.Name,
		&rule.TriggerType,
		&rule.ActionType,
		&rule.TriggerHours,
		&rule.TriggerPriority,
		&rule.TriggerStatus,
		&rule.Recipients,
		&rule.TargetUserID,
		&rule.TargetRole,
		&rule.NewPriority,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func scanEscalationRules(rows pgx.Rows) ([]domain.EscalationRule, error) {
	var result []domain.EscalationRule
	for rows.Next() {
		rule, err := scanEscalationRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}
	return result, rows.Err()
}
