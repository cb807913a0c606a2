package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// AuditFilter captures audit log search parameters.
type AuditFilter struct {
	Action     *string
	EntityType *string
	EntityID   *string
	Severity   *domain.AuditSeverity
	ActorID    *string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// AuditSummary aggregates audit counts for the summary endpoint.
type AuditSummary struct {
	Total      int
	ByAction   map[string]int
	BySeverity map[domain.AuditSeverity]int
}

// AuditRepository persists the audit trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, organizationID string, filter AuditFilter) ([]domain.AuditLog, error)
	Summary(ctx context.Context, organizationID string, from, to time.Time) (*AuditSummary, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

const auditColumns = `id, organization_id, action, entity_type, entity_id, old_values, new_values, severity, actor_type, actor_id, ip_address, session_id, created_at`

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditLog) error {
	const query = `
        INSERT INTO audit_logs (organization_id, action, entity_type, entity_id, old_values, new_values, severity, actor_type, actor_id, ip_address, session_id)
        VALUES (NULLIF($1,'')::uuid,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.OrganizationID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.OldValues,
		entry.NewValues,
		entry.Severity,
		entry.ActorType,
		entry.ActorID,
		entry.IPAddress,
		entry.SessionID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditRepository) List(ctx context.Context, organizationID string, filter AuditFilter) ([]domain.AuditLog, error) {
	builder := psql.Select(auditColumns).From("audit_logs").
		Where(sq.Eq{"organization_id": organizationID})

	if filter.Action != nil {
		builder = builder.Where(sq.Eq{"action": *filter.Action})
	}
	if filter.EntityType != nil {
		builder = builder.Where(sq.Eq{"entity_type": *filter.EntityType})
	}
	if filter.EntityID != nil {
		builder = builder.Where(sq.Eq{"entity_id": *filter.EntityID})
	}
	if filter.Severity != nil {
		builder = builder.Where(sq.Eq{"severity": *filter.Severity})
	}
	if filter.ActorID != nil {
		builder = builder.Where(sq.Eq{"actor_id": *filter.ActorID})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.To})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder = builder.OrderBy("created_at DESC").Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLog
	for rows.Next() {
		entry, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *auditRepository) Summary(ctx context.Context, organizationID string, from, to time.Time) (*AuditSummary, error) {
	summary := &AuditSummary{
		ByAction:   make(map[string]int),
		BySeverity: make(map[domain.AuditSeverity]int),
	}

	const actionQuery = `
        SELECT action, COUNT(*) FROM audit_logs
        WHERE organization_id=$1 AND created_at >= $2 AND created_at <= $3
        GROUP BY action`
	rows, err := r.pool.Query(ctx, actionQuery, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		summary.ByAction[action] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const severityQuery = `
        SELECT severity, COUNT(*) FROM audit_logs
        WHERE organization_id=$1 AND created_at >= $2 AND created_at <= $3
        GROUP BY severity`
	sevRows, err := r.pool.Query(ctx, severityQuery, organizationID, from, to)
	if err != nil {
		return nil, err
	}
	defer sevRows.Close()
	for sevRows.Next() {
		var severity domain.AuditSeverity
		var count int
		if err := sevRows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		summary.BySeverity[severity] = count
	}
	return summary, sevRows.Err()
}

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var entry domain.AuditLog
	if err := row.Scan(
		&entry.ID,
		&entry.OrganizationID,
		&entry.Action,
		&entry.EntityType,
		&entry.EntityID,
		&entry.OldValues,
		&entry.NewValues,
		&entry.Severity,
		&entry.ActorType,
		&entry.ActorID,
		&entry.IPAddress,
		&entry.SessionID,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
