package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// SmsRepository persists queued SMS notifications.
type SmsRepository interface {
	Enqueue(ctx context.Context, sms *domain.SmsNotification) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.SmsNotification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) error
	MarkRetry(ctx context.Context, id string, retryCount int, nextRetryAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
}

type smsRepository struct {
	pool *pgxpool.Pool
}

// NewSmsRepository builds repository.
func NewSmsRepository(pool *pgxpool.Pool) SmsRepository {
	return &smsRepository{pool: pool}
}

const smsColumns = `id, organization_id, ticket_id, recipient, body, status, retry_count, next_retry_at, last_error, sent_at, created_at, updated_at`

func (r *smsRepository) Enqueue(ctx context.Context, sms *domain.SmsNotification) error {
	const query = `
        INSERT INTO sms_notifications (organization_id, ticket_id, recipient, body, status, next_retry_at)
        VALUES ($1,$2,$3,$4,'pending',NOW())
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		sms.OrganizationID,
		sms.TicketID,
		sms.Recipient,
		sms.Body,
	).Scan(&sms.ID, &sms.CreatedAt, &sms.UpdatedAt)
}

// ListDue returns pending messages whose retry window has arrived,
// across all tenants; delivery is tenant-neutral.
func (r *smsRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.SmsNotification, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + smsColumns + `
        FROM sms_notifications
        WHERE status='pending' AND (next_retry_at IS NULL OR next_retry_at <= $1)
        ORDER BY created_at ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSmsList(rows)
}

func (r *smsRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	const query = `UPDATE sms_notifications SET status='sent', sent_at=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, sentAt, id)
	return err
}

func (r *smsRepository) MarkRetry(ctx context.Context, id string, retryCount int, nextRetryAt time.Time, lastError string) error {
	const query = `
        UPDATE sms_notifications SET retry_count=$1, next_retry_at=$2, last_error=$3, updated_at=NOW()
        WHERE id=$4`
	_, err := r.pool.Exec(ctx, query, retryCount, nextRetryAt, lastError, id)
	return err
}

func (r *smsRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	const query = `
        UPDATE sms_notifications SET status='failed', last_error=$1, next_retry_at=NULL, updated_at=NOW()
        WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, lastError, id)
	return err
}

func scanSmsList(rows pgx.Rows) ([]domain.SmsNotification, error) {
	var result []domain.SmsNotification
	for rows.Next() {
		var sms domain.SmsNotification
		if err := rows.Scan(
			&sms.ID,
			&sms.OrganizationID,
			&sms.TicketID,
			&sms.Recipient,
			&sms.Body,
			&sms.Status,
			&sms.RetryCount,
			&sms.NextRetryAt,
			&sms.LastError,
			&sms.SentAt,
			&sms.CreatedAt,
			&sms.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sms)
	}
	return result, rows.Err()
}
