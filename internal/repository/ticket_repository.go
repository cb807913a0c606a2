package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const ticketColumns = `id, organization_id, external_key, client_id, asset_id, assigned_to,
       subject, description, status, priority, type, due_date,
       responded_at, resolved_at, closed_at, created_at, updated_at`

// TicketFilter captures search parameters for ticket listings.
type TicketFilter struct {
	ClientID    *string
	AssignedTo  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Types       []domain.TicketType
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, organizationID string, filter TicketFilter) ([]domain.Ticket, error)
	ListOpenForSla(ctx context.Context, organizationID string, limit int) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, organizationID string) (map[domain.TicketStatus]int, error)
	CountByPriority(ctx context.Context, organizationID string) (map[domain.TicketPriority]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (organization_id, external_key, client_id, asset_id, assigned_to,
            subject, description, status, priority, type, due_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OrganizationID,
		ticket.ExternalKey,
		ticket.ClientID,
		ticket.AssetID,
		ticket.AssignedTo,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.DueDate,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET asset_id=$1, assigned_to=$2, subject=$3, description=$4,
            status=$5, priority=$6, type=$7, due_date=$8,
            responded_at=$9, resolved_at=$10, closed_at=$11, updated_at=NOW()
        WHERE id=$12 AND organization_id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssetID,
		ticket.AssignedTo,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Type,
		ticket.DueDate,
		ticket.RespondedAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
		ticket.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1 AND organization_id=$2`
	row := r.pool.QueryRow(ctx, query, id, organizationID)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, organizationID string, filter TicketFilter) ([]domain.Ticket, error) {
	builder := psql.Select(ticketColumns).From("tickets").
		Where(sq.Eq{"organization_id": organizationID})

	if filter.ClientID != nil {
		builder = builder.Where(sq.Eq{"client_id": *filter.ClientID})
	}
	if filter.AssignedTo != nil {
		builder = builder.Where(sq.Eq{"assigned_to": *filter.AssignedTo})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if len(filter.Priorities) > 0 {
		builder = builder.Where(sq.Eq{"priority": filter.Priorities})
	}
	if len(filter.Types) > 0 {
		builder = builder.Where(sq.Eq{"type": filter.Types})
	}
	if filter.CreatedFrom != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.CreatedFrom})
	}
	if filter.CreatedTo != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.CreatedTo})
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		like := "%" + *filter.SearchTerm + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"subject": like},
			sq.ILike{"description": like},
		})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder = builder.OrderBy("updated_at DESC").Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListOpenForSla returns non-terminal tickets for a detector pass.
func (r *ticketRepository) ListOpenForSla(ctx context.Context, organizationID string, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT ` + ticketColumns + `
        FROM tickets
        WHERE organization_id=$1 AND status NOT IN ('resolved','closed')
        ORDER BY created_at ASC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, organizationID string) (map[domain.TicketStatus]int, error) {
	const query = `SELECT status, COUNT(*) FROM tickets WHERE organization_id=$1 GROUP BY status`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var status domain.TicketStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByPriority(ctx context.Context, organizationID string) (map[domain.TicketPriority]int, error) {
	const query = `SELECT priority, COUNT(*) FROM tickets WHERE organization_id=$1 GROUP BY priority`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.TicketPriority]int)
	for rows.Next() {
		var priority domain.TicketPriority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		result[priority] = count
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OrganizationID,
		&ticket.ExternalKey,
		&ticket.ClientID,
		&ticket.AssetID,
		&ticket.AssignedTo,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Type,
		&ticket.DueDate,
		&ticket.RespondedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
