package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// ClientRepository persists serviced companies and portal logins.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.Client, error)
	List(ctx context.Context, organizationID string, limit, offset int) ([]domain.Client, error)

	CreateUser(ctx context.Context, user *domain.ClientUser) error
	GetUserByEmail(ctx context.Context, email string) (*domain.ClientUser, error)
	GetUserByID(ctx context.Context, organizationID, id string) (*domain.ClientUser, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, organization_id, name, contact_name, contact_email, contact_phone, address, portal_enabled, is_active, created_at, updated_at`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (organization_id, name, contact_name, contact_email, contact_phone, address, portal_enabled, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		client.OrganizationID,
		client.Name,
		client.ContactName,
		client.ContactEmail,
		client.ContactPhone,
		client.Address,
		client.PortalEnabled,
		client.IsActive,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET name=$1, contact_name=$2, contact_email=$3, contact_phone=$4,
            address=$5, portal_enabled=$6, is_active=$7, updated_at=NOW()
        WHERE id=$8 AND organization_id=$9`
	cmd, err := r.pool.Exec(ctx, query,
		client.Name,
		client.ContactName,
		client.ContactEmail,
		client.ContactPhone,
		client.Address,
		client.PortalEnabled,
		client.IsActive,
		client.ID,
		client.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id=$1 AND organization_id=$2`
	return scanClient(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *clientRepository) List(ctx context.Context, organizationID string, limit, offset int) ([]domain.Client, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE organization_id=$1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *client)
	}
	return result, rows.Err()
}

const clientUserColumns = `id, organization_id, client_id, name, email, phone, password_hash, is_active, created_at, updated_at`

func (r *clientRepository) CreateUser(ctx context.Context, user *domain.ClientUser) error {
	const query = `
        INSERT INTO client_users (organization_id, client_id, name, email, phone, password_hash, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.OrganizationID,
		user.ClientID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *clientRepository) GetUserByEmail(ctx context.Context, email string) (*domain.ClientUser, error) {
	query := `SELECT ` + clientUserColumns + ` FROM client_users WHERE email=$1`
	return scanClientUser(r.pool.QueryRow(ctx, query, email))
}

func (r *clientRepository) GetUserByID(ctx context.Context, organizationID, id string) (*domain.ClientUser, error) {
	query := `SELECT ` + clientUserColumns + ` FROM client_users WHERE id=$1 AND organization_id=$2`
	return scanClientUser(r.pool.QueryRow(ctx, query, id, organizationID))
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var client domain.Client
	if err := row.Scan(
		&client.ID,
		&client.OrganizationID,
		&client.Name,
		&client.ContactName,
		&client.ContactEmail,
		&client.ContactPhone,
		&client.Address,
		&client.PortalEnabled,
		&client.IsActive,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &client, nil
}

func scanClientUser(row pgx.Row) (*domain.ClientUser, error) {
	var user domain.ClientUser
	if err := row.Scan(
		&user.ID,
		&user.OrganizationID,
		&user.ClientID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
