package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// UserRepository persists operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByRole(ctx context.Context, organizationID string, role domain.UserRole) ([]domain.User, error)
	GetManager(ctx context.Context, organizationID, userID string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates repository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, organization_id, name, email, phone, password_hash, role, manager_id, is_active, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (organization_id, name, email, phone, password_hash, role, manager_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		user.OrganizationID,
		user.Name,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.ManagerID,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1 AND organization_id=$2`
	return scanUser(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepository) ListByRole(ctx context.Context, organizationID string, role domain.UserRole) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE organization_id=$1 AND role=$2 AND is_active=true`
	rows, err := r.pool.Query(ctx, query, organizationID, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

// GetManager resolves the manager of the given user.
func (r *userRepository) GetManager(ctx context.Context, organizationID, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + `
        FROM users
        WHERE organization_id=$1 AND id=(SELECT manager_id FROM users WHERE id=$2)`
	return scanUser(r.pool.QueryRow(ctx, query, organizationID, userID))
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.OrganizationID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Role,
		&user.ManagerID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
