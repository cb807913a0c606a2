package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// ContractRepository persists billing contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	Update(ctx context.Context, contract *domain.Contract) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.Contract, error)
	GetActiveForClient(ctx context.Context, organizationID, clientID string) (*domain.Contract, error)
	ListByClient(ctx context.Context, organizationID, clientID string) ([]domain.Contract, error)
	ExpireEnded(ctx context.Context, now time.Time) error
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository instantiates repository.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

const contractColumns = `id, organization_id, client_id, name, billing_model, hourly_rate_cents, start_date, end_date, status, created_at, updated_at`

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	const query = `
        INSERT INTO contracts (organization_id, client_id, name, billing_model, hourly_rate_cents, start_date, end_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contract.OrganizationID,
		contract.ClientID,
		contract.Name,
		contract.BillingModel,
		contract.HourlyRateCents,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
}

func (r *contractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	const query = `
        UPDATE contracts SET name=$1, billing_model=$2, hourly_rate_cents=$3,
            start_date=$4, end_date=$5, status=$6, updated_at=NOW()
        WHERE id=$7 AND organization_id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		contract.Name,
		contract.BillingModel,
		contract.HourlyRateCents,
		contract.StartDate,
		contract.EndDate,
		contract.Status,
		contract.ID,
		contract.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contractRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id=$1 AND organization_id=$2`
	return scanContract(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *contractRepository) GetActiveForClient(ctx context.Context, organizationID, clientID string) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + `
        FROM contracts
        WHERE organization_id=$1 AND client_id=$2 AND status='active'
        ORDER BY start_date DESC LIMIT 1`
	return scanContract(r.pool.QueryRow(ctx, query, organizationID, clientID))
}

func (r *contractRepository) ListByClient(ctx context.Context, organizationID, clientID string) ([]domain.Contract, error) {
	query := `SELECT ` + contractColumns + `
        FROM contracts WHERE organization_id=$1 AND client_id=$2 ORDER BY start_date DESC`
	rows, err := r.pool.Query(ctx, query, organizationID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contract)
	}
	return result, rows.Err()
}

func (r *contractRepository) ExpireEnded(ctx context.Context, now time.Time) error {
	const query = `
        UPDATE contracts SET status='expired', updated_at=NOW()
        WHERE status='active' AND end_date IS NOT NULL AND end_date < $1`
	_, err := r.pool.Exec(ctx, query, now)
	return err
}

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var contract domain.Contract
	if err := row.Scan(
		&contract.ID,
		&contract.OrganizationID,
		&contract.ClientID,
		&contract.Name,
		&contract.BillingModel,
		&contract.HourlyRateCents,
		&contract.StartDate,
		&contract.EndDate,
		&contract.Status,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contract, nil
}
