package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// AssetRepository persists client asset records.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	Update(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, organizationID, id string) (*domain.Asset, error)
	ListByClient(ctx context.Context, organizationID, clientID string) ([]domain.Asset, error)
}

type assetRepository struct {
	pool *pgxpool.Pool
}

// NewAssetRepository builds repository.
func NewAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &assetRepository{pool: pool}
}

const assetColumns = `id, organization_id, client_id, name, asset_type, serial_number, status, attributes, created_at, updated_at`

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	const query = `
        INSERT INTO assets (organization_id, client_id, name, asset_type, serial_number, status, attributes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		asset.OrganizationID,
		asset.ClientID,
		asset.Name,
		asset.AssetType,
		asset.SerialNumber,
		asset.Status,
		asset.Attributes,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
}

func (r *assetRepository) Update(ctx context.Context, asset *domain.Asset) error {
	const query = `
        UPDATE assets SET name=$1, asset_type=$2, serial_number=$3, status=$4, attributes=$5, updated_at=NOW()
        WHERE id=$6 AND organization_id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		asset.Name,
		asset.AssetType,
		asset.SerialNumber,
		asset.Status,
		asset.Attributes,
		asset.ID,
		asset.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *assetRepository) GetByID(ctx context.Context, organizationID, id string) (*domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id=$1 AND organization_id=$2`
	return scanAsset(r.pool.QueryRow(ctx, query, id, organizationID))
}

func (r *assetRepository) ListByClient(ctx context.Context, organizationID, clientID string) ([]domain.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE organization_id=$1 AND client_id=$2 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, organizationID, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *asset)
	}
	return result, rows.Err()
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var asset domain.Asset
	if err := row.Scan(
		&asset.ID,
		&asset.OrganizationID,
		&asset.ClientID,
		&asset.Name,
		&asset.AssetType,
		&asset.SerialNumber,
		&asset.Status,
		&asset.Attributes,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &asset, nil
}
