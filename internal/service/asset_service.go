package service

import (
	"context"
	"strings"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// AssetService tracks client hardware and software records.
type AssetService struct {
	assets  repository.AssetRepository
	clients repository.ClientRepository
	audit   *AuditService
}

func NewAssetService(assetRepo repository.AssetRepository, clientRepo repository.ClientRepository, audit *AuditService) *AssetService {
	return &AssetService{assets: assetRepo, clients: clientRepo, audit: audit}
}

// CreateAsset registers an asset under a client.
func (s *AssetService) CreateAsset(ctx context.Context, actor domain.SubjectType, actorID *string, asset *domain.Asset) (*domain.Asset, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	asset.Name = strings.TrimSpace(asset.Name)
	if asset.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if _, err := s.clients.GetByID(ctx, orgID, asset.ClientID); err != nil {
		return nil, err
	}
	asset.OrganizationID = orgID
	if asset.Status == "" {
		asset.Status = domain.AssetStatusActive
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "asset.created", "asset", asset.ID,
		nil, map[string]any{"client_id": asset.ClientID, "name": asset.Name}, actor, actorID)
	return asset, nil
}

// UpdateAsset persists asset changes.
func (s *AssetService) UpdateAsset(ctx context.Context, actor domain.SubjectType, actorID *string, asset *domain.Asset) (*domain.Asset, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.assets.GetByID(ctx, orgID, asset.ID)
	if err != nil {
		return nil, err
	}
	asset.OrganizationID = orgID
	asset.ClientID = current.ClientID
	if err := s.assets.Update(ctx, asset); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "asset.updated", "asset", asset.ID,
		map[string]any{"status": current.Status}, map[string]any{"status": asset.Status}, actor, actorID)
	return asset, nil
}

// GetAsset fetches one asset.
func (s *AssetService) GetAsset(ctx context.Context, id string) (*domain.Asset, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.assets.GetByID(ctx, orgID, id)
}

// ListAssets lists a client's assets.
func (s *AssetService) ListAssets(ctx context.Context, clientID string) ([]domain.Asset, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.assets.ListByClient(ctx, orgID, clientID)
}
