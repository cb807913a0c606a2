package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// ClientService manages serviced clients and their contracts.
type ClientService struct {
	clients   repository.ClientRepository
	contracts repository.ContractRepository
	audit     *AuditService
}

func NewClientService(clientRepo repository.ClientRepository, contractRepo repository.ContractRepository, audit *AuditService) *ClientService {
	return &ClientService{clients: clientRepo, contracts: contractRepo, audit: audit}
}

// CreateClient registers a new client.
func (s *ClientService) CreateClient(ctx context.Context, actor domain.SubjectType, actorID *string, client *domain.Client) (*domain.Client, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	client.OrganizationID = orgID
	client.IsActive = true
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "client.created", "client", client.ID,
		nil, map[string]any{"name": client.Name}, actor, actorID)
	return client, nil
}

// UpdateClient persists changes to a client.
func (s *ClientService) UpdateClient(ctx context.Context, actor domain.SubjectType, actorID *string, client *domain.Client) (*domain.Client, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.clients.GetByID(ctx, orgID, client.ID)
	if err != nil {
		return nil, err
	}
	client.OrganizationID = orgID
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "client.updated", "client", client.ID,
		map[string]any{"name": current.Name, "is_active": current.IsActive},
		map[string]any{"name": client.Name, "is_active": client.IsActive},
		actor, actorID)
	return client, nil
}

// GetClient fetches one client.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.clients.GetByID(ctx, orgID, id)
}

// ListClients lists clients in scope.
func (s *ClientService) ListClients(ctx context.Context, limit, offset int) ([]domain.Client, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.clients.List(ctx, orgID, limit, offset)
}

// CreateContract adds a billing contract for a client.
func (s *ClientService) CreateContract(ctx context.Context, actor domain.SubjectType, actorID *string, contract *domain.Contract) (*domain.Contract, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.GetByID(ctx, orgID, contract.ClientID); err != nil {
		return nil, err
	}
	if contract.BillingModel == domain.BillingModelHourly && contract.HourlyRateCents <= 0 {
		return nil, apperrors.NewValidationError("hourly contract requires a positive rate", nil)
	}
	if contract.EndDate != nil && !contract.EndDate.After(contract.StartDate) {
		return nil, apperrors.NewValidationError("end date must be after start date", nil)
	}
	contract.OrganizationID = orgID
	if contract.Status == "" {
		contract.Status = domain.ContractStatusActive
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "contract.created", "contract", contract.ID,
		nil, map[string]any{"client_id": contract.ClientID, "billing_model": contract.BillingModel}, actor, actorID)
	return contract, nil
}

// UpdateContract persists contract changes.
func (s *ClientService) UpdateContract(ctx context.Context, actor domain.SubjectType, actorID *string, contract *domain.Contract) (*domain.Contract, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.contracts.GetByID(ctx, orgID, contract.ID)
	if err != nil {
		return nil, err
	}
	contract.OrganizationID = orgID
	contract.ClientID = current.ClientID
	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "contract.updated", "contract", contract.ID,
		map[string]any{"status": current.Status}, map[string]any{"status": contract.Status}, actor, actorID)
	return contract, nil
}

// GetContract fetches one contract.
func (s *ClientService) GetContract(ctx context.Context, id string) (*domain.Contract, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.contracts.GetByID(ctx, orgID, id)
}

// ListContracts lists a client's contracts.
func (s *ClientService) ListContracts(ctx context.Context, clientID string) ([]domain.Contract, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.contracts.ListByClient(ctx, orgID, clientID)
}

// ExpireContracts flips active contracts whose end date has passed.
// Run periodically alongside the SLA pass.
func (s *ClientService) ExpireContracts(ctx context.Context, now time.Time) error {
	return s.contracts.ExpireEnded(ctx, now)
}
