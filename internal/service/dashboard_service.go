package service

import (
	"context"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
)

// DashboardStats is the operator landing-page aggregate.
type DashboardStats struct {
	TicketsByStatus   map[domain.TicketStatus]int   `json:"tickets_by_status"`
	TicketsByPriority map[domain.TicketPriority]int `json:"tickets_by_priority"`
	OpenViolations    int                           `json:"open_violations"`
}

// DashboardService aggregates counters for the operator dashboard.
type DashboardService struct {
	tickets    repository.TicketRepository
	violations repository.SlaViolationRepository
}

func NewDashboardService(ticketRepo repository.TicketRepository, violationRepo repository.SlaViolationRepository) *DashboardService {
	return &DashboardService{tickets: ticketRepo, violations: violationRepo}
}

// Stats returns current counts for the tenant in scope.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tickets.CountByStatus(ctx, orgID)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tickets.CountByPriority(ctx, orgID)
	if err != nil {
		return nil, err
	}
	openViolations, err := s.violations.CountOpen(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TicketsByStatus:   byStatus,
		TicketsByPriority: byPriority,
		OpenViolations:    openViolations,
	}, nil
}
