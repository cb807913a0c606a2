package service

import (
	"context"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// PortalService is the client-portal facade over tickets. Portal
// callers only ever see their own client's tickets and never internal
// notes.
type PortalService struct {
	tickets    *TicketService
	ticketRepo repository.TicketRepository
	clients    repository.ClientRepository
	settings   repository.PortalSettingsRepository
}

func NewPortalService(ticketService *TicketService, ticketRepo repository.TicketRepository, clientRepo repository.ClientRepository, settingsRepo repository.PortalSettingsRepository) *PortalService {
	return &PortalService{
		tickets:    ticketService,
		ticketRepo: ticketRepo,
		clients:    clientRepo,
		settings:   settingsRepo,
	}
}

// OpenTicket creates a ticket on behalf of a portal user. Type must be
// allowed by the organization's portal settings; priority always starts
// at medium and is triaged by operators.
func (s *PortalService) OpenTicket(ctx context.Context, portalUser *domain.ClientUser, subject, description string, ticketType domain.TicketType) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, orgID, portalUser.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.PortalEnabled {
		return nil, apperrors.NewForbidden("portal access is disabled for this client")
	}
	settings, err := s.settings.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !typeAllowed(settings.AllowedTicketTypes, ticketType) {
		return nil, apperrors.NewValidationError("ticket type not available via portal", map[string]any{"type": ticketType})
	}

	actor := events.Actor{Type: domain.SubjectTypePortal, PortalID: &portalUser.ID}
	return s.tickets.CreateTicket(ctx, actor, TicketCreateInput{
		ClientID:    portalUser.ClientID,
		Subject:     subject,
		Description: description,
		Priority:    domain.TicketPriorityMedium,
		Type:        ticketType,
	})
}

// ListTickets returns the portal user's client tickets.
func (s *PortalService) ListTickets(ctx context.Context, portalUser *domain.ClientUser, limit, offset int) ([]domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.ticketRepo.ListWithFilter(ctx, orgID, repository.TicketFilter{
		ClientID: &portalUser.ClientID,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetTicket fetches one ticket, refusing tickets of other clients.
func (s *PortalService) GetTicket(ctx context.Context, portalUser *domain.ClientUser, ticketID string) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.ticketRepo.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.ClientID != portalUser.ClientID {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// AddComment appends a portal comment to the user's own ticket.
func (s *PortalService) AddComment(ctx context.Context, portalUser *domain.ClientUser, ticketID, body string) (*domain.TicketComment, error) {
	if _, err := s.GetTicket(ctx, portalUser, ticketID); err != nil {
		return nil, err
	}
	actor := events.Actor{Type: domain.SubjectTypePortal, PortalID: &portalUser.ID}
	return s.tickets.AddComment(ctx, actor, ticketID, body, false)
}

// ListComments returns the public thread of the user's own ticket.
func (s *PortalService) ListComments(ctx context.Context, portalUser *domain.ClientUser, ticketID string) ([]domain.TicketComment, error) {
	if _, err := s.GetTicket(ctx, portalUser, ticketID); err != nil {
		return nil, err
	}
	return s.tickets.ListComments(ctx, ticketID, false)
}

// Settings returns the organization's portal configuration.
func (s *PortalService) Settings(ctx context.Context) (*domain.PortalSettings, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.settings.Get(ctx, orgID)
}

// UpdateSettings stores portal configuration for the tenant.
func (s *PortalService) UpdateSettings(ctx context.Context, settings *domain.PortalSettings) error {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return err
	}
	settings.OrganizationID = orgID
	for _, t := range settings.AllowedTicketTypes {
		if !domain.ValidType(t) {
			return apperrors.NewValidationError("unknown ticket type", map[string]any{"type": t})
		}
	}
	return s.settings.Upsert(ctx, settings)
}

func typeAllowed(allowed []domain.TicketType, t domain.TicketType) bool {
	if len(allowed) == 0 {
		return domain.ValidType(t)
	}
	for _, candidate := range allowed {
		if candidate == t {
			return true
		}
	}
	return false
}
