package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.TicketCommentRepository
	timeEntries repository.TimeEntryRepository
	clients     repository.ClientRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
	audit       *AuditService
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	CommentRepo   repository.TicketCommentRepository
	TimeEntryRepo repository.TimeEntryRepository
	ClientRepo    repository.ClientRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	Audit         *AuditService
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ClientID    string
	AssetID     *string
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Type        domain.TicketType
	AssignedTo  *string
	DueDate     *time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		timeEntries: deps.TimeEntryRepo,
		clients:     deps.ClientRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
		audit:       deps.Audit,
	}
}

// CreateTicket creates a ticket within the tenant scope in context.
func (s *TicketService) CreateTicket(ctx context.Context, actor events.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	client, err := s.clients.GetByID(ctx, orgID, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, apperrors.NewValidationError("client is inactive", map[string]any{"client_id": input.ClientID})
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if !domain.ValidType(input.Type) {
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{"type": input.Type})
	}

	ticket := &domain.Ticket{
		OrganizationID: orgID,
		ExternalKey:    generateTicketKey(),
		ClientID:       input.ClientID,
		AssetID:        input.AssetID,
		AssignedTo:     input.AssignedTo,
		Subject:        strings.TrimSpace(input.Subject),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
		Type:           input.Type,
		DueDate:        input.DueDate,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, orgID, "ticket.created", "ticket", ticket.ID,
		nil, map[string]any{"status": ticket.Status, "priority": ticket.Priority, "type": ticket.Type, "subject": ticket.Subject},
		actor.Type, actorID(actor))
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCreated,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload: events.TicketCreatedPayload{
			ClientID: ticket.ClientID,
			Type:     ticket.Type,
			Priority: ticket.Priority,
			Subject:  ticket.Subject,
		},
	})
	return ticket, nil
}

// GetTicket fetches one ticket in tenant scope.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.tickets.GetByID(ctx, orgID, ticketID)
}

// ListTickets returns filtered tickets in tenant scope.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.tickets.ListWithFilter(ctx, orgID, filter)
}

// UpdateStatus transitions a ticket, stamping lifecycle timestamps and
// emitting the status-changed event that drives escalation and SLA
// re-evaluation.
func (s *TicketService) UpdateStatus(ctx context.Context, actor events.Actor, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	now := time.Now().UTC()
	ticket.Status = newStatus
	switch newStatus {
	case domain.TicketStatusResolved:
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
	case domain.TicketStatusClosed:
		if ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
	case domain.TicketStatusInProgress:
		// reopening clears terminal stamps
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, orgID, "ticket.status_changed", "ticket", ticket.ID,
		map[string]any{"status": oldStatus}, map[string]any{"status": newStatus, "comment": comment},
		actor.Type, actorID(actor))
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketStatusChanged,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, actor events.Actor, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}

	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, orgID, "ticket.priority_changed", "ticket", ticket.ID,
		map[string]any{"priority": oldPriority}, map[string]any{"priority": newPriority},
		actor.Type, actorID(actor))
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketPriorityChanged,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// AssignTicket sets the assignee.
func (s *TicketService) AssignTicket(ctx context.Context, actor events.Actor, ticketID string, userID *string) (*domain.Ticket, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if userID != nil {
		assignee, err := s.users.GetByID(ctx, orgID, *userID)
		if err != nil {
			return nil, err
		}
		if !assignee.IsActive {
			return nil, apperrors.NewValidationError("assignee is inactive", map[string]any{"user_id": *userID})
		}
	}

	old := map[string]any{"assigned_to": ticket.AssignedTo}
	ticket.AssignedTo = userID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	s.audit.RecordChange(ctx, orgID, "ticket.assigned", "ticket", ticket.ID,
		old, map[string]any{"assigned_to": userID}, actor.Type, actorID(actor))
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketAssigned,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload:        events.TicketAssignedPayload{AssignedTo: userID},
	})
	return ticket, nil
}

// AddComment appends to the ticket thread. The first public operator
// comment stamps responded_at, which is what the response SLA measures.
func (s *TicketService) AddComment(ctx context.Context, actor events.Actor, ticketID, body string, isInternal bool) (*domain.TicketComment, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}

	authorType := domain.AuthorTypeUser
	if actor.Type == domain.SubjectTypePortal {
		authorType = domain.AuthorTypePortal
		isInternal = false
	} else if actor.Type == domain.SubjectTypeSystem {
		authorType = domain.AuthorTypeSystem
	}
	comment := &domain.TicketComment{
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		AuthorType:     authorType,
		AuthorID:       actorID(actor),
		Body:           body,
		IsInternal:     isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if authorType == domain.AuthorTypeUser && !isInternal && ticket.RespondedAt == nil {
		now := time.Now().UTC()
		ticket.RespondedAt = &now
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCommentAdded,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload: events.TicketCommentAddedPayload{
			CommentID:  comment.ID,
			AuthorType: comment.AuthorType,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// ListComments returns the thread, hiding internal notes from portal
// callers.
func (s *TicketService) ListComments(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if includeInternal {
		return comments, nil
	}
	visible := make([]domain.TicketComment, 0, len(comments))
	for _, comment := range comments {
		if comment.IsInternal {
			continue
		}
		visible = append(visible, comment)
	}
	return visible, nil
}

// LogTime records a time entry against a ticket.
func (s *TicketService) LogTime(ctx context.Context, actor events.Actor, ticketID string, startedAt time.Time, minutes int, description string, billable bool) (*domain.TimeEntry, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if minutes <= 0 {
		return nil, apperrors.NewValidationError("minutes must be positive", nil)
	}
	if actor.UserID == nil {
		return nil, apperrors.NewForbidden("only operators can log time")
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}

	entry := &domain.TimeEntry{
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		UserID:         *actor.UserID,
		Description:    strings.TrimSpace(description),
		StartedAt:      startedAt,
		Minutes:        minutes,
		Billable:       billable,
	}
	if err := s.timeEntries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListTimeEntries returns logged work for a ticket.
func (s *TicketService) ListTimeEntries(ctx context.Context, ticketID string) ([]domain.TimeEntry, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.timeEntries.ListByTicket(ctx, orgID, ticketID)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func actorID(actor events.Actor) *string {
	if actor.UserID != nil {
		return actor.UserID
	}
	return actor.PortalID
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen: {
		domain.TicketStatusInProgress, domain.TicketStatusWaitingOnClient,
		domain.TicketStatusWaitingOnThirdParty, domain.TicketStatusResolved, domain.TicketStatusClosed,
	},
	domain.TicketStatusInProgress: {
		domain.TicketStatusWaitingOnClient, domain.TicketStatusWaitingOnThirdParty,
		domain.TicketStatusResolved, domain.TicketStatusClosed,
	},
	domain.TicketStatusWaitingOnClient: {
		domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed,
	},
	domain.TicketStatusWaitingOnThirdParty: {
		domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed,
	},
	domain.TicketStatusResolved: {
		domain.TicketStatusClosed, domain.TicketStatusInProgress,
	},
	domain.TicketStatusClosed: {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
