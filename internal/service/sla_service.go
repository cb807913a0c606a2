package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/persistence"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/sla"
	"github.com/spec-kit/msp-platform/internal/tenant"
)

// SlaService computes deadlines and detects violations. Detection is
// idempotent: re-running a pass over the same ticket never produces a
// second open violation of the same type.
type SlaService struct {
	tickets     repository.TicketRepository
	definitions repository.SlaDefinitionRepository
	violations  repository.SlaViolationRepository
	orgs        repository.OrganizationRepository
	locker      persistence.TicketLocker
	dispatcher  events.Dispatcher
	audit       *AuditService
	logger      *zap.Logger
	location    *time.Location
	lockTTL     time.Duration
	batchSize   int
}

// SlaDependencies bundles collaborators for SlaService.
type SlaDependencies struct {
	TicketRepo     repository.TicketRepository
	DefinitionRepo repository.SlaDefinitionRepository
	ViolationRepo  repository.SlaViolationRepository
	OrgRepo        repository.OrganizationRepository
	Locker         persistence.TicketLocker
	Dispatcher     events.Dispatcher
	Audit          *AuditService
	Logger         *zap.Logger
	Location       *time.Location
	LockTTL        time.Duration
	BatchSize      int
}

// TicketSlaState is the per-ticket SLA read model.
type TicketSlaState struct {
	Definition    *domain.SlaDefinition `json:"definition,omitempty"`
	ResponseDue   *time.Time            `json:"response_due,omitempty"`
	ResolutionDue *time.Time            `json:"resolution_due,omitempty"`
	Violations    []domain.SlaViolation `json:"violations"`
}

func NewSlaService(deps SlaDependencies) *SlaService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	batch := deps.BatchSize
	if batch <= 0 {
		batch = 200
	}
	return &SlaService{
		tickets:     deps.TicketRepo,
		definitions: deps.DefinitionRepo,
		violations:  deps.ViolationRepo,
		orgs:        deps.OrgRepo,
		locker:      deps.Locker,
		dispatcher:  deps.Dispatcher,
		audit:       deps.Audit,
		logger:      deps.Logger,
		location:    loc,
		lockTTL:     ttl,
		batchSize:   batch,
	}
}

// GetTicketSlaState resolves the applicable definition, derives
// deadlines, and returns violations for a single ticket.
func (s *SlaService) GetTicketSlaState(ctx context.Context, ticketID string) (*TicketSlaState, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	violations, err := s.violations.ListByTicket(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	state := &TicketSlaState{Violations: violations}

	def, err := s.definitions.GetActive(ctx, orgID, ticket.Priority, ticket.Type)
	if errors.Is(err, repository.ErrNoDefinition) {
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	deadlines, err := sla.ComputeDeadlines(def, ticket.CreatedAt, s.location)
	if err != nil {
		return nil, err
	}
	state.Definition = def
	state.ResponseDue = &deadlines.ResponseDue
	state.ResolutionDue = &deadlines.ResolutionDue
	return state, nil
}

// Subscribe closes out open violations when a ticket leaves the
// violating state. The scheduled pass only sees non-terminal tickets,
// so the terminal transition itself has to trigger the final check.
func (s *SlaService) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
}

func (s *SlaService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok || !payload.NewStatus.IsTerminal() {
		return nil
	}
	ticket, err := s.tickets.GetByID(ctx, event.OrganizationID, event.TicketID)
	if err != nil {
		return err
	}
	return s.EvaluateTicket(ctx, event.OrganizationID, ticket, event.Timestamp)
}

// EvaluateTicket checks one ticket against its SLA definition, opening
// violations for passed deadlines and resolving open ones once the
// ticket responds or resolves. New violations are only opened on live
// tickets; resolution runs on terminal tickets too, so a breach is
// closed out when the ticket finally resolves. It is the single
// evaluation unit; RunPass fans out over open tickets.
func (s *SlaService) EvaluateTicket(ctx context.Context, orgID string, ticket *domain.Ticket, now time.Time) error {
	def, err := s.definitions.GetActive(ctx, orgID, ticket.Priority, ticket.Type)
	if errors.Is(err, repository.ErrNoDefinition) {
		return nil
	}
	if err != nil {
		return err
	}
	deadlines, err := sla.ComputeDeadlines(def, ticket.CreatedAt, s.location)
	if err != nil {
		if errors.Is(err, sla.ErrNoBusinessTime) {
			s.logger.Warn("sla definition has no business time",
				zap.String("organization_id", orgID),
				zap.String("definition_id", def.ID))
			return nil
		}
		return err
	}

	release, ok, err := s.locker.Acquire(ctx, ticket.ID, s.lockTTL)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	defer release()

	respondedAt := ticket.RespondedAt
	resolvedAt := ticket.ResolvedAt
	if ticket.Status.IsTerminal() {
		// A terminal ticket is out of the violating state even when a
		// lifecycle stamp is missing, e.g. closed without a public reply.
		stamp := terminalStamp(ticket, now)
		if respondedAt == nil {
			respondedAt = &stamp
		}
		if resolvedAt == nil {
			resolvedAt = &stamp
		}
	}

	if err := s.checkDeadline(ctx, orgID, ticket, domain.ViolationTypeResponse, deadlines.ResponseDue, respondedAt, now); err != nil {
		return err
	}
	return s.checkDeadline(ctx, orgID, ticket, domain.ViolationTypeResolution, deadlines.ResolutionDue, resolvedAt, now)
}

func terminalStamp(ticket *domain.Ticket, fallback time.Time) time.Time {
	if ticket.ResolvedAt != nil {
		return *ticket.ResolvedAt
	}
	if ticket.ClosedAt != nil {
		return *ticket.ClosedAt
	}
	return fallback
}

func (s *SlaService) checkDeadline(ctx context.Context, orgID string, ticket *domain.Ticket, violationType domain.SlaViolationType, due time.Time, met *time.Time, now time.Time) error {
	if met != nil {
		// Target already satisfied. A violation that opened before
		// satisfaction gets stamped with the actual time.
		return s.violations.Resolve(ctx, orgID, ticket.ID, violationType, *met)
	}
	if !now.After(due) {
		return nil
	}
	violation := &domain.SlaViolation{
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		ViolationType:  violationType,
		ExpectedTime:   due,
	}
	created, err := s.violations.EnsureOpen(ctx, violation)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	s.audit.RecordSystemEvent(ctx, orgID, "sla.violation_detected", domain.SeverityHigh, map[string]any{
		"ticket_id":      ticket.ID,
		"violation_type": violationType,
		"expected_time":  due,
	})
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.EventSlaViolationDetected,
			OrganizationID: orgID,
			TicketID:       ticket.ID,
			Actor:          events.Actor{Type: domain.SubjectTypeSystem},
			Timestamp:      now,
			Payload: events.SlaViolationDetectedPayload{
				ViolationID:   violation.ID,
				ViolationType: violationType,
				ExpectedTime:  due,
			},
		})
	}
	return nil
}

// RunPass evaluates open tickets across all active organizations. A
// failure loading one organization's definitions skips that
// organization, not the whole pass.
func (s *SlaService) RunPass(ctx context.Context, now time.Time) (int, error) {
	orgs, err := s.orgs.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	evaluated := 0
	for i := range orgs {
		org := &orgs[i]
		tickets, err := s.tickets.ListOpenForSla(ctx, org.ID, s.batchSize)
		if err != nil {
			s.logger.Error("sla pass: listing open tickets failed",
				zap.String("organization_id", org.ID), zap.Error(err))
			continue
		}
		for j := range tickets {
			if err := ctx.Err(); err != nil {
				return evaluated, err
			}
			if err := s.EvaluateTicket(ctx, org.ID, &tickets[j], now); err != nil {
				s.logger.Error("sla pass: ticket evaluation failed",
					zap.String("organization_id", org.ID),
					zap.String("ticket_id", tickets[j].ID),
					zap.Error(err))
				continue
			}
			evaluated++
		}
	}
	return evaluated, nil
}

// ListViolations returns violations in tenant scope.
func (s *SlaService) ListViolations(ctx context.Context, onlyOpen bool, limit, offset int) ([]domain.SlaViolation, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.violations.ListByOrganization(ctx, orgID, onlyOpen, limit, offset)
}
