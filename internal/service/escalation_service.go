package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/persistence"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// EscalationService evaluates escalation rules and executes their
// actions. Each qualifying (rule, ticket, occurrence) fires at most
// once; the occurrence key makes re-delivery and re-scanning safe.
type EscalationService struct {
	rules         repository.EscalationRuleRepository
	firings       repository.EscalationEventRepository
	tickets       repository.TicketRepository
	users         repository.UserRepository
	orgs          repository.OrganizationRepository
	locker        persistence.TicketLocker
	ticketService *TicketService
	notifications *NotificationService
	audit         *AuditService
	logger        *zap.Logger
	lockTTL       time.Duration
	batchSize     int
}

// EscalationDependencies bundles collaborators for EscalationService.
type EscalationDependencies struct {
	RuleRepo      repository.EscalationRuleRepository
	EventRepo     repository.EscalationEventRepository
	TicketRepo    repository.TicketRepository
	UserRepo      repository.UserRepository
	OrgRepo       repository.OrganizationRepository
	Locker        persistence.TicketLocker
	TicketService *TicketService
	Notifications *NotificationService
	Audit         *AuditService
	Logger        *zap.Logger
	LockTTL       time.Duration
	BatchSize     int
}

func NewEscalationService(deps EscalationDependencies) *EscalationService {
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	batch := deps.BatchSize
	if batch <= 0 {
		batch = 200
	}
	return &EscalationService{
		rules:         deps.RuleRepo,
		firings:       deps.EventRepo,
		tickets:       deps.TicketRepo,
		users:         deps.UserRepo,
		orgs:          deps.OrgRepo,
		locker:        deps.Locker,
		ticketService: deps.TicketService,
		notifications: deps.Notifications,
		audit:         deps.Audit,
		logger:        deps.Logger,
		lockTTL:       ttl,
		batchSize:     batch,
	}
}

// Subscribe wires transition-triggered rules onto the dispatcher.
func (s *EscalationService) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventTicketPriorityChanged, s.onPriorityChanged)
}

func (s *EscalationService) onStatusChanged(ctx context.Context, event events.Event) error {
	// Escalation-driven mutations carry the system actor; those are
	// never re-evaluated, which keeps rule chains from looping.
	if event.Actor.Type == domain.SubjectTypeSystem {
		return nil
	}
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	return s.evaluateTransition(ctx, event, domain.TriggerStatusChange, func(rule *domain.EscalationRule) bool {
		return rule.TriggerStatus != nil && *rule.TriggerStatus == payload.NewStatus
	})
}

func (s *EscalationService) onPriorityChanged(ctx context.Context, event events.Event) error {
	if event.Actor.Type == domain.SubjectTypeSystem {
		return nil
	}
	payload, ok := event.Payload.(events.TicketPriorityChangedPayload)
	if !ok {
		return nil
	}
	return s.evaluateTransition(ctx, event, domain.TriggerPriorityChange, func(rule *domain.EscalationRule) bool {
		return rule.TriggerPriority != nil && *rule.TriggerPriority == payload.NewPriority
	})
}

func (s *EscalationService) evaluateTransition(ctx context.Context, event events.Event, trigger domain.EscalationTriggerType, matches func(*domain.EscalationRule) bool) error {
	rules, err := s.rules.ListActive(ctx, event.OrganizationID, trigger)
	if err != nil {
		return err
	}
	for i := range rules {
		rule := &rules[i]
		if !matches(rule) {
			continue
		}
		// the producing event's ID is the occurrence: one firing per
		// transition no matter how often the event is handled
		if _, err := s.fire(ctx, event.OrganizationID, rule, event.TicketID, event.ID); err != nil {
			s.logger.Error("escalation firing failed",
				zap.String("rule_id", rule.ID),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
	return nil
}

// RunPass evaluates time-based rules over open tickets across all
// active organizations.
func (s *EscalationService) RunPass(ctx context.Context, now time.Time) (int, error) {
	orgs, err := s.orgs.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	fired := 0
	for i := range orgs {
		org := &orgs[i]
		rules, err := s.rules.ListActive(ctx, org.ID, domain.TriggerTimeBased)
		if err != nil {
			s.logger.Error("escalation pass: listing rules failed",
				zap.String("organization_id", org.ID), zap.Error(err))
			continue
		}
		if len(rules) == 0 {
			continue
		}
		tickets, err := s.tickets.ListOpenForSla(ctx, org.ID, s.batchSize)
		if err != nil {
			s.logger.Error("escalation pass: listing open tickets failed",
				zap.String("organization_id", org.ID), zap.Error(err))
			continue
		}
		for j := range tickets {
			if err := ctx.Err(); err != nil {
				return fired, err
			}
			ticket := &tickets[j]
			for k := range rules {
				rule := &rules[k]
				if rule.TriggerHours == nil {
					continue
				}
				age := now.Sub(ticket.CreatedAt)
				if age < time.Duration(*rule.TriggerHours)*time.Hour {
					continue
				}
				// a time threshold is crossed exactly once per
				// rule+ticket, so the threshold itself keys the firing
				occurrence := fmt.Sprintf("age:%dh", *rule.TriggerHours)
				didFire, err := s.fire(ctx, org.ID, rule, ticket.ID, occurrence)
				if err != nil {
					s.logger.Error("escalation firing failed",
						zap.String("rule_id", rule.ID),
						zap.String("ticket_id", ticket.ID),
						zap.Error(err))
					continue
				}
				if didFire {
					fired++
				}
			}
		}
	}
	return fired, nil
}

// FireManual executes a manual-trigger rule against a ticket on
// operator request.
func (s *EscalationService) FireManual(ctx context.Context, ruleID, ticketID string) error {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return err
	}
	rule, err := s.rules.GetByID(ctx, orgID, ruleID)
	if err != nil {
		return err
	}
	if rule.TriggerType != domain.TriggerManual {
		return apperrors.NewValidationError("rule is not manually triggered", map[string]any{"trigger_type": rule.TriggerType})
	}
	if !rule.IsActive {
		return apperrors.NewConflict("rule is inactive", nil)
	}
	if _, err := s.tickets.GetByID(ctx, orgID, ticketID); err != nil {
		return err
	}
	// every manual invocation is its own occurrence
	_, err = s.fire(ctx, orgID, rule, ticketID, uuid.NewString())
	return err
}

func (s *EscalationService) fire(ctx context.Context, orgID string, rule *domain.EscalationRule, ticketID, occurrence string) (bool, error) {
	release, ok, err := s.locker.Acquire(ctx, ticketID, s.lockTTL)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	defer release()

	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		return false, err
	}
	if ticket.Status.IsTerminal() {
		return false, nil
	}

	recorded, err := s.firings.RecordOnce(ctx, &domain.EscalationEvent{
		OrganizationID: orgID,
		RuleID:         rule.ID,
		TicketID:       ticketID,
		Occurrence:     occurrence,
	})
	if err != nil {
		return false, err
	}
	if !recorded {
		return false, nil
	}

	if err := s.execute(ctx, orgID, rule, ticket); err != nil {
		return true, err
	}

	s.audit.RecordSystemEvent(ctx, orgID, "escalation.fired", domain.SeverityWarning, map[string]any{
		"rule_id":     rule.ID,
		"rule_name":   rule.Name,
		"ticket_id":   ticketID,
		"action_type": rule.ActionType,
		"occurrence":  occurrence,
	})
	return true, nil
}

func (s *EscalationService) execute(ctx context.Context, orgID string, rule *domain.EscalationRule, ticket *domain.Ticket) error {
	scoped := tenant.WithOrganization(ctx, orgID)
	systemActor := events.Actor{Type: domain.SubjectTypeSystem}

	switch rule.ActionType {
	case domain.ActionNotifyManager:
		if ticket.AssignedTo == nil {
			s.logger.Warn("notify_manager on unassigned ticket, skipping",
				zap.String("rule_id", rule.ID), zap.String("ticket_id", ticket.ID))
			return nil
		}
		manager, err := s.users.GetManager(ctx, orgID, *ticket.AssignedTo)
		if err != nil {
			return err
		}
		body := fmt.Sprintf("Escalation %q: ticket %s requires attention", rule.Name, ticket.ExternalKey)
		return s.notifications.NotifyUsers(ctx, orgID, []string{manager.ID}, &ticket.ID, body)

	case domain.ActionNotifyStakeholders:
		body := fmt.Sprintf("Escalation %q: ticket %s requires attention", rule.Name, ticket.ExternalKey)
		return s.notifications.NotifyUsers(ctx, orgID, rule.Recipients, &ticket.ID, body)

	case domain.ActionReassignTicket:
		target, err := s.resolveReassignTarget(ctx, orgID, rule)
		if err != nil {
			return err
		}
		_, err = s.ticketService.AssignTicket(scoped, systemActor, ticket.ID, &target)
		return err

	case domain.ActionChangePriority:
		if rule.NewPriority == nil {
			return apperrors.NewValidationError("rule has no target priority", nil)
		}
		_, err := s.ticketService.UpdatePriority(scoped, systemActor, ticket.ID, *rule.NewPriority)
		return err
	}
	return apperrors.NewValidationError("unknown action type", map[string]any{"action_type": rule.ActionType})
}

func (s *EscalationService) resolveReassignTarget(ctx context.Context, orgID string, rule *domain.EscalationRule) (string, error) {
	if rule.TargetUserID != nil {
		return *rule.TargetUserID, nil
	}
	if rule.TargetRole != nil {
		candidates, err := s.users.ListByRole(ctx, orgID, *rule.TargetRole)
		if err != nil {
			return "", err
		}
		if len(candidates) == 0 {
			return "", apperrors.NewConflict("no active user with target role", map[string]any{"role": *rule.TargetRole})
		}
		return candidates[0].ID, nil
	}
	return "", apperrors.NewValidationError("rule has no reassignment target", nil)
}

// ListFirings returns recorded escalation events for a ticket.
func (s *EscalationService) ListFirings(ctx context.Context, ticketID string) ([]domain.EscalationEvent, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.firings.ListByTicket(ctx, orgID, ticketID)
}
