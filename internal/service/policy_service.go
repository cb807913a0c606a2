package service

import (
	"context"
	"errors"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// PolicyService authors SLA definitions and escalation rules.
type PolicyService struct {
	definitions repository.SlaDefinitionRepository
	rules       repository.EscalationRuleRepository
	audit       *AuditService
}

func NewPolicyService(definitionRepo repository.SlaDefinitionRepository, ruleRepo repository.EscalationRuleRepository, audit *AuditService) *PolicyService {
	return &PolicyService{definitions: definitionRepo, rules: ruleRepo, audit: audit}
}

// CreateSlaDefinition validates and stores a definition. At most one
// active definition may exist per (priority, type) pair.
func (s *PolicyService) CreateSlaDefinition(ctx context.Context, actor domain.SubjectType, actorID *string, def *domain.SlaDefinition) (*domain.SlaDefinition, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	def.OrganizationID = orgID
	if err := def.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	existing, err := s.definitions.GetActive(ctx, orgID, def.Priority, def.TicketType)
	if err == nil && existing != nil {
		return nil, apperrors.NewConflict("an active definition already covers this priority and type", map[string]any{
			"existing_id": existing.ID,
		})
	}
	if err != nil && !errors.Is(err, repository.ErrNoDefinition) {
		return nil, err
	}
	def.IsActive = true
	if err := s.definitions.Create(ctx, def); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "sla_definition.created", "sla_definition", def.ID,
		nil, map[string]any{"priority": def.Priority, "ticket_type": def.TicketType}, actor, actorID)
	return def, nil
}

// UpdateSlaDefinition revalidates and stores changes.
func (s *PolicyService) UpdateSlaDefinition(ctx context.Context, actor domain.SubjectType, actorID *string, def *domain.SlaDefinition) (*domain.SlaDefinition, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.definitions.GetByID(ctx, orgID, def.ID)
	if err != nil {
		return nil, err
	}
	def.OrganizationID = orgID
	if err := def.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.definitions.Update(ctx, def); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "sla_definition.updated", "sla_definition", def.ID,
		map[string]any{"response_hours": current.ResponseTimeHours, "resolution_hours": current.ResolutionTimeHours},
		map[string]any{"response_hours": def.ResponseTimeHours, "resolution_hours": def.ResolutionTimeHours},
		actor, actorID)
	return def, nil
}

// DeactivateSlaDefinition retires a definition without deleting its
// history.
func (s *PolicyService) DeactivateSlaDefinition(ctx context.Context, actor domain.SubjectType, actorID *string, id string) error {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return err
	}
	if err := s.definitions.Deactivate(ctx, orgID, id); err != nil {
		return err
	}
	s.audit.RecordChange(ctx, orgID, "sla_definition.deactivated", "sla_definition", id, nil, nil, actor, actorID)
	return nil
}

// GetSlaDefinition fetches one definition.
func (s *PolicyService) GetSlaDefinition(ctx context.Context, id string) (*domain.SlaDefinition, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.definitions.GetByID(ctx, orgID, id)
}

// ListSlaDefinitions lists all definitions in scope.
func (s *PolicyService) ListSlaDefinitions(ctx context.Context) ([]domain.SlaDefinition, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.definitions.ListByOrganization(ctx, orgID)
}

// CreateEscalationRule validates the tag/payload union and stores the
// rule.
func (s *PolicyService) CreateEscalationRule(ctx context.Context, actor domain.SubjectType, actorID *string, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	rule.OrganizationID = orgID
	if err := rule.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	rule.IsActive = true
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "escalation_rule.created", "escalation_rule", rule.ID,
		nil, map[string]any{"trigger_type": rule.TriggerType, "action_type": rule.ActionType}, actor, actorID)
	return rule, nil
}

// UpdateEscalationRule revalidates and stores changes.
func (s *PolicyService) UpdateEscalationRule(ctx context.Context, actor domain.SubjectType, actorID *string, rule *domain.EscalationRule) (*domain.EscalationRule, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.rules.GetByID(ctx, orgID, rule.ID); err != nil {
		return nil, err
	}
	rule.OrganizationID = orgID
	if err := rule.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, orgID, "escalation_rule.updated", "escalation_rule", rule.ID,
		nil, map[string]any{"trigger_type": rule.TriggerType, "action_type": rule.ActionType}, actor, actorID)
	return rule, nil
}

// DeactivateEscalationRule retires a rule.
func (s *PolicyService) DeactivateEscalationRule(ctx context.Context, actor domain.SubjectType, actorID *string, id string) error {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return err
	}
	if err := s.rules.Deactivate(ctx, orgID, id); err != nil {
		return err
	}
	s.audit.RecordChange(ctx, orgID, "escalation_rule.deactivated", "escalation_rule", id, nil, nil, actor, actorID)
	return nil
}

// GetEscalationRule fetches one rule.
func (s *PolicyService) GetEscalationRule(ctx context.Context, id string) (*domain.EscalationRule, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.rules.GetByID(ctx, orgID, id)
}

// ListEscalationRules lists all rules in scope.
func (s *PolicyService) ListEscalationRules(ctx context.Context) ([]domain.EscalationRule, error) {
	orgID, err := tenant.RequireOrganization(ctx)
	if err != nil {
		return nil, err
	}
	return s.rules.ListByOrganization(ctx, orgID)
}
