package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// SlaDefinitionRequest authors or edits an SLA definition.
type SlaDefinitionRequest struct {
	Priority            string   `json:"priority" validate:"required"`
	TicketType          string   `json:"ticket_type" validate:"required"`
	ResponseTimeHours   int      `json:"response_time_hours" validate:"gte=0"`
	ResolutionTimeHours int      `json:"resolution_time_hours" validate:"gte=0"`
	BusinessHoursStart  int      `json:"business_hours_start" validate:"min=0,max=23"`
	BusinessHoursEnd    int      `json:"business_hours_end" validate:"min=1,max=24"`
	BusinessDays        []int    `json:"business_days" validate:"required,min=1"`
	Holidays            []string `json:"holidays,omitempty" validate:"dive,datetime=2006-01-02"`
}

// SlaDefinitionResponse is the wire shape of a definition.
type SlaDefinitionResponse struct {
	ID                  string    `json:"id"`
	Priority            string    `json:"priority"`
	TicketType          string    `json:"ticket_type"`
	ResponseTimeHours   int       `json:"response_time_hours"`
	ResolutionTimeHours int       `json:"resolution_time_hours"`
	BusinessHoursStart  int       `json:"business_hours_start"`
	BusinessHoursEnd    int       `json:"business_hours_end"`
	BusinessDays        []int     `json:"business_days"`
	Holidays            []string  `json:"holidays"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToDomain converts the request into a domain definition.
func (r *SlaDefinitionRequest) ToDomain() (*domain.SlaDefinition, error) {
	holidays := make([]time.Time, 0, len(r.Holidays))
	for _, h := range r.Holidays {
		day, err := time.Parse("2006-01-02", h)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, day)
	}
	return &domain.SlaDefinition{
		Priority:            domain.TicketPriority(r.Priority),
		TicketType:          domain.TicketType(r.TicketType),
		ResponseTimeHours:   r.ResponseTimeHours,
		ResolutionTimeHours: r.ResolutionTimeHours,
		BusinessHoursStart:  r.BusinessHoursStart,
		BusinessHoursEnd:    r.BusinessHoursEnd,
		BusinessDays:        r.BusinessDays,
		Holidays:            holidays,
	}, nil
}

// SlaDefinitionFromDomain maps a definition to its wire shape.
func SlaDefinitionFromDomain(d *domain.SlaDefinition) SlaDefinitionResponse {
	holidays := make([]string, 0, len(d.Holidays))
	for _, h := range d.Holidays {
		holidays = append(holidays, h.Format("2006-01-02"))
	}
	return SlaDefinitionResponse{
		ID:                  d.ID,
		Priority:            string(d.Priority),
		TicketType:          string(d.TicketType),
		ResponseTimeHours:   d.ResponseTimeHours,
		ResolutionTimeHours: d.ResolutionTimeHours,
		BusinessHoursStart:  d.BusinessHoursStart,
		BusinessHoursEnd:    d.BusinessHoursEnd,
		BusinessDays:        d.BusinessDays,
		Holidays:            holidays,
		IsActive:            d.IsActive,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// EscalationRuleRequest authors or edits an escalation rule. Exactly
// one trigger payload and one action payload must be present, matching
// the declared types.
type EscalationRuleRequest struct {
	Name            string   `json:"name" validate:"required,max=255"`
	TriggerType     string   `json:"trigger_type" validate:"required"`
	ActionType      string   `json:"action_type" validate:"required"`
	TriggerHours    *int     `json:"trigger_hours,omitempty" validate:"omitempty,gt=0"`
	TriggerPriority *string  `json:"trigger_priority,omitempty"`
	TriggerStatus   *string  `json:"trigger_status,omitempty"`
	Recipients      []string `json:"recipients,omitempty" validate:"dive,uuid4"`
	TargetUserID    *string  `json:"target_user_id,omitempty" validate:"omitempty,uuid4"`
	TargetRole      *string  `json:"target_role,omitempty"`
	NewPriority     *string  `json:"new_priority,omitempty"`
}

// EscalationRuleResponse is the wire shape of a rule.
type EscalationRuleResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TriggerType     string    `json:"trigger_type"`
	ActionType      string    `json:"action_type"`
	TriggerHours    *int      `json:"trigger_hours,omitempty"`
	TriggerPriority *string   `json:"trigger_priority,omitempty"`
	TriggerStatus   *string   `json:"trigger_status,omitempty"`
	Recipients      []string  `json:"recipients,omitempty"`
	TargetUserID    *string   `json:"target_user_id,omitempty"`
	TargetRole      *string   `json:"target_role,omitempty"`
	NewPriority     *string   `json:"new_priority,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToDomain converts the request into a domain rule.
func (r *EscalationRuleRequest) ToDomain() *domain.EscalationRule {
	rule := &domain.EscalationRule{
		Name:         r.Name,
		TriggerType:  domain.EscalationTriggerType(r.TriggerType),
		ActionType:   domain.EscalationActionType(r.ActionType),
		TriggerHours: r.TriggerHours,
		Recipients:   r.Recipients,
		TargetUserID: r.TargetUserID,
	}
	if r.TriggerPriority != nil {
		p := domain.TicketPriority(*r.TriggerPriority)
		rule.TriggerPriority = &p
	}
	if r.TriggerStatus != nil {
		s := domain.TicketStatus(*r.TriggerStatus)
		rule.TriggerStatus = &s
	}
	if r.TargetRole != nil {
		role := domain.UserRole(*r.TargetRole)
		rule.TargetRole = &role
	}
	if r.NewPriority != nil {
		p := domain.TicketPriority(*r.NewPriority)
		rule.NewPriority = &p
	}
	return rule
}

// EscalationRuleFromDomain maps a rule to its wire shape.
func EscalationRuleFromDomain(rule *domain.EscalationRule) EscalationRuleResponse {
	resp := EscalationRuleResponse{
		ID:           rule.ID,
		Name:         rule.Name,
		TriggerType:  string(rule.TriggerType),
		ActionType:   string(rule.ActionType),
		TriggerHours: rule.TriggerHours,
		Recipients:   rule.Recipients,
		TargetUserID: rule.TargetUserID,
		IsActive:     rule.IsActive,
		CreatedAt:    rule.CreatedAt,
		UpdatedAt:    rule.UpdatedAt,
	}
	if rule.TriggerPriority != nil {
		p := string(*rule.TriggerPriority)
		resp.TriggerPriority = &p
	}
	if rule.TriggerStatus != nil {
		s := string(*rule.TriggerStatus)
		resp.TriggerStatus = &s
	}
	if rule.TargetRole != nil {
		role := string(*rule.TargetRole)
		resp.TargetRole = &role
	}
	if rule.NewPriority != nil {
		p := string(*rule.NewPriority)
		resp.NewPriority = &p
	}
	return resp
}
