package domain

import "time"

// EscalationTriggerType enumerates what fires an escalation rule.
type EscalationTriggerType string

const (
	TriggerTimeBased      EscalationTriggerType = "time_based"
	TriggerPriorityChange EscalationTriggerType = "priority_change"
	TriggerStatusChange   EscalationTriggerType = "status_change"
	TriggerManual         EscalationTriggerType = "manual"
)

// EscalationActionType enumerates what a firing rule does.
type EscalationActionType string

const (
	ActionNotifyManager      EscalationActionType = "notify_manager"
	ActionNotifyStakeholders EscalationActionType = "notify_stakeholders"
	ActionReassignTicket     EscalationActionType = "reassign_ticket"
	ActionChangePriority     EscalationActionType = "change_priority"
)

// EscalationRule maps one trigger variant to one action variant.
// Exactly one trigger payload and one action payload must be set,
// consistent with the chosen type tags; Validate enforces this since
// the storage schema keeps all payload columns nullable.
type EscalationRule struct {
	ID             string
	OrganizationID string
	Name           string
	TriggerType    EscalationTriggerType
	ActionType     EscalationActionType

	// trigger payloads, one per variant
	TriggerHours    *int
	TriggerPriority *TicketPriority
	TriggerStatus   *TicketStatus

	// action payloads, one per variant
	Recipients   []string // user IDs for notify variants
	TargetUserID *string
	TargetRole   *UserRole
	NewPriority  *TicketPriority

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces tag/payload consistency for both discriminated
// unions. Malformed rules are rejected at authoring time; the
// evaluator never silently no-ops on a half-formed rule.
func (r *EscalationRule) Validate() error {
	switch r.TriggerType {
	case TriggerTimeBased:
		if r.TriggerHours == nil {
			return NewFieldError("trigger_hours", "required for time_based trigger")
		}
		if *r.TriggerHours <= 0 {
			return NewFieldError("trigger_hours", "must be positive")
		}
		if r.TriggerPriority != nil || r.TriggerStatus != nil {
			return NewFieldError("trigger_type", "only trigger_hours may be set for time_based")
		}
	case TriggerPriorityChange:
		if r.TriggerPriority == nil {
			return NewFieldError("trigger_priority", "required for priority_change trigger")
		}
		if !ValidPriority(*r.TriggerPriority) {
			return NewFieldError("trigger_priority", "unknown priority")
		}
		if r.TriggerHours != nil || r.TriggerStatus != nil {
			return NewFieldError("trigger_type", "only trigger_priority may be set for priority_change")
		}
	case TriggerStatusChange:
		if r.TriggerStatus == nil {
			return NewFieldError("trigger_status", "required for status_change trigger")
		}
		if !ValidStatus(*r.TriggerStatus) {
			return NewFieldError("trigger_status", "unknown status")
		}
		if r.TriggerHours != nil || r.TriggerPriority != nil {
			return NewFieldError("trigger_type", "only trigger_status may be set for status_change")
		}
	case TriggerManual:
		if r.TriggerHours != nil || r.TriggerPriority != nil || r.TriggerStatus != nil {
			return NewFieldError("trigger_type", "manual trigger carries no payload")
		}
	default:
		return NewFieldError("trigger_type", "unknown trigger type")
	}

	switch r.ActionType {
	case ActionNotifyManager:
		// manager is resolved from the assignee at firing time
		if len(r.Recipients) > 0 || r.TargetUserID != nil || r.TargetRole != nil || r.NewPriority != nil {
			return NewFieldError("action_type", "notify_manager carries no payload")
		}
	case ActionNotifyStakeholders:
		if len(r.Recipients) == 0 {
			return NewFieldError("recipients", "required for notify_stakeholders")
		}
		if r.TargetUserID != nil || r.TargetRole != nil || r.NewPriority != nil {
			return NewFieldError("action_type", "only recipients may be set for notify_stakeholders")
		}
	case ActionReassignTicket:
		if r.TargetUserID == nil && r.TargetRole == nil {
			return NewFieldError("target_user_id", "target user or target role required for reassign_ticket")
		}
		if r.TargetUserID != nil && r.TargetRole != nil {
			return NewFieldError("target_user_id", "set either target user or target role, not both")
		}
		if len(r.Recipients) > 0 || r.NewPriority != nil {
			return NewFieldError("action_type", "only reassignment target may be set for reassign_ticket")
		}
	case ActionChangePriority:
		if r.NewPriority == nil {
			return NewFieldError("new_priority", "required for change_priority action")
		}
		if !ValidPriority(*r.NewPriority) {
			return NewFieldError("new_priority", "unknown priority")
		}
		if len(r.Recipients) > 0 || r.TargetUserID != nil || r.TargetRole != nil {
			return NewFieldError("action_type", "only new_priority may be set for change_priority")
		}
	default:
		return NewFieldError("action_type", "unknown action type")
	}
	return nil
}

// EscalationEvent records one firing of one rule on one ticket. The
// (rule, ticket, occurrence) uniqueness backs the exactly-once
// contract for time_based rules.
type EscalationEvent struct {
	ID             string
	OrganizationID string
	RuleID         string
	TicketID       string
	Occurrence     string // dedupe key for the qualifying trigger occurrence
	FiredAt        time.Time
}
