package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int                            { return &v }
func strPtr(v string) *string                      { return &v }
func priorityPtr(p TicketPriority) *TicketPriority { return &p }
func statusPtr(s TicketStatus) *TicketStatus       { return &s }
func rolePtr(r UserRole) *UserRole                 { return &r }

func validTimeBasedRule() EscalationRule {
	return EscalationRule{
		Name:         "stale high tickets",
		TriggerType:  TriggerTimeBased,
		ActionType:   ActionNotifyManager,
		TriggerHours: intPtr(4),
		IsActive:     true,
	}
}

func TestEscalationRuleValidateAcceptsEachVariant(t *testing.T) {
	cases := []struct {
		name string
		rule EscalationRule
	}{
		{"time_based notify_manager", validTimeBasedRule()},
		{"priority_change notify_stakeholders", EscalationRule{
			TriggerType:     TriggerPriorityChange,
			TriggerPriority: priorityPtr(TicketPriorityCritical),
			ActionType:      ActionNotifyStakeholders,
			Recipients:      []string{"user-1", "user-2"},
		}},
		{"status_change reassign to user", EscalationRule{
			TriggerType:   TriggerStatusChange,
			TriggerStatus: statusPtr(TicketStatusWaitingOnClient),
			ActionType:    ActionReassignTicket,
			TargetUserID:  strPtr("user-3"),
		}},
		{"manual reassign to role", EscalationRule{
			TriggerType: TriggerManual,
			ActionType:  ActionReassignTicket,
			TargetRole:  rolePtr(UserRoleDispatcher),
		}},
		{"manual change_priority", EscalationRule{
			TriggerType: TriggerManual,
			ActionType:  ActionChangePriority,
			NewPriority: priorityPtr(TicketPriorityHigh),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, tc.rule.Validate())
		})
	}
}

func TestEscalationRuleValidateRejectsMissingTriggerPayload(t *testing.T) {
	cases := []struct {
		name  string
		rule  EscalationRule
		field string
	}{
		{"time_based without hours", EscalationRule{
			TriggerType: TriggerTimeBased,
			ActionType:  ActionNotifyManager,
		}, "trigger_hours"},
		{"time_based zero hours", EscalationRule{
			TriggerType:  TriggerTimeBased,
			ActionType:   ActionNotifyManager,
			TriggerHours: intPtr(0),
		}, "trigger_hours"},
		{"priority_change without priority", EscalationRule{
			TriggerType: TriggerPriorityChange,
			ActionType:  ActionNotifyManager,
		}, "trigger_priority"},
		{"priority_change bad priority", EscalationRule{
			TriggerType:     TriggerPriorityChange,
			TriggerPriority: priorityPtr(TicketPriority("urgent")),
			ActionType:      ActionNotifyManager,
		}, "trigger_priority"},
		{"status_change without status", EscalationRule{
			TriggerType: TriggerStatusChange,
			ActionType:  ActionNotifyManager,
		}, "trigger_status"},
		{"unknown trigger", EscalationRule{
			TriggerType: EscalationTriggerType("cron"),
			ActionType:  ActionNotifyManager,
		}, "trigger_type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.rule.Validate()
			require.Error(t, err)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestEscalationRuleValidateRejectsForeignPayload(t *testing.T) {
	rule := validTimeBasedRule()
	rule.TriggerStatus = statusPtr(TicketStatusOpen)
	assert.Error(t, rule.Validate(), "time_based must not carry a status payload")

	rule = validTimeBasedRule()
	rule.Recipients = []string{"user-1"}
	assert.Error(t, rule.Validate(), "notify_manager must not carry recipients")

	manual := EscalationRule{
		TriggerType:  TriggerManual,
		TriggerHours: intPtr(2),
		ActionType:   ActionChangePriority,
		NewPriority:  priorityPtr(TicketPriorityLow),
	}
	assert.Error(t, manual.Validate(), "manual trigger must not carry hours")
}

func TestEscalationRuleValidateRejectsMalformedAction(t *testing.T) {
	rule := validTimeBasedRule()
	rule.ActionType = ActionNotifyStakeholders
	assert.Error(t, rule.Validate(), "notify_stakeholders requires recipients")

	rule = validTimeBasedRule()
	rule.ActionType = ActionReassignTicket
	assert.Error(t, rule.Validate(), "reassign needs a target")

	rule = validTimeBasedRule()
	rule.ActionType = ActionReassignTicket
	rule.TargetUserID = strPtr("user-1")
	rule.TargetRole = rolePtr(UserRoleTechnician)
	assert.Error(t, rule.Validate(), "reassign target must be user or role, not both")

	rule = validTimeBasedRule()
	rule.ActionType = ActionChangePriority
	assert.Error(t, rule.Validate(), "change_priority requires new_priority")

	rule = validTimeBasedRule()
	rule.ActionType = EscalationActionType("page_oncall")
	assert.Error(t, rule.Validate())
}
