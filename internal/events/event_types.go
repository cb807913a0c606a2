package events

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventSlaViolationDetected  EventType = "sla_violation_detected"
	EventEscalationFired       EventType = "escalation_fired"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type     domain.SubjectType `json:"type"`
	UserID   *string            `json:"user_id,omitempty"`
	PortalID *string            `json:"portal_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	TicketID       string      `json:"ticket_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ClientID string                `json:"client_id"`
	Type     domain.TicketType     `json:"ticket_type"`
	Priority domain.TicketPriority `json:"priority"`
	Subject  string                `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID  string                   `json:"comment_id"`
	AuthorType domain.CommentAuthorType `json:"author_type"`
	IsInternal bool                     `json:"is_internal"`
}

// SlaViolationDetectedPayload payload.
type SlaViolationDetectedPayload struct {
	ViolationID   string                  `json:"violation_id"`
	ViolationType domain.SlaViolationType `json:"violation_type"`
	ExpectedTime  time.Time               `json:"expected_time"`
}

// EscalationFiredPayload payload.
type EscalationFiredPayload struct {
	RuleID     string                       `json:"rule_id"`
	ActionType domain.EscalationActionType  `json:"action_type"`
	Trigger    domain.EscalationTriggerType `json:"trigger_type"`
}
