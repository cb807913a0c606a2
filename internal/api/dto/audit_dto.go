package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// AuditLogResponse is the wire shape of an audit entry.
type AuditLogResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	Severity   string         `json:"severity"`
	ActorType  string         `json:"actor_type"`
	ActorID    *string        `json:"actor_id,omitempty"`
	IPAddress  *string        `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditLogFromDomain maps an audit entry to its wire shape.
func AuditLogFromDomain(entry *domain.AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:         entry.ID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValues:  entry.OldValues,
		NewValues:  entry.NewValues,
		Severity:   string(entry.Severity),
		ActorType:  string(entry.ActorType),
		ActorID:    entry.ActorID,
		IPAddress:  entry.IPAddress,
		CreatedAt:  entry.CreatedAt,
	}
}

// EscalationEventResponse is the wire shape of a recorded firing.
type EscalationEventResponse struct {
	ID         string    `json:"id"`
	RuleID     string    `json:"rule_id"`
	TicketID   string    `json:"ticket_id"`
	Occurrence string    `json:"occurrence"`
	FiredAt    time.Time `json:"fired_at"`
}

// EscalationEventFromDomain maps a firing to its wire shape.
func EscalationEventFromDomain(event *domain.EscalationEvent) EscalationEventResponse {
	return EscalationEventResponse{
		ID:         event.ID,
		RuleID:     event.RuleID,
		TicketID:   event.TicketID,
		Occurrence: event.Occurrence,
		FiredAt:    event.FiredAt,
	}
}
