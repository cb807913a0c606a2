package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The string
// values are wire contract with the frontend and must not change.
type TicketStatus string

const (
	TicketStatusOpen                TicketStatus = "open"
	TicketStatusInProgress          TicketStatus = "in_progress"
	TicketStatusWaitingOnClient     TicketStatus = "waiting_on_client"
	TicketStatusWaitingOnThirdParty TicketStatus = "waiting_on_third_party"
	TicketStatusResolved            TicketStatus = "resolved"
	TicketStatusClosed              TicketStatus = "closed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketType categorizes the unit of work.
type TicketType string

const (
	TicketTypeIncident       TicketType = "incident"
	TicketTypeServiceRequest TicketType = "service_request"
	TicketTypeProblem        TicketType = "problem"
	TicketTypeChange         TicketType = "change"
)

// Ticket is the operational unit of work.
type Ticket struct {
	ID             string
	OrganizationID string
	ExternalKey    string
	ClientID       string
	AssetID        *string
	AssignedTo     *string
	Subject        string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	Type           TicketType
	DueDate        *time.Time
	RespondedAt    *time.Time
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsTerminal reports whether the status ends the SLA clock.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// ValidStatus reports whether a status belongs to the enumerated set.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingOnClient,
		TicketStatusWaitingOnThirdParty, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// ValidPriority reports whether a priority belongs to the enumerated set.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// ValidType reports whether a ticket type belongs to the enumerated set.
func ValidType(t TicketType) bool {
	switch t {
	case TicketTypeIncident, TicketTypeServiceRequest, TicketTypeProblem, TicketTypeChange:
		return true
	}
	return false
}
