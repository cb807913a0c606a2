package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// CreateTicketRequest opens a ticket on behalf of a client.
type CreateTicketRequest struct {
	ClientID    string     `json:"client_id" validate:"required,uuid4"`
	AssetID     *string    `json:"asset_id,omitempty" validate:"omitempty,uuid4"`
	Subject     string     `json:"subject" validate:"required,max=500"`
	Description string     `json:"description" validate:"required"`
	Priority    string     `json:"priority,omitempty"`
	Type        string     `json:"type" validate:"required"`
	AssignedTo  *string    `json:"assigned_to,omitempty" validate:"omitempty,uuid4"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateStatusRequest transitions ticket status.
type UpdateStatusRequest struct {
	Status  string `json:"status" validate:"required"`
	Comment string `json:"comment,omitempty"`
}

// UpdatePriorityRequest changes ticket priority.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"required"`
}

// AssignTicketRequest sets or clears the assignee.
type AssignTicketRequest struct {
	UserID *string `json:"user_id" validate:"omitempty,uuid4"`
}

// CreateCommentRequest appends to the ticket thread.
type CreateCommentRequest struct {
	Body       string `json:"body" validate:"required"`
	IsInternal bool   `json:"is_internal,omitempty"`
}

// CreateTimeEntryRequest logs work on a ticket.
type CreateTimeEntryRequest struct {
	StartedAt   time.Time `json:"started_at" validate:"required"`
	Minutes     int       `json:"minutes" validate:"required,gt=0"`
	Description string    `json:"description,omitempty"`
	Billable    bool      `json:"billable"`
}

// FireEscalationRequest triggers a manual escalation rule.
type FireEscalationRequest struct {
	RuleID string `json:"rule_id" validate:"required,uuid4"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string     `json:"id"`
	ExternalKey string     `json:"external_key"`
	ClientID    string     `json:"client_id"`
	AssetID     *string    `json:"asset_id,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Type        string     `json:"type"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CommentResponse is the wire shape of a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorType string    `json:"author_type"`
	AuthorID   *string   `json:"author_id,omitempty"`
	Body       string    `json:"body"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// TimeEntryResponse is the wire shape of logged work.
type TimeEntryResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	Description string    `json:"description"`
	StartedAt   time.Time `json:"started_at"`
	Minutes     int       `json:"minutes"`
	Billable    bool      `json:"billable"`
	Billed      bool      `json:"billed"`
	CreatedAt   time.Time `json:"created_at"`
}

// ViolationResponse is the wire shape of an SLA violation. Minutes is
// derived at read time against the supplied clock.
type ViolationResponse struct {
	ID            string     `json:"id"`
	TicketID      string     `json:"ticket_id"`
	ViolationType string     `json:"violation_type"`
	ExpectedTime  time.Time  `json:"expected_time"`
	ActualTime    *time.Time `json:"actual_time,omitempty"`
	Minutes       int        `json:"violation_minutes"`
	IsResolved    bool       `json:"is_resolved"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TicketFromDomain maps a domain ticket to its wire shape.
func TicketFromDomain(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		ExternalKey: t.ExternalKey,
		ClientID:    t.ClientID,
		AssetID:     t.AssetID,
		AssignedTo:  t.AssignedTo,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Type:        string(t.Type),
		DueDate:     t.DueDate,
		RespondedAt: t.RespondedAt,
		ResolvedAt:  t.ResolvedAt,
		ClosedAt:    t.ClosedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TicketsFromDomain maps a slice of tickets.
func TicketsFromDomain(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, TicketFromDomain(&tickets[i]))
	}
	return out
}

// CommentFromDomain maps a domain comment.
func CommentFromDomain(c *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		AuthorType: string(c.AuthorType),
		AuthorID:   c.AuthorID,
		Body:       c.Body,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

// TimeEntryFromDomain maps a domain time entry.
func TimeEntryFromDomain(e *domain.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:          e.ID,
		TicketID:    e.TicketID,
		UserID:      e.UserID,
		Description: e.Description,
		StartedAt:   e.StartedAt,
		Minutes:     e.Minutes,
		Billable:    e.Billable,
		Billed:      e.Billed,
		CreatedAt:   e.CreatedAt,
	}
}

// ViolationFromDomain maps a violation, deriving minutes against now.
func ViolationFromDomain(v *domain.SlaViolation, now time.Time) ViolationResponse {
	return ViolationResponse{
		ID:            v.ID,
		TicketID:      v.TicketID,
		ViolationType: string(v.ViolationType),
		ExpectedTime:  v.ExpectedTime,
		ActualTime:    v.ActualTime,
		Minutes:       v.Minutes(now),
		IsResolved:    v.IsResolved,
		ResolvedAt:    v.ResolvedAt,
		CreatedAt:     v.CreatedAt,
	}
}
