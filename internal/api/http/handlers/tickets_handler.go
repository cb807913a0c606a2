package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// TicketsHandler serves operator ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	sla         *service.SlaService
	escalations *service.EscalationService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, slaService *service.SlaService, escalationService *service.EscalationService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, sla: slaService, escalations: escalationService}
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		ClientID:    req.ClientID,
		AssetID:     req.AssetID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		Type:        domain.TicketType(req.Type),
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.TicketStatus(req.Status), req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// UpdatePriority PATCH /api/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdatePriority(c.UserContext(), actor, c.Params("id"), domain.TicketPriority(req.Priority))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Assign PATCH /api/tickets/:id/assignee.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.tickets.AssignTicket(c.UserContext(), actor, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	comment, err := h.tickets.AddComment(c.UserContext(), actor, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CommentFromDomain(comment)})
}

// ListComments GET /api/tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.tickets.ListComments(c.UserContext(), c.Params("id"), true)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.CommentFromDomain(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// LogTime POST /api/tickets/:id/time-entries.
func (h *TicketsHandler) LogTime(c *fiber.Ctx) error {
	actor, err := operatorActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTimeEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	entry, err := h.tickets.LogTime(c.UserContext(), actor, c.Params("id"), req.StartedAt, req.Minutes, req.Description, req.Billable)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TimeEntryFromDomain(entry)})
}

// ListTimeEntries GET /api/tickets/:id/time-entries.
func (h *TicketsHandler) ListTimeEntries(c *fiber.Ctx) error {
	entries, err := h.tickets.ListTimeEntries(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TimeEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.TimeEntryFromDomain(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SlaState GET /api/tickets/:id/sla.
func (h *TicketsHandler) SlaState(c *fiber.Ctx) error {
	state, err := h.sla.GetTicketSlaState(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	violations := make([]dto.ViolationResponse, 0, len(state.Violations))
	for i := range state.Violations {
		violations = append(violations, dto.ViolationFromDomain(&state.Violations[i], now))
	}
	response := fiber.Map{"violations": violations}
	if state.Definition != nil {
		def := dto.SlaDefinitionFromDomain(state.Definition)
		response["definition"] = def
		response["response_due"] = state.ResponseDue
		response["resolution_due"] = state.ResolutionDue
	}
	return c.JSON(fiber.Map{"data": response})
}

// Escalate POST /api/tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	var req dto.FireEscalationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	if err := h.escalations.FireManual(c.UserContext(), req.RuleID, c.Params("id")); err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": fiber.Map{"fired": true}})
}

// ListEscalations GET /api/tickets/:id/escalations.
func (h *TicketsHandler) ListEscalations(c *fiber.Ctx) error {
	firings, err := h.escalations.ListFirings(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.EscalationEventResponse, 0, len(firings))
	for i := range firings {
		items = append(items, dto.EscalationEventFromDomain(&firings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func operatorActor(c *fiber.Ctx) (events.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return events.Actor{}, apperrors.NewUnauthorized("operator required")
	}
	return events.Actor{Type: domain.SubjectTypeUser, UserID: &principal.User.ID}, nil
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("client_id"); v != "" {
		filter.ClientID = &v
	}
	if v := c.Query("assigned_to"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
		}
	}
	if v := c.Query("priority"); v != "" {
		for _, p := range strings.Split(v, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
		}
	}
	if v := c.Query("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Types = append(filter.Types, domain.TicketType(t))
		}
	}
	if v := c.Query("q"); v != "" {
		filter.SearchTerm = &v
	}
	if v := c.Query("created_from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedFrom = &ts
		}
	}
	if v := c.Query("created_to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedTo = &ts
		}
	}
	return filter
}

func parseIntQuery(c *fiber.Ctx, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
