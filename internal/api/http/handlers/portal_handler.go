package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// PortalHandler serves the client-portal ticket surface.
type PortalHandler struct {
	portal *service.PortalService
}

// NewPortalHandler constructs handler.
func NewPortalHandler(portalService *service.PortalService) *PortalHandler {
	return &PortalHandler{portal: portalService}
}

// OpenTicket POST /api/portal/tickets.
func (h *PortalHandler) OpenTicket(c *fiber.Ctx) error {
	portalUser, err := portalPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PortalTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	ticket, err := h.portal.OpenTicket(c.UserContext(), portalUser, req.Subject, req.Description, domain.TicketType(req.Type))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// ListTickets GET /api/portal/tickets.
func (h *PortalHandler) ListTickets(c *fiber.Ctx) error {
	portalUser, err := portalPrincipal(c)
	if err != nil {
		return err
	}
	tickets, err := h.portal.ListTickets(c.UserContext(), portalUser, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// GetTicket GET /api/portal/tickets/:id.
func (h *PortalHandler) GetTicket(c *fiber.Ctx) error {
	portalUser, err := portalPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.portal.GetTicket(c.UserContext(), portalUser, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// AddComment POST /api/portal/tickets/:id/comments.
func (h *PortalHandler) AddComment(c *fiber.Ctx) error {
	portalUser, err := portalPrincipal(c)
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
	comment, err := h.portal.AddComment(c.UserContext(), portalUser, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CommentFromDomain(comment)})
}

// ListComments GET /api/portal/tickets/:id/comments.
func (h *PortalHandler) ListComments(c *fiber.Ctx) error {
	portalUser, err := portalPrincipal(c)
	if err != nil {
		return err
	}
	comments, err := h.portal.ListComments(c.UserContext(), portalUser, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.CommentFromDomain(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Settings GET /api/portal/settings.
func (h *PortalHandler) Settings(c *fiber.Ctx) error {
	settings, err := h.portal.Settings(c.UserContext())
	if err != nil {
		return err
	}
	types := make([]string, 0, len(settings.AllowedTicketTypes))
	for _, t := range settings.AllowedTicketTypes {
		types = append(types, string(t))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"welcome_message":      settings.WelcomeMessage,
		"allowed_ticket_types": types,
		"sms_updates_enabled":  settings.SmsUpdatesEnabled,
	}})
}

// UpdateSettings PUT /api/portal/settings. Admin only.
func (h *PortalHandler) UpdateSettings(c *fiber.Ctx) error {
	var req dto.PortalSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	types := make([]domain.TicketType, 0, len(req.AllowedTicketTypes))
	for _, t := range req.AllowedTicketTypes {
		types = append(types, domain.TicketType(t))
	}
	settings := &domain.PortalSettings{
		WelcomeMessage:     req.WelcomeMessage,
		AllowedTicketTypes: types,
		SmsUpdatesEnabled:  req.SmsUpdatesEnabled,
	}
	if err := h.portal.UpdateSettings(c.UserContext(), settings); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

func portalPrincipal(c *fiber.Ctx) (*domain.ClientUser, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.PortalUser == nil {
		return nil, apperrors.NewUnauthorized("portal access required")
	}
	return principal.PortalUser, nil
}
