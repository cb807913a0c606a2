package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/service"
)

// ViolationsHandler serves the SLA violation read model.
type ViolationsHandler struct {
	sla *service.SlaService
}

// NewViolationsHandler constructs handler.
func NewViolationsHandler(slaService *service.SlaService) *ViolationsHandler {
	return &ViolationsHandler{sla: slaService}
}

// List GET /api/violations.
func (h *ViolationsHandler) List(c *fiber.Ctx) error {
	onlyOpen := c.Query("open") == "true"
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	violations, err := h.sla.ListViolations(c.UserContext(), onlyOpen, limit, offset)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	items := make([]dto.ViolationResponse, 0, len(violations))
	for i := range violations {
		items = append(items, dto.ViolationFromDomain(&violations[i], now))
	}
	return c.JSON(fiber.Map{"data": items})
}
