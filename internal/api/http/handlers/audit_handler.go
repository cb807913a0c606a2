package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// AuditHandler serves the audit trail read API.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: auditService}
}

// List GET /api/audit/logs.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	orgID, err := tenant.RequireOrganization(c.UserContext())
	if err != nil {
		return err
	}
	filter := repository.AuditFilter{
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if v := c.Query("action"); v != "" {
		filter.Action = &v
	}
	if v := c.Query("entity_type"); v != "" {
		filter.EntityType = &v
	}
	if v := c.Query("entity_id"); v != "" {
		filter.EntityID = &v
	}
	if v := c.Query("severity"); v != "" {
		sev := domain.AuditSeverity(v)
		filter.Severity = &sev
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &ts
		}
	}

	logs, err := h.audit.List(c.UserContext(), orgID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, dto.AuditLogFromDomain(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Summary GET /api/audit/summary.
func (h *AuditHandler) Summary(c *fiber.Ctx) error {
	orgID, err := tenant.RequireOrganization(c.UserContext())
	if err != nil {
		return err
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return apperrors.NewValidationError("from (RFC3339) required", nil)
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return apperrors.NewValidationError("to (RFC3339) required", nil)
	}

	summary, err := h.audit.Summary(c.UserContext(), orgID, repository.AuditFilter{From: &from, To: &to})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"total":       summary.Total,
		"by_action":   summary.ByAction,
		"by_severity": summary.BySeverity,
	}})
}
