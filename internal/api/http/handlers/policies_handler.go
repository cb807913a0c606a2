package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// PoliciesHandler serves SLA definition and escalation rule authoring.
type PoliciesHandler struct {
	policies *service.PolicyService
}

// NewPoliciesHandler constructs handler.
func NewPoliciesHandler(policyService *service.PolicyService) *PoliciesHandler {
	return &PoliciesHandler{policies: policyService}
}

// CreateSlaDefinition POST /api/sla-definitions.
func (h *PoliciesHandler) CreateSlaDefinition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SlaDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	def, err := req.ToDomain()
	if err != nil {
		return apperrors.NewValidationError("invalid holiday date", nil)
	}
	actorType, actorID := principal.Actor()
	created, err := h.policies.CreateSlaDefinition(c.UserContext(), actorType, actorID, def)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SlaDefinitionFromDomain(created)})
}

// UpdateSlaDefinition PUT /api/sla-definitions/:id.
func (h *PoliciesHandler) UpdateSlaDefinition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SlaDefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	def, err := req.ToDomain()
	if err != nil {
		return apperrors.NewValidationError("invalid holiday date", nil)
	}
	def.ID = c.Params("id")
	actorType, actorID := principal.Actor()
	updated, err := h.policies.UpdateSlaDefinition(c.UserContext(), actorType, actorID, def)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlaDefinitionFromDomain(updated)})
}

// DeleteSlaDefinition DELETE /api/sla-definitions/:id.
func (h *PoliciesHandler) DeleteSlaDefinition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	actorType, actorID := principal.Actor()
	if err := h.policies.DeactivateSlaDefinition(c.UserContext(), actorType, actorID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSlaDefinition GET /api/sla-definitions/:id.
func (h *PoliciesHandler) GetSlaDefinition(c *fiber.Ctx) error {
	def, err := h.policies.GetSlaDefinition(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SlaDefinitionFromDomain(def)})
}

// ListSlaDefinitions GET /api/sla-definitions.
func (h *PoliciesHandler) ListSlaDefinitions(c *fiber.Ctx) error {
	defs, err := h.policies.ListSlaDefinitions(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.SlaDefinitionResponse, 0, len(defs))
	for i := range defs {
		items = append(items, dto.SlaDefinitionFromDomain(&defs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateEscalationRule POST /api/escalation-rules.
func (h *PoliciesHandler) CreateEscalationRule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	created, err := h.policies.CreateEscalationRule(c.UserContext(), actorType, actorID, req.ToDomain())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.EscalationRuleFromDomain(created)})
}

// UpdateEscalationRule PUT /api/escalation-rules/:id.
func (h *PoliciesHandler) UpdateEscalationRule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.EscalationRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	rule := req.ToDomain()
	rule.ID = c.Params("id")
	actorType, actorID := principal.Actor()
	updated, err := h.policies.UpdateEscalationRule(c.UserContext(), actorType, actorID, rule)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalationRuleFromDomain(updated)})
}

// DeleteEscalationRule DELETE /api/escalation-rules/:id.
func (h *PoliciesHandler) DeleteEscalationRule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	actorType, actorID := principal.Actor()
	if err := h.policies.DeactivateEscalationRule(c.UserContext(), actorType, actorID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetEscalationRule GET /api/escalation-rules/:id.
func (h *PoliciesHandler) GetEscalationRule(c *fiber.Ctx) error {
	rule, err := h.policies.GetEscalationRule(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.EscalationRuleFromDomain(rule)})
}

// ListEscalationRules GET /api/escalation-rules.
func (h *PoliciesHandler) ListEscalationRules(c *fiber.Ctx) error {
	rules, err := h.policies.ListEscalationRules(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.EscalationRuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, dto.EscalationRuleFromDomain(&rules[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
