package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// BillingHandler serves invoice endpoints.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs handler.
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billingService}
}

// Generate POST /api/invoices/generate.
func (h *BillingHandler) Generate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.GenerateInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	invoice, err := h.billing.GenerateInvoice(c.UserContext(), actorType, actorID, req.ClientID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.InvoiceFromDomain(invoice)})
}

// Get GET /api/invoices/:id.
func (h *BillingHandler) Get(c *fiber.Ctx) error {
	invoice, err := h.billing.GetInvoice(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.InvoiceFromDomain(invoice)})
}

// List GET /api/invoices.
func (h *BillingHandler) List(c *fiber.Ctx) error {
	invoices, err := h.billing.ListInvoices(c.UserContext(), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, dto.InvoiceFromDomain(&invoices[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
