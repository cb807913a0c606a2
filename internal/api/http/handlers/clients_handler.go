package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// ClientsHandler serves client, contract, and asset management.
type ClientsHandler struct {
	clients *service.ClientService
	assets  *service.AssetService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clientService *service.ClientService, assetService *service.AssetService) *ClientsHandler {
	return &ClientsHandler{clients: clientService, assets: assetService}
}

// Create POST /api/clients.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	client, err := h.clients.CreateClient(c.UserContext(), actorType, actorID, &domain.Client{
		Name:          req.Name,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Address:       req.Address,
		PortalEnabled: req.PortalEnabled,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ClientFromDomain(client)})
}

// Update PUT /api/clients/:id.
func (h *ClientsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	client := &domain.Client{
		ID:            c.Params("id"),
		Name:          req.Name,
		ContactName:   req.ContactName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Address:       req.Address,
		PortalEnabled: req.PortalEnabled,
		IsActive:      true,
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	actorType, actorID := principal.Actor()
	updated, err := h.clients.UpdateClient(c.UserContext(), actorType, actorID, client)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClientFromDomain(updated)})
}

// Get GET /api/clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.clients.GetClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ClientFromDomain(client)})
}

// List GET /api/clients.
func (h *ClientsHandler) List(c *fiber.Ctx) error {
	clients, err := h.clients.ListClients(c.UserContext(), parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		items = append(items, dto.ClientFromDomain(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateContract POST /api/contracts.
func (h *ClientsHandler) CreateContract(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	contract, err := h.clients.CreateContract(c.UserContext(), actorType, actorID, &domain.Contract{
		ClientID:        req.ClientID,
		Name:            req.Name,
		BillingModel:    domain.BillingModel(req.BillingModel),
		HourlyRateCents: req.HourlyRateCents,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          domain.ContractStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.ContractFromDomain(contract)})
}

// UpdateContract PUT /api/contracts/:id.
func (h *ClientsHandler) UpdateContract(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	contract, err := h.clients.UpdateContract(c.UserContext(), actorType, actorID, &domain.Contract{
		ID:              c.Params("id"),
		Name:            req.Name,
		BillingModel:    domain.BillingModel(req.BillingModel),
		HourlyRateCents: req.HourlyRateCents,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Status:          domain.ContractStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ContractFromDomain(contract)})
}

// GetContract GET /api/contracts/:id.
func (h *ClientsHandler) GetContract(c *fiber.Ctx) error {
	contract, err := h.clients.GetContract(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ContractFromDomain(contract)})
}

// ListContracts GET /api/clients/:id/contracts.
func (h *ClientsHandler) ListContracts(c *fiber.Ctx) error {
	contracts, err := h.clients.ListContracts(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ContractResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, dto.ContractFromDomain(&contracts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateAsset POST /api/assets.
func (h *ClientsHandler) CreateAsset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	asset, err := h.assets.CreateAsset(c.UserContext(), actorType, actorID, &domain.Asset{
		ClientID:     req.ClientID,
		Name:         req.Name,
		AssetType:    req.AssetType,
		SerialNumber: req.SerialNumber,
		Status:       domain.AssetStatus(req.Status),
		Attributes:   req.Attributes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AssetFromDomain(asset)})
}

// UpdateAsset PUT /api/assets/:id.
func (h *ClientsHandler) UpdateAsset(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	actorType, actorID := principal.Actor()
	asset, err := h.assets.UpdateAsset(c.UserContext(), actorType, actorID, &domain.Asset{
		ID:           c.Params("id"),
		Name:         req.Name,
		AssetType:    req.AssetType,
		SerialNumber: req.SerialNumber,
		Status:       domain.AssetStatus(req.Status),
		Attributes:   req.Attributes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssetFromDomain(asset)})
}

// GetAsset GET /api/assets/:id.
func (h *ClientsHandler) GetAsset(c *fiber.Ctx) error {
	asset, err := h.assets.GetAsset(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssetFromDomain(asset)})
}

// ListAssets GET /api/clients/:id/assets.
func (h *ClientsHandler) ListAssets(c *fiber.Ctx) error {
	assets, err := h.assets.ListAssets(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		items = append(items, dto.AssetFromDomain(&assets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
