package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// AuthHandler serves operator and portal login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// PortalLogin POST /api/auth/portal/login.
func (h *AuthHandler) PortalLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.PortalLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// RegisterUser POST /api/auth/users. Admin only.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	user := &domain.User{
		OrganizationID: principal.OrganizationID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           domain.UserRole(req.Role),
		ManagerID:      req.ManagerID,
	}
	created, err := h.service.RegisterUser(c.UserContext(), user, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":    created.ID,
		"name":  created.Name,
		"email": created.Email,
		"role":  created.Role,
	}})
}

// RegisterPortalUser POST /api/auth/portal/users. Admin only.
func (h *AuthHandler) RegisterPortalUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.RegisterPortalUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	portalUser := &domain.ClientUser{
		OrganizationID: principal.OrganizationID,
		ClientID:       req.ClientID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
	}
	created, err := h.service.RegisterPortalUser(c.UserContext(), portalUser, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"id":        created.ID,
		"client_id": created.ClientID,
		"name":      created.Name,
		"email":     created.Email,
	}})
}
