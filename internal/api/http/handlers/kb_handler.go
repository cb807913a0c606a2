package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/msp-platform/internal/api/dto"
	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/service"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// KBHandler serves knowledge base endpoints. Portal principals only
// see published articles.
type KBHandler struct {
	kb *service.KBService
}

// NewKBHandler constructs handler.
func NewKBHandler(kbService *service.KBService) *KBHandler {
	return &KBHandler{kb: kbService}
}

// Create POST /api/kb.
func (h *KBHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.KBArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	article, err := h.kb.CreateArticle(c.UserContext(), principal.User.ID, &domain.KBArticle{
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.KBArticleFromDomain(article)})
}

// Update PUT /api/kb/:id.
func (h *KBHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.KBArticleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req); err != nil {
		return err
	}
	article, err := h.kb.UpdateArticle(c.UserContext(), principal.User.ID, &domain.KBArticle{
		ID:        c.Params("id"),
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KBArticleFromDomain(article)})
}

// Get GET /api/kb/:id.
func (h *KBHandler) Get(c *fiber.Ctx) error {
	article, err := h.kb.GetArticle(c.UserContext(), c.Params("id"), isPortalCaller(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.KBArticleFromDomain(article)})
}

// List GET /api/kb.
func (h *KBHandler) List(c *fiber.Ctx) error {
	publishedOnly := isPortalCaller(c) || c.Query("published") == "true"
	articles, err := h.kb.ListArticles(c.UserContext(), publishedOnly, parseIntQuery(c, "limit", 50), parseIntQuery(c, "offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.KBArticleResponse, 0, len(articles))
	for i := range articles {
		items = append(items, dto.KBArticleFromDomain(&articles[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func isPortalCaller(c *fiber.Ctx) bool {
	principal, ok := auth.PrincipalFromContext(c)
	return ok && principal.SubjectType == domain.SubjectTypePortal
}
