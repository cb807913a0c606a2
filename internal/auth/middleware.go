package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/tenant"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	SubjectType    domain.SubjectType
	OrganizationID string
	User           *domain.User
	PortalUser     *domain.ClientUser
	Role           *domain.UserRole
}

// Actor identifies the principal for audit records.
func (p *Principal) Actor() (domain.SubjectType, *string) {
	switch p.SubjectType {
	case domain.SubjectTypeUser:
		if p.User != nil {
			return p.SubjectType, &p.User.ID
		}
	case domain.SubjectTypePortal:
		if p.PortalUser != nil {
			return p.SubjectType, &p.PortalUser.ID
		}
	}
	return p.SubjectType, nil
}

// AuthMiddleware validates bearer tokens, loads principals, and scopes
// the request context to the token's organization.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	clients repository.ClientRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, clients repository.ClientRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, clients: clients}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{
		SubjectType:    claims.Subject,
		OrganizationID: claims.OrganizationID,
		Role:           claims.Role,
	}

	ctx := tenant.WithOrganization(c.UserContext(), claims.OrganizationID)

	switch claims.Subject {
	case domain.SubjectTypeUser:
		user, err := m.users.GetByID(ctx, claims.OrganizationID, claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("user not found")
			}
			return apperrors.ToDomainError(err)
		}
		if !user.IsActive {
			return apperrors.NewUnauthorized("user is inactive")
		}
		principal.User = user
	case domain.SubjectTypePortal:
		portalUser, err := m.clients.GetUserByID(ctx, claims.OrganizationID, claims.SubjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewUnauthorized("portal user not found")
			}
			return apperrors.ToDomainError(err)
		}
		if !portalUser.IsActive {
			return apperrors.NewUnauthorized("portal user is inactive")
		}
		principal.PortalUser = portalUser
	default:
		return apperrors.NewUnauthorized("unknown subject")
	}

	c.Locals(principalKey, principal)
	c.SetUserContext(ctx)
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
