package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/msp-platform/internal/auth"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/pkg/apperrors"
)

// AuthService handles operator and client-portal login.
type AuthService struct {
	users      repository.UserRepository
	clients    repository.ClientRepository
	tokens     *auth.TokenManager
	audit      *AuditService
	bcryptCost int
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewAuthService(userRepo repository.UserRepository, clientRepo repository.ClientRepository, tokens *auth.TokenManager, audit *AuditService, bcryptCost int) *AuthService {
	return &AuthService{users: userRepo, clients: clientRepo, tokens: tokens, audit: audit, bcryptCost: bcryptCost}
}

// Login authenticates an operator by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.OrganizationID, domain.SubjectTypeUser, &user.Role)
	if err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, user.OrganizationID, "auth.login", "user", user.ID,
		nil, nil, domain.SubjectTypeUser, &user.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// PortalLogin authenticates a client-portal user by email and password.
func (s *AuthService) PortalLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	portalUser, err := s.clients.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !portalUser.IsActive {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(portalUser.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(portalUser.ID, portalUser.OrganizationID, domain.SubjectTypePortal, nil)
	if err != nil {
		return nil, err
	}
	s.audit.RecordChange(ctx, portalUser.OrganizationID, "auth.portal_login", "client_user", portalUser.ID,
		nil, nil, domain.SubjectTypePortal, &portalUser.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}

// RegisterUser creates an operator account.
func (s *AuthService) RegisterUser(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	user.IsActive = true
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RegisterPortalUser creates a portal account under a client.
func (s *AuthService) RegisterPortalUser(ctx context.Context, portalUser *domain.ClientUser, password string) (*domain.ClientUser, error) {
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	portalUser.PasswordHash = hash
	portalUser.IsActive = true
	if err := s.clients.CreateUser(ctx, portalUser); err != nil {
		return nil, err
	}
	return portalUser, nil
}
