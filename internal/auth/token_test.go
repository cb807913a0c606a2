package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/msp-platform/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	role := domain.UserRoleAdmin

	token, expiresAt, err := tm.GenerateToken("user-1", "org-1", domain.SubjectTypeUser, &role)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, "org-1", claims.OrganizationID)
	assert.Equal(t, domain.SubjectTypeUser, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.UserRoleAdmin, *claims.Role)
}

func TestPortalTokenCarriesNoRole(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, _, err := tm.GenerateToken("portal-1", "org-1", domain.SubjectTypePortal, nil)
	require.NoError(t, err)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypePortal, claims.Subject)
	assert.Nil(t, claims.Role)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 60).GenerateToken("user-1", "org-1", domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 60).ParseToken(token)
	assert.Error(t, err)
}

func TestParseRejectsMissingOrganization(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	token, _, err := tm.GenerateToken("user-1", "", domain.SubjectTypeUser, nil)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err, "a token without tenant scope is unusable")
}

func TestParseRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	_, err := tm.ParseToken("not.a.jwt")
	assert.Error(t, err)
}
