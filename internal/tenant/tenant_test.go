package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationRoundTrip(t *testing.T) {
	ctx := WithOrganization(context.Background(), "org-1")

	id, ok := OrganizationFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "org-1", id)

	id, err := RequireOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org-1", id)
}

func TestMissingOrganization(t *testing.T) {
	_, ok := OrganizationFromContext(context.Background())
	assert.False(t, ok)

	_, err := RequireOrganization(context.Background())
	assert.ErrorIs(t, err, ErrMissingOrganization)
}

func TestEmptyOrganizationTreatedAsMissing(t *testing.T) {
	ctx := WithOrganization(context.Background(), "")
	_, err := RequireOrganization(ctx)
	assert.ErrorIs(t, err, ErrMissingOrganization)
}

func TestScopeOverride(t *testing.T) {
	ctx := WithOrganization(context.Background(), "org-1")
	ctx = WithOrganization(ctx, "org-2")

	id, err := RequireOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org-2", id)
}
