package tenant

import (
	"context"
	"errors"
)

type contextKey struct{}

// ErrMissingOrganization is returned when a core operation runs without
// a tenant scope in its context.
var ErrMissingOrganization = errors.New("organization scope missing from context")

// WithOrganization returns a context scoped to the given organization.
func WithOrganization(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, contextKey{}, organizationID)
}

// OrganizationFromContext extracts the tenant scope.
func OrganizationFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// RequireOrganization extracts the tenant scope or fails.
func RequireOrganization(ctx context.Context) (string, error) {
	id, ok := OrganizationFromContext(ctx)
	if !ok {
		return "", ErrMissingOrganization
	}
	return id, nil
}
