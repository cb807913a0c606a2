package domain

import "time"

// SubjectType differentiates operator vs client-portal tokens.
type SubjectType string

const (
	SubjectTypeUser   SubjectType = "user"
	SubjectTypePortal SubjectType = "portal"
	SubjectTypeSystem SubjectType = "system"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID             string
	SubjectID      string
	Subject        SubjectType
	OrganizationID string
	Role           *UserRole
	ExpiresAt      time.Time
	IssuedAt       time.Time
}
