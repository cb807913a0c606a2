package domain

import "time"

// Client is a serviced company under an organization.
type Client struct {
	ID             string
	OrganizationID string
	Name           string
	ContactName    *string
	ContactEmail   *string
	ContactPhone   *string
	Address        *string
	PortalEnabled  bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ClientUser is a client-portal login associated with one client.
type ClientUser struct {
	ID             string
	OrganizationID string
	ClientID       string
	Name           string
	Email          string
	Phone          *string
	PasswordHash   string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
