package domain

import "time"

// UserRole enumerates operator roles within an organization.
type UserRole string

const (
	UserRoleAdmin      UserRole = "admin"
	UserRoleTechnician UserRole = "technician"
	UserRoleDispatcher UserRole = "dispatcher"
)

// User models an internal operator (technician, dispatcher, admin).
type User struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	Phone          *string
	PasswordHash   string
	Role           UserRole
	ManagerID      *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
