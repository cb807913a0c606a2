package dto

import (
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// ClientRequest creates or updates a client.
type ClientRequest struct {
	Name          string  `json:"name" validate:"required,max=255"`
	ContactName   *string `json:"contact_name,omitempty"`
	ContactEmail  *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone  *string `json:"contact_phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	PortalEnabled bool    `json:"portal_enabled"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// ClientResponse is the wire shape of a client.
type ClientResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactName   *string   `json:"contact_name,omitempty"`
	ContactEmail  *string   `json:"contact_email,omitempty"`
	ContactPhone  *string   `json:"contact_phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	PortalEnabled bool      `json:"portal_enabled"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ContractRequest creates or updates a billing contract.
type ContractRequest struct {
	ClientID        string     `json:"client_id" validate:"required,uuid4"`
	Name            string     `json:"name" validate:"required,max=255"`
	BillingModel    string     `json:"billing_model" validate:"required,oneof=hourly fixed retainer"`
	HourlyRateCents int64      `json:"hourly_rate_cents" validate:"min=0"`
	StartDate       time.Time  `json:"start_date" validate:"required"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status,omitempty" validate:"omitempty,oneof=active expired terminated"`
}

// ContractResponse is the wire shape of a contract.
type ContractResponse struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	Name            string     `json:"name"`
	BillingModel    string     `json:"billing_model"`
	HourlyRateCents int64      `json:"hourly_rate_cents"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// AssetRequest creates or updates an asset.
type AssetRequest struct {
	ClientID     string         `json:"client_id" validate:"required,uuid4"`
	Name         string         `json:"name" validate:"required,max=255"`
	AssetType    string         `json:"asset_type" validate:"required,max=100"`
	SerialNumber *string        `json:"serial_number,omitempty"`
	Status       string         `json:"status,omitempty" validate:"omitempty,oneof=active in_repair retired"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

// AssetResponse is the wire shape of an asset.
type AssetResponse struct {
	ID           string         `json:"id"`
	ClientID     string         `json:"client_id"`
	Name         string         `json:"name"`
	AssetType    string         `json:"asset_type"`
	SerialNumber *string        `json:"serial_number,omitempty"`
	Status       string         `json:"status"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ClientFromDomain maps a client to its wire shape.
func ClientFromDomain(c *domain.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID,
		Name:          c.Name,
		ContactName:   c.ContactName,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		Address:       c.Address,
		PortalEnabled: c.PortalEnabled,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ContractFromDomain maps a contract to its wire shape.
func ContractFromDomain(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:              c.ID,
		ClientID:        c.ClientID,
		Name:            c.Name,
		BillingModel:    string(c.BillingModel),
		HourlyRateCents: c.HourlyRateCents,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		Status:          string(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// AssetFromDomain maps an asset to its wire shape.
func AssetFromDomain(a *domain.Asset) AssetResponse {
	return AssetResponse{
		ID:           a.ID,
		ClientID:     a.ClientID,
		Name:         a.Name,
		AssetType:    a.AssetType,
		SerialNumber: a.SerialNumber,
		Status:       string(a.Status),
		Attributes:   a.Attributes,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
