package domain

import "time"

// AssetStatus enumerates asset lifecycle states.
type AssetStatus string

const (
	AssetStatusActive   AssetStatus = "active"
	AssetStatusInRepair AssetStatus = "in_repair"
	AssetStatusRetired  AssetStatus = "retired"
)

// Asset is a hardware or software record tracked for a client.
type Asset struct {
	ID             string
	OrganizationID string
	ClientID       string
	Name           string
	AssetType      string
	SerialNumber   *string
	Status         AssetStatus
	Attributes     map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
