package domain

import "time"

// ContractStatus enumerates contract lifecycle states.
type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

// BillingModel enumerates how work under a contract is billed.
type BillingModel string

const (
	BillingModelHourly   BillingModel = "hourly"
	BillingModelFixed    BillingModel = "fixed"
	BillingModelRetainer BillingModel = "retainer"
)

// Contract defines billing terms for a client. HourlyRateCents keeps
// money in integer cents; the API surface renders decimal strings.
type Contract struct {
	ID              string
	OrganizationID  string
	ClientID        string
	Name            string
	BillingModel    BillingModel
	HourlyRateCents int64
	StartDate       time.Time
	EndDate         *time.Time
	Status          ContractStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
