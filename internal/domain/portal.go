package domain

import "time"

// PortalSettings configures the client-facing portal per organization.
type PortalSettings struct {
	OrganizationID     string
	WelcomeMessage     string
	AllowedTicketTypes []TicketType
	SmsUpdatesEnabled  bool
	UpdatedAt          time.Time
}
