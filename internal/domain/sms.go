package domain

import "time"

// SmsStatus enumerates delivery states for queued SMS messages.
type SmsStatus string

const (
	SmsStatusPending SmsStatus = "pending"
	SmsStatusSent    SmsStatus = "sent"
	SmsStatusFailed  SmsStatus = "failed"
)

// SmsNotification is a queued outbound SMS with bounded retry state.
type SmsNotification struct {
	ID             string
	OrganizationID string
	TicketID       *string
	Recipient      string
	Body           string
	Status         SmsStatus
	RetryCount     int
	NextRetryAt    *time.Time
	LastError      *string
	SentAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
