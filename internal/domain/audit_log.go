package domain

import "time"

// AuditSeverity grades audit entries.
type AuditSeverity string

const (
	SeverityInfo    AuditSeverity = "info"
	SeverityWarning AuditSeverity = "warning"
	SeverityHigh    AuditSeverity = "high"
)

// AuditLog records one mutation of a policy-relevant entity with
// structured before/after snapshots and actor metadata.
type AuditLog struct {
	ID             string
	OrganizationID string
	Action         string
	EntityType     string
	EntityID       string
	OldValues      map[string]any
	NewValues      map[string]any
	Severity       AuditSeverity
	ActorType      SubjectType
	ActorID        *string
	IPAddress      *string
	SessionID      *string
	CreatedAt      time.Time
}
