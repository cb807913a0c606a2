package domain

import "time"

// SlaViolationType names which deadline a violation refers to.
type SlaViolationType string

const (
	ViolationTypeResponse   SlaViolationType = "response_time"
	ViolationTypeResolution SlaViolationType = "resolution_time"
)

// SlaDefinition declares response/resolution budgets for one
// (priority, ticket type) pair within an organization. At most one
// active definition may exist per pair.
type SlaDefinition struct {
	ID                  string
	OrganizationID      string
	Priority            TicketPriority
	TicketType          TicketType
	ResponseTimeHours   int
	ResolutionTimeHours int
	BusinessHoursStart  int         // 0-23, inclusive
	BusinessHoursEnd    int         // 0-23, exclusive
	BusinessDays        []int       // ISO weekdays, Monday=1 .. Sunday=7
	Holidays            []time.Time // calendar dates excluded from the clock
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate rejects unusable configuration at authoring time. A window
// with start == end means no business hours are ever in scope, so it is
// refused here rather than surfacing as a never-ending SLA clock.
func (d *SlaDefinition) Validate() error {
	if !ValidPriority(d.Priority) {
		return NewFieldError("priority", "unknown priority")
	}
	if !ValidType(d.TicketType) {
		return NewFieldError("ticket_type", "unknown ticket type")
	}
	if d.ResponseTimeHours < 0 {
		return NewFieldError("response_time_hours", "must not be negative")
	}
	if d.ResolutionTimeHours < 0 {
		return NewFieldError("resolution_time_hours", "must not be negative")
	}
	if d.BusinessHoursStart < 0 || d.BusinessHoursStart > 23 {
		return NewFieldError("business_hours_start", "must be within 0-23")
	}
	if d.BusinessHoursEnd < 0 || d.BusinessHoursEnd > 23 {
		return NewFieldError("business_hours_end", "must be within 0-23")
	}
	if d.BusinessHoursStart >= d.BusinessHoursEnd {
		return NewFieldError("business_hours_start", "must be before business_hours_end")
	}
	if len(d.BusinessDays) == 0 {
		return NewFieldError("business_days", "at least one business day required")
	}
	seen := map[int]bool{}
	for _, day := range d.BusinessDays {
		if day < 1 || day > 7 {
			return NewFieldError("business_days", "weekdays must be within 1-7")
		}
		if seen[day] {
			return NewFieldError("business_days", "duplicate weekday")
		}
		seen[day] = true
	}
	return nil
}

// SlaViolation is a derived record of one missed deadline on a ticket.
// ViolationMinutes is intentionally not a field: it is computed on read
// from ExpectedTime/ActualTime so it can never go stale.
type SlaViolation struct {
	ID             string
	OrganizationID string
	TicketID       string
	ViolationType  SlaViolationType
	ExpectedTime   time.Time
	ActualTime     *time.Time
	IsResolved     bool
	ResolvedAt     *time.Time
	CreatedAt      time.Time
}

// Minutes reports how far past the deadline the ticket was (or is,
// measured against now for an unresolved violation).
func (v *SlaViolation) Minutes(now time.Time) int {
	end := now
	if v.ActualTime != nil {
		end = *v.ActualTime
	}
	if end.Before(v.ExpectedTime) {
		return 0
	}
	return int(end.Sub(v.ExpectedTime) / time.Minute)
}
