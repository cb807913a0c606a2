package sla

import (
	"errors"
	"time"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// ErrNoBusinessTime is returned when the forward walk cannot find an
// in-window instant within the scan horizon (every candidate day is a
// holiday or outside the weekday set).
var ErrNoBusinessTime = errors.New("no business time available within scan horizon")

// maxScanDays bounds the forward walk so a calendar whose holidays
// swallow every business day cannot loop forever.
const maxScanDays = 1100

// Calendar is the business-time window an SLA clock runs in. Hours are
// whole-hour boundaries; Days holds ISO weekdays (Monday=1..Sunday=7);
// Holidays are calendar dates excluded from counting. All walking
// happens in Location.
type Calendar struct {
	StartHour int
	EndHour   int
	Days      map[int]bool
	Holidays  map[string]bool // keyed yyyy-mm-dd in Location
	Location  *time.Location
}

// CalendarFromDefinition builds a Calendar from an authored definition.
func CalendarFromDefinition(def *domain.SlaDefinition, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	days := make(map[int]bool, len(def.BusinessDays))
	for _, d := range def.BusinessDays {
		days[d] = true
	}
	holidays := make(map[string]bool, len(def.Holidays))
	for _, h := range def.Holidays {
		holidays[h.In(loc).Format(time.DateOnly)] = true
	}
	return Calendar{
		StartHour: def.BusinessHoursStart,
		EndHour:   def.BusinessHoursEnd,
		Days:      days,
		Holidays:  holidays,
		Location:  loc,
	}
}

// Deadline walks forward from start consuming only business time until
// the budget is exhausted and returns the instant of exhaustion. A zero
// budget resolves to the next business-hour boundary. The computation
// is pure: identical inputs always yield the identical timestamp.
func (c Calendar) Deadline(start time.Time, budget time.Duration) (time.Time, error) {
	if budget < 0 {
		budget = 0
	}
	cur, err := c.nextBusinessInstant(start.In(c.location()))
	if err != nil {
		return time.Time{}, err
	}
	remaining := budget
	for remaining > 0 {
		windowEnd := c.windowEnd(cur)
		available := windowEnd.Sub(cur)
		if available >= remaining {
			return cur.Add(remaining), nil
		}
		remaining -= available
		cur, err = c.nextBusinessInstant(windowEnd)
		if err != nil {
			return time.Time{}, err
		}
	}
	return cur, nil
}

// isBusinessDay reports whether the date of t counts toward the clock.
func (c Calendar) isBusinessDay(t time.Time) bool {
	iso := int(t.Weekday())
	if iso == 0 {
		iso = 7
	}
	if !c.Days[iso] {
		return false
	}
	return !c.Holidays[t.Format(time.DateOnly)]
}

// nextBusinessInstant clamps t forward to the first instant inside a
// business window.
func (c Calendar) nextBusinessInstant(t time.Time) (time.Time, error) {
	t = t.In(c.location())
	for i := 0; i < maxScanDays; i++ {
		if c.isBusinessDay(t) {
			open := c.windowStart(t)
			if t.Before(open) {
				return open, nil
			}
			if t.Before(c.windowEnd(t)) {
				return t, nil
			}
		}
		t = c.windowStart(t.AddDate(0, 0, 1))
	}
	return time.Time{}, ErrNoBusinessTime
}

func (c Calendar) windowStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.StartHour, 0, 0, 0, c.location())
}

func (c Calendar) windowEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.EndHour, 0, 0, 0, c.location())
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Deadlines carries the absolute due timestamps for one ticket.
type Deadlines struct {
	ResponseDue   time.Time
	ResolutionDue time.Time
}

// ComputeDeadlines derives both deadlines for a ticket created at the
// given instant under the given definition.
func ComputeDeadlines(def *domain.SlaDefinition, createdAt time.Time, loc *time.Location) (Deadlines, error) {
	cal := CalendarFromDefinition(def, loc)
	response, err := cal.Deadline(createdAt, time.Duration(def.ResponseTimeHours)*time.Hour)
	if err != nil {
		return Deadlines{}, err
	}
	resolution, err := cal.Deadline(createdAt, time.Duration(def.ResolutionTimeHours)*time.Hour)
	if err != nil {
		return Deadlines{}, err
	}
	return Deadlines{ResponseDue: response, ResolutionDue: resolution}, nil
}
