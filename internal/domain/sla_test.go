package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() SlaDefinition {
	return SlaDefinition{
		Priority:            TicketPriorityHigh,
		TicketType:          TicketTypeIncident,
		ResponseTimeHours:   2,
		ResolutionTimeHours: 16,
		BusinessHoursStart:  9,
		BusinessHoursEnd:    17,
		BusinessDays:        []int{1, 2, 3, 4, 5},
		IsActive:            true,
	}
}

func TestSlaDefinitionValidate(t *testing.T) {
	def := validDefinition()
	require.NoError(t, def.Validate())

	def = validDefinition()
	def.Priority = TicketPriority("urgent")
	assert.Error(t, def.Validate())

	def = validDefinition()
	def.ResponseTimeHours = -1
	assert.Error(t, def.Validate())

	def = validDefinition()
	def.BusinessHoursStart = 17
	def.BusinessHoursEnd = 17
	assert.Error(t, def.Validate(), "empty business window must be refused")

	def = validDefinition()
	def.BusinessHoursStart = 18
	def.BusinessHoursEnd = 9
	assert.Error(t, def.Validate())

	def = validDefinition()
	def.BusinessDays = nil
	assert.Error(t, def.Validate())

	def = validDefinition()
	def.BusinessDays = []int{1, 8}
	assert.Error(t, def.Validate())

	def = validDefinition()
	def.BusinessDays = []int{1, 1}
	assert.Error(t, def.Validate())
}

func TestViolationMinutesDerived(t *testing.T) {
	expected := time.Date(2024, time.May, 6, 12, 0, 0, 0, time.UTC)
	v := SlaViolation{ViolationType: ViolationTypeResponse, ExpectedTime: expected}

	// unresolved: measured against now, so it grows between reads
	assert.Equal(t, 30, v.Minutes(expected.Add(30*time.Minute)))
	assert.Equal(t, 90, v.Minutes(expected.Add(90*time.Minute)))

	// resolved: pinned to actual_time regardless of now
	actual := expected.Add(45 * time.Minute)
	v.ActualTime = &actual
	assert.Equal(t, 45, v.Minutes(expected.Add(10*time.Hour)))

	// never negative
	early := expected.Add(-time.Hour)
	v.ActualTime = &early
	assert.Equal(t, 0, v.Minutes(expected))
}
