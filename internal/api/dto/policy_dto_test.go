package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slaDefinitionRequest() SlaDefinitionRequest {
	return SlaDefinitionRequest{
		Priority:            "high",
		TicketType:          "incident",
		ResponseTimeHours:   2,
		ResolutionTimeHours: 16,
		BusinessHoursStart:  9,
		BusinessHoursEnd:    17,
		BusinessDays:        []int{1, 2, 3, 4, 5},
	}
}

func TestSlaDefinitionRequestAcceptsZeroHours(t *testing.T) {
	req := slaDefinitionRequest()
	req.ResponseTimeHours = 0
	req.ResolutionTimeHours = 0
	assert.NoError(t, Validate(req))
}

func TestSlaDefinitionRequestRejectsNegativeHours(t *testing.T) {
	req := slaDefinitionRequest()
	req.ResponseTimeHours = -1
	require.Error(t, Validate(req))

	req = slaDefinitionRequest()
	req.ResolutionTimeHours = -4
	require.Error(t, Validate(req))
}
