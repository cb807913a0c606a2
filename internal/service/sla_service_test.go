package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/tenant"
)

type slaFixture struct {
	service     *SlaService
	tickets     *memTicketRepo
	definitions *memDefinitionRepo
	violations  *memViolationRepo
	orgs        *memOrgRepo
	audit       *memAuditRepo
	dispatcher  *recordingDispatcher
	ctx         context.Context
}

func newSlaFixture(t *testing.T) *slaFixture {
	t.Helper()
	tickets := newMemTicketRepo()
	definitions := &memDefinitionRepo{}
	violations := &memViolationRepo{}
	orgs := &memOrgRepo{orgs: []domain.Organization{{ID: testOrgID, Name: "MSP", Timezone: "UTC", IsActive: true}}}
	auditRepo := &memAuditRepo{}
	dispatcher := &recordingDispatcher{}

	svc := NewSlaService(SlaDependencies{
		TicketRepo:     tickets,
		DefinitionRepo: definitions,
		ViolationRepo:  violations,
		OrgRepo:        orgs,
		Locker:         alwaysLocker{},
		Dispatcher:     dispatcher,
		Audit:          NewAuditService(auditRepo, zap.NewNop()),
		Logger:         zap.NewNop(),
		Location:       time.UTC,
	})
	return &slaFixture{
		service:     svc,
		tickets:     tickets,
		definitions: definitions,
		violations:  violations,
		orgs:        orgs,
		audit:       auditRepo,
		dispatcher:  dispatcher,
		ctx:         tenant.WithOrganization(context.Background(), testOrgID),
	}
}

// weekday-only, 9 to 17, 2h response, 16h resolution
func (f *slaFixture) seedDefinition(t *testing.T) {
	t.Helper()
	require.NoError(t, f.definitions.Create(context.Background(), &domain.SlaDefinition{
		OrganizationID:      testOrgID,
		Priority:            domain.TicketPriorityHigh,
		TicketType:          domain.TicketTypeIncident,
		ResponseTimeHours:   2,
		ResolutionTimeHours: 16,
		BusinessHoursStart:  9,
		BusinessHoursEnd:    17,
		BusinessDays:        []int{1, 2, 3, 4, 5},
		IsActive:            true,
	}))
}

func (f *slaFixture) seedTicket(t *testing.T, createdAt time.Time) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		OrganizationID: testOrgID,
		ClientID:       "client-1",
		ExternalKey:    "TCK-SLATEST",
		Subject:        "vpn down",
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityHigh,
		Type:           domain.TicketTypeIncident,
		CreatedAt:      createdAt,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestDetectorOpensViolationsPastDeadline(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	// Monday 09:00; response due 11:00, resolution due Tuesday 17:00
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	// a week later with no response and no resolution: both violated
	now := created.AddDate(0, 0, 7)
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, now))

	require.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse), 1)
	require.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution), 1)

	response := f.violations.open(ticket.ID, domain.ViolationTypeResponse)[0]
	assert.Equal(t, time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC), response.ExpectedTime)

	assert.Len(t, f.dispatcher.ofType(events.EventSlaViolationDetected), 2)
	assert.Contains(t, f.audit.actions(), "sla.violation_detected")
}

func TestDetectorIsIdempotent(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)
	now := created.AddDate(0, 0, 7)

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, now))
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, now))
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, now.Add(time.Hour)))

	assert.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse), 1, "no duplicate open violation rows")
	assert.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution), 1)
	assert.Len(t, f.dispatcher.ofType(events.EventSlaViolationDetected), 2, "detection event fires once per violation")
}

func TestDetectorNoViolationBeforeDeadline(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	// 10:30, half an hour before the response deadline
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.Add(90*time.Minute)))
	assert.Empty(t, f.violations.violations)
}

func TestDetectorResolvesViolationOnceResponded(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	// deadline passes unanswered, violation opens
	lateNow := created.Add(5 * time.Hour)
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, lateNow))
	require.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse), 1)

	// operator responds; next pass stamps the violation with actual time
	responded := created.Add(6 * time.Hour)
	ticket.RespondedAt = &responded
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, responded.Add(time.Minute)))

	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))
	stamped, err := f.violations.ListByTicket(context.Background(), testOrgID, ticket.ID)
	require.NoError(t, err)
	var found bool
	for _, v := range stamped {
		if v.ViolationType == domain.ViolationTypeResponse {
			found = true
			require.NotNil(t, v.ActualTime)
			assert.Equal(t, responded, *v.ActualTime)
		}
	}
	assert.True(t, found)
}

func TestDetectorMetInTimeNeverOpens(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	responded := created.Add(30 * time.Minute)
	ticket.RespondedAt = &responded

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))
}

func TestDetectorNeverOpensOnTerminalTickets(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)
	ticket.Status = domain.TicketStatusClosed

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	assert.Empty(t, f.violations.violations)
}

func TestTerminalTicketClosesOpenViolations(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	// both deadlines pass unanswered, both violations open
	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	require.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse), 1)
	require.Len(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution), 1)

	// the ticket is then worked and resolved
	responded := created.AddDate(0, 0, 8)
	resolved := created.AddDate(0, 0, 9)
	ticket.RespondedAt = &responded
	ticket.ResolvedAt = &resolved
	ticket.Status = domain.TicketStatusResolved
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, resolved.Add(time.Minute)))
	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))
	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution))

	stamped, err := f.violations.ListByTicket(context.Background(), testOrgID, ticket.ID)
	require.NoError(t, err)
	require.Len(t, stamped, 2)
	for _, v := range stamped {
		require.True(t, v.IsResolved)
		require.NotNil(t, v.ActualTime)
		if v.ViolationType == domain.ViolationTypeResponse {
			assert.Equal(t, responded, *v.ActualTime)
		} else {
			assert.Equal(t, resolved, *v.ActualTime)
		}
	}
}

func TestTerminalTransitionEventResolvesViolations(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	require.NotEmpty(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution))

	dispatcher := events.NewInMemoryDispatcher()
	f.service.Subscribe(dispatcher)

	resolved := created.AddDate(0, 0, 8)
	ticket.RespondedAt = &resolved
	ticket.ResolvedAt = &resolved
	ticket.Status = domain.TicketStatusResolved
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	require.NoError(t, dispatcher.Publish(f.ctx, events.Event{
		ID:             "event-terminal-1",
		Type:           events.EventTicketStatusChanged,
		OrganizationID: testOrgID,
		TicketID:       ticket.ID,
		Timestamp:      resolved,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: domain.TicketStatusInProgress,
			NewStatus: domain.TicketStatusResolved,
		},
	}))

	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))
	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResolution))
}

func TestClosedWithoutReplyStampsResponseViolation(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	require.NotEmpty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))

	// closed without any public reply: the close stamp is the best
	// available actual time
	closed := created.AddDate(0, 0, 8)
	ticket.ClosedAt = &closed
	ticket.Status = domain.TicketStatusClosed
	require.NoError(t, f.tickets.Update(context.Background(), ticket))

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, closed.Add(time.Minute)))
	assert.Empty(t, f.violations.open(ticket.ID, domain.ViolationTypeResponse))

	stamped, err := f.violations.ListByTicket(context.Background(), testOrgID, ticket.ID)
	require.NoError(t, err)
	for _, v := range stamped {
		if v.ViolationType == domain.ViolationTypeResponse {
			require.NotNil(t, v.ActualTime)
			assert.Equal(t, closed, *v.ActualTime)
		}
	}
}

func TestDetectorNoDefinitionIsNotAnError(t *testing.T) {
	f := newSlaFixture(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	require.NoError(t, f.service.EvaluateTicket(f.ctx, testOrgID, ticket, created.AddDate(0, 0, 7)))
	assert.Empty(t, f.violations.violations)
}

func TestRunPassCoversOpenTickets(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	f.seedTicket(t, created)
	closed := f.seedTicket(t, created)
	closed.Status = domain.TicketStatusClosed
	require.NoError(t, f.tickets.Update(context.Background(), closed))

	evaluated, err := f.service.RunPass(context.Background(), created.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, evaluated, "closed tickets are not evaluated")
	assert.Len(t, f.violations.violations, 2)
}

func TestGetTicketSlaState(t *testing.T) {
	f := newSlaFixture(t)
	f.seedDefinition(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	state, err := f.service.GetTicketSlaState(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, state.Definition)
	require.NotNil(t, state.ResponseDue)
	require.NotNil(t, state.ResolutionDue)
	assert.Equal(t, time.Date(2024, time.March, 4, 11, 0, 0, 0, time.UTC), *state.ResponseDue)
	assert.True(t, state.ResolutionDue.After(*state.ResponseDue))
}

func TestGetTicketSlaStateWithoutDefinition(t *testing.T) {
	f := newSlaFixture(t)
	created := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	ticket := f.seedTicket(t, created)

	state, err := f.service.GetTicketSlaState(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, state.Definition)
	assert.Nil(t, state.ResponseDue)
}
