package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/tenant"
)

const testOrgID = "org-test"

type ticketFixture struct {
	service    *TicketService
	tickets    *memTicketRepo
	comments   *memCommentRepo
	clients    *memClientRepo
	users      *memUserRepo
	audit      *memAuditRepo
	dispatcher *recordingDispatcher
	ctx        context.Context
	operator   events.Actor
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newMemTicketRepo()
	comments := &memCommentRepo{}
	clients := newMemClientRepo()
	users := newMemUserRepo()
	auditRepo := &memAuditRepo{}
	dispatcher := &recordingDispatcher{}

	require.NoError(t, clients.Create(context.Background(), &domain.Client{
		ID:             "client-1",
		OrganizationID: testOrgID,
		Name:           "Acme Corp",
		IsActive:       true,
	}))
	operatorID := "user-1"
	require.NoError(t, users.Create(context.Background(), &domain.User{
		ID:             operatorID,
		OrganizationID: testOrgID,
		Name:           "Op Erator",
		Role:           domain.UserRoleTechnician,
		IsActive:       true,
	}))

	svc := NewTicketService(TicketDependencies{
		TicketRepo:    tickets,
		CommentRepo:   comments,
		TimeEntryRepo: &memTimeEntryRepo{tickets: tickets},
		ClientRepo:    clients,
		UserRepo:      users,
		Dispatcher:    dispatcher,
		Audit:         NewAuditService(auditRepo, zap.NewNop()),
	})
	return &ticketFixture{
		service:    svc,
		tickets:    tickets,
		comments:   comments,
		clients:    clients,
		users:      users,
		audit:      auditRepo,
		dispatcher: dispatcher,
		ctx:        tenant.WithOrganization(context.Background(), testOrgID),
		operator:   events.Actor{Type: domain.SubjectTypeUser, UserID: &operatorID},
	}
}

func (f *ticketFixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.CreateTicket(f.ctx, f.operator, TicketCreateInput{
		ClientID: "client-1",
		Subject:  "Printer on fire",
		Type:     domain.TicketTypeIncident,
		Priority: domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketDefaultsAndKey(t *testing.T) {
	f := newTicketFixture(t)

	ticket, err := f.service.CreateTicket(f.ctx, f.operator, TicketCreateInput{
		ClientID: "client-1",
		Subject:  "  Mail down  ",
		Type:     domain.TicketTypeIncident,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority, "priority defaults to medium")
	assert.Equal(t, "Mail down", ticket.Subject)
	assert.True(t, strings.HasPrefix(ticket.ExternalKey, "TCK-"))
	assert.Len(t, f.dispatcher.ofType(events.EventTicketCreated), 1)
	assert.Contains(t, f.audit.actions(), "ticket.created")
}

func TestCreateTicketRejectsInactiveClient(t *testing.T) {
	f := newTicketFixture(t)
	require.NoError(t, f.clients.Create(context.Background(), &domain.Client{
		ID:             "client-2",
		OrganizationID: testOrgID,
		Name:           "Gone LLC",
		IsActive:       false,
	}))

	_, err := f.service.CreateTicket(f.ctx, f.operator, TicketCreateInput{
		ClientID: "client-2",
		Subject:  "anything",
		Type:     domain.TicketTypeIncident,
	})
	assert.Error(t, err)
}

func TestCreateTicketRequiresTenantScope(t *testing.T) {
	f := newTicketFixture(t)
	_, err := f.service.CreateTicket(context.Background(), f.operator, TicketCreateInput{
		ClientID: "client-1",
		Subject:  "anything",
		Type:     domain.TicketTypeIncident,
	})
	assert.ErrorIs(t, err, tenant.ErrMissingOrganization)
}

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from    domain.TicketStatus
		to      domain.TicketStatus
		allowed bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusClosed, true},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, false},
		{domain.TicketStatusWaitingOnClient, domain.TicketStatusInProgress, true},
		{domain.TicketStatusWaitingOnThirdParty, domain.TicketStatusResolved, true},
		{domain.TicketStatusResolved, domain.TicketStatusClosed, true},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress, true},
		{domain.TicketStatusResolved, domain.TicketStatusOpen, false},
		{domain.TicketStatusClosed, domain.TicketStatusInProgress, false},
		{domain.TicketStatusClosed, domain.TicketStatusOpen, false},
	}
	for _, tc := range cases {
		got := isValidTransition(tc.from, tc.to)
		assert.Equal(t, tc.allowed, got, "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusStampsLifecycle(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	updated, err := f.service.UpdateStatus(f.ctx, f.operator, ticket.ID, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	updated, err = f.service.UpdateStatus(f.ctx, f.operator, ticket.ID, domain.TicketStatusClosed, "")
	require.NoError(t, err)
	require.NotNil(t, updated.ClosedAt)

	// closed is terminal
	_, err = f.service.UpdateStatus(f.ctx, f.operator, ticket.ID, domain.TicketStatusInProgress, "")
	assert.Error(t, err)

	assert.Len(t, f.dispatcher.ofType(events.EventTicketStatusChanged), 2)
}

func TestReopeningClearsTerminalStamps(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.UpdateStatus(f.ctx, f.operator, ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	reopened, err := f.service.UpdateStatus(f.ctx, f.operator, ticket.ID, domain.TicketStatusInProgress, "client says still broken")
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedAt)
	assert.Nil(t, reopened.ClosedAt)
}

func TestUpdatePriorityNoOpOnSameValue(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.UpdatePriority(f.ctx, f.operator, ticket.ID, domain.TicketPriorityHigh)
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.ofType(events.EventTicketPriorityChanged))

	updated, err := f.service.UpdatePriority(f.ctx, f.operator, ticket.ID, domain.TicketPriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityCritical, updated.Priority)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketPriorityChanged), 1)
}

func TestAssignTicketRejectsInactiveUser(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)
	inactiveID := "user-gone"
	require.NoError(t, f.users.Create(context.Background(), &domain.User{
		ID:             inactiveID,
		OrganizationID: testOrgID,
		Role:           domain.UserRoleTechnician,
		IsActive:       false,
	}))

	_, err := f.service.AssignTicket(f.ctx, f.operator, ticket.ID, &inactiveID)
	assert.Error(t, err)

	activeID := "user-1"
	updated, err := f.service.AssignTicket(f.ctx, f.operator, ticket.ID, &activeID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, activeID, *updated.AssignedTo)
	assert.Len(t, f.dispatcher.ofType(events.EventTicketAssigned), 1)
}

func TestFirstPublicCommentStampsRespondedAt(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	// internal note does not count as a response
	_, err := f.service.AddComment(f.ctx, f.operator, ticket.ID, "checking backups", true)
	require.NoError(t, err)
	current, err := f.service.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, current.RespondedAt)

	_, err = f.service.AddComment(f.ctx, f.operator, ticket.ID, "we are on it", false)
	require.NoError(t, err)
	current, err = f.service.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, current.RespondedAt)
	first := *current.RespondedAt

	// later comments do not move the stamp
	_, err = f.service.AddComment(f.ctx, f.operator, ticket.ID, "update: restored", false)
	require.NoError(t, err)
	current, err = f.service.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *current.RespondedAt)
}

func TestPortalCommentForcedPublicAndNoResponseStamp(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)
	portalID := "portal-1"
	portalActor := events.Actor{Type: domain.SubjectTypePortal, PortalID: &portalID}

	comment, err := f.service.AddComment(f.ctx, portalActor, ticket.ID, "still broken", true)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorTypePortal, comment.AuthorType)
	assert.False(t, comment.IsInternal, "portal comments can never be internal")

	current, err := f.service.GetTicket(f.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, current.RespondedAt, "client messages are not operator responses")
}

func TestListCommentsHidesInternalNotes(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.AddComment(f.ctx, f.operator, ticket.ID, "public reply", false)
	require.NoError(t, err)
	_, err = f.service.AddComment(f.ctx, f.operator, ticket.ID, "internal note", true)
	require.NoError(t, err)

	all, err := f.service.ListComments(f.ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := f.service.ListComments(f.ctx, ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.False(t, visible[0].IsInternal)
}

func TestLogTimeValidation(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.createTicket(t)

	_, err := f.service.LogTime(f.ctx, f.operator, ticket.ID, time.Now().UTC(), 0, "nothing", true)
	assert.Error(t, err, "zero minutes rejected")

	portalID := "portal-1"
	_, err = f.service.LogTime(f.ctx, events.Actor{Type: domain.SubjectTypePortal, PortalID: &portalID}, ticket.ID, time.Now().UTC(), 30, "", true)
	assert.Error(t, err, "portal callers cannot log time")

	entry, err := f.service.LogTime(f.ctx, f.operator, ticket.ID, time.Now().UTC(), 45, "replaced fuser", true)
	require.NoError(t, err)
	assert.Equal(t, 45, entry.Minutes)
	assert.True(t, entry.Billable)
}
