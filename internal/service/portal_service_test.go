package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/tenant"
)

type memSettingsRepo struct {
	settings map[string]domain.PortalSettings
}

func newMemSettingsRepo() *memSettingsRepo {
	return &memSettingsRepo{settings: map[string]domain.PortalSettings{}}
}

func (r *memSettingsRepo) Get(_ context.Context, organizationID string) (*domain.PortalSettings, error) {
	settings, ok := r.settings[organizationID]
	if !ok {
		// defaults mirror the persistence layer: everything allowed
		return &domain.PortalSettings{OrganizationID: organizationID}, nil
	}
	copied := settings
	return &copied, nil
}

func (r *memSettingsRepo) Upsert(_ context.Context, settings *domain.PortalSettings) error {
	r.settings[settings.OrganizationID] = *settings
	return nil
}

type portalFixture struct {
	service  *PortalService
	tickets  *memTicketRepo
	clients  *memClientRepo
	settings *memSettingsRepo
	user     *domain.ClientUser
	ctx      context.Context
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	tickets := newMemTicketRepo()
	clients := newMemClientRepo()
	settings := newMemSettingsRepo()

	require.NoError(t, clients.Create(context.Background(), &domain.Client{
		ID: "client-1", OrganizationID: testOrgID, Name: "Acme", PortalEnabled: true, IsActive: true,
	}))
	require.NoError(t, clients.Create(context.Background(), &domain.Client{
		ID: "client-2", OrganizationID: testOrgID, Name: "Globex", PortalEnabled: true, IsActive: true,
	}))

	ticketService := NewTicketService(TicketDependencies{
		TicketRepo:    tickets,
		CommentRepo:   &memCommentRepo{},
		TimeEntryRepo: &memTimeEntryRepo{tickets: tickets},
		ClientRepo:    clients,
		UserRepo:      newMemUserRepo(),
		Dispatcher:    &recordingDispatcher{},
		Audit:         NewAuditService(&memAuditRepo{}, zap.NewNop()),
	})
	svc := NewPortalService(ticketService, tickets, clients, settings)
	return &portalFixture{
		service:  svc,
		tickets:  tickets,
		clients:  clients,
		settings: settings,
		user: &domain.ClientUser{
			ID:             "portal-1",
			OrganizationID: testOrgID,
			ClientID:       "client-1",
			Name:           "Pat Portal",
			IsActive:       true,
		},
		ctx: tenant.WithOrganization(context.Background(), testOrgID),
	}
}

func TestPortalOpenTicketStartsAtMediumPriority(t *testing.T) {
	f := newPortalFixture(t)

	ticket, err := f.service.OpenTicket(f.ctx, f.user, "printer jam", "third floor", domain.TicketTypeIncident)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "client-1", ticket.ClientID)
}

func TestPortalOpenTicketHonorsAllowedTypes(t *testing.T) {
	f := newPortalFixture(t)
	require.NoError(t, f.settings.Upsert(context.Background(), &domain.PortalSettings{
		OrganizationID:     testOrgID,
		AllowedTicketTypes: []domain.TicketType{domain.TicketTypeServiceRequest},
	}))

	_, err := f.service.OpenTicket(f.ctx, f.user, "need a change", "", domain.TicketTypeChange)
	assert.Error(t, err, "type not on the allow list")

	_, err = f.service.OpenTicket(f.ctx, f.user, "new laptop", "", domain.TicketTypeServiceRequest)
	assert.NoError(t, err)
}

func TestPortalOpenTicketEmptyAllowListMeansAllTypes(t *testing.T) {
	f := newPortalFixture(t)

	for _, ticketType := range []domain.TicketType{
		domain.TicketTypeIncident, domain.TicketTypeServiceRequest,
		domain.TicketTypeProblem, domain.TicketTypeChange,
	} {
		_, err := f.service.OpenTicket(f.ctx, f.user, "subject", "", ticketType)
		assert.NoError(t, err, "type %s", ticketType)
	}
}

func TestPortalOpenTicketDisabledClient(t *testing.T) {
	f := newPortalFixture(t)
	client, err := f.clients.GetByID(context.Background(), testOrgID, "client-1")
	require.NoError(t, err)
	client.PortalEnabled = false
	require.NoError(t, f.clients.Update(context.Background(), client))

	_, err = f.service.OpenTicket(f.ctx, f.user, "anything", "", domain.TicketTypeIncident)
	assert.Error(t, err)
}

func TestPortalGetTicketHidesOtherClients(t *testing.T) {
	f := newPortalFixture(t)
	mine, err := f.service.OpenTicket(f.ctx, f.user, "mine", "", domain.TicketTypeIncident)
	require.NoError(t, err)

	foreign := &domain.Ticket{
		OrganizationID: testOrgID,
		ClientID:       "client-2",
		Subject:        "not yours",
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityMedium,
		Type:           domain.TicketTypeIncident,
	}
	require.NoError(t, f.tickets.Create(context.Background(), foreign))

	got, err := f.service.GetTicket(f.ctx, f.user, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, got.ID)

	_, err = f.service.GetTicket(f.ctx, f.user, foreign.ID)
	assert.Error(t, err, "cross-client access reads as not found")
}

func TestPortalListTicketsScopedToClient(t *testing.T) {
	f := newPortalFixture(t)
	_, err := f.service.OpenTicket(f.ctx, f.user, "one", "", domain.TicketTypeIncident)
	require.NoError(t, err)
	_, err = f.service.OpenTicket(f.ctx, f.user, "two", "", domain.TicketTypeIncident)
	require.NoError(t, err)

	foreign := &domain.Ticket{
		OrganizationID: testOrgID,
		ClientID:       "client-2",
		Subject:        "other",
		Status:         domain.TicketStatusOpen,
		Priority:       domain.TicketPriorityMedium,
		Type:           domain.TicketTypeIncident,
	}
	require.NoError(t, f.tickets.Create(context.Background(), foreign))

	listed, err := f.service.ListTickets(f.ctx, f.user, 50, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	for _, ticket := range listed {
		assert.Equal(t, "client-1", ticket.ClientID)
	}
}

func TestPortalCommentsAreAlwaysPublic(t *testing.T) {
	f := newPortalFixture(t)
	ticket, err := f.service.OpenTicket(f.ctx, f.user, "mine", "", domain.TicketTypeIncident)
	require.NoError(t, err)

	comment, err := f.service.AddComment(f.ctx, f.user, ticket.ID, "any update?")
	require.NoError(t, err)
	assert.Equal(t, domain.AuthorTypePortal, comment.AuthorType)
	assert.False(t, comment.IsInternal)
}
