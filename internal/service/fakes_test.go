package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/repository"
)

// In-memory repository doubles. Not-found conditions surface as
// pgx.ErrNoRows, matching the postgres-backed implementations.

type memTicketRepo struct {
	tickets map[string]domain.Ticket
	seq     int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now().UTC()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, organizationID, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok || ticket.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, organizationID string, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OrganizationID != organizationID {
			continue
		}
		if filter.ClientID != nil && ticket.ClientID != *filter.ClientID {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, ticket)
	}
	return out, nil
}

func (r *memTicketRepo) ListOpenForSla(_ context.Context, organizationID string, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.OrganizationID != organizationID || ticket.Status.IsTerminal() {
			continue
		}
		out = append(out, ticket)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memTicketRepo) CountByStatus(_ context.Context, organizationID string) (map[domain.TicketStatus]int, error) {
	out := map[domain.TicketStatus]int{}
	for _, ticket := range r.tickets {
		if ticket.OrganizationID == organizationID {
			out[ticket.Status]++
		}
	}
	return out, nil
}

func (r *memTicketRepo) CountByPriority(_ context.Context, organizationID string) (map[domain.TicketPriority]int, error) {
	out := map[domain.TicketPriority]int{}
	for _, ticket := range r.tickets {
		if ticket.OrganizationID == organizationID {
			out[ticket.Priority]++
		}
	}
	return out, nil
}

type memDefinitionRepo struct {
	defs []domain.SlaDefinition
}

func (r *memDefinitionRepo) Create(_ context.Context, def *domain.SlaDefinition) error {
	def.ID = fmt.Sprintf("def-%d", len(r.defs)+1)
	r.defs = append(r.defs, *def)
	return nil
}

func (r *memDefinitionRepo) Update(_ context.Context, def *domain.SlaDefinition) error {
	for i := range r.defs {
		if r.defs[i].ID == def.ID {
			r.defs[i] = *def
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memDefinitionRepo) Deactivate(_ context.Context, organizationID, id string) error {
	for i := range r.defs {
		if r.defs[i].ID == id && r.defs[i].OrganizationID == organizationID {
			r.defs[i].IsActive = false
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memDefinitionRepo) GetByID(_ context.Context, organizationID, id string) (*domain.SlaDefinition, error) {
	for i := range r.defs {
		if r.defs[i].ID == id && r.defs[i].OrganizationID == organizationID {
			copied := r.defs[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memDefinitionRepo) GetActive(_ context.Context, organizationID string, priority domain.TicketPriority, ticketType domain.TicketType) (*domain.SlaDefinition, error) {
	for i := range r.defs {
		def := r.defs[i]
		if def.OrganizationID == organizationID && def.Priority == priority && def.TicketType == ticketType && def.IsActive {
			return &def, nil
		}
	}
	return nil, repository.ErrNoDefinition
}

func (r *memDefinitionRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.SlaDefinition, error) {
	var out []domain.SlaDefinition
	for _, def := range r.defs {
		if def.OrganizationID == organizationID {
			out = append(out, def)
		}
	}
	return out, nil
}

type memViolationRepo struct {
	violations []domain.SlaViolation
	seq        int
}

func (r *memViolationRepo) EnsureOpen(_ context.Context, violation *domain.SlaViolation) (bool, error) {
	for _, existing := range r.violations {
		if existing.TicketID == violation.TicketID && existing.ViolationType == violation.ViolationType && !existing.IsResolved {
			return false, nil
		}
	}
	r.seq++
	violation.ID = fmt.Sprintf("violation-%d", r.seq)
	violation.CreatedAt = time.Now().UTC()
	r.violations = append(r.violations, *violation)
	return true, nil
}

func (r *memViolationRepo) GetOpen(_ context.Context, organizationID, ticketID string, violationType domain.SlaViolationType) (*domain.SlaViolation, error) {
	for i := range r.violations {
		v := r.violations[i]
		if v.OrganizationID == organizationID && v.TicketID == ticketID && v.ViolationType == violationType && !v.IsResolved {
			return &v, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memViolationRepo) Resolve(_ context.Context, organizationID, ticketID string, violationType domain.SlaViolationType, actualTime time.Time) error {
	for i := range r.violations {
		v := &r.violations[i]
		if v.OrganizationID == organizationID && v.TicketID == ticketID && v.ViolationType == violationType && !v.IsResolved {
			now := time.Now().UTC()
			v.ActualTime = &actualTime
			v.IsResolved = true
			v.ResolvedAt = &now
		}
	}
	return nil
}

func (r *memViolationRepo) ListByTicket(_ context.Context, organizationID, ticketID string) ([]domain.SlaViolation, error) {
	var out []domain.SlaViolation
	for _, v := range r.violations {
		if v.OrganizationID == organizationID && v.TicketID == ticketID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memViolationRepo) ListByOrganization(_ context.Context, organizationID string, onlyOpen bool, _, _ int) ([]domain.SlaViolation, error) {
	var out []domain.SlaViolation
	for _, v := range r.violations {
		if v.OrganizationID != organizationID {
			continue
		}
		if onlyOpen && v.IsResolved {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *memViolationRepo) CountOpen(_ context.Context, organizationID string) (int, error) {
	count := 0
	for _, v := range r.violations {
		if v.OrganizationID == organizationID && !v.IsResolved {
			count++
		}
	}
	return count, nil
}

func (r *memViolationRepo) open(ticketID string, violationType domain.SlaViolationType) []domain.SlaViolation {
	var out []domain.SlaViolation
	for _, v := range r.violations {
		if v.TicketID == ticketID && v.ViolationType == violationType && !v.IsResolved {
			out = append(out, v)
		}
	}
	return out
}

type memOrgRepo struct {
	orgs []domain.Organization
}

func (r *memOrgRepo) Create(_ context.Context, org *domain.Organization) error {
	org.ID = fmt.Sprintf("org-%d", len(r.orgs)+1)
	r.orgs = append(r.orgs, *org)
	return nil
}

func (r *memOrgRepo) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	for i := range r.orgs {
		if r.orgs[i].ID == id {
			copied := r.orgs[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memOrgRepo) ListActive(_ context.Context) ([]domain.Organization, error) {
	return append([]domain.Organization{}, r.orgs...), nil
}

type memUserRepo struct {
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, organizationID, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok || user.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRole(_ context.Context, organizationID string, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.users {
		if user.OrganizationID == organizationID && user.Role == role && user.IsActive {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *memUserRepo) GetManager(ctx context.Context, organizationID, userID string) (*domain.User, error) {
	user, err := r.GetByID(ctx, organizationID, userID)
	if err != nil {
		return nil, err
	}
	if user.ManagerID == nil {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, organizationID, *user.ManagerID)
}

type memRuleRepo struct {
	rules []domain.EscalationRule
}

func (r *memRuleRepo) Create(_ context.Context, rule *domain.EscalationRule) error {
	rule.ID = fmt.Sprintf("rule-%d", len(r.rules)+1)
	r.rules = append(r.rules, *rule)
	return nil
}

func (r *memRuleRepo) Update(_ context.Context, rule *domain.EscalationRule) error {
	for i := range r.rules {
		if r.rules[i].ID == rule.ID {
			r.rules[i] = *rule
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRuleRepo) Deactivate(_ context.Context, organizationID, id string) error {
	for i := range r.rules {
		if r.rules[i].ID == id && r.rules[i].OrganizationID == organizationID {
			r.rules[i].IsActive = false
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memRuleRepo) GetByID(_ context.Context, organizationID, id string) (*domain.EscalationRule, error) {
	for i := range r.rules {
		if r.rules[i].ID == id && r.rules[i].OrganizationID == organizationID {
			copied := r.rules[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memRuleRepo) ListActive(_ context.Context, organizationID string, trigger domain.EscalationTriggerType) ([]domain.EscalationRule, error) {
	var out []domain.EscalationRule
	for _, rule := range r.rules {
		if rule.OrganizationID == organizationID && rule.TriggerType == trigger && rule.IsActive {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (r *memRuleRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.EscalationRule, error) {
	var out []domain.EscalationRule
	for _, rule := range r.rules {
		if rule.OrganizationID == organizationID {
			out = append(out, rule)
		}
	}
	return out, nil
}

type memEscalationEventRepo struct {
	firings []domain.EscalationEvent
	seen    map[string]bool
}

func newMemEscalationEventRepo() *memEscalationEventRepo {
	return &memEscalationEventRepo{seen: map[string]bool{}}
}

func (r *memEscalationEventRepo) RecordOnce(_ context.Context, event *domain.EscalationEvent) (bool, error) {
	key := event.RuleID + "|" + event.TicketID + "|" + event.Occurrence
	if r.seen[key] {
		return false, nil
	}
	r.seen[key] = true
	event.ID = fmt.Sprintf("firing-%d", len(r.firings)+1)
	event.FiredAt = time.Now().UTC()
	r.firings = append(r.firings, *event)
	return true, nil
}

func (r *memEscalationEventRepo) ListByTicket(_ context.Context, organizationID, ticketID string) ([]domain.EscalationEvent, error) {
	var out []domain.EscalationEvent
	for _, event := range r.firings {
		if event.OrganizationID == organizationID && event.TicketID == ticketID {
			out = append(out, event)
		}
	}
	return out, nil
}

type memSmsRepo struct {
	queued []domain.SmsNotification
}

func (r *memSmsRepo) Enqueue(_ context.Context, sms *domain.SmsNotification) error {
	sms.ID = fmt.Sprintf("sms-%d", len(r.queued)+1)
	sms.CreatedAt = time.Now().UTC()
	r.queued = append(r.queued, *sms)
	return nil
}

func (r *memSmsRepo) ListDue(_ context.Context, now time.Time, limit int) ([]domain.SmsNotification, error) {
	var out []domain.SmsNotification
	for _, sms := range r.queued {
		if sms.Status != domain.SmsStatusPending {
			continue
		}
		if sms.NextRetryAt != nil && sms.NextRetryAt.After(now) {
			continue
		}
		out = append(out, sms)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memSmsRepo) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	for i := range r.queued {
		if r.queued[i].ID == id {
			r.queued[i].Status = domain.SmsStatusSent
			r.queued[i].SentAt = &sentAt
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memSmsRepo) MarkRetry(_ context.Context, id string, retryCount int, nextRetryAt time.Time, lastError string) error {
	for i := range r.queued {
		if r.queued[i].ID == id {
			r.queued[i].RetryCount = retryCount
			r.queued[i].NextRetryAt = &nextRetryAt
			r.queued[i].LastError = &lastError
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memSmsRepo) MarkFailed(_ context.Context, id string, lastError string) error {
	for i := range r.queued {
		if r.queued[i].ID == id {
			r.queued[i].Status = domain.SmsStatusFailed
			r.queued[i].LastError = &lastError
			return nil
		}
	}
	return pgx.ErrNoRows
}

type memClientRepo struct {
	clients map[string]domain.Client
	portal  map[string]domain.ClientUser
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: map[string]domain.Client{}, portal: map[string]domain.ClientUser{}}
}

func (r *memClientRepo) Create(_ context.Context, client *domain.Client) error {
	if client.ID == "" {
		client.ID = fmt.Sprintf("client-%d", len(r.clients)+1)
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *memClientRepo) Update(_ context.Context, client *domain.Client) error {
	if _, ok := r.clients[client.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *memClientRepo) GetByID(_ context.Context, organizationID, id string) (*domain.Client, error) {
	client, ok := r.clients[id]
	if !ok || client.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	copied := client
	return &copied, nil
}

func (r *memClientRepo) List(_ context.Context, organizationID string, _, _ int) ([]domain.Client, error) {
	var out []domain.Client
	for _, client := range r.clients {
		if client.OrganizationID == organizationID {
			out = append(out, client)
		}
	}
	return out, nil
}

func (r *memClientRepo) CreateUser(_ context.Context, user *domain.ClientUser) error {
	if user.ID == "" {
		user.ID = fmt.Sprintf("portal-%d", len(r.portal)+1)
	}
	r.portal[user.ID] = *user
	return nil
}

func (r *memClientRepo) GetUserByEmail(_ context.Context, email string) (*domain.ClientUser, error) {
	for _, user := range r.portal {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memClientRepo) GetUserByID(_ context.Context, organizationID, id string) (*domain.ClientUser, error) {
	user, ok := r.portal[id]
	if !ok || user.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	copied := user
	return &copied, nil
}

type memCommentRepo struct {
	comments []domain.TicketComment
}

func (r *memCommentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	comment.ID = fmt.Sprintf("comment-%d", len(r.comments)+1)
	comment.CreatedAt = time.Now().UTC()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *memCommentRepo) ListByTicket(_ context.Context, organizationID, ticketID string) ([]domain.TicketComment, error) {
	var out []domain.TicketComment
	for _, comment := range r.comments {
		if comment.OrganizationID == organizationID && comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type memContractRepo struct {
	contracts []domain.Contract
}

func (r *memContractRepo) Create(_ context.Context, contract *domain.Contract) error {
	contract.ID = fmt.Sprintf("contract-%d", len(r.contracts)+1)
	r.contracts = append(r.contracts, *contract)
	return nil
}

func (r *memContractRepo) Update(_ context.Context, contract *domain.Contract) error {
	for i := range r.contracts {
		if r.contracts[i].ID == contract.ID {
			r.contracts[i] = *contract
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memContractRepo) GetByID(_ context.Context, organizationID, id string) (*domain.Contract, error) {
	for i := range r.contracts {
		if r.contracts[i].ID == id && r.contracts[i].OrganizationID == organizationID {
			copied := r.contracts[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memContractRepo) GetActiveForClient(_ context.Context, organizationID, clientID string) (*domain.Contract, error) {
	for i := range r.contracts {
		contract := r.contracts[i]
		if contract.OrganizationID == organizationID && contract.ClientID == clientID && contract.Status == domain.ContractStatusActive {
			return &contract, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memContractRepo) ListByClient(_ context.Context, organizationID, clientID string) ([]domain.Contract, error) {
	var out []domain.Contract
	for _, contract := range r.contracts {
		if contract.OrganizationID == organizationID && contract.ClientID == clientID {
			out = append(out, contract)
		}
	}
	return out, nil
}

func (r *memContractRepo) ExpireEnded(_ context.Context, now time.Time) error {
	for i := range r.contracts {
		contract := &r.contracts[i]
		if contract.Status == domain.ContractStatusActive && contract.EndDate != nil && contract.EndDate.Before(now) {
			contract.Status = domain.ContractStatusExpired
		}
	}
	return nil
}

type memTimeEntryRepo struct {
	entries []domain.TimeEntry
	tickets *memTicketRepo
}

func (r *memTimeEntryRepo) Create(_ context.Context, entry *domain.TimeEntry) error {
	entry.ID = fmt.Sprintf("entry-%d", len(r.entries)+1)
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memTimeEntryRepo) ListByTicket(_ context.Context, organizationID, ticketID string) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for _, entry := range r.entries {
		if entry.OrganizationID == organizationID && entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *memTimeEntryRepo) ListUnbilled(_ context.Context, _ pgx.Tx, organizationID, clientID string, from, to time.Time) ([]domain.TimeEntry, error) {
	var out []domain.TimeEntry
	for _, entry := range r.entries {
		if entry.OrganizationID != organizationID || !entry.Billable || entry.Billed {
			continue
		}
		if r.tickets != nil {
			ticket, ok := r.tickets.tickets[entry.TicketID]
			if !ok || ticket.ClientID != clientID {
				continue
			}
		}
		if entry.StartedAt.Before(from) || !entry.StartedAt.Before(to) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *memTimeEntryRepo) MarkBilled(_ context.Context, _ pgx.Tx, entryIDs []string, invoiceID string) error {
	ids := map[string]bool{}
	for _, id := range entryIDs {
		ids[id] = true
	}
	for i := range r.entries {
		if ids[r.entries[i].ID] {
			r.entries[i].Billed = true
			r.entries[i].InvoiceID = &invoiceID
		}
	}
	return nil
}

type memInvoiceRepo struct {
	invoices []domain.Invoice
}

func (r *memInvoiceRepo) Begin(_ context.Context) (pgx.Tx, error) {
	return noopTx{}, nil
}

func (r *memInvoiceRepo) CreateInTx(_ context.Context, _ pgx.Tx, invoice *domain.Invoice) error {
	invoice.ID = fmt.Sprintf("invoice-%d", len(r.invoices)+1)
	for i := range invoice.Lines {
		invoice.Lines[i].InvoiceID = invoice.ID
	}
	r.invoices = append(r.invoices, *invoice)
	return nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, organizationID, id string) (*domain.Invoice, error) {
	for i := range r.invoices {
		if r.invoices[i].ID == id && r.invoices[i].OrganizationID == organizationID {
			copied := r.invoices[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memInvoiceRepo) ListByOrganization(_ context.Context, organizationID string, _, _ int) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, invoice := range r.invoices {
		if invoice.OrganizationID == organizationID {
			out = append(out, invoice)
		}
	}
	return out, nil
}

// noopTx satisfies pgx.Tx for the in-memory invoice repository. Only
// Commit and Rollback are ever reached.
type noopTx struct {
	pgx.Tx
}

func (noopTx) Commit(context.Context) error   { return nil }
func (noopTx) Rollback(context.Context) error { return nil }

type memAuditRepo struct {
	entries []domain.AuditLog
}

func (r *memAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	entry.ID = fmt.Sprintf("audit-%d", len(r.entries)+1)
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, organizationID string, _ repository.AuditFilter) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	for _, entry := range r.entries {
		if entry.OrganizationID == organizationID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *memAuditRepo) Summary(_ context.Context, organizationID string, _, _ time.Time) (*repository.AuditSummary, error) {
	summary := &repository.AuditSummary{ByAction: map[string]int{}, BySeverity: map[domain.AuditSeverity]int{}}
	for _, entry := range r.entries {
		if entry.OrganizationID != organizationID {
			continue
		}
		summary.Total++
		summary.ByAction[entry.Action]++
		summary.BySeverity[entry.Severity]++
	}
	return summary, nil
}

func (r *memAuditRepo) actions() []string {
	out := make([]string, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry.Action)
	}
	return out
}

// recordingDispatcher captures published events without handlers.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

// alwaysLocker grants every acquisition.
type alwaysLocker struct{}

func (alwaysLocker) Acquire(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
