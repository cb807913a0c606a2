package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/events"
	"github.com/spec-kit/msp-platform/internal/repository"
)

// SmsProvider abstracts the outbound SMS gateway. Delivery is attempted
// by the SMS worker, not inline with whatever queued the message.
type SmsProvider interface {
	Send(ctx context.Context, recipient, body string) error
}

// LoggingSmsProvider writes the message to the log instead of a
// gateway. Used when no gateway is configured.
type LoggingSmsProvider struct {
	Logger *zap.Logger
}

func (p *LoggingSmsProvider) Send(_ context.Context, recipient, body string) error {
	p.Logger.Info("sms delivery (logging provider)",
		zap.String("recipient", recipient),
		zap.String("body", body))
	return nil
}

// NotificationService queues SMS messages for users and subscribes to
// ticket events worth notifying on.
type NotificationService struct {
	sms     repository.SmsRepository
	users   repository.UserRepository
	tickets repository.TicketRepository
	logger  *zap.Logger
}

func NewNotificationService(smsRepo repository.SmsRepository, userRepo repository.UserRepository, ticketRepo repository.TicketRepository, logger *zap.Logger) *NotificationService {
	return &NotificationService{sms: smsRepo, users: userRepo, tickets: ticketRepo, logger: logger}
}

// NotifyUsers queues one SMS per recipient user that has a phone
// number. Users without one are skipped, not treated as failures.
func (n *NotificationService) NotifyUsers(ctx context.Context, orgID string, userIDs []string, ticketID *string, body string) error {
	for _, userID := range userIDs {
		user, err := n.users.GetByID(ctx, orgID, userID)
		if err != nil {
			n.logger.Warn("notification recipient lookup failed",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		if user.Phone == nil || *user.Phone == "" {
			continue
		}
		sms := &domain.SmsNotification{
			OrganizationID: orgID,
			TicketID:       ticketID,
			Recipient:      *user.Phone,
			Body:           body,
			Status:         domain.SmsStatusPending,
		}
		if err := n.sms.Enqueue(ctx, sms); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe wires notification fan-out onto the event dispatcher.
func (n *NotificationService) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketAssigned, n.onTicketAssigned)
	dispatcher.Subscribe(events.EventSlaViolationDetected, n.onSlaViolation)
}

func (n *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssignedTo == nil {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.OrganizationID, event.TicketID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Ticket %s assigned to you: %s", ticket.ExternalKey, ticket.Subject)
	return n.NotifyUsers(ctx, event.OrganizationID, []string{*payload.AssignedTo}, &event.TicketID, body)
}

func (n *NotificationService) onSlaViolation(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SlaViolationDetectedPayload)
	if !ok {
		return nil
	}
	ticket, err := n.tickets.GetByID(ctx, event.OrganizationID, event.TicketID)
	if err != nil {
		return err
	}
	if ticket.AssignedTo == nil {
		return nil
	}
	body := fmt.Sprintf("SLA breach (%s) on ticket %s", payload.ViolationType, ticket.ExternalKey)
	return n.NotifyUsers(ctx, event.OrganizationID, []string{*ticket.AssignedTo}, &event.TicketID, body)
}
