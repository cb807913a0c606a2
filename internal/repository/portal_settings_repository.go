package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/msp-platform/internal/domain"
)

// PortalSettingsRepository persists per-organization portal settings.
type PortalSettingsRepository interface {
	Get(ctx context.Context, organizationID string) (*domain.PortalSettings, error)
	Upsert(ctx context.Context, settings *domain.PortalSettings) error
}

type portalSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewPortalSettingsRepository builds repository.
func NewPortalSettingsRepository(pool *pgxpool.Pool) PortalSettingsRepository {
	return &portalSettingsRepository{pool: pool}
}

// Get returns settings, falling back to defaults when none are stored.
func (r *portalSettingsRepository) Get(ctx context.Context, organizationID string) (*domain.PortalSettings, error) {
	const query = `
        SELECT organization_id, welcome_message, allowed_ticket_types, sms_updates_enabled, updated_at
        FROM portal_settings WHERE organization_id=$1`
	var settings domain.PortalSettings
	var types []string
	err := r.pool.QueryRow(ctx, query, organizationID).Scan(
		&settings.OrganizationID,
		&settings.WelcomeMessage,
		&types,
		&settings.SmsUpdatesEnabled,
		&settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.PortalSettings{
			OrganizationID: organizationID,
			AllowedTicketTypes: []domain.TicketType{
				domain.TicketTypeIncident,
				domain.TicketTypeServiceRequest,
			},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		settings.AllowedTicketTypes = append(settings.AllowedTicketTypes, domain.TicketType(t))
	}
	return &settings, nil
}

func (r *portalSettingsRepository) Upsert(ctx context.Context, settings *domain.PortalSettings) error {
	types := make([]string, 0, len(settings.AllowedTicketTypes))
	for _, t := range settings.AllowedTicketTypes {
		types = append(types, string(t))
	}
	const query = `
        INSERT INTO portal_settings (organization_id, welcome_message, allowed_ticket_types, sms_updates_enabled, updated_at)
        VALUES ($1,$2,$3,$4,NOW())
        ON CONFLICT (organization_id) DO UPDATE SET
            welcome_message=EXCLUDED.welcome_message,
            allowed_ticket_types=EXCLUDED.allowed_ticket_types,
            sms_updates_enabled=EXCLUDED.sms_updates_enabled,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		settings.OrganizationID,
		settings.WelcomeMessage,
		types,
		settings.SmsUpdatesEnabled,
	)
	return err
}
