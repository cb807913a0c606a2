package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/repository"
)

// AuditService records mutations of policy-relevant entities. Audit
// failures are logged, never propagated: a mutation must not fail
// because its audit entry could not be written.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record writes one audit entry.
func (a *AuditService) Record(ctx context.Context, entry *domain.AuditLog) {
	if a == nil || a.repo == nil {
		return
	}
	if entry.Severity == "" {
		entry.Severity = domain.SeverityInfo
	}
	if err := a.repo.Create(ctx, entry); err != nil {
		a.logger.Error("audit record failed",
			zap.String("action", entry.Action),
			zap.String("entity_type", entry.EntityType),
			zap.String("entity_id", entry.EntityID),
			zap.Error(err))
	}
}

// RecordChange is shorthand for an entity mutation entry.
func (a *AuditService) RecordChange(ctx context.Context, organizationID, action, entityType, entityID string, oldValues, newValues map[string]any, actor domain.SubjectType, actorID *string) {
	a.Record(ctx, &domain.AuditLog{
		OrganizationID: organizationID,
		Action:         action,
		EntityType:     entityType,
		EntityID:       entityID,
		OldValues:      oldValues,
		NewValues:      newValues,
		Severity:       domain.SeverityInfo,
		ActorType:      actor,
		ActorID:        actorID,
	})
}

// RecordSystemEvent writes an operational event (worker failures and
// similar) into the audit channel with the given severity.
func (a *AuditService) RecordSystemEvent(ctx context.Context, organizationID, action string, severity domain.AuditSeverity, details map[string]any) {
	a.Record(ctx, &domain.AuditLog{
		OrganizationID: organizationID,
		Action:         action,
		EntityType:     "system",
		EntityID:       organizationID,
		NewValues:      details,
		Severity:       severity,
		ActorType:      domain.SubjectTypeSystem,
	})
}

// List exposes filtered audit search.
func (a *AuditService) List(ctx context.Context, organizationID string, filter repository.AuditFilter) ([]domain.AuditLog, error) {
	return a.repo.List(ctx, organizationID, filter)
}

// Summary exposes aggregated audit counts.
func (a *AuditService) Summary(ctx context.Context, organizationID string, filter repository.AuditFilter) (*repository.AuditSummary, error) {
	from := filter.From
	to := filter.To
	if from == nil || to == nil {
		return nil, domain.NewFieldError("from", "from and to are required for summaries")
	}
	return a.repo.Summary(ctx, organizationID, *from, *to)
}
