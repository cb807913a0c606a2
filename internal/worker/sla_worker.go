package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/observability"
	"github.com/spec-kit/msp-platform/internal/service"
)

// SlaWorker periodically evaluates open tickets for SLA breaches.
type SlaWorker struct {
	sla      *service.SlaService
	audit    *service.AuditService
	metrics  *observability.Metrics
	logger   *zap.Logger
	interval time.Duration

	consecutiveFailures int
}

// NewSlaWorker builds the worker.
func NewSlaWorker(slaService *service.SlaService, audit *service.AuditService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *SlaWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SlaWorker{
		sla:      slaService,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
	}
}

// Run loops until the context is cancelled.
func (w *SlaWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sla worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *SlaWorker) tick(ctx context.Context) {
	now := time.Now().UTC()
	evaluated, err := w.sla.RunPass(ctx, now)
	if err != nil {
		w.consecutiveFailures++
		w.metrics.RecordWorkerPass("sla", true)
		w.logger.Error("sla pass failed",
			zap.Int("consecutive_failures", w.consecutiveFailures), zap.Error(err))
		// three failed passes in a row means violations are going
		// undetected, which warrants an audit trail entry
		if w.consecutiveFailures == 3 {
			w.audit.RecordSystemEvent(ctx, "", "worker.sla_pass_failing", domain.SeverityHigh, map[string]any{
				"consecutive_failures": w.consecutiveFailures,
				"error":                err.Error(),
			})
		}
		return
	}
	w.consecutiveFailures = 0
	w.metrics.RecordWorkerPass("sla", false)
	w.logger.Debug("sla pass complete", zap.Int("tickets_evaluated", evaluated))
}
