package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/observability"
	"github.com/spec-kit/msp-platform/internal/service"
)

// EscalationWorker periodically evaluates time-based escalation rules.
type EscalationWorker struct {
	escalations *service.EscalationService
	metrics     *observability.Metrics
	logger      *zap.Logger
	interval    time.Duration
}

// NewEscalationWorker builds the worker.
func NewEscalationWorker(escalationService *service.EscalationService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *EscalationWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &EscalationWorker{
		escalations: escalationService,
		metrics:     metrics,
		logger:      logger,
		interval:    interval,
	}
}

// Run loops until the context is cancelled.
func (w *EscalationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("escalation worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("escalation worker stopped")
			return
		case <-ticker.C:
			fired, err := w.escalations.RunPass(ctx, time.Now().UTC())
			if err != nil {
				w.metrics.RecordWorkerPass("escalation", true)
				w.logger.Error("escalation pass failed", zap.Error(err))
				continue
			}
			w.metrics.RecordWorkerPass("escalation", false)
			w.logger.Debug("escalation pass complete", zap.Int("rules_fired", fired))
		}
	}
}
