package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/config"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/observability"
	"github.com/spec-kit/msp-platform/internal/repository"
	"github.com/spec-kit/msp-platform/internal/service"
)

// SmsWorker drains the pending SMS queue. Failed deliveries are
// retried with exponential backoff until the retry budget is spent,
// then marked failed permanently.
type SmsWorker struct {
	queue     repository.SmsRepository
	provider  service.SmsProvider
	metrics   *observability.Metrics
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
	maxRetry  int
	retryBase time.Duration
}

// NewSmsWorker builds the worker.
func NewSmsWorker(smsRepo repository.SmsRepository, provider service.SmsProvider, metrics *observability.Metrics, logger *zap.Logger, scheduler config.SchedulerConfig, sms config.SmsConfig) *SmsWorker {
	interval := scheduler.SmsInterval()
	if interval <= 0 {
		interval = 30 * time.Second
	}
	batch := scheduler.BatchSize
	if batch <= 0 {
		batch = 100
	}
	maxRetry := sms.MaxRetries
	if maxRetry <= 0 {
		maxRetry = 5
	}
	retryBase := time.Duration(sms.RetryBaseSec) * time.Second
	if retryBase <= 0 {
		retryBase = time.Minute
	}
	return &SmsWorker{
		queue:     smsRepo,
		provider:  provider,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
		batchSize: batch,
		maxRetry:  maxRetry,
		retryBase: retryBase,
	}
}

// Run loops until the context is cancelled.
func (w *SmsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sms worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sms worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *SmsWorker) drain(ctx context.Context) {
	now := time.Now().UTC()
	due, err := w.queue.ListDue(ctx, now, w.batchSize)
	if err != nil {
		w.metrics.RecordWorkerPass("sms", true)
		w.logger.Error("sms queue read failed", zap.Error(err))
		return
	}
	for i := range due {
		if ctx.Err() != nil {
			return
		}
		w.deliver(ctx, &due[i], now)
	}
	w.metrics.RecordWorkerPass("sms", false)
}

func (w *SmsWorker) deliver(ctx context.Context, sms *domain.SmsNotification, now time.Time) {
	err := w.provider.Send(ctx, sms.Recipient, sms.Body)
	if err == nil {
		if markErr := w.queue.MarkSent(ctx, sms.ID, time.Now().UTC()); markErr != nil {
			w.logger.Error("sms mark-sent failed", zap.String("sms_id", sms.ID), zap.Error(markErr))
		}
		return
	}

	retries := sms.RetryCount + 1
	if retries >= w.maxRetry {
		w.logger.Warn("sms permanently failed",
			zap.String("sms_id", sms.ID),
			zap.Int("attempts", retries),
			zap.Error(err))
		if markErr := w.queue.MarkFailed(ctx, sms.ID, err.Error()); markErr != nil {
			w.logger.Error("sms mark-failed failed", zap.String("sms_id", sms.ID), zap.Error(markErr))
		}
		return
	}

	nextRetry := now.Add(w.retryBase * (1 << (retries - 1)))
	if markErr := w.queue.MarkRetry(ctx, sms.ID, retries, nextRetry, err.Error()); markErr != nil {
		w.logger.Error("sms mark-retry failed", zap.String("sms_id", sms.ID), zap.Error(markErr))
	}
}
