package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/config"
	"github.com/spec-kit/msp-platform/internal/domain"
	"github.com/spec-kit/msp-platform/internal/observability"
)

type queueFake struct {
	messages []domain.SmsNotification
}

func (q *queueFake) Enqueue(_ context.Context, sms *domain.SmsNotification) error {
	sms.ID = fmt.Sprintf("sms-%d", len(q.messages)+1)
	q.messages = append(q.messages, *sms)
	return nil
}

func (q *queueFake) ListDue(_ context.Context, now time.Time, limit int) ([]domain.SmsNotification, error) {
	var out []domain.SmsNotification
	for _, sms := range q.messages {
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

func (q *queueFake) MarkSent(_ context.Context, id string, sentAt time.Time) error {
	for i := range q.messages {
		if q.messages[i].ID == id {
			q.messages[i].Status = domain.SmsStatusSent
			q.messages[i].SentAt = &sentAt
		}
	}
	return nil
}

func (q *queueFake) MarkRetry(_ context.Context, id string, retryCount int, nextRetryAt time.Time, lastError string) error {
	for i := range q.messages {
		if q.messages[i].ID == id {
			q.messages[i].RetryCount = retryCount
			q.messages[i].NextRetryAt = &nextRetryAt
			q.messages[i].LastError = &lastError
		}
	}
	return nil
}

func (q *queueFake) MarkFailed(_ context.Context, id string, lastError string) error {
	for i := range q.messages {
		if q.messages[i].ID == id {
			q.messages[i].Status = domain.SmsStatusFailed
			q.messages[i].LastError = &lastError
		}
	}
	return nil
}

type providerFake struct {
	failures int // fail this many sends, then succeed
	sent     []string
	attempts int
}

func (p *providerFake) Send(_ context.Context, recipient, _ string) error {
	p.attempts++
	if p.attempts <= p.failures {
		return errors.New("gateway timeout")
	}
	p.sent = append(p.sent, recipient)
	return nil
}

func newTestSmsWorker(queue *queueFake, provider *providerFake) *SmsWorker {
	return NewSmsWorker(queue, provider, observability.NewMetrics(), zap.NewNop(),
		config.SchedulerConfig{SmsIntervalSeconds: 30, BatchSize: 10},
		config.SmsConfig{MaxRetries: 3, RetryBaseSec: 60})
}

func TestDrainDeliversPending(t *testing.T) {
	queue := &queueFake{}
	provider := &providerFake{}
	w := newTestSmsWorker(queue, provider)

	require.NoError(t, queue.Enqueue(context.Background(), &domain.SmsNotification{
		Recipient: "+15550001", Body: "hello", Status: domain.SmsStatusPending,
	}))
	w.drain(context.Background())

	assert.Equal(t, []string{"+15550001"}, provider.sent)
	assert.Equal(t, domain.SmsStatusSent, queue.messages[0].Status)
	require.NotNil(t, queue.messages[0].SentAt)
}

func TestRetryBackoffDoubles(t *testing.T) {
	queue := &queueFake{}
	provider := &providerFake{failures: 2}
	w := newTestSmsWorker(queue, provider)

	require.NoError(t, queue.Enqueue(context.Background(), &domain.SmsNotification{
		Recipient: "+15550001", Body: "hello", Status: domain.SmsStatusPending,
	}))

	now := time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC)

	// first failure schedules the retry one base interval out
	w.deliver(context.Background(), &queue.messages[0], now)
	msg := queue.messages[0]
	assert.Equal(t, 1, msg.RetryCount)
	require.NotNil(t, msg.NextRetryAt)
	assert.Equal(t, now.Add(time.Minute), *msg.NextRetryAt)
	assert.Equal(t, domain.SmsStatusPending, msg.Status)

	// second failure doubles the delay
	w.deliver(context.Background(), &queue.messages[0], now)
	msg = queue.messages[0]
	assert.Equal(t, 2, msg.RetryCount)
	assert.Equal(t, now.Add(2*time.Minute), *msg.NextRetryAt)

	// third attempt succeeds
	w.deliver(context.Background(), &queue.messages[0], now)
	assert.Equal(t, domain.SmsStatusSent, queue.messages[0].Status)
}

func TestRetryBudgetExhaustedMarksFailed(t *testing.T) {
	queue := &queueFake{}
	provider := &providerFake{failures: 10}
	w := newTestSmsWorker(queue, provider)

	require.NoError(t, queue.Enqueue(context.Background(), &domain.SmsNotification{
		Recipient: "+15550001", Body: "hello", Status: domain.SmsStatusPending,
	}))

	now := time.Now().UTC()
	w.deliver(context.Background(), &queue.messages[0], now)
	w.deliver(context.Background(), &queue.messages[0], now)
	assert.Equal(t, domain.SmsStatusPending, queue.messages[0].Status)

	// attempt three hits MaxRetries
	w.deliver(context.Background(), &queue.messages[0], now)
	msg := queue.messages[0]
	assert.Equal(t, domain.SmsStatusFailed, msg.Status)
	require.NotNil(t, msg.LastError)
	assert.Equal(t, "gateway timeout", *msg.LastError)
}

func TestDrainSkipsMessagesNotYetDue(t *testing.T) {
	queue := &queueFake{}
	provider := &providerFake{}
	w := newTestSmsWorker(queue, provider)

	future := time.Now().UTC().Add(time.Hour)
	require.NoError(t, queue.Enqueue(context.Background(), &domain.SmsNotification{
		Recipient: "+15550001", Body: "later", Status: domain.SmsStatusPending, NextRetryAt: &future,
	}))
	w.drain(context.Background())

	assert.Empty(t, provider.sent)
	assert.Equal(t, domain.SmsStatusPending, queue.messages[0].Status)
}
