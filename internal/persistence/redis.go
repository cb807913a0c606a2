package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/msp-platform/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// TicketLocker serializes SLA/escalation evaluation against concurrent
// ticket mutation. Evaluators take the lock around their
// read-decide-write window so one ticket is never evaluated twice at
// once across workers.
type TicketLocker interface {
	Acquire(ctx context.Context, ticketID string, ttl time.Duration) (release func(), ok bool, err error)
}

type redisTicketLocker struct {
	client *redis.Client
}

// NewTicketLocker builds a Redis-backed per-ticket lock.
func NewTicketLocker(r *Redis) TicketLocker {
	if r == nil {
		return &redisTicketLocker{}
	}
	return &redisTicketLocker{client: r.Client}
}

func (l *redisTicketLocker) Acquire(ctx context.Context, ticketID string, ttl time.Duration) (func(), bool, error) {
	if l.client == nil {
		return func() {}, true, nil
	}
	key := "lock:ticket:" + ticketID
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// release only if we still hold it
		const script = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`
		_ = l.client.Eval(context.Background(), script, []string{key}, token).Err()
	}
	return release, true, nil
}
