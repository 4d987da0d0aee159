package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses redisURL, creates a client, and verifies connectivity with a ping.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// RedisTracker keeps generations in Redis counters, shared by every replica.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker constructs a RedisTracker. A non-positive ttl selects DefaultTTL.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{client: client, ttl: ttl}
}

// Begin increments the generation counter and refreshes its expiry.
func (t *RedisTracker) Begin(ctx context.Context, sessionID, topic string) (int64, error) {
	k := key(sessionID, topic)

	var incr *redis.IntCmd
	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, t.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("session begin for %s: %w", k, err)
	}
	return incr.Val(), nil
}

// IsCurrent reports whether gen is still the latest generation. An expired
// counter means nothing newer was started.
func (t *RedisTracker) IsCurrent(ctx context.Context, sessionID, topic string, gen int64) (bool, error) {
	k := key(sessionID, topic)

	val, err := t.client.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return true, nil
		}
		return false, fmt.Errorf("session check for %s: %w", k, err)
	}

	latest, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("session check for %s: bad counter %q: %w", k, val, err)
	}
	return latest == gen, nil
}
