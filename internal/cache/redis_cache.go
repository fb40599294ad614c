package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotCached is returned when no outcome exists for a record
var ErrNotCached = errors.New("outcome not cached")

// RedisCache keeps dispatch outcomes in Redis under sms:<key> with a TTL
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCache creates a new cache over an existing client
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// StoreOutcome writes the outcome of a successful dispatch
func (c *RedisCache) StoreOutcome(ctx context.Context, smsKey int, messageID string, sentAt time.Time) error {
	val := Outcome{
		MessageID: messageID,
		SentAt:    sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, outcomeKey(smsKey), b, c.ttl).Err()
}

// GetOutcome reads a cached outcome; ErrNotCached when absent or expired
func (c *RedisCache) GetOutcome(ctx context.Context, smsKey int) (*Outcome, error) {
	raw, err := c.rdb.Get(ctx, outcomeKey(smsKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotCached
	}
	if err != nil {
		return nil, err
	}

	var out Outcome
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func outcomeKey(smsKey int) string {
	return fmt.Sprintf("sms:%d", smsKey)
}
