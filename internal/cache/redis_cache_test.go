package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisCache(rdb, ttl)
}

func TestRedisCache_StoreOutcome(t *testing.T) {
	t.Parallel()

	mr, cache := newTestCache(t, 10*time.Second)

	sentAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := cache.StoreOutcome(context.Background(), 42, "MSG-123", sentAt); err != nil {
		t.Fatalf("StoreOutcome() error: %v", err)
	}

	if !mr.Exists("sms:42") {
		t.Fatal("expected key sms:42 to exist")
	}
	if mr.TTL("sms:42") <= 0 {
		t.Fatalf("expected TTL to be set, got %v", mr.TTL("sms:42"))
	}

	raw, err := mr.Get("sms:42")
	if err != nil {
		t.Fatalf("failed to get key: %v", err)
	}

	var got Outcome
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to unmarshal value: %v", err)
	}
	if got.MessageID != "MSG-123" {
		t.Errorf("MessageID = %q, want MSG-123", got.MessageID)
	}
	if !got.SentAt.Equal(sentAt) {
		t.Errorf("SentAt = %v, want %v", got.SentAt, sentAt)
	}
}

func TestRedisCache_GetOutcome(t *testing.T) {
	t.Parallel()

	_, cache := newTestCache(t, time.Minute)
	ctx := context.Background()

	sentAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if err := cache.StoreOutcome(ctx, 7, "MSG-7", sentAt); err != nil {
		t.Fatalf("StoreOutcome() error: %v", err)
	}

	got, err := cache.GetOutcome(ctx, 7)
	if err != nil {
		t.Fatalf("GetOutcome() error: %v", err)
	}
	if got.MessageID != "MSG-7" || !got.SentAt.Equal(sentAt) {
		t.Errorf("GetOutcome = %+v", got)
	}

	_, err = cache.GetOutcome(ctx, 999)
	if !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached for missing key, got %v", err)
	}
}

func TestRedisCache_StoreOutcome_ContextCanceled(t *testing.T) {
	t.Parallel()

	_, cache := newTestCache(t, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.StoreOutcome(ctx, 1, "x", time.Now()); err == nil {
		t.Fatal("expected error due to canceled context, got nil")
	}
}
