package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fx-sentiment/internal/domain"
	"fx-sentiment/internal/metrics"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const SnapshotKey = "sentiment:current"

// KV is the subset of the Redis client used by SnapshotStore.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SnapshotStore mirrors committed cache entries to Redis so other processes can
// read them. It is never read back into the controller.
type SnapshotStore struct {
	tracer trace.Tracer
	kv     KV
	ttl    time.Duration
}

func NewSnapshotStore(tracer trace.Tracer, kv KV, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{tracer: tracer, kv: kv, ttl: ttl}
}

func (s *SnapshotStore) Publish(ctx context.Context, entry domain.CacheEntry) error {
	ctx, span := s.tracer.Start(ctx, "snapshot.publish")
	defer span.End()
	span.SetAttributes(
		attribute.String("snapshot.status", string(entry.Status)),
		attribute.Int("snapshot.records", len(entry.Records)),
	)

	payload, err := json.Marshal(entry)
	if err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.kv.Set(ctx, SnapshotKey, payload, s.ttl).Err(); err != nil {
		metrics.SnapshotWritesTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "redis set failed")
		return fmt.Errorf("write snapshot: %w", err)
	}
	metrics.SnapshotWritesTotal.WithLabelValues("ok").Inc()
	return nil
}

// Latest returns the mirrored entry, or ok=false when none exists.
func (s *SnapshotStore) Latest(ctx context.Context) (domain.CacheEntry, bool, error) {
	ctx, span := s.tracer.Start(ctx, "snapshot.latest")
	defer span.End()

	raw, err := s.kv.Get(ctx, SnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CacheEntry{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.CacheEntry{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		span.RecordError(err)
		return domain.CacheEntry{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return entry, true, nil
}
