package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/fba-cockpit/internal/config"
)

const (
	snapshotKeyPrefix     = "fba:snapshot"
	snapshotScanBatchSize = 100
)

// Kinds of derived results cached per snapshot.
const (
	KindItems   = "items"
	KindSummary = "summary"
	KindAlerts  = "alerts"
	KindCompare = "compare"
)

// PairScope holds results derived from two snapshots. The slash cannot occur
// in a snapshot name, which comes from a file base name.
const PairScope = "/pairs"

// SnapshotCache stores results derived from a snapshot, keyed by the snapshot
// name, a result kind and the request parameters.
type SnapshotCache interface {
	Get(ctx context.Context, snapshot, kind string, params any, dst any) (bool, error)
	Set(ctx context.Context, snapshot, kind string, params any, value any) error
	InvalidateSnapshot(ctx context.Context, snapshot string) error
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopSnapshotCache struct{}

func NewSnapshotCache(cfg config.CacheConfig) (SnapshotCache, error) {
	if !cfg.Enabled {
		return &noopSnapshotCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisSnapshotCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopSnapshotCache() SnapshotCache {
	return &noopSnapshotCache{}
}

func (c *redisSnapshotCache) Get(ctx context.Context, snapshot, kind string, params any, dst any) (bool, error) {
	key, err := buildSnapshotKey(snapshot, kind, params)
	if err != nil {
		return false, err
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode snapshot cache %s: %w", kind, err)
	}
	return true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, snapshot, kind string, params any, value any) error {
	key, err := buildSnapshotKey(snapshot, kind, params)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode snapshot cache %s: %w", kind, err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisSnapshotCache) InvalidateSnapshot(ctx context.Context, snapshot string) error {
	return deleteKeysWithPrefix(ctx, c.client, snapshotPrefix(snapshot), snapshotScanBatchSize)
}

func (n *noopSnapshotCache) Get(context.Context, string, string, any, any) (bool, error) {
	return false, nil
}

func (n *noopSnapshotCache) Set(context.Context, string, string, any, any) error {
	return nil
}

func (n *noopSnapshotCache) InvalidateSnapshot(context.Context, string) error {
	return nil
}

func snapshotPrefix(snapshot string) string {
	return fmt.Sprintf("%s:%s:", snapshotKeyPrefix, snapshot)
}

func buildSnapshotKey(snapshot, kind string, params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache key params: %w", err)
	}
	sum := sha1.Sum(raw)
	return snapshotPrefix(snapshot) + kind + ":" + hex.EncodeToString(sum[:]), nil
}
