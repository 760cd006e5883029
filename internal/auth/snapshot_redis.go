package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "session:"
)

// RedisSnapshots はスナップショットを Redis に保存します。
type RedisSnapshots struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSnapshots は RedisSnapshots を作成します。
func NewRedisSnapshots(rdb *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{
		rdb: rdb,
		ttl: ttl,
	}
}

// Load はスナップショットを取得します。
func (s *RedisSnapshots) Load(ctx context.Context, visitorID string) (*Snapshot, error) {
	if visitorID == "" {
		return nil, ErrNoVisitor
	}
	data, err := s.rdb.Get(ctx, snapshotKey(visitorID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session snapshot: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse session snapshot: %w", err)
	}
	return &snapshot, nil
}

// Save はスナップショットを保存し、有効期限を延長します。
func (s *RedisSnapshots) Save(ctx context.Context, visitorID string, snapshot *Snapshot) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, snapshotKey(visitorID), payload, s.ttl).Err()
}

// Delete はスナップショットを削除します。
func (s *RedisSnapshots) Delete(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return ErrNoVisitor
	}
	return s.rdb.Del(ctx, snapshotKey(visitorID)).Err()
}

func snapshotKey(id string) string {
	return snapshotKeyPrefix + id
}
