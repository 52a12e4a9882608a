// Package persist keeps selected store slices of a session across process restarts.
package persist

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
)

// Slice names a persistable subdivision of session state
type Slice string

const (
	SliceAuth     Slice = "auth"
	SliceProduct  Slice = "product"
	SliceDelivery Slice = "delivery"
	// SliceOrder is never persisted
	SliceOrder Slice = "order"
)

// Slices lists every slice that may be persisted
var Slices = []Slice{SliceAuth, SliceProduct, SliceDelivery}

// ErrNotPersisted is returned for slices that must never be written
var ErrNotPersisted = stderrors.New("slice is not persisted")

func (s Slice) persisted() bool {
	for _, p := range Slices {
		if p == s {
			return true
		}
	}
	return false
}

type Store interface {
	Save(ctx context.Context, sessionID string, slice Slice, v interface{}) error
	// Load decodes the slice into v and reports whether it was present
	Load(ctx context.Context, sessionID string, slice Slice, v interface{}) (bool, error)
	Clear(ctx context.Context, sessionID string) error
}

// Connect opens and pings a Redis client
func Connect(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return rdb, nil
}

type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a store whose keys expire after ttl. A zero ttl keeps keys forever.
func NewRedisStore(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

// Key returns the Redis key holding slice of sessionID
func Key(sessionID string, slice Slice) string {
	return fmt.Sprintf("storefront:session:%s:%s", sessionID, slice)
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, slice Slice, v interface{}) error {
	if !slice.persisted() {
		return fmt.Errorf("%w: %s", ErrNotPersisted, slice)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s slice: %w", slice, err)
	}
	if err := s.rdb.Set(ctx, Key(sessionID, slice), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save %s slice: %w", slice, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string, slice Slice, v interface{}) (bool, error) {
	if !slice.persisted() {
		return false, fmt.Errorf("%w: %s", ErrNotPersisted, slice)
	}

	data, err := s.rdb.Get(ctx, Key(sessionID, slice)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s slice: %w", slice, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("Discarding unreadable persisted slice",
			zap.String("session_id", sessionID),
			zap.String("slice", string(slice)),
			zap.Error(err),
		)
		return false, nil
	}
	return true, nil
}

// Clear removes every persisted slice of the session
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	keys := make([]string, 0, len(Slices))
	for _, slice := range Slices {
		keys = append(keys, Key(sessionID, slice))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", sessionID, err)
	}
	return nil
}
