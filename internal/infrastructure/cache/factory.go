package cache

import (
	"context"
	"fmt"

	"github.com/affiliate/backend/internal/domain/shared"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the idempotency store for the configured environment
type IdempotencyStoreFactory struct {
	redis         config.RedisConfig
	keyPrefix     string
	logger        *zap.Logger
	allowFallback bool
}

// FactoryOption configures an IdempotencyStoreFactory
type FactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithKeyPrefix sets the Redis key namespace
func WithKeyPrefix(prefix string) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.keyPrefix = prefix
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory store
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowFallback = allow
	}
}

// NewIdempotencyStoreFactory creates a factory. Fallback is allowed by default.
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...FactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redis:         cfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is configured and reachable, otherwise the
// in-memory store if fallback is allowed
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	if f.redis.Host == "" {
		f.logger.Info("Redis not configured, using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(ctx, RedisOptions{
		Host:      f.redis.Host,
		Port:      f.redis.Port,
		Password:  f.redis.Password,
		DB:        f.redis.DB,
		KeyPrefix: f.keyPrefix,
	})
	if err == nil {
		f.logger.Info("Using Redis idempotency store",
			zap.String("host", f.redis.Host),
			zap.Int("port", f.redis.Port),
		)
		return store, nil
	}
	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Duplicate payout requests are only caught per instance.",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
