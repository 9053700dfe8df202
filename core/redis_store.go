// Package core provides the shared kernel for the storefront client:
// the persisted key-value Store abstraction with in-memory, file and Redis
// implementations, the Logger interface, structured errors, and client
// configuration.
//
// This file implements the Redis-backed Store. It exists for deployments
// where the storefront client runs server-side (kiosk fleets, bots, smoke
// probes) and session/cart state should live in shared infrastructure
// instead of the local filesystem.
//
// Namespacing:
// All keys are automatically prefixed with the configured namespace
// (default "storefront") so multiple client instances can share one
// Redis without colliding: "storefront:<instance>:token" etc.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore is a Store implementation backed by Redis
type RedisStore struct {
	client    *redis.Client
	namespace string
	logger    Logger
}

// RedisStoreOptions configures the Redis store
type RedisStoreOptions struct {
	RedisURL  string
	Namespace string // Key namespace, defaults to "storefront"
	Logger    Logger // Optional logger
}

// NewRedisStore creates a new Redis-backed store and verifies connectivity
func NewRedisStore(opts RedisStoreOptions) (*RedisStore, error) {
	if opts.RedisURL == "" {
		if opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Redis store", map[string]interface{}{
				"error":      "Redis URL is required",
				"error_type": "ErrInvalidConfiguration",
			})
		}
		return nil, fmt.Errorf("redis URL is required: %w", ErrInvalidConfiguration)
	}

	redisOpt, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		if opts.Logger != nil {
			opts.Logger.Error("Failed to parse Redis URL", map[string]interface{}{
				"error":      err,
				"error_type": fmt.Sprintf("%T", err),
				"redis_url":  opts.RedisURL,
			})
		}
		return nil, fmt.Errorf("invalid Redis URL: %w", ErrInvalidConfiguration)
	}

	client := redis.NewClient(redisOpt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if opts.Logger != nil {
			opts.Logger.Error("Failed to connect to Redis", map[string]interface{}{
				"error":      err,
				"error_type": fmt.Sprintf("%T", err),
				"namespace":  opts.Namespace,
			})
		}
		return nil, fmt.Errorf("failed to connect to Redis: %w", ErrConnectionFailed)
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "storefront"
	}

	rs := &RedisStore{
		client:    client,
		namespace: namespace,
		logger:    opts.Logger,
	}

	if rs.logger != nil {
		rs.logger.Info("Redis store connected", map[string]interface{}{
			"namespace": namespace,
		})
	}

	return rs, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	if r.logger != nil {
		r.logger.Info("Closing Redis store connection", map[string]interface{}{
			"namespace": r.namespace,
		})
	}
	return r.client.Close()
}

// formatKey formats a key with the namespace
func (r *RedisStore) formatKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

// Get retrieves a value; missing keys yield ("", nil)
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.formatKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set stores a value without expiry; session lifetime is managed by the
// session manager, not by key TTLs
func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.formatKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.formatKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Exists checks if a key is present
func (r *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.formatKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}
