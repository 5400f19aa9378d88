package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// RedisStore implements Store using Redis, so pending turns survive
// restarts and are shared between instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration // pending-turn TTL (time to live)
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
	}, nil
}

// turnKey generates the Redis key for a session's pending turn.
func (r *RedisStore) turnKey(sessionID string) string {
	return fmt.Sprintf("pending:%s", sessionID)
}

// Get loads the pending turn for a session from Redis.
func (r *RedisStore) Get(ctx context.Context, sessionID string) (*models.PendingTurn, error) {
	data, err := r.client.Get(ctx, r.turnKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pending turn from Redis: %w", err)
	}

	var turn models.PendingTurn
	if err := json.Unmarshal([]byte(data), &turn); err != nil {
		return nil, fmt.Errorf("failed to parse pending turn: %w", err)
	}

	return &turn, nil
}

// Put stores the pending turn for a session with the configured TTL.
func (r *RedisStore) Put(ctx context.Context, sessionID string, turn *models.PendingTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal pending turn: %w", err)
	}

	if err := r.client.Set(ctx, r.turnKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save pending turn to Redis: %w", err)
	}

	return nil
}

// Delete removes the pending turn for a session from Redis.
func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.turnKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete pending turn: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping verifies the Redis connection is alive.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
