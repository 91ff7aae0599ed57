package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Client is the Redis client to use. Required.
	Client *redis.Client

	// Key is the hash key holding the session fields.
	// Default: "sessionkit:credentials"
	Key string

	// TTL, when positive, expires the hash after each Save. Zero keeps
	// the credentials until Clear.
	TTL time.Duration
}

// RedisStore persists credentials in a single Redis hash. Each logical
// field is one hash field, so partial updates touch only the fields they
// carry, and Clear is a single DEL.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.Key == "" {
		cfg.Key = "sessionkit:credentials"
	}
	return &RedisStore{client: cfg.Client, key: cfg.Key, ttl: cfg.TTL}
}

// Save applies the non-nil fields of the update with a single HSET.
func (s *RedisStore) Save(ctx context.Context, update Update) error {
	fields := make(map[string]any, 5)
	if update.Access != nil {
		fields[KeyAccessToken] = *update.Access
	}
	if update.Refresh != nil {
		fields[KeyRefreshToken] = *update.Refresh
	}
	if update.Identity != nil {
		profile, err := json.Marshal(update.Identity.Profile)
		if err != nil {
			return fmt.Errorf("credentials: encode identity: %w", err)
		}
		fields[KeyUserIdentity] = string(profile)
		fields[KeyRole] = string(update.Identity.Role)
		fields[KeyUserID] = update.Identity.UserID
	}
	if len(fields) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, s.key, fields).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return nil
}

// Read returns the stored snapshot. Malformed fields read as absent.
func (s *RedisStore) Read(ctx context.Context) (Snapshot, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	snap := Snapshot{
		Pair: Pair{
			Access:  values[KeyAccessToken],
			Refresh: values[KeyRefreshToken],
		},
		Identity: Identity{UserID: values[KeyUserID]},
	}
	if role, err := ParseRole(values[KeyRole]); err == nil {
		snap.Identity.Role = role
	}
	if raw := values[KeyUserIdentity]; raw != "" {
		var profile map[string]any
		if err := json.Unmarshal([]byte(raw), &profile); err == nil {
			snap.Identity.Profile = profile
		}
	}
	return snap, nil
}

// Clear deletes the hash atomically.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)
