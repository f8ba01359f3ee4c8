package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/synthpanel/synthpanel/domain"
)

const (
	// Redis key prefix for session records.
	sessionKeyPrefix = "session:"
	// Default TTL for session keys.
	defaultTTL = 24 * time.Hour
)

// RedisStore implements Store using Redis. Updates use WATCH/MULTI so
// the version check and write are atomic even across processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Put creates the record for the session id, or resets it if one
// already exists.
func (s *RedisStore) Put(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Version = 1

	val, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.key(session.ID), val, s.ttl).Err()
}

// Get retrieves a session record by id. Returns (nil, nil) when no
// record exists. Refreshes the key TTL on every read.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	key := s.key(id)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}

	_ = s.client.Expire(ctx, key, s.ttl).Err()

	return &session, nil
}

// Update persists an existing record, guarded by the record version.
func (s *RedisStore) Update(ctx context.Context, session *domain.Session) error {
	key := s.key(session.ID)

	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return domain.ErrNotFound
		}
		if err != nil {
			return err
		}

		var stored domain.Session
		if err := json.Unmarshal([]byte(val), &stored); err != nil {
			return err
		}

		if stored.Version != session.Version {
			return domain.ErrVersionConflict
		}

		session.Version++
		session.UpdatedAt = time.Now()

		newVal, err := json.Marshal(session)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, s.ttl)
			return nil
		})
		return err
	}, key)
}

// Delete removes a session record.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}
