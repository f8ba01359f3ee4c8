// Package store defines the session-record storage interface and its
// drivers. One durable record is kept per session id; drivers persist
// the whole record as a self-describing JSON document.
package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/synthpanel/synthpanel/domain"
)

// Store persists one session record per id.
//
// Get returns (nil, nil) when no record exists for the id; callers
// decide whether absence is an error. Put creates or silently resets
// the record for its id. Update persists an existing record, bumps its
// Version, and refreshes UpdatedAt; it returns domain.ErrNotFound when
// the record is gone and domain.ErrVersionConflict when another writer
// got there first.
type Store interface {
	Put(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Driver names accepted by New.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Option configures the store factory.
type Option func(*config)

type config struct {
	sqliteDSN   string
	redisClient *redis.Client
	redisTTL    time.Duration
}

// WithSQLiteDSN sets the DSN for the sqlite driver.
func WithSQLiteDSN(dsn string) Option {
	return func(c *config) { c.sqliteDSN = dsn }
}

// WithRedisClient sets the client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *config) { c.redisClient = client }
}

// WithRedisTTL sets the key TTL for the redis driver.
func WithRedisTTL(ttl time.Duration) Option {
	return func(c *config) { c.redisTTL = ttl }
}

// New creates a Store for the given driver name.
func New(driver string, opts ...Option) (Store, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverSQLite:
		return NewSQLiteStore(cfg.sqliteDSN)
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, domain.ErrValidation
		}
		return NewRedisStore(cfg.redisClient, cfg.redisTTL), nil
	default:
		return nil, domain.ErrValidation
	}
}
