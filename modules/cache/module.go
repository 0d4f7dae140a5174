package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config holds the Redis connection and key settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Module owns the Redis client shared by the page cache and the rate limiter.
type Module struct {
	cfg    Config
	client *redis.Client
	cache  *Cache
	logger zerolog.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates the client eagerly so dependents can be wired before
// the application starts. No connection is made until first use.
func NewModule(cfg Config, logger zerolog.Logger) *Module {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Module{
		cfg:    cfg,
		client: client,
		cache:  New(client, cfg.Prefix, cfg.TTL),
		logger: logger.With().Str("module", "cache").Logger(),
	}
}

func (m *Module) Name() string {
	return "cache"
}

// Start verifies Redis is reachable.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	m.logger.Info().
		Str("addr", m.cfg.Addr).
		Str("prefix", m.cfg.Prefix).
		Dur("ttl", m.cfg.TTL).
		Msg("connected to Redis")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		m.logger.Error().Err(err).Msg("error closing Redis connection")
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	m.logger.Info().Msg("module stopped")
	return nil
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.cache.Ping(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("redis ping failed: %v", err)}
	}
	stats := m.cache.Stats()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"addr":     m.cfg.Addr,
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"hit_rate": stats.HitRate,
		},
	}
}

// Cache returns the page cache.
func (m *Module) Cache() *Cache {
	return m.cache
}

// Client returns the underlying Redis client.
func (m *Module) Client() *redis.Client {
	return m.client
}
