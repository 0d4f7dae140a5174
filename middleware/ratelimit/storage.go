package ratelimit

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberredis "github.com/gofiber/storage/redis/v3"
)

// StorageConfig addresses the Redis server that holds shared limiter counters.
type StorageConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewStorage connects a fiber storage to Redis for Config.Storage.
// The storage driver panics when it cannot connect, so reachability is
// checked first and reported as an error.
func NewStorage(cfg StorageConfig) (fiber.Storage, error) {
	host, port, err := splitRedisAddr(cfg.Addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("redis not reachable at %s: %w", cfg.Addr, err)
	}
	_ = conn.Close()

	return fiberredis.New(fiberredis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.Password,
		Database: cfg.DB,
		PoolSize: 50,
	}), nil
}

// splitRedisAddr parses "host:port", defaulting an empty host to 127.0.0.1.
func splitRedisAddr(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid redis address %q: %w", addr, err)
	}
	if host == "" {
		host = "127.0.0.1"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return "", 0, fmt.Errorf("invalid redis port in %q", addr)
	}
	return host, port, nil
}
