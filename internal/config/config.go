// Package config reads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env             string        `env:"ENV" env-default:"local"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	HTTP            HTTPConfig
	Store           StoreConfig
	Postgres        PostgresConfig
	Auth            AuthConfig
	Redis           RedisConfig
}

type HTTPConfig struct {
	Addr        string        `env:"HTTP_ADDR" env-default:":3000"`
	CORSOrigins string        `env:"HTTP_CORS_ORIGINS" env-default:"*"`
	RateLimit   int           `env:"HTTP_RATE_LIMIT" env-default:"0"`
	RateWindow  time.Duration `env:"HTTP_RATE_WINDOW" env-default:"1m"`
	// RateBackend picks the Redis limiter when Redis is enabled: "script"
	// runs a sliding window script, "storage" keeps fiber limiter counters in Redis.
	RateBackend string `env:"HTTP_RATE_BACKEND" env-default:"script"`
}

type StoreConfig struct {
	Driver     string `env:"STORE_DRIVER" env-default:"memory"`
	SQLitePath string `env:"SQLITE_PATH" env-default:"taskboard.db"`
	SeedTasks  bool   `env:"SEED_TASKS" env-default:"true"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     int    `env:"POSTGRES_PORT" env-default:"5432"`
	Username string `env:"POSTGRES_USERNAME" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `env:"POSTGRES_DATABASE" env-default:"taskboard"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
}

// DSN returns the connection URL for pgx.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

type AuthConfig struct {
	TokenMode   string        `env:"AUTH_TOKEN_MODE" env-default:"static"`
	StaticToken string        `env:"AUTH_STATIC_TOKEN" env-default:"mock.jwt.token.12345"`
	JWTSecret   string        `env:"AUTH_JWT_SECRET"`
	JWTTTL      time.Duration `env:"AUTH_JWT_TTL" env-default:"24h"`
	JWTIssuer   string        `env:"AUTH_JWT_ISSUER" env-default:"taskboard"`
}

type RedisConfig struct {
	// Addr enables the list cache and shared rate limiting when set.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m"`
	Prefix   string        `env:"CACHE_PREFIX" env-default:"taskboard:"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type Reader interface {
	Read() (*Config, error)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		errs = append(errs, fmt.Errorf("unknown env: %s", c.Env))
	}
	switch c.Store.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unknown store driver: %s", c.Store.Driver))
	}
	switch c.Auth.TokenMode {
	case "static":
		if c.Auth.StaticToken == "" {
			errs = append(errs, errors.New("AUTH_STATIC_TOKEN must not be empty"))
		}
	case "jwt":
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("AUTH_JWT_SECRET is required in jwt mode"))
		}
		if c.Auth.JWTTTL <= 0 {
			errs = append(errs, errors.New("AUTH_JWT_TTL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth token mode: %s", c.Auth.TokenMode))
	}
	if c.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("HTTP_RATE_LIMIT must not be negative"))
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateWindow <= 0 {
		errs = append(errs, errors.New("HTTP_RATE_WINDOW must be positive"))
	}
	if c.HTTP.RateBackend != "script" && c.HTTP.RateBackend != "storage" {
		errs = append(errs, fmt.Errorf("unknown rate limit backend: %s", c.HTTP.RateBackend))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
