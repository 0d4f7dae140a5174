package config

import (
	"strings"
	"testing"
	"time"
)

func TestEnvReader_Defaults(t *testing.T) {
	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.HTTP.Addr != ":3000" {
		t.Errorf("HTTP.Addr = %q, want :3000", cfg.HTTP.Addr)
	}
	if cfg.Store.Driver != "memory" || !cfg.Store.SeedTasks {
		t.Errorf("Store = %+v, want seeded memory store", cfg.Store)
	}
	if cfg.Auth.TokenMode != "static" || cfg.Auth.StaticToken != "mock.jwt.token.12345" {
		t.Errorf("Auth = %+v, want static default token", cfg.Auth)
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = true without REDIS_ADDR")
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestEnvReader_Overrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/tasks.db")
	t.Setenv("AUTH_TOKEN_MODE", "jwt")
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("AUTH_JWT_TTL", "15m")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HTTP_RATE_LIMIT", "100")

	cfg, err := NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Env != EnvProd || cfg.HTTP.Addr != ":8080" {
		t.Errorf("Env/Addr = %s %s", cfg.Env, cfg.HTTP.Addr)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "/tmp/tasks.db" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Auth.JWTTTL != 15*time.Minute {
		t.Errorf("Auth.JWTTTL = %v, want 15m", cfg.Auth.JWTTTL)
	}
	if !cfg.Redis.Enabled() {
		t.Error("Redis.Enabled() = false with REDIS_ADDR set")
	}
	if cfg.HTTP.RateLimit != 100 {
		t.Errorf("HTTP.RateLimit = %d, want 100", cfg.HTTP.RateLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "mongo"}, wantErr: "unknown store driver: mongo"},
		{name: "unknown token mode", env: map[string]string{"AUTH_TOKEN_MODE": "oauth"}, wantErr: "unknown auth token mode"},
		{name: "jwt without secret", env: map[string]string{"AUTH_TOKEN_MODE": "jwt"}, wantErr: "AUTH_JWT_SECRET is required"},
		{name: "unknown env", env: map[string]string{"ENV": "staging"}, wantErr: "unknown env: staging"},
		{name: "negative rate limit", env: map[string]string{"HTTP_RATE_LIMIT": "-1"}, wantErr: "HTTP_RATE_LIMIT"},
		{name: "unknown rate backend", env: map[string]string{"HTTP_RATE_BACKEND": "memcached"}, wantErr: "unknown rate limit backend: memcached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewEnvReader().Read()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Read() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{
		Host:     "db",
		Port:     5433,
		Username: "app",
		Password: "p@ss",
		Database: "tasks",
		SSLMode:  "disable",
	}
	want := "postgres://app:p%40ss@db:5433/tasks?sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
