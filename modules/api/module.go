package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/taskboard/middleware/ratelimit"
	"github.com/example/taskboard/modules/activity"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/task"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Config configures the HTTP server.
type Config struct {
	Addr        string
	CORSOrigins string
	// RateLimit is requests per RateWindow per client IP; 0 disables limiting.
	RateLimit  int
	RateWindow time.Duration
	Version    string
}

// APIModule is the driving adapter that exposes REST endpoints.
type APIModule struct {
	cfg      Config
	app      *fiber.App
	redis    *redis.Client
	limits   fiber.Storage
	tasks    task.TaskPort
	auth     auth.AuthPort
	activity activity.ActivityPort
	logger   zerolog.Logger
}

var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

func NewModule(cfg Config, logger zerolog.Logger) *APIModule {
	return &APIModule{
		cfg:    cfg,
		logger: logger.With().Str("module", "api").Logger(),
	}
}

// SetRedisClient shares rate limit counters through Redis. Must be called before Start.
func (m *APIModule) SetRedisClient(client *redis.Client) {
	m.redis = client
}

// SetLimiterStorage keeps rate limit counters in a fiber storage shared by
// every instance. It takes precedence over SetRedisClient and is closed on Stop.
func (m *APIModule) SetLimiterStorage(storage fiber.Storage) {
	m.limits = storage
}

func (m *APIModule) Name() string {
	return "api"
}

func (m *APIModule) Dependencies() []string {
	return []string{"task", "auth", "activity"}
}

func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "task":
		m.tasks = task.NewTaskAdapter(container)
	case "auth":
		m.auth = auth.NewAuthAdapter(container)
	case "activity":
		m.activity = activity.NewActivityAdapter(container)
	}
}

func (m *APIModule) Start(_ context.Context) error {
	switch {
	case m.tasks == nil:
		return fmt.Errorf("task dependency not set")
	case m.auth == nil:
		return fmt.Errorf("auth dependency not set")
	case m.activity == nil:
		return fmt.Errorf("activity dependency not set")
	}

	h := &handlers{
		tasks:    m.tasks,
		auth:     m.auth,
		activity: m.activity,
		logger:   m.logger,
		version:  m.cfg.Version,
		now:      time.Now,
	}
	m.app = newApp(m.cfg, h, m.redis, m.limits)

	go func() {
		if err := m.app.Listen(m.cfg.Addr); err != nil {
			m.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	m.logger.Info().
		Str("addr", m.cfg.Addr).
		Int("rate_limit", m.cfg.RateLimit).
		Bool("redis_rate_limit", m.redis != nil).
		Bool("storage_rate_limit", m.limits != nil).
		Msg("HTTP server started")
	return nil
}

func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info().Msg("shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	if m.limits != nil {
		if err := m.limits.Close(); err != nil {
			return fmt.Errorf("failed to close rate limit storage: %w", err)
		}
	}
	return nil
}

func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.cfg.Addr,
		},
	}
}

// newApp builds the fiber application with middleware and routes.
func newApp(cfg Config, h *handlers, redisClient *redis.Client, limits fiber.Storage) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(h.logger),
	})

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(requestid.New())
	app.Use(requestLogger(h.logger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, X-Requested-With, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	if cfg.RateLimit > 0 {
		app.Use(ratelimit.New(ratelimit.Config{
			RequestsPerWindow: cfg.RateLimit,
			WindowSize:        cfg.RateWindow,
			KeyPrefix:         "taskboard:ratelimit:",
			Storage:           limits,
		}, redisClient, h.logger))
	}

	h.register(app.Group("/api"))
	h.register(app)
	app.Use(notFound)

	return app
}
