package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/example/taskboard/internal/config"
	"github.com/example/taskboard/internal/logging"
	"github.com/example/taskboard/middleware/ratelimit"
	"github.com/example/taskboard/modules/activity"
	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/rs/zerolog"
)

const version = "1.0.0"

func main() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		stderrLogger := zerolog.New(os.Stderr)
		stderrLogger.Fatal().Err(err).Msg("failed to read config")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		stderrLogger := zerolog.New(os.Stderr)
		stderrLogger.Fatal().Err(err).Msg("failed to create logger")
	}
	logger.Info().Str("env", cfg.Env).Str("version", version).Msg("starting taskboard")

	// Levels below error keep the framework at info.
	monoLogLevel := mono.WithLogLevel(mono.LogLevelInfo)
	if logger.GetLevel() >= zerolog.ErrorLevel {
		monoLogLevel = mono.WithLogLevel(mono.LogLevelError)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		monoLogLevel,
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application")
	}

	taskModule := task.NewModule(task.StoreConfig{
		Driver:      cfg.Store.Driver,
		SQLitePath:  cfg.Store.SQLitePath,
		PostgresDSN: cfg.Postgres.DSN(),
		Seed:        cfg.Store.SeedTasks,
	}, logger)

	apiModule := api.NewModule(api.Config{
		Addr:        cfg.HTTP.Addr,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		RateWindow:  cfg.HTTP.RateWindow,
		Version:     version,
	}, logger)

	// Order: independent modules first, then modules with dependencies
	app.Register(auth.NewModule(auth.Config{
		Tokens: auth.TokenConfig{
			Mode:        cfg.Auth.TokenMode,
			StaticToken: cfg.Auth.StaticToken,
			Secret:      cfg.Auth.JWTSecret,
			TTL:         cfg.Auth.JWTTTL,
			Issuer:      cfg.Auth.JWTIssuer,
		},
	}, logger))
	app.Register(activity.NewModule(logger))
	if cfg.Redis.Enabled() {
		cacheModule := cache.NewModule(cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.CacheTTL,
		}, logger)
		taskModule.SetPageCache(cacheModule.Cache())
		apiModule.SetRedisClient(cacheModule.Client())
		if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBackend == "storage" {
			limits, err := ratelimit.NewStorage(ratelimit.StorageConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to create rate limit storage")
			}
			apiModule.SetLimiterStorage(limits)
		}
		app.Register(cacheModule)
	}
	app.Register(taskModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to start application")
	}
	logger.Info().
		Str("addr", cfg.HTTP.Addr).
		Str("store", cfg.Store.Driver).
		Bool("redis", cfg.Redis.Enabled()).
		Str("token_mode", cfg.Auth.TokenMode).
		Msg("application started")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info().Msg("graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info().Int("exit_code", exitCode).Msg("application exited")
	os.Exit(exitCode)
}
