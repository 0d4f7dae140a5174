package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/rs/zerolog"
)

// Store persists the task collection. Implementations must serialise
// mutations so that concurrent requests never observe a half-applied change
// and never hand out the same id twice.
type Store interface {
	// List returns a snapshot of every task in insertion order.
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int64) (domain.Task, error)
	// Insert assigns the next id and stores t.
	Insert(ctx context.Context, t domain.Task) (domain.Task, error)
	// Update runs mutate against the stored task and saves the result
	// atomically. An error from mutate aborts the update.
	Update(ctx context.Context, id int64, mutate func(*domain.Task) error) (domain.Task, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// Pinger is implemented by stores backed by a remote or on-disk database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by stores holding connections.
type Closer interface {
	Close() error
}

// Store drivers accepted by OpenStore.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// StoreConfig selects and configures a Store implementation.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Seed        bool
}

// OpenStore builds the configured store and seeds it when it is empty.
func OpenStore(ctx context.Context, cfg StoreConfig, logger zerolog.Logger) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Driver {
	case DriverMemory, "":
		store = NewMemoryStore(nil)
	case DriverSQLite:
		store, err = OpenSQLiteStore(cfg.SQLitePath)
	case DriverPostgres:
		store, err = OpenPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Seed {
		if err := SeedStore(ctx, store, time.Now()); err != nil {
			if c, ok := store.(Closer); ok {
				_ = c.Close()
			}
			return nil, err
		}
	}

	logger.Info().Str("driver", cfg.Driver).Bool("seed", cfg.Seed).Msg("task store opened")
	return store, nil
}

// SeedStore inserts the demo tasks into an empty store.
func SeedStore(ctx context.Context, store Store, now time.Time) error {
	n, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, t := range domain.Seed(now) {
		if _, err := store.Insert(ctx, t); err != nil {
			return fmt.Errorf("failed to seed task %d: %w", t.ID, err)
		}
	}
	return nil
}
