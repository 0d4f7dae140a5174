package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/rs/zerolog"
)

// TaskModule owns the task collection and exposes it as request-reply services.
type TaskModule struct {
	cfg      StoreConfig
	store    Store
	cache    PageCache
	service  *Service
	eventBus mono.EventBus
	logger   zerolog.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a task module that opens its store on Start.
func NewModule(cfg StoreConfig, logger zerolog.Logger) *TaskModule {
	return &TaskModule{
		cfg:    cfg,
		logger: logger.With().Str("module", "task").Logger(),
	}
}

// NewModuleWithStore creates a task module around an already opened store.
func NewModuleWithStore(store Store, logger zerolog.Logger) *TaskModule {
	m := NewModule(StoreConfig{Driver: "injected"}, logger)
	m.store = store
	return m
}

// SetPageCache enables list caching. Must be called before Start.
func (m *TaskModule) SetPageCache(c PageCache) {
	m.cache = c
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info().
		Strs("services", []string{"list-tasks", "get-task", "create-task", "update-task", "delete-task"}).
		Msg("registered services")
	return nil
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.store == nil {
		store, err := OpenStore(ctx, m.cfg, m.logger)
		if err != nil {
			return fmt.Errorf("failed to open task store: %w", err)
		}
		m.store = store
	}

	var opts []ServiceOption
	if m.cache != nil {
		opts = append(opts, WithPageCache(m.cache))
	}
	m.service = NewService(m.store, m.logger, opts...)

	if m.eventBus == nil {
		m.logger.Warn().Msg("eventBus not set, events will not be published")
	}
	m.logger.Info().Str("driver", m.cfg.Driver).Bool("cache", m.cache != nil).Msg("module started")
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if c, ok := m.store.(Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close task store: %w", err)
		}
	}
	m.logger.Info().Msg("module stopped")
	return nil
}

func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{Healthy: false, Message: "store not initialized"}
	}
	if p, ok := m.store.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("store ping failed: %v", err)}
		}
	}

	count, err := m.store.Count(ctx)
	if err != nil {
		return mono.HealthStatus{Healthy: false, Message: fmt.Sprintf("store count failed: %v", err)}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": m.cfg.Driver,
			"tasks":  count,
			"cache":  m.cache != nil,
		},
	}
}
