package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxEntries bounds the activity feed; older entries are dropped.
const MaxEntries = 100

// Entry types.
const (
	TypeTaskCreated = "task_created"
	TypeTaskUpdated = "task_updated"
	TypeTaskDeleted = "task_deleted"
)

// Entry is one line of the activity feed.
type Entry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	TaskID    int64     `json:"taskId"`
	Title     string    `json:"title,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ActivityModule records task events in a bounded in-memory feed.
type ActivityModule struct {
	entries []Entry
	mu      sync.RWMutex
	logger  zerolog.Logger
}

var _ mono.Module = (*ActivityModule)(nil)
var _ mono.EventConsumerModule = (*ActivityModule)(nil)
var _ mono.ServiceProviderModule = (*ActivityModule)(nil)
var _ mono.HealthCheckableModule = (*ActivityModule)(nil)

func NewModule(logger zerolog.Logger) *ActivityModule {
	return &ActivityModule{
		entries: make([]Entry, 0, MaxEntries),
		logger:  logger.With().Str("module", "activity").Logger(),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleTaskUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	m.logger.Info().Strs("events", []string{"TaskCreated", "TaskUpdated", "TaskDeleted"}).Msg("registered event consumers")
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"list-activity",
		json.Unmarshal,
		json.Marshal,
		m.handleListActivity,
	); err != nil {
		return fmt.Errorf("failed to register list-activity service: %w", err)
	}
	return nil
}

func (m *ActivityModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(TypeTaskCreated, event.TaskID, event.Title,
		fmt.Sprintf("Task '%s' created with %s priority", event.Title, event.Priority), event.CreatedAt)
	return nil
}

func (m *ActivityModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	msg := fmt.Sprintf("Task '%s' updated", event.Title)
	if len(event.Fields) > 0 {
		msg = fmt.Sprintf("Task '%s' updated: %s", event.Title, strings.Join(event.Fields, ", "))
	}
	m.record(TypeTaskUpdated, event.TaskID, event.Title, msg, event.UpdatedAt)
	return nil
}

func (m *ActivityModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(TypeTaskDeleted, event.TaskID, "", fmt.Sprintf("Task %d deleted", event.TaskID), event.DeletedAt)
	return nil
}

func (m *ActivityModule) handleListActivity(_ context.Context, req ListActivityRequest, _ *mono.Msg) (ListActivityResponse, error) {
	entries := m.Recent(req.Limit)
	return ListActivityResponse{Entries: entries, Total: len(entries)}, nil
}

func (m *ActivityModule) record(entryType string, taskID int64, title, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.entries) == MaxEntries {
		m.entries = append(m.entries[:0], m.entries[1:]...)
	}
	m.entries = append(m.entries, Entry{
		ID:        uuid.NewString(),
		Type:      entryType,
		TaskID:    taskID,
		Title:     title,
		Message:   message,
		Timestamp: at,
	})
	m.logger.Debug().Str("type", entryType).Int64("task_id", taskID).Msg(message)
}

// Recent returns up to limit entries, newest first. limit <= 0 returns all.
func (m *ActivityModule) Recent(limit int) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]Entry, 0, n)
	for i := len(m.entries) - 1; i >= 0 && len(result) < n; i-- {
		result = append(result, m.entries[i])
	}
	return result
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info().Int("capacity", MaxEntries).Msg("module started")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info().Msg("module stopped")
	return nil
}

func (m *ActivityModule) Health(_ context.Context) mono.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"entries": len(m.entries)},
	}
}
