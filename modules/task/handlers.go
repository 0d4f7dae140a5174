package task

import (
	"context"
	"time"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
)

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.service.List(ctx, req.Params)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Page: page}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.TaskID)
	if err != nil {
		if reply, ok := toReplyError(err); ok {
			return TaskResponse{ReplyError: reply}, nil
		}
		return TaskResponse{}, err
	}
	return TaskResponse{Task: t}, nil
}

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req.Draft)
	if err != nil {
		if reply, ok := toReplyError(err); ok {
			return TaskResponse{ReplyError: reply}, nil
		}
		m.logger.Error().Err(err).Str("title", req.Draft.Title).Msg("failed to create task")
		return TaskResponse{}, err
	}

	m.publish(func() error {
		return events.TaskCreatedV1.Publish(m.eventBus, events.TaskCreatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Status:    string(t.Status),
			Priority:  string(t.Priority),
			CreatedAt: t.CreatedAt,
		}, nil)
	}, "TaskCreated", t.ID)

	return TaskResponse{Task: t}, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req.TaskID, req.Patch)
	if err != nil {
		if reply, ok := toReplyError(err); ok {
			return TaskResponse{ReplyError: reply}, nil
		}
		m.logger.Error().Err(err).Int64("task_id", req.TaskID).Msg("failed to update task")
		return TaskResponse{}, err
	}

	m.publish(func() error {
		return events.TaskUpdatedV1.Publish(m.eventBus, events.TaskUpdatedEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Status:    string(t.Status),
			Fields:    req.Patch.Fields(),
			UpdatedAt: t.UpdatedAt,
		}, nil)
	}, "TaskUpdated", t.ID)

	return TaskResponse{Task: t}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.TaskID); err != nil {
		if reply, ok := toReplyError(err); ok {
			return DeleteTaskResponse{ReplyError: reply}, nil
		}
		m.logger.Error().Err(err).Int64("task_id", req.TaskID).Msg("failed to delete task")
		return DeleteTaskResponse{}, err
	}

	m.publish(func() error {
		return events.TaskDeletedV1.Publish(m.eventBus, events.TaskDeletedEvent{
			TaskID:    req.TaskID,
			DeletedAt: time.Now(),
		}, nil)
	}, "TaskDeleted", req.TaskID)

	return DeleteTaskResponse{Deleted: true}, nil
}

// publish emits an event. Publishing is best-effort; failures are logged.
func (m *TaskModule) publish(emit func() error, event string, taskID int64) {
	if m.eventBus == nil {
		return
	}
	if err := emit(); err != nil {
		m.logger.Warn().Err(err).Str("event", event).Int64("task_id", taskID).Msg("failed to publish event")
	}
}
