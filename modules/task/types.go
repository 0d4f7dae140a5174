package task

import (
	"context"

	domain "github.com/example/taskboard/domain/task"
)

// Error codes carried in service replies so callers can rebuild the
// domain error on their side of the bus.
const (
	CodeValidation = "validation"
	CodeNotFound   = "not_found"
)

// ReplyError is embedded in every reply of the task services.
type ReplyError struct {
	ErrorCode  string `json:"error_code,omitempty"`
	ErrorField string `json:"error_field,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ListTasksRequest is the request for listing tasks.
type ListTasksRequest struct {
	Params domain.QueryParams `json:"params"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Page domain.Page `json:"page"`
	ReplyError
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Draft domain.Draft `json:"draft"`
}

// UpdateTaskRequest is the request for a partial update.
type UpdateTaskRequest struct {
	TaskID int64        `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID int64 `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ReplyError
}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task domain.Task `json:"task"`
	ReplyError
}

// TaskPort is the contract driving adapters use to reach the task module.
// Errors wrap domain.ErrNotFound or domain.ErrValidation where applicable.
type TaskPort interface {
	ListTasks(ctx context.Context, params domain.QueryParams) (*domain.Page, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, draft domain.Draft) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, patch domain.Patch) (*domain.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
