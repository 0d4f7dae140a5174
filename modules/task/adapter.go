package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/taskboard/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter implements TaskPort over the task module's service container.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

func (a *taskAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

func (a *taskAdapter) ListTasks(ctx context.Context, params domain.QueryParams) (*domain.Page, error) {
	req := ListTasksRequest{Params: params}
	var resp ListTasksResponse
	if err := a.call(ctx, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	if resp.Page.Data == nil {
		resp.Page.Data = []domain.Task{}
	}
	return &resp.Page, nil
}

func (a *taskAdapter) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	req := GetTaskRequest{TaskID: id}
	var resp TaskResponse
	if err := a.call(ctx, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) CreateTask(ctx context.Context, draft domain.Draft) (*domain.Task, error) {
	req := CreateTaskRequest{Draft: draft}
	var resp TaskResponse
	if err := a.call(ctx, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) UpdateTask(ctx context.Context, id int64, patch domain.Patch) (*domain.Task, error) {
	req := UpdateTaskRequest{TaskID: id, Patch: patch}
	var resp TaskResponse
	if err := a.call(ctx, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}
	return &resp.Task, nil
}

func (a *taskAdapter) DeleteTask(ctx context.Context, id int64) error {
	req := DeleteTaskRequest{TaskID: id}
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete-task", &req, &resp); err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %d", id)
	}
	return nil
}
