package api

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/activity"
	"github.com/example/taskboard/modules/auth"
)

// LoginRequest is the HTTP request for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the HTTP response for a successful login.
type LoginResponse struct {
	Token string         `json:"token"`
	User  *auth.UserInfo `json:"user"`
}

// CreateTaskRequest is the HTTP request for creating a task.
// DueDate is accepted as RFC 3339 or YYYY-MM-DD.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

func (r CreateTaskRequest) draft() (domain.Draft, error) {
	d := domain.Draft{
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
	}
	if r.DueDate != "" {
		due, err := domain.ParseDueDate(r.DueDate)
		if err != nil {
			return domain.Draft{}, err
		}
		d.DueDate = &due
	}
	return d, nil
}

// UpdateTaskRequest is the HTTP request for a partial update.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

func (r UpdateTaskRequest) patch() (domain.Patch, error) {
	p := domain.Patch{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	if r.Priority != nil {
		pr := domain.Priority(*r.Priority)
		p.Priority = &pr
	}
	if r.DueDate != nil {
		due, err := domain.ParseDueDate(*r.DueDate)
		if err != nil {
			return domain.Patch{}, err
		}
		p.DueDate = &due
	}
	return p, nil
}

// ActivityResponse is the HTTP response for the activity feed.
type ActivityResponse struct {
	Data  []activity.Entry `json:"data"`
	Total int              `json:"total"`
}

// InfoResponse describes the service.
type InfoResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
