package api

import (
	"errors"
	"strconv"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/activity"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/task"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// handlers holds the ports the HTTP layer drives.
type handlers struct {
	tasks    task.TaskPort
	auth     auth.AuthPort
	activity activity.ActivityPort
	logger   zerolog.Logger
	version  string
	now      func() time.Time
}

// register mounts every route on r. It is called once for "/" and once for "/api".
func (h *handlers) register(r fiber.Router) {
	r.Get("/", h.info)
	r.Get("/health", h.health)
	r.Post("/login", h.login)

	r.Get("/tasks", h.requireAuth, h.listTasks)
	r.Post("/tasks", h.requireAuth, h.createTask)
	r.Get("/tasks/:id", h.requireAuth, h.getTask)
	r.Put("/tasks/:id", h.requireAuth, h.updateTask)
	r.Delete("/tasks/:id", h.requireAuth, h.deleteTask)

	r.Get("/activity", h.requireAuth, h.listActivity)
}

// info handles GET / and GET /api.
func (h *handlers) info(c *fiber.Ctx) error {
	return c.JSON(InfoResponse{
		Message: "Task Management API",
		Version: h.version,
		Endpoints: map[string]string{
			"login":    "POST /api/login",
			"tasks":    "GET /api/tasks",
			"task":     "GET /api/tasks/:id",
			"create":   "POST /api/tasks",
			"update":   "PUT /api/tasks/:id",
			"delete":   "DELETE /api/tasks/:id",
			"activity": "GET /api/activity",
			"health":   "GET /health",
		},
		Timestamp: h.now().UTC(),
	})
}

// health handles GET /health.
func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":  "api",
			"version": h.version,
		},
	})
}

// login handles POST /login.
func (h *handlers) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	token, user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrCredentialsRequired):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Email and password required"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid credentials"})
	case err != nil:
		h.logger.Error().Err(err).Msg("login failed")
		return internalError(c)
	}

	return c.JSON(LoginResponse{Token: token, User: user})
}

// listTasks handles GET /tasks.
func (h *handlers) listTasks(c *fiber.Ctx) error {
	params := domain.ParseQueryParams(func(key string) string { return c.Query(key) })

	page, err := h.tasks.ListTasks(c.UserContext(), params)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(page)
}

// getTask handles GET /tasks/:id.
func (h *handlers) getTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	t, err := h.tasks.GetTask(c.UserContext(), id)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(t)
}

// createTask handles POST /tasks.
func (h *handlers) createTask(c *fiber.Ctx) error {
	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	draft, err := req.draft()
	if err != nil {
		return h.taskError(c, err)
	}

	t, err := h.tasks.CreateTask(c.UserContext(), draft)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// updateTask handles PUT /tasks/:id.
func (h *handlers) updateTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	patch, err := req.patch()
	if err != nil {
		return h.taskError(c, err)
	}

	t, err := h.tasks.UpdateTask(c.UserContext(), id, patch)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(t)
}

// deleteTask handles DELETE /tasks/:id.
func (h *handlers) deleteTask(c *fiber.Ctx) error {
	id, ok := taskID(c)
	if !ok {
		return taskNotFound(c)
	}

	if err := h.tasks.DeleteTask(c.UserContext(), id); err != nil {
		return h.taskError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// listActivity handles GET /activity.
func (h *handlers) listActivity(c *fiber.Ctx) error {
	entries, err := h.activity.ListActivity(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity")
		return internalError(c)
	}
	return c.JSON(ActivityResponse{Data: entries, Total: len(entries)})
}

// taskError maps task errors onto HTTP responses.
func (h *handlers) taskError(c *fiber.Ctx, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: ve.Message})
	case errors.Is(err, domain.ErrNotFound):
		return taskNotFound(c)
	}

	h.logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("task request failed")
	return internalError(c)
}

func taskID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil
}

func taskNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Task not found"})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Internal server error"})
}
