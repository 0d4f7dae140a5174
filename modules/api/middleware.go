package api

import (
	"errors"
	"strings"
	"time"

	"github.com/example/taskboard/modules/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const claimsKey = "claims"

// requireAuth accepts "Authorization: <scheme> <token>" and rejects
// requests whose token the auth module does not validate.
func (h *handlers) requireAuth(c *fiber.Ctx) error {
	var token string
	if fields := strings.Fields(c.Get(fiber.HeaderAuthorization)); len(fields) > 1 {
		token = fields[1]
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Access token required"})
	}

	claims, err := h.auth.ValidateToken(c.UserContext(), token)
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Token expired"})
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingToken):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid token"})
	case err != nil:
		h.logger.Error().Err(err).Msg("token validation failed")
		return internalError(c)
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// requestLogger writes one log event per request.
func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		event := logger.Info()
		if status >= fiber.StatusInternalServerError {
			event = logger.Error()
		}
		if rid, ok := c.Locals("requestid").(string); ok {
			event = event.Str("request_id", rid)
		}
		event.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

// errorHandler renders errors that escape the handlers.
func errorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
		}

		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		return internalError(c)
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Not found"})
}
