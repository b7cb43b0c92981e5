package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"soundapi/internal/http/middleware"
	"soundapi/internal/service"
	"soundapi/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(errorPayload{
		Error:     message,
		RequestID: requestIDFromCtx(c),
	})
}

// serviceError maps a service-layer error onto the HTTP status taxonomy and
// writes the standardized body. Unrecognized errors collapse to 500 with a
// generic message.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrIncompleteUpload):
		return writeError(c, fiber.StatusBadRequest, "incomplete upload")
	case errors.Is(err, service.ErrUnauthorized):
		return writeError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "not the owner")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "resource not found")
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "resource already exists")
	case errors.Is(err, storage.ErrPayloadTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "payload too large")
	case errors.Is(err, storage.ErrUnsupportedMedia):
		return writeError(c, fiber.StatusUnsupportedMediaType, "unsupported media type")
	default:
		return writeError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "internal server error"
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
			switch status {
			case fiber.StatusBadRequest:
				message = "bad request"
			case fiber.StatusUnauthorized:
				message = e.Message
			case fiber.StatusNotFound:
				message = "resource not found"
			case fiber.StatusMethodNotAllowed:
				message = "method not allowed"
			case fiber.StatusRequestEntityTooLarge:
				message = "payload too large"
			}
		}
		return writeError(c, status, message)
	}
}
