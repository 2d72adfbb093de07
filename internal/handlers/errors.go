package handlers

import (
	"errors"

	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// respondError maps a service error onto a status code and a structured body.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, message string) error {
	status, code := fiber.StatusInternalServerError, models.ErrCodeInternalError

	var storeErr *repositories.StoreError
	switch {
	case errors.Is(err, repositories.ErrProductNotFound):
		status, code = fiber.StatusNotFound, models.ErrCodeProductNotFound
	case errors.Is(err, repositories.ErrProductExists):
		status, code = fiber.StatusConflict, models.ErrCodeProductExists
	case errors.As(err, &storeErr):
		status, code = fiber.StatusServiceUnavailable, models.ErrCodeStoreUnavailable
	}

	event := logger.Warn()
	if status >= fiber.StatusInternalServerError {
		event = logger.Error()
	}
	requestID, _ := c.Locals(middleware.LocalRequestID).(string)
	event.Err(err).Str("request_id", requestID).Int("status", status).Msg(message)

	return c.Status(status).JSON(models.ErrorResponse{
		Code:    code,
		Message: message,
		Error:   err.Error(),
	})
}

// ErrorHandler renders errors that escape the handlers, including recovered panics
// and fiber's own routing errors, as a structured body.
func ErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
				Code:    errorCodeForStatus(fiberErr.Code),
				Message: fiberErr.Message,
			})
		}

		logger.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Code:    models.ErrCodeInternalError,
			Message: "Internal server error",
		})
	}
}

func errorCodeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return models.ErrCodeInvalidBody
	case fiber.StatusServiceUnavailable:
		return models.ErrCodeStoreUnavailable
	}
	if status >= fiber.StatusInternalServerError {
		return models.ErrCodeInternalError
	}
	return "REQUEST_FAILED"
}
