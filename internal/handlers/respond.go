package handlers

import (
	"access_service/internal/apperr"
	"access_service/internal/config"

	"github.com/gofiber/fiber/v3"
)

func errorStatus(err error) int {
	switch {
	case apperr.IsValidation(err):
		return fiber.StatusBadRequest
	case apperr.IsNotFound(err):
		return fiber.StatusNotFound
	case apperr.IsConflict(err):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError translates a service error into the JSON envelope. Internal
// causes are only spelled out in development; production callers get a
// generic message for anything that is not a recognized error kind.
func respondError(c fiber.Ctx, err error) error {
	status := errorStatus(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError && !config.ServiceConfig.IsDevelopment() {
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
