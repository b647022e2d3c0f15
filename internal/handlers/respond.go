package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/quota"
	"github.com/clouddrive/backend/internal/storage"
)

// bytesToGB converts bytes to gibibytes with fixed 10-digit decimal
// precision, e.g. 1073741824 -> "1.0000000000".
func bytesToGB(bytes int64) string {
	return strconv.FormatFloat(float64(bytes)/(1024*1024*1024), 'f', 10, 64)
}

// respondErr maps domain errors to a stable (status, message) pair.
func respondErr(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, items.ErrNotFound):
		status = fiber.StatusNotFound
		message = "Item not found"
	case errors.Is(err, quota.ErrAccountNotFound):
		status = fiber.StatusNotFound
		message = "User not found"
	case errors.Is(err, quota.ErrQuotaExceeded):
		status = fiber.StatusBadRequest
		message = "Storage limit exceeded"
	case errors.Is(err, items.ErrValidation):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, storage.ErrGatewayFailure):
		status = fiber.StatusBadGateway
		message = "Content storage is unavailable"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// parseID parses a numeric route parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
