package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/quota"
)

type UserHandler struct {
	ledger quota.Ledger
}

func NewUserHandler(ledger quota.Ledger) *UserHandler {
	return &UserHandler{ledger: ledger}
}

// Storage reports the account's quota balance in raw bytes and GiB.
func (h *UserHandler) Storage(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	used, max, err := h.ledger.Balance(c.Context(), userID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"used_storage":    used,
			"max_storage":     max,
			"used_storage_gb": bytesToGB(used),
			"max_storage_gb":  bytesToGB(max),
			"free_storage_gb": bytesToGB(max - used),
		},
	})
}
