package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/quota"
)

type FavoriteHandler struct {
	engine *items.Engine
	ledger quota.Ledger
}

func NewFavoriteHandler(engine *items.Engine, ledger quota.Ledger) *FavoriteHandler {
	return &FavoriteHandler{engine: engine, ledger: ledger}
}

// All lists the user's favorited files and folders with a combined
// count and the storage the favorited files take.
func (h *FavoriteHandler) All(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	if _, _, err := h.ledger.Balance(c.Context(), userID); err != nil {
		return respondErr(c, err)
	}

	favorites, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{FavoriteOnly: true})
	if err != nil {
		return respondErr(c, err)
	}

	var totalSize int64
	files := make([]models.Item, 0, len(favorites))
	folders := make([]models.Item, 0)
	for _, it := range favorites {
		if it.IsFolder() {
			folders = append(folders, it)
			continue
		}
		files = append(files, it)
		totalSize += it.Size
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Favorite items fetched successfully",
		"data": fiber.Map{
			"total_favorite_count":           len(files) + len(folders),
			"total_favorite_storage_used_gb": bytesToGB(totalSize),
			"favorite_items":                 files,
			"favorite_folders":               folders,
		},
	})
}

// Rename renames a favorited item of any kind.
func (h *FavoriteHandler) Rename(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	updated, err := h.engine.Rename(c.Context(), item.ID, req.Name)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item renamed successfully",
		"data":    updated,
	})
}

// Duplicate copies a favorited item next to its source.
func (h *FavoriteHandler) Duplicate(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	dup, err := h.engine.Duplicate(c.Context(), item.ID, nil)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item duplicated successfully",
		"data":    dup,
	})
}

// Copy copies a favorited item into a destination folder.
func (h *FavoriteHandler) Copy(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	var req struct {
		FolderID *uint `json:"folder_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	dup, err := h.engine.CopyTo(c.Context(), item.ID, req.FolderID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Item copied successfully",
		"data":    dup,
	})
}

// Unfavorite clears the favorite flag.
func (h *FavoriteHandler) Unfavorite(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	if !item.Favorite {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Item is not favorited",
			"data":    item,
		})
	}

	updated, err := h.engine.ToggleFavorite(c.Context(), item.ID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item removed from favorites",
		"data":    updated,
	})
}

// Delete removes a favorited item permanently.
func (h *FavoriteHandler) Delete(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "itemId")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.engine.HardDelete(c.Context(), item.ID); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item deleted successfully",
	})
}
