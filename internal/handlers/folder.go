package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/database"
	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/middleware"
	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/quota"
)

// folderStatsTTL bounds how stale a cached stats payload may get when
// file-level changes bypass invalidation.
const folderStatsTTL = time.Minute

func folderStatsCacheKey(userID uint) string {
	return database.CacheKeyFolderStats + strconv.FormatUint(uint64(userID), 10)
}

// invalidateFolderStats drops the cached stats payload after a folder
// mutation. Without Redis the stats path is uncached and there is
// nothing to drop.
func invalidateFolderStats(userID uint) {
	if database.Redis == nil {
		return
	}
	database.CacheDelete(folderStatsCacheKey(userID))
}

type FolderHandler struct {
	engine *items.Engine
	ledger quota.Ledger
}

func NewFolderHandler(engine *items.Engine, ledger quota.Ledger) *FolderHandler {
	return &FolderHandler{engine: engine, ledger: ledger}
}

// Create makes a new folder. Folders are free, they never consume quota.
func (h *FolderHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	userID := middleware.GetCurrentUserID(c)
	folder, err := h.engine.CreateFolder(c.Context(), userID, req.Name, req.ParentID)
	if err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(userID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Folder created successfully",
		"data":    folder,
	})
}

// Stats reports every folder of the user with its direct file count and
// size, plus the combined total.
func (h *FolderHandler) Stats(c *fiber.Ctx) error {
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

	if database.Redis != nil {
		var cached fiber.Map
		if err := database.CacheGet(folderStatsCacheKey(userID), &cached); err == nil {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    cached,
			})
		}
	}

	folders, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{Kind: models.KindFolder})
	if err != nil {
		return respondErr(c, err)
	}

	var totalStorage int64
	stats := make([]fiber.Map, 0, len(folders))
	for _, folder := range folders {
		children, err := h.engine.Store().Descendants(c.Context(), folder.ID)
		if err != nil {
			return respondErr(c, err)
		}

		var folderSize int64
		for _, child := range children {
			folderSize += child.Size
		}
		totalStorage += folderSize

		stats = append(stats, fiber.Map{
			"id":              folder.ID,
			"name":            folder.Name,
			"parent_id":       folder.ParentID,
			"file_count":      len(children),
			"used_storage_gb": bytesToGB(folderSize),
		})
	}

	data := fiber.Map{
		"folder_count":            len(folders),
		"total_folder_storage_gb": bytesToGB(totalStorage),
		"folder_stats":            stats,
	}
	if database.Redis != nil {
		database.CacheSet(folderStatsCacheKey(userID), data, folderStatsTTL)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Rename renames a folder.
func (h *FolderHandler) Rename(c *fiber.Ctx) error {
	folder, err := ownedItem(c, h.engine, "folderId")
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

	updated, err := h.engine.Rename(c.Context(), folder.ID, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(folder.UserID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Folder renamed successfully",
		"data":    updated,
	})
}

// Duplicate copies a folder next to its source with a " - Copy" suffix.
// Contents are not carried over, the copy starts empty.
func (h *FolderHandler) Duplicate(c *fiber.Ctx) error {
	folder, err := ownedItem(c, h.engine, "folderId")
	if err != nil {
		return respondErr(c, err)
	}

	dup, err := h.engine.Duplicate(c.Context(), folder.ID, nil)
	if err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(folder.UserID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Folder duplicated successfully",
		"data":    dup,
	})
}

// Copy copies a folder into a destination folder.
func (h *FolderHandler) Copy(c *fiber.Ctx) error {
	var req struct {
		FolderID     uint  `json:"folder_id"`
		DestFolderID *uint `json:"destination_folder_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	folder, err := h.engine.Store().Get(c.Context(), req.FolderID)
	if err != nil {
		return respondErr(c, err)
	}
	if folder.UserID != middleware.GetCurrentUserID(c) {
		return respondErr(c, items.ErrNotFound)
	}

	dup, err := h.engine.CopyTo(c.Context(), folder.ID, req.DestFolderID)
	if err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(folder.UserID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Folder copied successfully",
		"data":    dup,
	})
}

// Move changes a folder's parent.
func (h *FolderHandler) Move(c *fiber.Ctx) error {
	folder, err := ownedItem(c, h.engine, "folderId")
	if err != nil {
		return respondErr(c, err)
	}

	var req struct {
		ParentID *uint `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	moved, err := h.engine.Move(c.Context(), folder.ID, req.ParentID)
	if err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(folder.UserID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Folder moved successfully",
		"data":    moved,
	})
}

// Favorite toggles the favorite flag on a folder.
func (h *FolderHandler) Favorite(c *fiber.Ctx) error {
	folder, err := ownedItem(c, h.engine, "folderId")
	if err != nil {
		return respondErr(c, err)
	}

	updated, err := h.engine.ToggleFavorite(c.Context(), folder.ID)
	if err != nil {
		return respondErr(c, err)
	}

	message := "Folder added to favorites"
	if !updated.Favorite {
		message = "Folder removed from favorites"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    updated,
	})
}

// Delete removes a folder and the files directly inside it. The quota
// charge for every deleted file is released in one step.
func (h *FolderHandler) Delete(c *fiber.Ctx) error {
	folder, err := ownedItem(c, h.engine, "folderId")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.engine.HardDelete(c.Context(), folder.ID); err != nil {
		return respondErr(c, err)
	}
	invalidateFolderStats(folder.UserID)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Folder and its files deleted successfully",
	})
}

// TodayFolder lists the authenticated user's items created today.
func (h *FolderHandler) TodayFolder(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	from, to := items.DayRange(time.Now())
	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

// FavoriteAll lists the user's favorited folders.
func (h *FolderHandler) FavoriteAll(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	folders, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{
		Kind:         models.KindFolder,
		FavoriteOnly: true,
	})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    folders,
	})
}
