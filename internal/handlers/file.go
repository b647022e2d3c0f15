package handlers

import (
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/middleware"
	"github.com/clouddrive/backend/internal/models"
)

type FileHandler struct {
	engine *items.Engine
}

func NewFileHandler(engine *items.Engine) *FileHandler {
	return &FileHandler{engine: engine}
}

// ownedItem loads an item by route param and checks it belongs to the
// authenticated user. Cross-account ids are reported as not found.
func ownedItem(c *fiber.Ctx, engine *items.Engine, param string) (*models.Item, error) {
	id, err := parseID(c, param)
	if err != nil {
		return nil, items.ErrNotFound
	}
	item, err := engine.Store().Get(c.Context(), id)
	if err != nil {
		return nil, err
	}
	if item.UserID != middleware.GetCurrentUserID(c) {
		return nil, items.ErrNotFound
	}
	return item, nil
}

// Upload stores a binary file (image or pdf) and charges the quota.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "A file is required",
		})
	}

	kind := models.ItemKind(c.FormValue("kind"))
	if !kind.Valid() || !kind.IsFile() || kind == models.KindNote {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Kind must be image or pdf",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = fileHeader.Filename
	}

	var parentID *uint
	if v := c.FormValue("parent_id"); v != "" {
		pid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid parent folder id",
			})
		}
		p := uint(pid)
		parentID = &p
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read uploaded file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Failed to read uploaded file",
		})
	}

	userID := middleware.GetCurrentUserID(c)
	item, err := h.engine.UploadFile(c.Context(), userID, name, kind, data, parentID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File uploaded successfully",
		"data":    item,
	})
}

// kindStats lists one kind for a user and reports count plus total size.
func (h *FileHandler) kindStats(c *fiber.Ctx, kind models.ItemKind, label string) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{Kind: kind})
	if err != nil {
		return respondErr(c, err)
	}

	var total int64
	for _, it := range list {
		total += it.Size
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"count":         len(list),
			"total_size":    total,
			"total_size_gb": bytesToGB(total),
			label:           list,
		},
	})
}

// ImageStats returns the user's images with count and total size.
func (h *FileHandler) ImageStats(c *fiber.Ctx) error {
	return h.kindStats(c, models.KindImage, "images")
}

// PDFStats returns the user's pdfs with count and total size.
func (h *FileHandler) PDFStats(c *fiber.Ctx) error {
	return h.kindStats(c, models.KindPDF, "pdfs")
}

// UserFiles lists every live file (images, pdfs, notes) of the user.
func (h *FileHandler) UserFiles(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{})
	if err != nil {
		return respondErr(c, err)
	}

	files := make([]models.Item, 0, len(list))
	for _, it := range list {
		if it.Kind.IsFile() {
			files = append(files, it)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
	})
}

// FilesByDate lists files created on a given calendar day (YYYY-MM-DD).
func (h *FileHandler) FilesByDate(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	day, err := time.ParseInLocation("2006-01-02", c.Params("date"), time.Local)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid date format, expected YYYY-MM-DD",
		})
	}

	from, to := items.DayRange(day)
	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{
		CreatedFrom: &from,
		CreatedTo:   &to,
	})
	if err != nil {
		return respondErr(c, err)
	}

	files := make([]models.Item, 0, len(list))
	for _, it := range list {
		if it.Kind.IsFile() {
			files = append(files, it)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    files,
	})
}

// GetSingle returns one file by id.
func (h *FileHandler) GetSingle(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// Rename renames a file.
func (h *FileHandler) Rename(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
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
		"message": "File renamed successfully",
		"data":    updated,
	})
}

// Duplicate copies a file next to its source with a " - Copy" suffix.
func (h *FileHandler) Duplicate(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	dup, err := h.engine.Duplicate(c.Context(), item.ID, nil)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File duplicated successfully",
		"data":    dup,
	})
}

// Copy copies a file into a destination folder.
func (h *FileHandler) Copy(c *fiber.Ctx) error {
	var req struct {
		FileID   uint  `json:"file_id"`
		FolderID *uint `json:"folder_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	item, err := h.engine.Store().Get(c.Context(), req.FileID)
	if err != nil {
		return respondErr(c, err)
	}
	if item.UserID != middleware.GetCurrentUserID(c) {
		return respondErr(c, items.ErrNotFound)
	}

	dup, err := h.engine.CopyTo(c.Context(), item.ID, req.FolderID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "File copied successfully",
		"data":    dup,
	})
}

// Move changes a file's parent folder.
func (h *FileHandler) Move(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
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

	moved, err := h.engine.Move(c.Context(), item.ID, req.FolderID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File moved successfully",
		"data":    moved,
	})
}

// Favorite toggles the favorite flag on a file.
func (h *FileHandler) Favorite(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	updated, err := h.engine.ToggleFavorite(c.Context(), item.ID)
	if err != nil {
		return respondErr(c, err)
	}

	message := "File added to favorites"
	if !updated.Favorite {
		message = "File removed from favorites"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    updated,
	})
}

// SoftDelete moves a file to the trash. The quota charge stays.
func (h *FileHandler) SoftDelete(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	updated, err := h.engine.SoftDelete(c.Context(), item.ID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File moved to trash",
		"data":    updated,
	})
}

// Restore brings a file back from the trash.
func (h *FileHandler) Restore(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	updated, err := h.engine.Restore(c.Context(), item.ID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File restored successfully",
		"data":    updated,
	})
}

// Trash lists the user's soft-deleted items.
func (h *FileHandler) Trash(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{DeletedOnly: true})
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    list,
	})
}

// Delete removes a file permanently and releases its quota charge.
func (h *FileHandler) Delete(c *fiber.Ctx) error {
	item, err := ownedItem(c, h.engine, "fileId")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.engine.HardDelete(c.Context(), item.ID); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "File deleted successfully",
	})
}
