package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/middleware"
	"github.com/clouddrive/backend/internal/models"
)

type NoteHandler struct {
	engine *items.Engine
}

func NewNoteHandler(engine *items.Engine) *NoteHandler {
	return &NoteHandler{engine: engine}
}

// Create stores an inline text note. Notes do not consume quota.
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	userID := middleware.GetCurrentUserID(c)
	note, err := h.engine.CreateNote(c.Context(), userID, req.Name, req.Content, req.ParentID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note created successfully",
		"data":    note,
	})
}

// Stats returns the user's notes with count and total size.
func (h *NoteHandler) Stats(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user id",
		})
	}

	list, err := h.engine.Store().ListByUser(c.Context(), userID, items.ListFilter{Kind: models.KindNote})
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
			"notes":         list,
		},
	})
}

// Rename renames a note.
func (h *NoteHandler) Rename(c *fiber.Ctx) error {
	note, err := ownedItem(c, h.engine, "noteId")
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

	updated, err := h.engine.Rename(c.Context(), note.ID, req.Name)
	if err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Note renamed successfully",
		"data":    updated,
	})
}

// Duplicate copies a note next to its source with a " - Copy" suffix.
func (h *NoteHandler) Duplicate(c *fiber.Ctx) error {
	note, err := ownedItem(c, h.engine, "noteId")
	if err != nil {
		return respondErr(c, err)
	}

	dup, err := h.engine.Duplicate(c.Context(), note.ID, nil)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note duplicated successfully",
		"data":    dup,
	})
}

// Copy copies a note into a destination folder.
func (h *NoteHandler) Copy(c *fiber.Ctx) error {
	var req struct {
		NoteID   uint  `json:"note_id"`
		FolderID *uint `json:"folder_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	note, err := h.engine.Store().Get(c.Context(), req.NoteID)
	if err != nil {
		return respondErr(c, err)
	}
	if note.UserID != middleware.GetCurrentUserID(c) {
		return respondErr(c, items.ErrNotFound)
	}

	dup, err := h.engine.CopyTo(c.Context(), note.ID, req.FolderID)
	if err != nil {
		return respondErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Note copied successfully",
		"data":    dup,
	})
}

// Favorite toggles the favorite flag on a note.
func (h *NoteHandler) Favorite(c *fiber.Ctx) error {
	note, err := ownedItem(c, h.engine, "noteId")
	if err != nil {
		return respondErr(c, err)
	}

	updated, err := h.engine.ToggleFavorite(c.Context(), note.ID)
	if err != nil {
		return respondErr(c, err)
	}

	message := "Note added to favorites"
	if !updated.Favorite {
		message = "Note removed from favorites"
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    updated,
	})
}

// Delete removes a note permanently.
func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	note, err := ownedItem(c, h.engine, "noteId")
	if err != nil {
		return respondErr(c, err)
	}

	if err := h.engine.HardDelete(c.Context(), note.ID); err != nil {
		return respondErr(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Note deleted successfully",
	})
}
