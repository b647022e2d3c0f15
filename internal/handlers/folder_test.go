package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddrive/backend/internal/items"
	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/quota"
	"github.com/clouddrive/backend/internal/storage"
)

const testMaxStorage = 10 * 1024 * 1024 * 1024

func newTestFolderApp(t *testing.T) (*fiber.App, *items.Engine) {
	t.Helper()

	ledger := quota.NewMemoryLedger()
	ledger.CreateAccount(1, testMaxStorage)
	engine := items.NewEngine(items.NewMemoryStore(), ledger, storage.NewMemoryGateway(), time.Second)
	handler := NewFolderHandler(engine, ledger)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(1))
		return c.Next()
	})
	app.Post("/folders/create", handler.Create)
	app.Get("/folders/stats/:userId", handler.Stats)
	app.Delete("/folders/delete/:folderId", handler.Delete)
	return app, engine
}

func TestFolderStats(t *testing.T) {
	app, engine := newTestFolderApp(t)
	ctx := context.Background()

	folder, err := engine.CreateFolder(ctx, 1, "Photos", nil)
	require.NoError(t, err)
	_, err = engine.UploadFile(ctx, 1, "a.png", models.KindImage, make([]byte, 1024*1024*1024), &folder.ID)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/folders/stats/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body fiber.Map
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["folder_count"])
	assert.Equal(t, "1.0000000000", data["total_folder_storage_gb"])

	stats := data["folder_stats"].([]interface{})
	require.Len(t, stats, 1)
	entry := stats[0].(map[string]interface{})
	assert.Equal(t, "Photos", entry["name"])
	assert.Equal(t, float64(1), entry["file_count"])
	assert.Equal(t, "1.0000000000", entry["used_storage_gb"])
}

func TestFolderStatsUnknownUser(t *testing.T) {
	app, _ := newTestFolderApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/folders/stats/42", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFolderStatsCacheKey(t *testing.T) {
	assert.Equal(t, "clouddrive:stats:folders:7", folderStatsCacheKey(7))
}

// Mutating handlers drop the cached stats payload. Without Redis the
// drop is a no-op and the request must still succeed.
func TestFolderMutationsWorkWithoutCache(t *testing.T) {
	app, engine := newTestFolderApp(t)
	ctx := context.Background()

	payload, err := json.Marshal(fiber.Map{"name": "Docs"})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/folders/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	folders, err := engine.Store().ListByUser(ctx, 1, items.ListFilter{Kind: models.KindFolder})
	require.NoError(t, err)
	require.Len(t, folders, 1)

	target := "/folders/delete/" + strconv.FormatUint(uint64(folders[0].ID), 10)
	resp, err = app.Test(httptest.NewRequest("DELETE", target, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	folders, err = engine.Store().ListByUser(ctx, 1, items.ListFilter{Kind: models.KindFolder})
	require.NoError(t, err)
	assert.Empty(t, folders)
}
