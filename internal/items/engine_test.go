package items

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/quota"
	"github.com/clouddrive/backend/internal/storage"
)

const testMaxStorage = 10_000

func newTestEngine(t *testing.T) (*Engine, *quota.MemoryLedger, *storage.MemoryGateway) {
	t.Helper()
	ledger := quota.NewMemoryLedger()
	ledger.CreateAccount(1, testMaxStorage)
	gateway := storage.NewMemoryGateway()
	engine := NewEngine(NewMemoryStore(), ledger, gateway, time.Second)
	return engine, ledger, gateway
}

func usedBytes(t *testing.T, ledger *quota.MemoryLedger) int64 {
	t.Helper()
	used, _, err := ledger.Balance(context.Background(), 1)
	require.NoError(t, err)
	return used
}

func TestUploadFileChargesQuota(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	ctx := context.Background()

	payload := make([]byte, 2500)
	item, err := engine.UploadFile(ctx, 1, "photo.png", models.KindImage, payload, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2500), item.Size)
	assert.NotEmpty(t, item.ContentHandle)
	assert.NotEmpty(t, item.URL)
	assert.Equal(t, int64(2500), usedBytes(t, ledger))
	assert.Equal(t, 1, gateway.Len())
}

func TestUploadFileOverQuota(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.UploadFile(ctx, 1, "big.pdf", models.KindPDF, make([]byte, testMaxStorage+1), nil)
	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)

	// nothing may leak: no charge, no stored object, no item
	assert.Equal(t, int64(0), usedBytes(t, ledger))
	assert.Equal(t, 0, gateway.Len())
	list, err := engine.Store().ListByUser(ctx, 1, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadFileGatewayFailure(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	gateway.FailStore = true
	ctx := context.Background()

	_, err := engine.UploadFile(ctx, 1, "photo.png", models.KindImage, make([]byte, 100), nil)
	assert.ErrorIs(t, err, storage.ErrGatewayFailure)

	assert.Equal(t, int64(0), usedBytes(t, ledger))
	list, err := engine.Store().ListByUser(ctx, 1, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUploadFileRejectsNonFileKinds(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.UploadFile(context.Background(), 1, "dir", models.KindFolder, nil, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHardDeleteReleasesQuota(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	ctx := context.Background()

	item, err := engine.UploadFile(ctx, 1, "photo.png", models.KindImage, make([]byte, 1000), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1000), usedBytes(t, ledger))

	require.NoError(t, engine.HardDelete(ctx, item.ID))
	assert.Equal(t, int64(0), usedBytes(t, ledger))
	assert.Equal(t, 0, gateway.Len())

	_, err = engine.Store().Get(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSoftDeleteKeepsCharge(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	ctx := context.Background()

	item, err := engine.UploadFile(ctx, 1, "photo.png", models.KindImage, make([]byte, 1000), nil)
	require.NoError(t, err)

	deleted, err := engine.SoftDelete(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.Equal(t, int64(1000), usedBytes(t, ledger))
	assert.Equal(t, 1, gateway.Len())

	// trash lists it, the live view does not
	trash, err := engine.Store().ListByUser(ctx, 1, ListFilter{DeletedOnly: true})
	require.NoError(t, err)
	assert.Len(t, trash, 1)
	live, err := engine.Store().ListByUser(ctx, 1, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, live)

	restored, err := engine.Restore(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, int64(1000), usedBytes(t, ledger))
}

func TestCreateNoteIsFree(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	ctx := context.Background()

	note, err := engine.CreateNote(ctx, 1, "todo", "buy milk", nil)
	require.NoError(t, err)
	assert.Equal(t, models.KindNote, note.Kind)
	assert.Equal(t, "buy milk", note.Content)
	assert.Equal(t, int64(0), usedBytes(t, ledger))
}

func TestCreateFolderIsFree(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)

	folder, err := engine.CreateFolder(context.Background(), 1, "docs", nil)
	require.NoError(t, err)
	assert.True(t, folder.IsFolder())
	assert.Equal(t, int64(0), usedBytes(t, ledger))
}

func TestDuplicateFileSharesHandle(t *testing.T) {
	engine, ledger, gateway := newTestEngine(t)
	ctx := context.Background()

	src, err := engine.UploadFile(ctx, 1, "report.pdf", models.KindPDF, make([]byte, 800), nil)
	require.NoError(t, err)

	dup, err := engine.Duplicate(ctx, src.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf - Copy", dup.Name)
	assert.Equal(t, src.ContentHandle, dup.ContentHandle)
	assert.Equal(t, src.Size, dup.Size)
	assert.Equal(t, int64(1600), usedBytes(t, ledger))
	assert.Equal(t, 1, gateway.Len())

	// deleting the source must not destroy the shared content
	require.NoError(t, engine.HardDelete(ctx, src.ID))
	assert.Equal(t, 1, gateway.Len())
	assert.Equal(t, int64(800), usedBytes(t, ledger))

	// the last reference takes the content with it
	require.NoError(t, engine.HardDelete(ctx, dup.ID))
	assert.Equal(t, 0, gateway.Len())
	assert.Equal(t, int64(0), usedBytes(t, ledger))
}

func TestDuplicateOverQuota(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	ctx := context.Background()

	src, err := engine.UploadFile(ctx, 1, "big.pdf", models.KindPDF, make([]byte, 6000), nil)
	require.NoError(t, err)

	_, err = engine.Duplicate(ctx, src.ID, nil)
	assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
	assert.Equal(t, int64(6000), usedBytes(t, ledger))
}

func TestCopyToFolderKeepsName(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	folder, err := engine.CreateFolder(ctx, 1, "docs", nil)
	require.NoError(t, err)
	src, err := engine.UploadFile(ctx, 1, "report.pdf", models.KindPDF, make([]byte, 100), nil)
	require.NoError(t, err)

	dup, err := engine.CopyTo(ctx, src.ID, &folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", dup.Name)
	require.NotNil(t, dup.ParentID)
	assert.Equal(t, folder.ID, *dup.ParentID)
}

func TestDeleteFolderCascade(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	ctx := context.Background()

	folder, err := engine.CreateFolder(ctx, 1, "docs", nil)
	require.NoError(t, err)
	nested, err := engine.CreateFolder(ctx, 1, "archive", &folder.ID)
	require.NoError(t, err)

	_, err = engine.UploadFile(ctx, 1, "a.pdf", models.KindPDF, make([]byte, 300), &folder.ID)
	require.NoError(t, err)
	_, err = engine.UploadFile(ctx, 1, "b.pdf", models.KindPDF, make([]byte, 200), &folder.ID)
	require.NoError(t, err)
	nestedFile, err := engine.UploadFile(ctx, 1, "deep.pdf", models.KindPDF, make([]byte, 100), &nested.ID)
	require.NoError(t, err)
	require.Equal(t, int64(600), usedBytes(t, ledger))

	require.NoError(t, engine.HardDelete(ctx, folder.ID))

	// direct children are gone and their 500 bytes released; the
	// nested subfolder and its file survive
	assert.Equal(t, int64(100), usedBytes(t, ledger))
	_, err = engine.Store().Get(ctx, folder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = engine.Store().Get(ctx, nested.ID)
	assert.NoError(t, err)
	_, err = engine.Store().Get(ctx, nestedFile.ID)
	assert.NoError(t, err)
}

func TestRenameAndMove(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	folder, err := engine.CreateFolder(ctx, 1, "docs", nil)
	require.NoError(t, err)
	item, err := engine.UploadFile(ctx, 1, "draft.pdf", models.KindPDF, make([]byte, 10), nil)
	require.NoError(t, err)

	renamed, err := engine.Rename(ctx, item.ID, "final.pdf")
	require.NoError(t, err)
	assert.Equal(t, "final.pdf", renamed.Name)

	moved, err := engine.Move(ctx, item.ID, &folder.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, folder.ID, *moved.ParentID)

	root, err := engine.Move(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
}

func TestRenameRejectsEmptyName(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := engine.CreateNote(ctx, 1, "todo", "x", nil)
	require.NoError(t, err)

	_, err = engine.Rename(ctx, item.ID, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoveRejectsCycles(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	a, err := engine.CreateFolder(ctx, 1, "a", nil)
	require.NoError(t, err)
	b, err := engine.CreateFolder(ctx, 1, "b", &a.ID)
	require.NoError(t, err)
	c, err := engine.CreateFolder(ctx, 1, "c", &b.ID)
	require.NoError(t, err)

	// a folder may not become its own parent
	_, err = engine.Move(ctx, a.ID, &a.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// nor land anywhere inside its own subtree
	_, err = engine.Move(ctx, a.ID, &b.ID)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = engine.Move(ctx, a.ID, &c.ID)
	assert.ErrorIs(t, err, ErrValidation)

	// the rejected moves must leave the tree untouched
	got, err := engine.Store().Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	// moving a sibling branch stays legal
	d, err := engine.CreateFolder(ctx, 1, "d", nil)
	require.NoError(t, err)
	moved, err := engine.Move(ctx, d.ID, &c.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, c.ID, *moved.ParentID)
}

func TestMoveRejectsFileAsParent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	file, err := engine.UploadFile(ctx, 1, "a.png", models.KindImage, make([]byte, 10), nil)
	require.NoError(t, err)
	other, err := engine.UploadFile(ctx, 1, "b.png", models.KindImage, make([]byte, 10), nil)
	require.NoError(t, err)

	_, err = engine.Move(ctx, other.ID, &file.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestConcurrentUploadRace(t *testing.T) {
	engine, ledger, _ := newTestEngine(t)
	ctx := context.Background()

	// two uploads of 0.6x the limit: exactly one may win
	size := testMaxStorage * 6 / 10
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.UploadFile(ctx, 1, "race.pdf", models.KindPDF, make([]byte, size), nil)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, quota.ErrQuotaExceeded)
			failures++
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, int64(size), usedBytes(t, ledger))

	// the loser must leave no item behind
	list, err := engine.Store().ListByUser(ctx, 1, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestToggleFavorite(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	item, err := engine.CreateNote(ctx, 1, "todo", "x", nil)
	require.NoError(t, err)

	on, err := engine.ToggleFavorite(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, on.Favorite)

	off, err := engine.ToggleFavorite(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, off.Favorite)
}
