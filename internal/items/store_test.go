package items

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clouddrive/backend/internal/models"
)

func seedItem(t *testing.T, store *MemoryStore, item models.Item) models.Item {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &item))
	return item
}

func TestListByUserFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	folder := seedItem(t, store, models.Item{UserID: 1, Name: "docs", Kind: models.KindFolder})
	seedItem(t, store, models.Item{UserID: 1, Name: "a.png", Kind: models.KindImage, Size: 10, Favorite: true})
	seedItem(t, store, models.Item{UserID: 1, Name: "b.pdf", Kind: models.KindPDF, Size: 20, ParentID: &folder.ID})
	seedItem(t, store, models.Item{UserID: 2, Name: "other.png", Kind: models.KindImage, Size: 30})

	trashed := seedItem(t, store, models.Item{UserID: 1, Name: "old.png", Kind: models.KindImage, Size: 5})
	deleted := true
	_, err := store.Update(ctx, trashed.ID, Patch{IsDeleted: &deleted})
	require.NoError(t, err)

	// live items of user 1 only
	live, err := store.ListByUser(ctx, 1, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, live, 3)

	// kind filter
	images, err := store.ListByUser(ctx, 1, ListFilter{Kind: models.KindImage})
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "a.png", images[0].Name)

	// favorites
	favs, err := store.ListByUser(ctx, 1, ListFilter{FavoriteOnly: true})
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "a.png", favs[0].Name)

	// trash view
	trash, err := store.ListByUser(ctx, 1, ListFilter{DeletedOnly: true})
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, "old.png", trash[0].Name)

	// parent filter: inside the folder vs at root
	inFolder, err := store.ListByUser(ctx, 1, ListFilter{ParentSet: true, ParentID: &folder.ID})
	require.NoError(t, err)
	require.Len(t, inFolder, 1)
	assert.Equal(t, "b.pdf", inFolder[0].Name)

	atRoot, err := store.ListByUser(ctx, 1, ListFilter{ParentSet: true})
	require.NoError(t, err)
	assert.Len(t, atRoot, 2)
}

func TestListByUserDateRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	seedItem(t, store, models.Item{UserID: 1, Name: "old.png", Kind: models.KindImage, CreatedAt: yesterday})
	seedItem(t, store, models.Item{UserID: 1, Name: "new.png", Kind: models.KindImage})

	from, to := DayRange(time.Now())
	today, err := store.ListByUser(ctx, 1, ListFilter{CreatedFrom: &from, CreatedTo: &to})
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "new.png", today[0].Name)

	fromY, toY := DayRange(yesterday)
	past, err := store.ListByUser(ctx, 1, ListFilter{CreatedFrom: &fromY, CreatedTo: &toY})
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "old.png", past[0].Name)
}

func TestCreateValidation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Create(ctx, &models.Item{UserID: 1, Name: "  ", Kind: models.KindNote})
	assert.ErrorIs(t, err, ErrValidation)

	err = store.Create(ctx, &models.Item{UserID: 1, Name: "x", Kind: "video"})
	assert.ErrorIs(t, err, ErrValidation)

	// parent must be a folder owned by the same user
	file := seedItem(t, store, models.Item{UserID: 1, Name: "a.png", Kind: models.KindImage})
	err = store.Create(ctx, &models.Item{UserID: 1, Name: "b.png", Kind: models.KindImage, ParentID: &file.ID})
	assert.ErrorIs(t, err, ErrValidation)

	folder := seedItem(t, store, models.Item{UserID: 1, Name: "docs", Kind: models.KindFolder})
	err = store.Create(ctx, &models.Item{UserID: 2, Name: "c.png", Kind: models.KindImage, ParentID: &folder.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDayRangeBounds(t *testing.T) {
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	from, to := DayRange(at)

	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local), from)
	assert.True(t, to.After(at))
	assert.Equal(t, from.AddDate(0, 0, 1).Add(-time.Nanosecond), to)
}

func TestDayRangeSpansDSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	orig := time.Local
	time.Local = loc
	defer func() { time.Local = orig }()

	// 2026-03-08 is a 23-hour day in New York (spring forward)
	at := time.Date(2026, 3, 8, 15, 0, 0, 0, loc)
	from, to := DayRange(at)

	assert.Equal(t, time.Date(2026, 3, 8, 0, 0, 0, 0, loc), from)
	assert.Equal(t, 8, to.Day())
	assert.Equal(t, 23, to.Hour())
	assert.True(t, to.After(at))

	// 2026-11-01 is a 25-hour day (fall back); the range must still
	// end on the same calendar day
	at = time.Date(2026, 11, 1, 15, 0, 0, 0, loc)
	from, to = DayRange(at)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, 1, to.Day())
	assert.Equal(t, 23, to.Hour())
}
