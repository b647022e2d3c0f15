// Package items owns the content tree (files and folders) and the
// operations engine that composes the item store, the quota ledger and
// the binary content gateway into quota-aware operations.
package items

import (
	"context"
	"time"

	"github.com/clouddrive/backend/internal/models"
)

// ListFilter narrows ListByUser results. The zero value matches every
// live (non-soft-deleted) item of the account.
type ListFilter struct {
	// Kind restricts to one item kind when non-empty.
	Kind models.ItemKind

	// FavoriteOnly restricts to favorited items.
	FavoriteOnly bool

	// DeletedOnly lists the trash instead of live items.
	DeletedOnly bool

	// ParentSet filters by parent folder; ParentID nil then means root.
	ParentSet bool
	ParentID  *uint

	// CreatedFrom/CreatedTo bound the creation timestamp, both
	// inclusive. Callers pass day boundaries in server-local time.
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Patch is a partial update. Nil fields are left untouched. SetParent
// distinguishes "move to root" (true, nil ParentID) from "don't move".
type Patch struct {
	Name      *string
	SetParent bool
	ParentID  *uint
	Favorite  *bool
	IsDeleted *bool
	Size      *int64
}

// maxTreeDepth bounds the ancestor walk during reparent validation so
// a corrupted chain cannot hang a request.
const maxTreeDepth = 64

// Store persists items. Create assigns the identifier and validates
// that the name is non-empty and the parent reference resolves to a
// folder of the same account. Descendants returns the files directly
// inside a folder; it does not recurse into nested subfolders.
type Store interface {
	Create(ctx context.Context, item *models.Item) error
	Get(ctx context.Context, id uint) (*models.Item, error)
	ListByUser(ctx context.Context, userID uint, f ListFilter) ([]models.Item, error)
	Update(ctx context.Context, id uint, patch Patch) (*models.Item, error)
	Delete(ctx context.Context, id uint) error
	Descendants(ctx context.Context, folderID uint) ([]models.Item, error)

	// CountByHandle reports how many items still reference a content
	// handle. Duplicated items share their source's handle, so the
	// engine only destroys a handle when the last reference goes.
	CountByHandle(ctx context.Context, handle string) (int64, error)

	// SetFolderSize updates a folder's cached size.
	SetFolderSize(ctx context.Context, folderID uint, size int64) error

	// AllFolders returns every live folder across all accounts, for
	// the background size sync.
	AllFolders(ctx context.Context) ([]models.Item, error)
}

// DayRange returns the inclusive bounds of the calendar day containing
// t in server-local time, for creation-date filters.
func DayRange(t time.Time) (time.Time, time.Time) {
	local := t.Local()
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
	// AddDate survives DST transitions where a flat 24h offset drifts
	// into the wrong day.
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}
