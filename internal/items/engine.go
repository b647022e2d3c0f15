package items

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/clouddrive/backend/internal/models"
	"github.com/clouddrive/backend/internal/quota"
	"github.com/clouddrive/backend/internal/storage"
)

// Engine implements the item operations as short transactions over the
// item store, the quota ledger and the content gateway. Every quota
// mutation goes through an explicit Reserve or Release call; no
// operation charges an account as a side effect of persisting
// something else.
//
// Upload ordering: gateway store, then item create, then quota
// reserve. A gateway failure therefore leaves no metadata and no
// charge, and a lost reserve race rolls the item and the stored object
// back. Destroy failures on delete are logged and never block metadata
// removal.
type Engine struct {
	store         Store
	ledger        quota.Ledger
	gateway       storage.Gateway
	uploadTimeout time.Duration
}

func NewEngine(store Store, ledger quota.Ledger, gateway storage.Gateway, uploadTimeout time.Duration) *Engine {
	if uploadTimeout <= 0 {
		uploadTimeout = 60 * time.Second
	}
	return &Engine{
		store:         store,
		ledger:        ledger,
		gateway:       gateway,
		uploadTimeout: uploadTimeout,
	}
}

// Store exposes the underlying item store for read-side queries.
func (e *Engine) Store() Store {
	return e.store
}

// UploadFile stores the payload through the gateway and records the
// file, charging the account for its size.
func (e *Engine) UploadFile(ctx context.Context, userID uint, name string, kind models.ItemKind, data []byte, parentID *uint) (*models.Item, error) {
	if !kind.IsFile() {
		return nil, fmt.Errorf("%w: kind %q is not uploadable", ErrValidation, kind)
	}

	size := int64(len(data))

	// Fast precondition check; the reserve below is authoritative.
	used, max, err := e.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if used+size > max {
		return nil, quota.ErrQuotaExceeded
	}

	gwCtx, cancel := context.WithTimeout(ctx, e.uploadTimeout)
	defer cancel()

	obj, err := e.gateway.Store(gwCtx, data, kind)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		UserID:        userID,
		Name:          name,
		Kind:          kind,
		Size:          size,
		URL:           obj.URL,
		ContentHandle: obj.Handle,
		ParentID:      parentID,
	}

	if err := e.store.Create(ctx, item); err != nil {
		e.destroyHandle(ctx, obj.Handle)
		return nil, err
	}

	if err := e.ledger.Reserve(ctx, userID, size); err != nil {
		// Lost the race against a concurrent upload; roll back.
		if delErr := e.store.Delete(ctx, item.ID); delErr != nil {
			log.Printf("Upload rollback: failed to delete item %d: %v", item.ID, delErr)
		}
		e.destroyHandle(ctx, obj.Handle)
		return nil, err
	}

	return item, nil
}

// CreateNote records an inline text note. No gateway call and no quota
// charge; inline notes occupy zero billed bytes.
func (e *Engine) CreateNote(ctx context.Context, userID uint, name, content string, parentID *uint) (*models.Item, error) {
	if _, _, err := e.ledger.Balance(ctx, userID); err != nil {
		return nil, err
	}

	item := &models.Item{
		UserID:   userID,
		Name:     name,
		Kind:     models.KindNote,
		Content:  content,
		ParentID: parentID,
	}
	if err := e.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CreateFolder records a folder node.
func (e *Engine) CreateFolder(ctx context.Context, userID uint, name string, parentID *uint) (*models.Item, error) {
	if _, _, err := e.ledger.Balance(ctx, userID); err != nil {
		return nil, err
	}

	item := &models.Item{
		UserID:   userID,
		Name:     name,
		Kind:     models.KindFolder,
		ParentID: parentID,
	}
	if err := e.store.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Rename sets the item's name.
func (e *Engine) Rename(ctx context.Context, id uint, newName string) (*models.Item, error) {
	return e.store.Update(ctx, id, Patch{Name: &newName})
}

// Move reparents the item; nil means move to root.
func (e *Engine) Move(ctx context.Context, id uint, parentID *uint) (*models.Item, error) {
	return e.store.Update(ctx, id, Patch{SetParent: true, ParentID: parentID})
}

// ToggleFavorite flips the favorite flag and returns the updated item.
func (e *Engine) ToggleFavorite(ctx context.Context, id uint) (*models.Item, error) {
	item, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fav := !item.Favorite
	return e.store.Update(ctx, id, Patch{Favorite: &fav})
}

// SoftDelete moves the item to the trash. Its bytes remain charged.
func (e *Engine) SoftDelete(ctx context.Context, id uint) (*models.Item, error) {
	deleted := true
	return e.store.Update(ctx, id, Patch{IsDeleted: &deleted})
}

// Restore brings the item back from the trash.
func (e *Engine) Restore(ctx context.Context, id uint) (*models.Item, error) {
	deleted := false
	return e.store.Update(ctx, id, Patch{IsDeleted: &deleted})
}

// Duplicate creates a copy named "<name> - Copy" under the same parent
// unless overridden. File duplicates share the source's content handle
// and reserve the source size.
func (e *Engine) Duplicate(ctx context.Context, id uint, parentOverride *uint) (*models.Item, error) {
	src, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	parent := src.ParentID
	if parentOverride != nil {
		parent = parentOverride
	}
	return e.copyItem(ctx, src, src.Name+" - Copy", parent)
}

// CopyTo creates a copy with the name unchanged under the destination
// folder (nil means root).
func (e *Engine) CopyTo(ctx context.Context, id uint, destParentID *uint) (*models.Item, error) {
	src, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.copyItem(ctx, src, src.Name, destParentID)
}

func (e *Engine) copyItem(ctx context.Context, src *models.Item, name string, parentID *uint) (*models.Item, error) {
	copy := &models.Item{
		UserID:        src.UserID,
		Name:          name,
		Kind:          src.Kind,
		URL:           src.URL,
		ContentHandle: src.ContentHandle,
		Content:       src.Content,
		ParentID:      parentID,
	}

	if src.Kind.IsFile() {
		copy.Size = src.Size
		if err := e.ledger.Reserve(ctx, src.UserID, src.Size); err != nil {
			return nil, err
		}
		if err := e.store.Create(ctx, copy); err != nil {
			if relErr := e.ledger.Release(ctx, src.UserID, src.Size); relErr != nil {
				log.Printf("Copy rollback: failed to release %d bytes for user %d: %v", src.Size, src.UserID, relErr)
			}
			return nil, err
		}
		return copy, nil
	}

	// Folder copies start empty; the cached size does not carry over.
	if err := e.store.Create(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

// HardDelete permanently removes an item. Files release their size; a
// folder cascades over its direct child files.
func (e *Engine) HardDelete(ctx context.Context, id uint) error {
	item, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if item.IsFolder() {
		return e.deleteFolder(ctx, item)
	}
	return e.deleteFile(ctx, item)
}

func (e *Engine) deleteFile(ctx context.Context, item *models.Item) error {
	e.destroyIfLastRef(ctx, item)

	if err := e.store.Delete(ctx, item.ID); err != nil {
		return err
	}
	if err := e.ledger.Release(ctx, item.UserID, item.Size); err != nil {
		log.Printf("Delete: failed to release %d bytes for user %d: %v", item.Size, item.UserID, err)
	}
	return nil
}

// deleteFolder removes the folder and its direct child files, releasing
// their aggregate size. Nested subfolders are left untouched, matching
// the shallow-descendant contract.
func (e *Engine) deleteFolder(ctx context.Context, folder *models.Item) error {
	children, err := e.store.Descendants(ctx, folder.ID)
	if err != nil {
		return err
	}

	var total int64
	for i := range children {
		child := children[i]
		e.destroyIfLastRef(ctx, &child)
		if err := e.store.Delete(ctx, child.ID); err != nil {
			return err
		}
		total += child.Size
	}

	if err := e.store.Delete(ctx, folder.ID); err != nil {
		return err
	}
	if total > 0 {
		if err := e.ledger.Release(ctx, folder.UserID, total); err != nil {
			log.Printf("Folder delete: failed to release %d bytes for user %d: %v", total, folder.UserID, err)
		}
	}
	return nil
}

// destroyIfLastRef destroys the item's content handle unless another
// live item still references it. Failures are logged; orphaned binary
// content is an acceptable residue, a blocked delete is not.
func (e *Engine) destroyIfLastRef(ctx context.Context, item *models.Item) {
	if item.ContentHandle == "" {
		return
	}
	refs, err := e.store.CountByHandle(ctx, item.ContentHandle)
	if err != nil {
		log.Printf("Delete: failed to count references for handle %s: %v", item.ContentHandle, err)
		return
	}
	if refs > 1 {
		return
	}
	e.destroyHandle(ctx, item.ContentHandle)
}

func (e *Engine) destroyHandle(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := e.gateway.Destroy(ctx, handle); err != nil {
		log.Printf("Gateway destroy failed for handle %s: %v", handle, err)
	}
}
