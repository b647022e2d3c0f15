package items

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clouddrive/backend/internal/models"
)

// MemoryStore is an in-memory item store for the embedded profile and
// tests. It mirrors DBStore semantics exactly.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1, items: make(map[uint]models.Item)}
}

func (s *MemoryStore) resolveParent(userID uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	parent, ok := s.items[*parentID]
	if !ok || parent.UserID != userID || parent.Kind != models.KindFolder {
		return fmt.Errorf("%w: parent folder not found", ErrValidation)
	}
	return nil
}

func (s *MemoryStore) Create(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, item.Kind)
	}
	if err := s.resolveParent(item.UserID, item.ParentID); err != nil {
		return err
	}

	item.ID = s.nextID
	s.nextID++
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = time.Now()
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id uint) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID uint, f ListFilter) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Item
	for _, item := range s.items {
		if item.UserID != userID {
			continue
		}
		if item.IsDeleted != f.DeletedOnly {
			continue
		}
		if f.Kind != "" && item.Kind != f.Kind {
			continue
		}
		if f.FavoriteOnly && !item.Favorite {
			continue
		}
		if f.ParentSet {
			if f.ParentID == nil {
				if item.ParentID != nil {
					continue
				}
			} else if item.ParentID == nil || *item.ParentID != *f.ParentID {
				continue
			}
		}
		if f.CreatedFrom != nil && item.CreatedAt.Before(*f.CreatedFrom) {
			continue
		}
		if f.CreatedTo != nil && item.CreatedAt.After(*f.CreatedTo) {
			continue
		}
		list = append(list, item)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (s *MemoryStore) Update(ctx context.Context, id uint, patch Patch) (*models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		item.Name = *patch.Name
	}
	if patch.SetParent {
		if patch.ParentID != nil {
			if *patch.ParentID == id {
				return nil, fmt.Errorf("%w: cannot move an item into itself", ErrValidation)
			}
			parent, ok := s.items[*patch.ParentID]
			if !ok || parent.UserID != item.UserID || parent.Kind != models.KindFolder {
				return nil, fmt.Errorf("%w: destination folder not found", ErrValidation)
			}

			// Walk up from the destination; landing under the item's
			// own subtree would cycle the parent chain.
			cursor := parent
			for depth := 0; cursor.ParentID != nil; depth++ {
				if depth >= maxTreeDepth {
					return nil, fmt.Errorf("%w: folder nesting too deep", ErrValidation)
				}
				if *cursor.ParentID == id {
					return nil, fmt.Errorf("%w: cannot move an item into its own subfolder", ErrValidation)
				}
				next, ok := s.items[*cursor.ParentID]
				if !ok {
					break
				}
				cursor = next
			}
		}
		item.ParentID = patch.ParentID
	}
	if patch.Favorite != nil {
		item.Favorite = *patch.Favorite
	}
	if patch.IsDeleted != nil {
		item.IsDeleted = *patch.IsDeleted
	}
	if patch.Size != nil {
		item.Size = *patch.Size
	}

	item.UpdatedAt = time.Now()
	s.items[id] = item
	return &item, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) Descendants(ctx context.Context, folderID uint) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var list []models.Item
	for _, item := range s.items {
		if item.ParentID != nil && *item.ParentID == folderID && item.Kind != models.KindFolder {
			list = append(list, item)
		}
	}
	return list, nil
}

func (s *MemoryStore) CountByHandle(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, item := range s.items {
		if item.ContentHandle == handle {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) SetFolderSize(ctx context.Context, folderID uint, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[folderID]
	if !ok || item.Kind != models.KindFolder {
		return nil
	}
	item.Size = size
	s.items[folderID] = item
	return nil
}

func (s *MemoryStore) AllFolders(ctx context.Context) ([]models.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var folders []models.Item
	for _, item := range s.items {
		if item.Kind == models.KindFolder && !item.IsDeleted {
			folders = append(folders, item)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders, nil
}
