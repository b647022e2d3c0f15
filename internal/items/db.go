package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/clouddrive/backend/internal/models"
)

// DBStore is the GORM-backed item store.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) validate(ctx context.Context, item *models.Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrValidation, item.Kind)
	}
	if item.ParentID != nil {
		var parent models.Item
		err := s.db.WithContext(ctx).
			Where("id = ? AND user_id = ? AND kind = ?", *item.ParentID, item.UserID, models.KindFolder).
			First(&parent).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: parent folder not found", ErrValidation)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *DBStore) Create(ctx context.Context, item *models.Item) error {
	if err := s.validate(ctx, item); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *DBStore) Get(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *DBStore) ListByUser(ctx context.Context, userID uint, f ListFilter) ([]models.Item, error) {
	query := s.db.WithContext(ctx).Model(&models.Item{}).Where("user_id = ?", userID)

	if f.DeletedOnly {
		query = query.Where("is_deleted = ?", true)
	} else {
		query = query.Where("is_deleted = ?", false)
	}
	if f.Kind != "" {
		query = query.Where("kind = ?", f.Kind)
	}
	if f.FavoriteOnly {
		query = query.Where("favorite = ?", true)
	}
	if f.ParentSet {
		if f.ParentID == nil {
			query = query.Where("parent_id IS NULL")
		} else {
			query = query.Where("parent_id = ?", *f.ParentID)
		}
	}
	if f.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		query = query.Where("created_at <= ?", *f.CreatedTo)
	}

	var list []models.Item
	if err := query.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (s *DBStore) Update(ctx context.Context, id uint, patch Patch) (*models.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		updates["name"] = *patch.Name
	}
	if patch.SetParent {
		if patch.ParentID != nil {
			if *patch.ParentID == id {
				return nil, fmt.Errorf("%w: cannot move an item into itself", ErrValidation)
			}
			var parent models.Item
			err := s.db.WithContext(ctx).
				Where("id = ? AND user_id = ? AND kind = ?", *patch.ParentID, item.UserID, models.KindFolder).
				First(&parent).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: destination folder not found", ErrValidation)
			}
			if err != nil {
				return nil, err
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
				var next models.Item
				if err := s.db.WithContext(ctx).First(&next, *cursor.ParentID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						break
					}
					return nil, err
				}
				cursor = next
			}
		}
		updates["parent_id"] = patch.ParentID
	}
	if patch.Favorite != nil {
		updates["favorite"] = *patch.Favorite
	}
	if patch.IsDeleted != nil {
		updates["is_deleted"] = *patch.IsDeleted
	}
	if patch.Size != nil {
		updates["size"] = *patch.Size
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (s *DBStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DBStore) Descendants(ctx context.Context, folderID uint) ([]models.Item, error) {
	var list []models.Item
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND kind <> ?", folderID, models.KindFolder).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (s *DBStore) CountByHandle(ctx context.Context, handle string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Item{}).
		Where("content_handle = ?", handle).
		Count(&count).Error
	return count, err
}

func (s *DBStore) SetFolderSize(ctx context.Context, folderID uint, size int64) error {
	return s.db.WithContext(ctx).Model(&models.Item{}).
		Where("id = ? AND kind = ?", folderID, models.KindFolder).
		UpdateColumn("size", size).Error
}

func (s *DBStore) AllFolders(ctx context.Context) ([]models.Item, error) {
	var folders []models.Item
	err := s.db.WithContext(ctx).
		Where("kind = ? AND is_deleted = ?", models.KindFolder, false).
		Find(&folders).Error
	return folders, err
}
