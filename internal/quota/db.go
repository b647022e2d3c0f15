package quota

import (
	"context"

	"gorm.io/gorm"

	"github.com/clouddrive/backend/internal/models"
)

// DBLedger keeps the counters on the users table. Reserve and release
// are single conditional UPDATEs, so atomicity comes from the database
// and no in-process locking is needed.
type DBLedger struct {
	db *gorm.DB
}

func NewDBLedger(db *gorm.DB) *DBLedger {
	return &DBLedger{db: db}
}

func (l *DBLedger) Reserve(ctx context.Context, accountID uint, delta int64) error {
	if delta < 0 {
		delta = 0
	}

	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND used_storage + ? <= max_storage", accountID, delta).
		UpdateColumn("used_storage", gorm.Expr("used_storage + ?", delta))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		var count int64
		if err := l.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", accountID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrAccountNotFound
		}
		return ErrQuotaExceeded
	}

	return nil
}

func (l *DBLedger) Release(ctx context.Context, accountID uint, delta int64) error {
	if delta < 0 {
		delta = 0
	}

	res := l.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", accountID).
		UpdateColumn("used_storage", gorm.Expr(
			"CASE WHEN used_storage > ? THEN used_storage - ? ELSE 0 END", delta, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (l *DBLedger) Balance(ctx context.Context, accountID uint) (int64, int64, error) {
	var user models.User
	if err := l.db.WithContext(ctx).First(&user, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, 0, ErrAccountNotFound
		}
		return 0, 0, err
	}
	return user.UsedStorage, user.MaxStorage, nil
}
