package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account with a storage quota. UsedStorage is only
// mutated through the quota ledger so that used <= max holds after every
// committed operation.
type User struct {
	ID          uint           `gorm:"column:id;primaryKey" json:"id"`
	Name        string         `gorm:"column:name;size:255" json:"name"`
	Email       string         `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	Password    string         `gorm:"column:password;size:255;not null" json:"-"`
	Phone       string         `gorm:"column:phone;size:50" json:"phone"`
	UsedStorage int64          `gorm:"column:used_storage;default:0" json:"used_storage"`
	MaxStorage  int64          `gorm:"column:max_storage;not null" json:"max_storage"`
	IsActive    bool           `gorm:"column:is_active;default:true" json:"is_active"`
	LastLogin   *time.Time     `gorm:"column:last_login" json:"last_login"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`

	// 2FA fields
	TwoFactorEnabled bool   `gorm:"column:two_factor_enabled;default:false" json:"two_factor_enabled"`
	TwoFactorSecret  string `gorm:"column:two_factor_secret;size:255" json:"-"`
}

func (User) TableName() string {
	return "users"
}
