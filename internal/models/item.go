package models

import (
	"time"
)

// ItemKind discriminates the content-tree node variants. Files carry one
// of the three content kinds; folders are their own kind so a single
// lookup resolves any item without probing two tables.
type ItemKind string

const (
	KindImage  ItemKind = "image"
	KindPDF    ItemKind = "pdf"
	KindNote   ItemKind = "note"
	KindFolder ItemKind = "folder"
)

// Valid reports whether k is one of the known kinds.
func (k ItemKind) Valid() bool {
	switch k {
	case KindImage, KindPDF, KindNote, KindFolder:
		return true
	}
	return false
}

// IsFile reports whether k is a file variant (anything but folder).
func (k ItemKind) IsFile() bool {
	return k.Valid() && k != KindFolder
}

// Item is a node of the content tree: a file (image, pdf, note) or a
// folder. ParentID nil means the item sits at the root. For folders,
// Size caches the sum of direct child file sizes and may lag behind
// until the next reconciliation pass.
type Item struct {
	ID            uint      `gorm:"column:id;primaryKey" json:"id"`
	UserID        uint      `gorm:"column:user_id;index;not null" json:"user_id"`
	Name          string    `gorm:"column:name;size:255;not null" json:"name"`
	Kind          ItemKind  `gorm:"column:kind;size:20;index;not null" json:"kind"`
	Size          int64     `gorm:"column:size;default:0" json:"size"`
	URL           string    `gorm:"column:url;size:1024" json:"url,omitempty"`
	ContentHandle string    `gorm:"column:content_handle;size:255;index" json:"content_handle,omitempty"`
	Content       string    `gorm:"column:content;type:text" json:"content,omitempty"`
	ParentID      *uint     `gorm:"column:parent_id;index" json:"parent_id"`
	Favorite      bool      `gorm:"column:favorite;default:false" json:"favorite"`
	IsDeleted     bool      `gorm:"column:is_deleted;default:false;index" json:"is_deleted"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// IsFolder reports whether the item is a folder node.
func (i *Item) IsFolder() bool {
	return i.Kind == KindFolder
}
