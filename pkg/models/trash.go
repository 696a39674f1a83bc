package models

import "time"

// TrashStatus tracks the single status transition of a trash item.
type TrashStatus string

const (
	// TrashStatusTrashed means the entry sits in a trash directory.
	TrashStatusTrashed TrashStatus = "trashed"

	// TrashStatusRestored means the entry was moved back; final state.
	TrashStatusRestored TrashStatus = "restored"
)

// TrashItem records one soft-deleted filesystem entry.
//
// Rows are never deleted by the trash subsystem: a restored item keeps its
// row as an audit trail, with RestoredPath holding the actual (possibly
// renamed) destination. The Trashed -> Restored transition happens exactly
// once; a concurrent double restore has a single winner via the row-scoped
// status update.
type TrashItem struct {
	ID                string      `gorm:"primaryKey;size:36" json:"id"`
	DeletedBy         string      `gorm:"index;not null;size:36" json:"deleted_by"`
	SourceSpace       Space       `gorm:"not null;size:16" json:"source_space"`
	SourcePath        string      `gorm:"not null;size:1024" json:"source_path"`
	SourceParent      string      `gorm:"not null;size:1024" json:"source_parent"`
	SourceName        string      `gorm:"not null;size:255" json:"source_name"`
	TrashAbsolutePath string      `gorm:"not null;size:1024" json:"trash_absolute_path"`
	IsDirectory       bool        `gorm:"default:false" json:"is_directory"`
	Size              int64       `gorm:"default:0" json:"size"`
	DeletedAt         time.Time   `gorm:"index" json:"deleted_at"`
	Status            TrashStatus `gorm:"default:trashed;size:16" json:"status"`
	RestoredAt        *time.Time  `json:"restored_at,omitempty"`
	RestoredPath      string      `gorm:"size:1024" json:"restored_path,omitempty"`
}

// TableName returns the table name for TrashItem.
func (TrashItem) TableName() string {
	return "trash_items"
}
