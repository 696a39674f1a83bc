package models

import "time"

// UserVolume assigns one real directory to a user under a logical label.
//
// When the user-volumes feature is active, a non-admin user can only enter
// the volume space through one of their labels: the first segment of a
// volume-space path must match a UserVolume.Label owned by that user.
type UserVolume struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"uniqueIndex:idx_user_label;uniqueIndex:idx_user_root;not null;size:36" json:"user_id"`
	Label        string     `gorm:"uniqueIndex:idx_user_label;not null;size:255" json:"label"`
	RealRootPath string     `gorm:"uniqueIndex:idx_user_root;not null;size:1024" json:"real_root_path"`
	AccessMode   AccessMode `gorm:"default:rw;size:8" json:"access_mode"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for UserVolume.
func (UserVolume) TableName() string {
	return "user_volumes"
}

// ReadOnly reports whether the volume caps access at read-only.
func (v *UserVolume) ReadOnly() bool {
	return v.AccessMode == AccessReadOnly
}
