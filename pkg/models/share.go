package models

import "time"

// Share defines a share link into the volume or personal space.
//
// Token is the short public identifier embedded in share/<token>/... paths.
// Expiry is evaluated against the clock on every access; it is never cached
// (an expired share must deny on the very next request).
type Share struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	Token       string      `gorm:"uniqueIndex;not null;size:64" json:"token"`
	OwnerID     string      `gorm:"index;not null;size:36" json:"owner_id"`
	SourceSpace Space       `gorm:"not null;size:16" json:"source_space"` // volume or personal
	SourcePath  string      `gorm:"not null;size:1024" json:"source_path"`
	IsDirectory bool        `gorm:"default:false" json:"is_directory"`
	AccessMode  AccessMode  `gorm:"default:ro;size:8" json:"access_mode"`
	SharingType SharingType `gorm:"default:anyone;size:16" json:"sharing_type"`

	// PasswordHash is a bcrypt hash; empty means no password is required.
	PasswordHash string `gorm:"size:128" json:"-"`

	Label          string     `gorm:"size:255" json:"label,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	DownloadCount  int64      `gorm:"default:0" json:"download_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Permissions []SharePermission `gorm:"foreignKey:ShareID" json:"permissions,omitempty"`
}

// TableName returns the table name for Share.
func (Share) TableName() string {
	return "shares"
}

// HasPassword reports whether opening the share requires password verification.
func (s *Share) HasPassword() bool {
	return s.PasswordHash != ""
}

// Expired reports whether the share has passed its expiry at the given time.
// Shares without an expiry never expire.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// SharePermission grants one user access to a users-type share.
// The owner is implicitly permitted and never has a row here.
type SharePermission struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	ShareID   string    `gorm:"uniqueIndex:idx_share_user;not null;size:36" json:"share_id"`
	UserID    string    `gorm:"uniqueIndex:idx_share_user;not null;size:36" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for SharePermission.
func (SharePermission) TableName() string {
	return "share_permissions"
}

// GuestSession is an anonymous visitor's ticket into exactly one share.
//
// A session is valid only while now < ExpiresAt and only against the share it
// was created for; presenting it against any other share is a denial.
type GuestSession struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	ShareID        string    `gorm:"index;not null;size:36" json:"share_id"`
	IPAddress      string    `gorm:"size:64" json:"ip_address,omitempty"`
	UserAgent      string    `gorm:"size:512" json:"user_agent,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt      time.Time `gorm:"index;not null" json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// TableName returns the table name for GuestSession.
func (GuestSession) TableName() string {
	return "guest_sessions"
}

// Expired reports whether the session has passed its expiry at the given time.
func (g *GuestSession) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
