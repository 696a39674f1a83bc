package store

import (
	"context"
	"time"

	"github.com/akulov/spacefs/pkg/models"
)

// Per-entity store interfaces. Consumers declare the narrowest composite they
// need, so tests and registries never depend on the full GORMStore surface.

// ShareStore persists share links and their per-user permissions.
type ShareStore interface {
	CreateShare(ctx context.Context, share *models.Share) (string, error)
	GetShareByID(ctx context.Context, id string) (*models.Share, error)
	GetShareByToken(ctx context.Context, token string) (*models.Share, error)
	ShareTokenExists(ctx context.Context, token string) (bool, error)
	ListShares(ctx context.Context) ([]*models.Share, error)
	ListSharesByOwner(ctx context.Context, ownerID string) ([]*models.Share, error)
	DeleteShare(ctx context.Context, id string) error
	TrackShareAccess(ctx context.Context, id string, now time.Time) error

	AddSharePermission(ctx context.Context, shareID, userID string) error
	HasSharePermission(ctx context.Context, shareID, userID string) (bool, error)
}

// GuestSessionStore persists guest sessions bound to shares.
type GuestSessionStore interface {
	CreateGuestSession(ctx context.Context, session *models.GuestSession) (string, error)
	GetGuestSession(ctx context.Context, id string) (*models.GuestSession, error)
	TouchGuestSession(ctx context.Context, id string, at time.Time) error
	DeleteGuestSession(ctx context.Context, id string) error
	DeleteExpiredGuestSessions(ctx context.Context, now time.Time) (int64, error)
}

// UserVolumeStore persists per-user volume assignments.
type UserVolumeStore interface {
	CreateUserVolume(ctx context.Context, volume *models.UserVolume) (string, error)
	GetUserVolume(ctx context.Context, id string) (*models.UserVolume, error)
	GetUserVolumeByLabel(ctx context.Context, userID, label string) (*models.UserVolume, error)
	ListUserVolumes(ctx context.Context, userID string) ([]*models.UserVolume, error)
	UpdateUserVolume(ctx context.Context, volume *models.UserVolume) error
	DeleteUserVolume(ctx context.Context, id string) error
}

// TrashStore persists the trash audit trail.
type TrashStore interface {
	CreateTrashItem(ctx context.Context, item *models.TrashItem) (string, error)
	GetTrashItem(ctx context.Context, id string) (*models.TrashItem, error)
	ListTrashItems(ctx context.Context, userID string) ([]*models.TrashItem, error)
	MarkTrashItemRestored(ctx context.Context, id, deletedBy, restoredPath string, at time.Time) error
	ReopenTrashItem(ctx context.Context, id string) error
}

// SettingStore persists the mutable settings documents, including the
// ordered access-rule list.
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
	GetAccessRules(ctx context.Context) ([]models.AccessRule, error)
	SetAccessRules(ctx context.Context, rules []models.AccessRule) error
}

// Store is the full persistence surface implemented by GORMStore.
type Store interface {
	ShareStore
	GuestSessionStore
	UserVolumeStore
	TrashStore
	SettingStore
}

var _ Store = (*GORMStore)(nil)
