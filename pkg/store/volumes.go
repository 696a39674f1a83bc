package store

import (
	"context"
	"time"

	"github.com/akulov/spacefs/pkg/models"
)

// ============================================
// USER VOLUME OPERATIONS
// ============================================

func (s *GORMStore) CreateUserVolume(ctx context.Context, volume *models.UserVolume) (string, error) {
	now := time.Now()
	volume.CreatedAt = now
	volume.UpdatedAt = now
	return createWithID(s.db, ctx, volume, volume.ID,
		func(v *models.UserVolume, id string) { v.ID = id },
		models.ErrDuplicateVolume)
}

func (s *GORMStore) GetUserVolume(ctx context.Context, id string) (*models.UserVolume, error) {
	return getByField[models.UserVolume](s.db, ctx, "id", id, models.ErrVolumeNotFound)
}

// GetUserVolumeByLabel resolves the volume a user reaches through a logical
// label, or ErrVolumeNotFound when the user has no such assignment.
func (s *GORMStore) GetUserVolumeByLabel(ctx context.Context, userID, label string) (*models.UserVolume, error) {
	var volume models.UserVolume
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND label = ?", userID, label).
		First(&volume).Error; err != nil {
		return nil, convertNotFoundError(err, models.ErrVolumeNotFound)
	}
	return &volume, nil
}

func (s *GORMStore) ListUserVolumes(ctx context.Context, userID string) ([]*models.UserVolume, error) {
	return listByField[models.UserVolume](s.db, ctx, "user_id", userID, "label ASC")
}

func (s *GORMStore) UpdateUserVolume(ctx context.Context, volume *models.UserVolume) error {
	volume.UpdatedAt = time.Now()
	result := s.db.WithContext(ctx).
		Model(&models.UserVolume{}).
		Where("id = ?", volume.ID).
		Updates(map[string]any{
			"label":          volume.Label,
			"real_root_path": volume.RealRootPath,
			"access_mode":    volume.AccessMode,
			"updated_at":     volume.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return models.ErrDuplicateVolume
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrVolumeNotFound
	}
	return nil
}

func (s *GORMStore) DeleteUserVolume(ctx context.Context, id string) error {
	return deleteByField[models.UserVolume](s.db, ctx, "id", id, models.ErrVolumeNotFound)
}
