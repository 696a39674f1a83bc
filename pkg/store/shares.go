package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/akulov/spacefs/pkg/models"
)

// ============================================
// SHARE OPERATIONS
// ============================================

func (s *GORMStore) CreateShare(ctx context.Context, share *models.Share) (string, error) {
	now := time.Now()
	share.CreatedAt = now
	share.UpdatedAt = now
	return createWithID(s.db, ctx, share, share.ID,
		func(sh *models.Share, id string) { sh.ID = id },
		models.ErrDuplicateShare)
}

func (s *GORMStore) GetShareByID(ctx context.Context, id string) (*models.Share, error) {
	return getByField[models.Share](s.db, ctx, "id", id, models.ErrShareNotFound, "Permissions")
}

func (s *GORMStore) GetShareByToken(ctx context.Context, token string) (*models.Share, error) {
	return getByField[models.Share](s.db, ctx, "token", token, models.ErrShareNotFound, "Permissions")
}

// ShareTokenExists reports whether a token is already taken, without loading
// the full row. Used by the token generator's collision check.
func (s *GORMStore) ShareTokenExists(ctx context.Context, token string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Share{}).
		Where("token = ?", token).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GORMStore) ListShares(ctx context.Context) ([]*models.Share, error) {
	shares := []*models.Share{}
	if err := s.db.WithContext(ctx).
		Preload("Permissions").
		Order("created_at DESC").
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

func (s *GORMStore) ListSharesByOwner(ctx context.Context, ownerID string) ([]*models.Share, error) {
	return listByField[models.Share](s.db, ctx, "owner_id", ownerID, "created_at DESC")
}

func (s *GORMStore) DeleteShare(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("share_id = ?", id).Delete(&models.SharePermission{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Share{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.ErrShareNotFound
		}
		return nil
	})
}

// TrackShareAccess bumps the download counter and stamps the last access time
// in one row-scoped update.
func (s *GORMStore) TrackShareAccess(ctx context.Context, id string, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.Share{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"download_count":   gorm.Expr("download_count + 1"),
			"last_accessed_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrShareNotFound
	}
	return nil
}

// ============================================
// SHARE PERMISSION OPERATIONS
// ============================================

func (s *GORMStore) AddSharePermission(ctx context.Context, shareID, userID string) error {
	perm := &models.SharePermission{
		ShareID:   shareID,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	perm.ID = uuid.New().String()
	if err := s.db.WithContext(ctx).Create(perm).Error; err != nil {
		// Granting twice is not an error
		if isUniqueConstraintError(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *GORMStore) HasSharePermission(ctx context.Context, shareID, userID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.SharePermission{}).
		Where("share_id = ? AND user_id = ?", shareID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
