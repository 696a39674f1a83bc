package store

import (
	"context"
	"time"

	"github.com/akulov/spacefs/pkg/models"
)

// ============================================
// TRASH OPERATIONS
// ============================================

func (s *GORMStore) CreateTrashItem(ctx context.Context, item *models.TrashItem) (string, error) {
	if item.DeletedAt.IsZero() {
		item.DeletedAt = time.Now()
	}
	if item.Status == "" {
		item.Status = models.TrashStatusTrashed
	}
	return createWithID(s.db, ctx, item, item.ID,
		func(t *models.TrashItem, id string) { t.ID = id },
		models.ErrTrashItemNotFound)
}

func (s *GORMStore) GetTrashItem(ctx context.Context, id string) (*models.TrashItem, error) {
	return getByField[models.TrashItem](s.db, ctx, "id", id, models.ErrTrashItemNotFound)
}

// ListTrashItems returns the user's not-yet-restored items, newest first.
func (s *GORMStore) ListTrashItems(ctx context.Context, userID string) ([]*models.TrashItem, error) {
	items := []*models.TrashItem{}
	if err := s.db.WithContext(ctx).
		Where("deleted_by = ? AND status = ?", userID, models.TrashStatusTrashed).
		Order("deleted_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkTrashItemRestored performs the single Trashed -> Restored transition.
//
// The WHERE clause is the whole concurrency story: two concurrent restores of
// the same row race on status='trashed', the database lets exactly one update
// through, and the loser comes back with zero rows affected. The follow-up
// lookup tells ErrAlreadyRestored apart from ErrTrashItemNotFound.
func (s *GORMStore) MarkTrashItemRestored(ctx context.Context, id, deletedBy, restoredPath string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.TrashItem{}).
		Where("id = ? AND deleted_by = ? AND status = ?", id, deletedBy, models.TrashStatusTrashed).
		Updates(map[string]any{
			"status":        models.TrashStatusRestored,
			"restored_at":   at,
			"restored_path": restoredPath,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		item, err := s.GetTrashItem(ctx, id)
		if err != nil {
			return err
		}
		if item.DeletedBy != deletedBy {
			return models.ErrTrashItemNotFound
		}
		return models.ErrAlreadyRestored
	}
	return nil
}

// ReopenTrashItem reverts a claimed Restored row back to Trashed. Used when
// the physical move fails after the row transition already went through.
func (s *GORMStore) ReopenTrashItem(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.TrashItem{}).
		Where("id = ? AND status = ?", id, models.TrashStatusRestored).
		Updates(map[string]any{
			"status":        models.TrashStatusTrashed,
			"restored_at":   nil,
			"restored_path": "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrTrashItemNotFound
	}
	return nil
}
