package store

import (
	"context"
	"time"

	"github.com/akulov/spacefs/pkg/models"
)

// ============================================
// GUEST SESSION OPERATIONS
// ============================================

func (s *GORMStore) CreateGuestSession(ctx context.Context, session *models.GuestSession) (string, error) {
	now := time.Now()
	session.CreatedAt = now
	if session.LastActivityAt.IsZero() {
		session.LastActivityAt = now
	}
	return createWithID(s.db, ctx, session, session.ID,
		func(g *models.GuestSession, id string) { g.ID = id },
		models.ErrGuestSessionNotFound)
}

func (s *GORMStore) GetGuestSession(ctx context.Context, id string) (*models.GuestSession, error) {
	return getByField[models.GuestSession](s.db, ctx, "id", id, models.ErrGuestSessionNotFound)
}

// TouchGuestSession stamps the last activity time of a live session.
func (s *GORMStore) TouchGuestSession(ctx context.Context, id string, at time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&models.GuestSession{}).
		Where("id = ?", id).
		Update("last_activity_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrGuestSessionNotFound
	}
	return nil
}

func (s *GORMStore) DeleteGuestSession(ctx context.Context, id string) error {
	return deleteByField[models.GuestSession](s.db, ctx, "id", id, models.ErrGuestSessionNotFound)
}

// DeleteExpiredGuestSessions sweeps sessions whose expiry has passed and
// returns the number of rows removed.
func (s *GORMStore) DeleteExpiredGuestSessions(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.GuestSession{})
	return result.RowsAffected, result.Error
}
