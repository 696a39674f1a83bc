package access

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/metrics"
	"github.com/akulov/spacefs/pkg/models"
	"github.com/akulov/spacefs/pkg/store"
)

// Share registry errors.
var (
	// ErrGuestNotAllowed means a guest session was requested for a share
	// that only admits explicitly listed users.
	ErrGuestNotAllowed = errors.New("share does not admit guests")

	// ErrInvalidSharePassword means password verification failed.
	ErrInvalidSharePassword = errors.New("invalid share password")
)

// tokenAlphabet excludes ambiguous characters (0/O, 1/l/I).
const tokenAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShareRegistryStore is the persistence surface the registry needs.
type ShareRegistryStore interface {
	store.ShareStore
	store.GuestSessionStore
}

// CreateShareInput carries everything needed to create a share link.
type CreateShareInput struct {
	OwnerID     string             `validate:"required"`
	SourceSpace models.Space       `validate:"required,oneof=volume personal"`
	SourcePath  string             `validate:"required"`
	IsDirectory bool               ``
	AccessMode  models.AccessMode  `validate:"required,oneof=ro rw"`
	SharingType models.SharingType `validate:"required,oneof=anyone users"`

	// UserIDs lists the permitted users for users-type shares (at least one).
	UserIDs []string

	// Password, when set, is bcrypt-hashed; guests must verify it to open a
	// session.
	Password string

	ExpiresAt *time.Time
	Label     string `validate:"max=255"`
}

// ShareRegistry creates and resolves share links and manages the guest
// sessions bound to them.
type ShareRegistry struct {
	store    ShareRegistryStore
	validate *validator.Validate
	now      func() time.Time
}

// NewShareRegistry creates a registry over the given store.
func NewShareRegistry(s ShareRegistryStore) *ShareRegistry {
	return &ShareRegistry{
		store:    s,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Create validates the input, generates a collision-checked public token and
// persists the share with its permission rows.
func (r *ShareRegistry) Create(ctx context.Context, in CreateShareInput) (*models.Share, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid share: %w", err)
	}
	if in.SharingType == models.SharingUsers && len(in.UserIDs) == 0 {
		return nil, fmt.Errorf("users-type share requires at least one target user")
	}
	sourcePath, err := NormalizeRelPath(in.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("invalid source path: %w", err)
	}

	token, err := r.generateToken(ctx)
	if err != nil {
		return nil, err
	}

	share := &models.Share{
		Token:       token,
		OwnerID:     in.OwnerID,
		SourceSpace: in.SourceSpace,
		SourcePath:  sourcePath,
		IsDirectory: in.IsDirectory,
		AccessMode:  in.AccessMode,
		SharingType: in.SharingType,
		Label:       in.Label,
		ExpiresAt:   in.ExpiresAt,
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash share password: %w", err)
		}
		share.PasswordHash = string(hash)
	}

	if _, err := r.store.CreateShare(ctx, share); err != nil {
		return nil, err
	}
	for _, userID := range in.UserIDs {
		if err := r.store.AddSharePermission(ctx, share.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to grant share permission: %w", err)
		}
	}
	return share, nil
}

// ResolveByToken loads a share by its public token.
func (r *ShareRegistry) ResolveByToken(ctx context.Context, token string) (*models.Share, error) {
	return r.store.GetShareByToken(ctx, token)
}

// Delete removes a share and its permission rows.
func (r *ShareRegistry) Delete(ctx context.Context, id string) error {
	return r.store.DeleteShare(ctx, id)
}

// HasPermission reports whether a user may open a share. The owner is always
// permitted, anyone-type shares admit every user, users-type shares check the
// permission table.
func (r *ShareRegistry) HasPermission(ctx context.Context, share *models.Share, userID string) (bool, error) {
	if share.OwnerID == userID {
		return true, nil
	}
	if share.SharingType == models.SharingAnyone {
		return true, nil
	}
	return r.store.HasSharePermission(ctx, share.ID, userID)
}

// IsExpired evaluates expiry against the clock. Never cached: a share created
// with a past expiry denies immediately.
func (r *ShareRegistry) IsExpired(share *models.Share) bool {
	return share.Expired(r.now())
}

// TrackAccess increments the share's counters.
func (r *ShareRegistry) TrackAccess(ctx context.Context, shareID string) error {
	return r.store.TrackShareAccess(ctx, shareID, r.now())
}

// VerifyPassword checks a cleartext password against the share's hash.
// Shares without a password accept any input.
func (r *ShareRegistry) VerifyPassword(share *models.Share, password string) error {
	if !share.HasPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(share.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidSharePassword
	}
	return nil
}

// OpenGuestSession admits an anonymous visitor into an anyone-type share
// after password verification, returning a session scoped to exactly that
// share.
func (r *ShareRegistry) OpenGuestSession(ctx context.Context, token, password, ipAddress, userAgent string, ttl time.Duration) (*models.GuestSession, error) {
	share, err := r.store.GetShareByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	now := r.now()
	if share.Expired(now) {
		return nil, models.ErrShareNotFound
	}
	if share.SharingType != models.SharingAnyone {
		return nil, ErrGuestNotAllowed
	}
	if err := r.VerifyPassword(share, password); err != nil {
		return nil, err
	}

	session := &models.GuestSession{
		ShareID:        share.ID,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
	}
	if _, err := r.store.CreateGuestSession(ctx, session); err != nil {
		return nil, err
	}
	logger.Debug("guest session opened",
		logger.KeyShare, share.Token,
		logger.KeySession, session.ID)
	return session, nil
}

// ResolveGuestSession loads a session by ID and verifies it is still valid,
// returning models.ErrGuestSessionExpired for a session past its expiry. This
// is the entry point for turning a stored session reference into a Guest
// caller.
func (r *ShareRegistry) ResolveGuestSession(ctx context.Context, id string) (*models.GuestSession, error) {
	session, err := r.store.GetGuestSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(r.now()) {
		return nil, models.ErrGuestSessionExpired
	}
	return session, nil
}

// TouchGuestSession stamps activity on a session.
func (r *ShareRegistry) TouchGuestSession(ctx context.Context, sessionID string) error {
	return r.store.TouchGuestSession(ctx, sessionID, r.now())
}

// SweepExpiredGuestSessions removes sessions past their expiry.
func (r *ShareRegistry) SweepExpiredGuestSessions(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteExpiredGuestSessions(ctx, r.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.GuestSessionsSwept.Add(float64(n))
		logger.Info("swept expired guest sessions", logger.KeyCount, n)
	}
	return n, nil
}

// generateToken tries short tokens first (lengths 5 through 10), checking
// each against the store, and falls back to a UUID if every length collides.
func (r *ShareRegistry) generateToken(ctx context.Context) (string, error) {
	for length := 5; length <= 10; length++ {
		token, err := randomToken(length)
		if err != nil {
			return "", err
		}
		exists, err := r.store.ShareTokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return uuid.New().String(), nil
}

func randomToken(length int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate share token: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
