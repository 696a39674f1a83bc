// Package trash implements soft delete and restore on top of the access
// engine, inheriting its space-awareness: every delete and every restore
// destination passes through the AccessManager first.
package trash

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/access"
	"github.com/akulov/spacefs/pkg/fsops"
	"github.com/akulov/spacefs/pkg/metrics"
	"github.com/akulov/spacefs/pkg/models"
	"github.com/akulov/spacefs/pkg/store"
)

// DefaultDirName is the trash directory created inside each space root.
const DefaultDirName = ".trash"

var (
	// ErrNotAuthenticated means the caller is anonymous or a guest; trash
	// operations require a real user.
	ErrNotAuthenticated = errors.New("authentication required")

	// ErrAccessDenied wraps the access manager's denial reason.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidName means the entry name carries separators or traversal.
	ErrInvalidName = errors.New("invalid entry name")
)

func denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrAccessDenied, reason)
}

// RestoreResult reports where a restored entry ended up.
type RestoreResult struct {
	// RestoredPath is the logical path of the restored entry; its final
	// segment may carry a collision counter.
	RestoredPath string
	RestoredAt   time.Time
	Name         string
}

// Service moves resolved paths into per-space trash directories and restores
// them, recording provenance as an audit trail.
type Service struct {
	store   store.TrashStore
	access  *access.Manager
	fs      afero.Fs
	dirName string
	now     func() time.Time
}

// NewService creates the trash service. dirName defaults to DefaultDirName
// when empty.
func NewService(s store.TrashStore, manager *access.Manager, fsys afero.Fs, dirName string) *Service {
	if dirName == "" {
		dirName = DefaultDirName
	}
	return &Service{
		store:   s,
		access:  manager,
		fs:      fsys,
		dirName: dirName,
		now:     time.Now,
	}
}

// Trash soft-deletes the named entry under a logical parent path.
//
// The preferred destination is a trash directory at the root of the entry's
// space (personal root, user-volume root, volume root, or a share's source
// root). If that directory cannot be created, a sibling trash directory next
// to the source is used instead; the fallback is transparent to the caller.
//
// The physical move happens before the index insert. If the insert then
// fails, the move is not rolled back: the entry survives as an orphan in the
// trash directory, which is logged and surfaced as a fault (an accepted
// inconsistency, never silently swallowed).
func (s *Service) Trash(ctx context.Context, caller access.Caller, parentLogical, name string) (*models.TrashItem, error) {
	user, ok := access.UserOf(caller)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	info, parent, err := s.access.ResolvePathWithAccess(ctx, caller, parentLogical)
	if err != nil {
		return nil, err
	}
	if !info.CanAccess {
		return nil, denied(info.DenialReason)
	}
	if !info.CanDelete || parent == nil {
		return nil, denied("write access required")
	}

	srcAbs := filepath.Join(parent.AbsolutePath, name)
	srcInfo, err := s.fs.Stat(srcAbs)
	if err != nil {
		return nil, access.ErrPathNotFound
	}

	trashDir := filepath.Join(parent.Root, s.dirName)
	if err := s.fs.MkdirAll(trashDir, 0o700); err != nil {
		// Preferred directory not creatable; fall back to a sibling next to
		// the source.
		trashDir = filepath.Join(parent.AbsolutePath, s.dirName)
		if err := s.fs.MkdirAll(trashDir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	trashAbs := filepath.Join(trashDir, uuid.New().String()+"_"+name)
	if err := fsops.Move(s.fs, srcAbs, trashAbs); err != nil {
		metrics.TrashOperations.WithLabelValues("trash", "error").Inc()
		return nil, err
	}

	size := srcInfo.Size()
	if srcInfo.IsDir() {
		if total, err := fsops.DirSize(s.fs, trashAbs); err == nil {
			size = total
		}
	}

	parsedParent, err := access.ParsePath(parentLogical)
	if err != nil {
		return nil, err
	}
	sourceParent := parsedParent.Logical()

	item := &models.TrashItem{
		DeletedBy:         user.ID,
		SourceSpace:       parent.Space,
		SourcePath:        path.Join(sourceParent, name),
		SourceParent:      sourceParent,
		SourceName:        name,
		TrashAbsolutePath: trashAbs,
		IsDirectory:       srcInfo.IsDir(),
		Size:              size,
		DeletedAt:         s.now(),
		Status:            models.TrashStatusTrashed,
	}
	if _, err := s.store.CreateTrashItem(ctx, item); err != nil {
		// The move already happened and is not rolled back; the file sits in
		// the trash directory without an index row.
		metrics.TrashOrphans.Inc()
		metrics.TrashOperations.WithLabelValues("trash", "error").Inc()
		logger.Error("trash index insert failed after move; entry orphaned",
			logger.KeySource, srcAbs,
			logger.KeyTrashDir, trashDir,
			logger.KeyError, err)
		return nil, fmt.Errorf("failed to record trash item: %w", err)
	}

	metrics.TrashOperations.WithLabelValues("trash", "ok").Inc()
	logger.Info("entry trashed",
		logger.KeyUser, user.ID,
		logger.KeyPath, item.SourcePath,
		logger.KeyTrashDir, trashDir)
	return item, nil
}

// List returns the caller's not-yet-restored items, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]*models.TrashItem, error) {
	return s.store.ListTrashItems(ctx, userID)
}

// Restore moves a trashed entry back to its original parent.
//
// Write access on the original parent is re-checked through the access
// manager (an admin may have revoked it since deletion). The destination name
// gains a collision counter if the original was recreated in the interim;
// restore never overwrites. The Trashed -> Restored row transition is the
// single source of truth for concurrent restores: exactly one wins, the
// other fails with ErrAlreadyRestored.
func (s *Service) Restore(ctx context.Context, caller access.Caller, trashID string) (*RestoreResult, error) {
	user, ok := access.UserOf(caller)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	item, err := s.store.GetTrashItem(ctx, trashID)
	if err != nil {
		return nil, err
	}
	if item.DeletedBy != user.ID {
		// Scoped to the deleting user; others cannot even confirm existence.
		return nil, models.ErrTrashItemNotFound
	}
	if item.Status != models.TrashStatusTrashed {
		return nil, models.ErrAlreadyRestored
	}

	info, parent, err := s.access.ResolvePathWithAccess(ctx, caller, item.SourceParent)
	if err != nil {
		return nil, err
	}
	if !info.CanAccess {
		return nil, denied(info.DenialReason)
	}
	if !info.CanWrite || parent == nil {
		return nil, denied("write access required on the original parent")
	}

	destName, err := fsops.AvailableName(s.fs, parent.AbsolutePath, item.SourceName)
	if err != nil {
		return nil, err
	}
	destAbs := filepath.Join(parent.AbsolutePath, destName)

	// Claim the row before touching the filesystem: a concurrent restore of
	// the same item must lose with ErrAlreadyRestored, never with a move
	// error against an already-emptied trash path.
	now := s.now()
	restoredPath := path.Join(item.SourceParent, destName)
	if err := s.store.MarkTrashItemRestored(ctx, item.ID, user.ID, restoredPath, now); err != nil {
		metrics.TrashOperations.WithLabelValues("restore", "error").Inc()
		return nil, err
	}

	if err := fsops.Move(s.fs, item.TrashAbsolutePath, destAbs); err != nil {
		metrics.TrashOperations.WithLabelValues("restore", "error").Inc()
		if revertErr := s.store.ReopenTrashItem(ctx, item.ID); revertErr != nil {
			logger.Error("restore move failed and row revert failed; item stuck restored",
				logger.KeyTarget, destAbs,
				logger.KeyError, revertErr)
		}
		return nil, err
	}

	metrics.TrashOperations.WithLabelValues("restore", "ok").Inc()
	logger.Info("entry restored",
		logger.KeyUser, user.ID,
		logger.KeyPath, restoredPath)
	return &RestoreResult{
		RestoredPath: restoredPath,
		RestoredAt:   now,
		Name:         destName,
	}, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}
