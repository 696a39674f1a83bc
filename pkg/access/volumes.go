package access

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/akulov/spacefs/pkg/models"
	"github.com/akulov/spacefs/pkg/store"
)

// VolumeRegistry manages per-user volume assignments.
//
// A user's logical volume-space path must begin with one of their labels;
// VolumeForPath is the lookup the manager performs on every volume-space
// decision. Label and real-root uniqueness per user are enforced by the
// store's unique indexes; the registry adds the filesystem-side validation.
type VolumeRegistry struct {
	store store.UserVolumeStore
	fs    afero.Fs
}

// NewVolumeRegistry creates a registry over the given store and filesystem.
func NewVolumeRegistry(s store.UserVolumeStore, fsys afero.Fs) *VolumeRegistry {
	return &VolumeRegistry{store: s, fs: fsys}
}

// AddVolume assigns a real directory to a user under a logical label.
// The real path must exist and be a directory.
func (r *VolumeRegistry) AddVolume(ctx context.Context, userID, label, realRootPath string, mode models.AccessMode) (*models.UserVolume, error) {
	volume := &models.UserVolume{
		UserID:       userID,
		Label:        label,
		RealRootPath: filepath.Clean(realRootPath),
		AccessMode:   mode,
	}
	if err := r.validate(volume); err != nil {
		return nil, err
	}
	if _, err := r.store.CreateUserVolume(ctx, volume); err != nil {
		return nil, err
	}
	return volume, nil
}

// UpdateVolume applies label, root path and access mode changes.
func (r *VolumeRegistry) UpdateVolume(ctx context.Context, volume *models.UserVolume) error {
	volume.RealRootPath = filepath.Clean(volume.RealRootPath)
	if err := r.validate(volume); err != nil {
		return err
	}
	return r.store.UpdateUserVolume(ctx, volume)
}

// RemoveVolume deletes an assignment. Paths through its label deny on the
// very next access decision.
func (r *VolumeRegistry) RemoveVolume(ctx context.Context, id string) error {
	return r.store.DeleteUserVolume(ctx, id)
}

// ListVolumes returns a user's assignments ordered by label.
func (r *VolumeRegistry) ListVolumes(ctx context.Context, userID string) ([]*models.UserVolume, error) {
	return r.store.ListUserVolumes(ctx, userID)
}

// VolumeForPath takes the first segment of a volume-space relative path as a
// label and returns the matching assignment, or models.ErrVolumeNotFound.
func (r *VolumeRegistry) VolumeForPath(ctx context.Context, userID, relativePath string) (*models.UserVolume, error) {
	rel, err := NormalizeRelPath(relativePath)
	if err != nil {
		return nil, err
	}
	label, _ := splitFirst(rel)
	if label == "" {
		return nil, models.ErrVolumeNotFound
	}
	return r.store.GetUserVolumeByLabel(ctx, userID, label)
}

func (r *VolumeRegistry) validate(volume *models.UserVolume) error {
	if volume.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if volume.Label == "" || strings.ContainsAny(volume.Label, "/\\") || volume.Label == ".." || volume.Label == "." {
		return fmt.Errorf("invalid volume label %q", volume.Label)
	}
	if !volume.AccessMode.Valid() {
		return fmt.Errorf("invalid access mode %q", volume.AccessMode)
	}
	if !filepath.IsAbs(volume.RealRootPath) {
		return fmt.Errorf("volume root must be absolute: %q", volume.RealRootPath)
	}
	info, err := r.fs.Stat(volume.RealRootPath)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrVolumeRootNotExists, volume.RealRootPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", models.ErrVolumeRootNotDir, volume.RealRootPath)
	}
	return nil
}
