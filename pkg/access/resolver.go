package access

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/akulov/spacefs/pkg/models"
)

// Resolver faults.
var (
	// ErrPathNotFound means the resolved location does not exist.
	ErrPathNotFound = errors.New("path not found")

	// ErrPathEscapesRoot means a joined, normalized absolute path left its
	// declared root. This is a security fault and is never silently clamped.
	ErrPathEscapesRoot = errors.New("path escapes its root")
)

// SpacesConfig declares where the logical spaces live on disk.
type SpacesConfig struct {
	// VolumeRoot is the shared volume root used for admins and when the
	// user-volumes feature is inactive.
	VolumeRoot string `mapstructure:"volume_root" validate:"required" yaml:"volume_root"`

	// PersonalRoot holds one subdirectory per user ID.
	PersonalRoot string `mapstructure:"personal_root" validate:"required" yaml:"personal_root"`

	// UserVolumesEnabled restricts non-admin volume access to labels from
	// the user-volume registry.
	UserVolumesEnabled bool `mapstructure:"user_volumes_enabled" yaml:"user_volumes_enabled"`
}

// PersonalRootFor returns the personal space root of one user.
func (c SpacesConfig) PersonalRootFor(userID string) string {
	return filepath.Join(c.PersonalRoot, userID)
}

// Resolved is a logical path pinned to a real filesystem location.
type Resolved struct {
	// AbsolutePath is the validated absolute location.
	AbsolutePath string

	// Root is the space root AbsolutePath is confined to (personal root,
	// user-volume root, volume root, or a share's source root).
	Root string

	// RelativePath is AbsolutePath relative to Root, slash-separated.
	RelativePath string

	// Space is the logical space the path was reached through.
	Space models.Space

	// Share is set when the path was reached through a share link.
	Share *models.Share

	// ShareFile marks a file-type share, whose listing is synthesized as a
	// single virtual entry (the share's parent is never browsable).
	ShareFile bool
}

// Resolver turns classified logical paths into validated absolute paths.
//
// It never makes a policy decision; callers go through the AccessManager
// first and hand the resolver any share or user-volume row the manager
// already fetched.
type Resolver struct {
	fs     afero.Fs
	spaces SpacesConfig
}

// NewResolver creates a resolver over the given filesystem abstraction.
func NewResolver(fsys afero.Fs, spaces SpacesConfig) *Resolver {
	return &Resolver{fs: fsys, spaces: spaces}
}

// ResolvePersonal resolves a path in the caller's own space.
func (r *Resolver) ResolvePersonal(userID, rel string) (*Resolved, error) {
	root := r.spaces.PersonalRootFor(userID)
	return r.finish(root, rel, models.SpacePersonal, nil)
}

// ResolveVolume resolves a volume-space path. For a non-admin with the
// user-volumes feature active, volume carries the caller's assignment and rel
// is the path beneath its label; otherwise volume is nil and rel is relative
// to the shared volume root.
func (r *Resolver) ResolveVolume(volume *models.UserVolume, rel string) (*Resolved, error) {
	root := r.spaces.VolumeRoot
	if volume != nil {
		root = volume.RealRootPath
	}
	return r.finish(root, rel, models.SpaceVolume, nil)
}

// ResolveShare resolves a path inside a share, anchoring at the share's
// source location. ownerVolume is the share owner's user-volume when the
// source sits in the volume space under the user-volumes feature; it is only
// used to locate the real root.
func (r *Resolver) ResolveShare(share *models.Share, ownerVolume *models.UserVolume, inner string) (*Resolved, error) {
	var root string
	sourceRel := share.SourcePath

	switch share.SourceSpace {
	case models.SpacePersonal:
		root = r.spaces.PersonalRootFor(share.OwnerID)
	case models.SpaceVolume:
		if ownerVolume != nil {
			root = ownerVolume.RealRootPath
			// SourcePath starts with the owner's label; strip it.
			sourceRel = stripLabel(sourceRel, ownerVolume.Label)
		} else {
			root = r.spaces.VolumeRoot
		}
	default:
		return nil, fmt.Errorf("share %s has invalid source space %q", share.ID, share.SourceSpace)
	}

	if !share.IsDirectory {
		// A file share exposes exactly one entry. The only valid inner paths
		// are the share root and the file's own name.
		if inner != "" && inner != path.Base(sourceRel) {
			return nil, ErrPathNotFound
		}
		resolved, err := r.finish(root, sourceRel, models.SpaceShare, share)
		if err != nil {
			return nil, err
		}
		resolved.ShareFile = true
		return resolved, nil
	}

	resolved, err := r.finish(root, joinLogical(sourceRel, inner), models.SpaceShare, share)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// ShareEntries lists a resolved share location. Directory shares list the
// directory; file shares synthesize a single-entry listing of the file
// itself.
func (r *Resolver) ShareEntries(resolved *Resolved) ([]fs.FileInfo, error) {
	if resolved.ShareFile {
		info, err := r.fs.Stat(resolved.AbsolutePath)
		if err != nil {
			return nil, notFoundOr(err)
		}
		return []fs.FileInfo{info}, nil
	}
	entries, err := afero.ReadDir(r.fs, resolved.AbsolutePath)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return entries, nil
}

// finish joins root and rel, re-validates containment, and verifies the
// location exists. The containment check runs on the joined, cleaned absolute
// path as defense in depth against any normalization bug upstream.
func (r *Resolver) finish(root, rel string, space models.Space, share *models.Share) (*Resolved, error) {
	abs, err := joinWithinRoot(root, rel)
	if err != nil {
		return nil, err
	}
	if _, err := r.fs.Stat(abs); err != nil {
		return nil, notFoundOr(err)
	}
	return &Resolved{
		AbsolutePath: abs,
		Root:         filepath.Clean(root),
		RelativePath: rel,
		Space:        space,
		Share:        share,
	}, nil
}

// joinWithinRoot joins a relative path onto a root and fails with
// ErrPathEscapesRoot unless the cleaned result is still inside the root.
func joinWithinRoot(root, rel string) (string, error) {
	cleanRoot := filepath.Clean(root)
	abs := filepath.Clean(filepath.Join(cleanRoot, filepath.FromSlash(rel)))
	if abs != cleanRoot && !strings.HasPrefix(abs, cleanRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q outside %q", ErrPathEscapesRoot, rel, cleanRoot)
	}
	return abs, nil
}

func stripLabel(sourceRel, label string) string {
	if sourceRel == label {
		return ""
	}
	return strings.TrimPrefix(sourceRel, label+"/")
}

func notFoundOr(err error) error {
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	return err
}
