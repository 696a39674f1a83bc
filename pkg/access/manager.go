package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/akulov/spacefs/internal/logger"
	"github.com/akulov/spacefs/pkg/metrics"
	"github.com/akulov/spacefs/pkg/models"
)

// ManagerStore is the persistence surface the manager reads on every call.
// Everything is fetched fresh per decision; the manager holds no caches.
type ManagerStore interface {
	GetAccessRules(ctx context.Context) ([]models.AccessRule, error)
	GetUserVolumeByLabel(ctx context.Context, userID, label string) (*models.UserVolume, error)
	GetShareByToken(ctx context.Context, token string) (*models.Share, error)
	HasSharePermission(ctx context.Context, shareID, userID string) (bool, error)
}

// Manager is the single authority combining admin path rules, user-volume
// assignments, share policy and guest-session validity into one access
// decision per (caller, logical path) pair.
type Manager struct {
	store    ManagerStore
	resolver *Resolver
	spaces   SpacesConfig
	now      func() time.Time
}

// NewManager creates the access manager over the given store and filesystem.
func NewManager(s ManagerStore, fsys afero.Fs, spaces SpacesConfig) *Manager {
	return &Manager{
		store:    s,
		resolver: NewResolver(fsys, spaces),
		spaces:   spaces,
		now:      time.Now,
	}
}

// Resolver exposes the manager's path resolver for collaborators (such as
// the trash service) that already hold an access decision.
func (m *Manager) Resolver() *Resolver {
	return m.resolver
}

// GetAccessInfo decides what the caller may do at a logical path.
//
// Denials come back as an Info with CanAccess=false and a reason; an error
// return always means malformed input or a storage fault, never "no access".
func (m *Manager) GetAccessInfo(ctx context.Context, caller Caller, logicalPath string) (*Info, error) {
	parsed, err := ParsePath(logicalPath)
	if errors.Is(err, ErrUnknownSpace) {
		return m.record("unknown", logicalPath, Denied(ReasonUnknownSpace)), nil
	}
	if err != nil {
		return nil, err
	}
	info, err := m.decide(ctx, caller, parsed)
	if err != nil {
		return nil, err
	}
	return m.record(string(parsed.Space), logicalPath, info), nil
}

// ResolvePathWithAccess combines the access decision with path resolution.
//
// When access is granted, resolution reuses the share and user-volume rows
// the decision already fetched rather than looking them up again, so the two
// halves cannot disagree under a concurrent admin edit. The resolved result
// is nil for a denial and for purely virtual locations (the volume-space root
// under the user-volumes feature, which lists labels rather than a real
// directory).
func (m *Manager) ResolvePathWithAccess(ctx context.Context, caller Caller, logicalPath string) (*Info, *Resolved, error) {
	parsed, err := ParsePath(logicalPath)
	if errors.Is(err, ErrUnknownSpace) {
		return m.record("unknown", logicalPath, Denied(ReasonUnknownSpace)), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	info, err := m.decide(ctx, caller, parsed)
	if err != nil {
		return nil, nil, err
	}
	m.record(string(parsed.Space), logicalPath, info)
	if !info.CanAccess {
		return info, nil, nil
	}

	resolved, err := m.resolve(caller, parsed, info)
	if err != nil {
		return nil, nil, err
	}
	return info, resolved, nil
}

// CanAccess reports whether the caller may reach the logical path at all.
func (m *Manager) CanAccess(ctx context.Context, caller Caller, logicalPath string) (bool, error) {
	info, err := m.GetAccessInfo(ctx, caller, logicalPath)
	if err != nil {
		return false, err
	}
	return info.CanAccess, nil
}

// CanWrite reports whether the caller may mutate the logical path.
func (m *Manager) CanWrite(ctx context.Context, caller Caller, logicalPath string) (bool, error) {
	info, err := m.GetAccessInfo(ctx, caller, logicalPath)
	if err != nil {
		return false, err
	}
	return info.CanWrite, nil
}

// decide runs the per-space state machine on an already-parsed path.
func (m *Manager) decide(ctx context.Context, caller Caller, parsed ParsedPath) (*Info, error) {
	switch parsed.Space {
	case models.SpacePersonal:
		return m.decidePersonal(caller), nil
	case models.SpaceVolume:
		return m.decideVolume(ctx, caller, parsed)
	case models.SpaceShare:
		return m.decideShare(ctx, caller, parsed)
	default:
		return Denied(ReasonUnknownSpace), nil
	}
}

// decidePersonal grants full read-write in the caller's own space. Personal
// space is never rule-restricted in this design.
func (m *Manager) decidePersonal(caller Caller) *Info {
	switch caller.(type) {
	case Guest:
		return Denied(ReasonGuestsSharesOnly)
	case AuthenticatedUser:
		return granted(true, true)
	default:
		return Denied(ReasonAuthRequired)
	}
}

func (m *Manager) decideVolume(ctx context.Context, caller Caller, parsed ParsedPath) (*Info, error) {
	var user *models.User
	switch c := caller.(type) {
	case Guest:
		return Denied(ReasonGuestsNoVolumes), nil
	case AuthenticatedUser:
		user = c.User
	default:
		return Denied(ReasonAuthRequired), nil
	}

	rules, err := m.store.GetAccessRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load access rules: %w", err)
	}
	perm := RuleSet(rules).PermissionFor(parsed.Logical())
	if perm == models.RuleHidden {
		// Admins bypass write-locks but never Hidden.
		return Denied(ReasonPathHidden), nil
	}

	if m.spaces.UserVolumesEnabled && !user.IsAdmin() {
		if parsed.Rest == "" {
			// The space root is a virtual listing of the user's labels.
			return granted(false, true), nil
		}
		label, _ := splitFirst(parsed.Rest)
		volume, err := m.store.GetUserVolumeByLabel(ctx, user.ID, label)
		if errors.Is(err, models.ErrVolumeNotFound) {
			return Denied(ReasonNoVolumeAccess), nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up user volume: %w", err)
		}
		readOnly := volume.ReadOnly() || perm == models.RuleReadOnly
		info := granted(!readOnly, true)
		info.UserVolume = volume
		return info, nil
	}

	readWrite := perm != models.RuleReadOnly || user.IsAdmin()
	return granted(readWrite, true), nil
}

func (m *Manager) decideShare(ctx context.Context, caller Caller, parsed ParsedPath) (*Info, error) {
	if parsed.ShareToken == "" {
		return Denied(ReasonShareTokenRequired), nil
	}

	share, err := m.store.GetShareByToken(ctx, parsed.ShareToken)
	if errors.Is(err, models.ErrShareNotFound) {
		return Denied(ReasonShareNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up share: %w", err)
	}

	now := m.now()
	if share.Expired(now) {
		return Denied(ReasonShareExpired), nil
	}

	switch share.SharingType {
	case models.SharingUsers:
		// Private shares deny with a not-found shape so their existence is
		// never confirmed to outsiders.
		user, ok := UserOf(caller)
		if !ok {
			return Denied(ReasonShareNotFound), nil
		}
		if user.ID != share.OwnerID {
			permitted, err := m.store.HasSharePermission(ctx, share.ID, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check share permission: %w", err)
			}
			if !permitted {
				return Denied(ReasonShareNotFound), nil
			}
		}

	case models.SharingAnyone:
		if _, ok := UserOf(caller); !ok {
			guest, isGuest := caller.(Guest)
			if !isGuest || guest.Session == nil ||
				guest.Session.ShareID != share.ID ||
				guest.Session.Expired(now) {
				// Distinguished denial: callers use it to start the
				// password/verification flow instead of a plain 403.
				return Denied(ReasonShareAccessRequired), nil
			}
		}

	default:
		return nil, fmt.Errorf("share %s has invalid sharing type %q", share.ID, share.SharingType)
	}

	underlying, err := m.underlyingPermission(ctx, share, parsed.InnerPath)
	if err != nil {
		return nil, err
	}
	if underlying.hidden {
		// An admin hiding a path revokes every share into it immediately,
		// without the share being separately edited.
		return Denied(ReasonPathHidden), nil
	}

	readWrite := share.AccessMode == models.AccessReadWrite && !underlying.readOnly
	info := granted(readWrite, false) // no re-sharing from inside a share
	info.IsShared = true
	info.Share = share
	info.UserVolume = underlying.ownerVolume
	return info, nil
}

// underlyingDecision is the admin-rule view of a share's source location.
type underlyingDecision struct {
	readOnly    bool
	hidden      bool
	ownerVolume *models.UserVolume
}

// underlyingPermission recomputes the rules for the share's source path on
// every access. The owner's user-volume is consulted only to locate the real
// root and apply its read-only cap; whether the owner still has access to the
// source is not re-verified.
func (m *Manager) underlyingPermission(ctx context.Context, share *models.Share, inner string) (underlyingDecision, error) {
	var d underlyingDecision
	if share.SourceSpace != models.SpaceVolume {
		// Personal sources are never rule-restricted.
		return d, nil
	}

	rules, err := m.store.GetAccessRules(ctx)
	if err != nil {
		return d, fmt.Errorf("failed to load access rules: %w", err)
	}
	target := joinLogical(string(models.SpaceVolume), share.SourcePath)
	if share.IsDirectory && inner != "" {
		target = joinLogical(target, inner)
	}
	switch RuleSet(rules).PermissionFor(target) {
	case models.RuleHidden:
		d.hidden = true
		return d, nil
	case models.RuleReadOnly:
		d.readOnly = true
	}

	if m.spaces.UserVolumesEnabled {
		label, _ := splitFirst(share.SourcePath)
		volume, err := m.store.GetUserVolumeByLabel(ctx, share.OwnerID, label)
		switch {
		case err == nil:
			d.ownerVolume = volume
			d.readOnly = d.readOnly || volume.ReadOnly()
		case errors.Is(err, models.ErrVolumeNotFound):
			// Owner access is not re-verified; resolution falls back to the
			// shared volume root.
		default:
			return d, fmt.Errorf("failed to look up share owner volume: %w", err)
		}
	}
	return d, nil
}

// resolve turns a granted decision into a filesystem location.
func (m *Manager) resolve(caller Caller, parsed ParsedPath, info *Info) (*Resolved, error) {
	switch parsed.Space {
	case models.SpacePersonal:
		user, _ := UserOf(caller)
		return m.resolver.ResolvePersonal(user.ID, parsed.Rest)

	case models.SpaceVolume:
		if info.UserVolume != nil {
			_, below := splitFirst(parsed.Rest)
			return m.resolver.ResolveVolume(info.UserVolume, below)
		}
		if m.spaces.UserVolumesEnabled && !isAdmin(caller) && parsed.Rest == "" {
			// Virtual label listing, no physical location.
			return nil, nil
		}
		return m.resolver.ResolveVolume(nil, parsed.Rest)

	case models.SpaceShare:
		return m.resolver.ResolveShare(info.Share, info.UserVolume, parsed.InnerPath)

	default:
		return nil, ErrUnknownSpace
	}
}

// record counts and logs the decision, then returns it unchanged.
func (m *Manager) record(space, logicalPath string, info *Info) *Info {
	outcome := "granted"
	if !info.CanAccess {
		outcome = "denied"
		logger.Debug("access denied",
			logger.KeySpace, space,
			logger.KeyPath, logicalPath,
			logger.KeyReason, info.DenialReason)
	}
	metrics.AccessDecisions.WithLabelValues(space, outcome).Inc()
	return info
}
