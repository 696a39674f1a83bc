// Package models provides shared domain types for the SpaceFS access engine.
//
// This package contains all data models persisted by the store layer,
// including shares, share permissions, guest sessions, user volumes, trash
// items and settings. It provides a single source of truth for domain types
// with GORM annotations for database persistence.
package models

// Space identifies which logical namespace a path belongs to.
type Space string

const (
	// SpaceVolume is the administrator-defined shared volume space.
	SpaceVolume Space = "volume"

	// SpacePersonal is the per-user personal space.
	SpacePersonal Space = "personal"

	// SpaceShare is the space reached through share links.
	SpaceShare Space = "share"
)

// Valid reports whether the space is one of the known namespaces.
func (s Space) Valid() bool {
	switch s {
	case SpaceVolume, SpacePersonal, SpaceShare:
		return true
	}
	return false
}

// AccessMode is the coarse access level attached to volumes and shares.
type AccessMode string

const (
	// AccessReadOnly allows reading and downloading only.
	AccessReadOnly AccessMode = "ro"

	// AccessReadWrite allows the full set of mutating operations.
	AccessReadWrite AccessMode = "rw"
)

// Valid reports whether the mode is a known access mode.
func (m AccessMode) Valid() bool {
	return m == AccessReadOnly || m == AccessReadWrite
}

// SharingType controls who may open a share link.
type SharingType string

const (
	// SharingAnyone admits any authenticated user or a verified guest session.
	SharingAnyone SharingType = "anyone"

	// SharingUsers admits only the owner and explicitly listed users.
	SharingUsers SharingType = "users"
)

// Valid reports whether the sharing type is known.
func (t SharingType) Valid() bool {
	return t == SharingAnyone || t == SharingUsers
}

// AllModels returns every model that participates in schema migration.
func AllModels() []any {
	return []any{
		&Share{},
		&SharePermission{},
		&GuestSession{},
		&UserVolume{},
		&TrashItem{},
		&Setting{},
	}
}
