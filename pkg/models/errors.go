package models

import "errors"

// Common errors for store and registry operations.
var (
	// Share errors
	ErrShareNotFound  = errors.New("share not found")
	ErrDuplicateShare = errors.New("share already exists")

	// Guest session errors
	ErrGuestSessionNotFound = errors.New("guest session not found")
	ErrGuestSessionExpired  = errors.New("guest session expired")

	// User volume errors
	ErrVolumeNotFound      = errors.New("user volume not found")
	ErrDuplicateVolume     = errors.New("user volume already exists")
	ErrVolumeRootNotDir    = errors.New("volume root is not a directory")
	ErrVolumeRootNotExists = errors.New("volume root does not exist")

	// Trash errors
	ErrTrashItemNotFound = errors.New("trash item not found")
	ErrAlreadyRestored   = errors.New("trash item already restored")
)
