package logger

// Standard field keys for structured logging. Use these consistently across
// log statements so access decisions, resolutions and trash operations can be
// queried uniformly.
const (
	// Access decisions
	KeySpace   = "space"   // Logical space: volume, personal, share
	KeyPath    = "path"    // Logical path as received from the caller
	KeyReason  = "reason"  // Denial reason
	KeyUser    = "user"    // User ID
	KeyShare   = "share"   // Share token
	KeySession = "session" // Guest session ID

	// Filesystem operations
	KeyAbsPath  = "abs_path" // Resolved absolute path
	KeySource   = "source"   // Source path for move operations
	KeyTarget   = "target"   // Destination path for move operations
	KeyTrashDir = "trash_dir"

	// Generic
	KeyError = "error"
	KeyCount = "count"
)
