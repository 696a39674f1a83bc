package access

import "github.com/akulov/spacefs/pkg/models"

// Denial reasons. These are values, not errors: a denial is the expected
// outcome of a policy decision. The calling layer translates them into HTTP
// statuses; share denials deliberately take a not-found shape so a private
// share's existence is never leaked.
const (
	ReasonUnknownSpace        = "Unknown path space"
	ReasonAuthRequired        = "Authentication required"
	ReasonGuestsNoVolumes     = "Guests cannot access volumes"
	ReasonGuestsSharesOnly    = "Guest sessions can only access shares"
	ReasonNoVolumeAccess      = "You do not have access to this volume"
	ReasonPathHidden          = "Path is hidden"
	ReasonShareTokenRequired  = "Share token required"
	ReasonShareNotFound       = "Share not found"
	ReasonShareExpired        = "Share has expired"
	ReasonShareAccessRequired = "Share access required"
)

// Info is the derived access decision for one (caller, logical path) pair.
//
// It is a pure function of current rule/volume/share state at call time and
// is never stored or reused across requests. Share and UserVolume carry the
// rows the manager already fetched so the resolver does not race a second
// lookup against concurrently mutated state.
type Info struct {
	CanAccess       bool `json:"can_access"`
	CanRead         bool `json:"can_read"`
	CanWrite        bool `json:"can_write"`
	CanDelete       bool `json:"can_delete"`
	CanUpload       bool `json:"can_upload"`
	CanCreateFolder bool `json:"can_create_folder"`
	CanShare        bool `json:"can_share"`
	CanDownload     bool `json:"can_download"`

	IsShared bool `json:"is_shared"`

	// EffectivePermission is "rw" or "ro" once access is granted.
	EffectivePermission models.AccessMode `json:"effective_permission,omitempty"`

	// DenialReason is set exactly when CanAccess is false.
	DenialReason string `json:"denial_reason,omitempty"`

	Share      *models.Share      `json:"-"`
	UserVolume *models.UserVolume `json:"-"`
}

// Denied builds a denial decision with the given reason.
func Denied(reason string) *Info {
	return &Info{DenialReason: reason}
}

// granted builds an allowed decision. All mutating capabilities collapse to
// the single read-write flag; there is no finer granularity in this design.
func granted(readWrite, canShare bool) *Info {
	mode := models.AccessReadOnly
	if readWrite {
		mode = models.AccessReadWrite
	}
	return &Info{
		CanAccess:           true,
		CanRead:             true,
		CanWrite:            readWrite,
		CanDelete:           readWrite,
		CanUpload:           readWrite,
		CanCreateFolder:     readWrite,
		CanShare:            canShare,
		CanDownload:         true,
		EffectivePermission: mode,
	}
}
