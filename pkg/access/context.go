package access

import "github.com/akulov/spacefs/pkg/models"

// Caller is the identity the authentication layer hands to the engine.
//
// It is a closed sum: Anonymous, AuthenticatedUser or Guest. Making the three
// shapes explicit keeps every space/sharing-type branch in the manager an
// exhaustive type switch instead of a pair of nullable fields.
type Caller interface {
	caller()
}

// Anonymous is a request with no identity at all.
type Anonymous struct{}

func (Anonymous) caller() {}

// AuthenticatedUser is a request carrying a verified user.
type AuthenticatedUser struct {
	User *models.User
}

func (AuthenticatedUser) caller() {}

// Guest is an anonymous visitor holding a guest session for one share.
type Guest struct {
	Session *models.GuestSession
}

func (Guest) caller() {}

// UserOf extracts the authenticated user from a caller, if any.
func UserOf(c Caller) (*models.User, bool) {
	if u, ok := c.(AuthenticatedUser); ok && u.User != nil {
		return u.User, true
	}
	return nil, false
}

// isAdmin reports whether the caller is an authenticated admin.
func isAdmin(c Caller) bool {
	u, ok := UserOf(c)
	return ok && u.IsAdmin()
}
