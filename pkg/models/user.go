package models

// User is the opaque caller identity supplied by the authentication layer.
//
// The access engine never creates or mutates users; it only reads the ID and
// roles to scope volume lookups and admin bypasses.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// RoleAdmin marks a user as administrator.
const RoleAdmin = "admin"

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
