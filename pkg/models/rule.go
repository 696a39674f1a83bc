package models

import "time"

// RulePermission is the access level an admin path rule grants.
type RulePermission string

const (
	// RuleReadWrite grants full access (the default when no rule matches).
	RuleReadWrite RulePermission = "rw"

	// RuleReadOnly caps access at read-only.
	RuleReadOnly RulePermission = "ro"

	// RuleHidden denies all access, including to admins and through shares.
	RuleHidden RulePermission = "hidden"
)

// Valid reports whether the permission is a known rule permission.
func (p RulePermission) Valid() bool {
	switch p {
	case RuleReadWrite, RuleReadOnly, RuleHidden:
		return true
	}
	return false
}

// AccessRule is one admin-configured path rule.
//
// Path is a normalized logical path (no leading slash, no ".." segments;
// empty string matches the root). Rules live as an ordered JSON document in
// the settings table; list order is priority order and the first matching
// rule wins, so the core never re-sorts them.
type AccessRule struct {
	ID         string         `json:"id"`
	Path       string         `json:"path"`
	Recursive  bool           `json:"recursive"`
	Permission RulePermission `json:"permission"`
}

// Setting is one key/value entry of the mutable settings document store.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for Setting.
func (Setting) TableName() string {
	return "settings"
}

// SettingAccessRules is the settings key holding the ordered AccessRule
// JSON document.
const SettingAccessRules = "access_rules"
