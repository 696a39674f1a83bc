package access

import (
	"strings"

	"github.com/akulov/spacefs/pkg/models"
)

// RuleSet evaluates an ordered admin rule list against logical paths.
//
// The slice order is the admin-configured priority order: the first rule
// whose path matches wins, even when a later rule matches more specifically.
// The engine never re-sorts or deduplicates the list.
type RuleSet []models.AccessRule

// PermissionFor returns the permission of the first matching rule, or
// RuleReadWrite when no rule matches.
//
// A non-recursive rule matches only the exact path. A recursive rule matches
// the path itself and everything beneath it; a recursive rule with an empty
// path matches the whole tree.
func (rs RuleSet) PermissionFor(logicalPath string) models.RulePermission {
	for _, rule := range rs {
		if ruleMatches(rule, logicalPath) {
			return rule.Permission
		}
	}
	return models.RuleReadWrite
}

func ruleMatches(rule models.AccessRule, logicalPath string) bool {
	if logicalPath == rule.Path {
		return true
	}
	if !rule.Recursive {
		return false
	}
	if rule.Path == "" {
		return true
	}
	return strings.HasPrefix(logicalPath, rule.Path+"/")
}
