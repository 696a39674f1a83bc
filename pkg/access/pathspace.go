// Package access implements the SpaceFS access-control and logical-path
// resolution engine.
//
// Every file operation passes through this package exactly once: a logical
// path ("volume/...", "personal/...", "share/<token>/...") is classified into
// its space, the caller's rights there are decided from the current admin
// rules, user-volume assignments and share state, and only then is the path
// resolved to a real filesystem location that is re-validated to sit inside
// its owning root. Nothing here caches a decision: rules, shares and expiry
// are re-read from the store on every call.
package access

import (
	"errors"
	"path"
	"strings"

	"github.com/akulov/spacefs/pkg/models"
)

// Path classification faults. These indicate malformed input, not a policy
// denial; the AccessManager maps ErrUnknownSpace to a denial per its contract
// while direct parser consumers see the typed error.
var (
	// ErrUnknownSpace means the first path segment is not a known space.
	ErrUnknownSpace = errors.New("unknown path space")

	// ErrUnsafePath means the path carries traversal segments or absolute
	// markers and was rejected before space classification.
	ErrUnsafePath = errors.New("unsafe path")
)

// ParsedPath is the single normalized form of a logical path that every
// downstream consumer works from, so no two components ever disagree on what
// a path means.
type ParsedPath struct {
	// Space is the classified namespace.
	Space models.Space

	// Rest is the normalized relative path within the space. Empty means the
	// space root. For the share space this is empty; see ShareToken/InnerPath.
	Rest string

	// ShareToken is the public share token (share space only).
	ShareToken string

	// InnerPath is the normalized path inside a directory share (share space
	// only; empty for the share root or file shares).
	InnerPath string
}

// Logical reconstructs the normalized logical path, suitable for rule
// evaluation.
func (p ParsedPath) Logical() string {
	switch p.Space {
	case models.SpaceShare:
		return joinLogical(string(p.Space), p.ShareToken, p.InnerPath)
	default:
		return joinLogical(string(p.Space), p.Rest)
	}
}

// ParsePath splits a logical path into its space and normalized remainder.
//
// Inputs containing ".." segments, backslashes or absolute-path markers are
// rejected with ErrUnsafePath before any space classification happens. An
// unrecognized first segment yields ErrUnknownSpace.
func ParsePath(logical string) (ParsedPath, error) {
	if err := checkSafe(logical); err != nil {
		return ParsedPath{}, err
	}

	trimmed := strings.Trim(logical, "/")
	if trimmed == "" {
		return ParsedPath{}, ErrUnknownSpace
	}

	first, rest := splitFirst(trimmed)
	space := models.Space(first)
	if !space.Valid() {
		return ParsedPath{}, ErrUnknownSpace
	}

	parsed := ParsedPath{Space: space}
	switch space {
	case models.SpaceShare:
		token, inner := splitFirst(rest)
		parsed.ShareToken = token
		parsed.InnerPath = normalizeRel(inner)
	default:
		parsed.Rest = normalizeRel(rest)
	}
	return parsed, nil
}

// NormalizeRelPath cleans a caller-supplied relative path, rejecting anything
// that is absolute or escapes upward. The empty string means the root.
func NormalizeRelPath(p string) (string, error) {
	if err := checkSafe(p); err != nil {
		return "", err
	}
	return normalizeRel(strings.Trim(p, "/")), nil
}

// checkSafe rejects traversal and absolute markers before any other handling.
func checkSafe(p string) error {
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return ErrUnsafePath
	}
	if len(p) >= 2 && p[1] == ':' {
		// Windows drive letter
		return ErrUnsafePath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return ErrUnsafePath
		}
	}
	return nil
}

// normalizeRel assumes the input already passed checkSafe.
func normalizeRel(p string) string {
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == "/" {
		return ""
	}
	return strings.Trim(cleaned, "/")
}

func splitFirst(p string) (string, string) {
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], strings.Trim(p[i+1:], "/")
	}
	return p, ""
}

func joinLogical(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return path.Join(nonEmpty...)
}
