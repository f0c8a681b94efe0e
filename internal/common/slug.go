package common

import (
	"regexp"
	"strings"
)

// Slug pattern: lowercase latin, digits and hyphens only
var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// IsValidSlug reports whether s is a well-formed URL slug.
// The empty string is not a valid slug; callers coerce it to absent.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// NormalizeSlug trims the slug and returns nil when it is empty so the
// backend stores NULL instead of "".
func NormalizeSlug(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
