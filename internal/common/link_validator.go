package common

import (
	"errors"
	"net/url"
	"slices"
	"strings"
)

// ErrUnsafeLink is returned when a link with a non-allowed scheme is inserted
var ErrUnsafeLink = errors.New("허용되지 않는 링크 형식입니다")

// Schemes the editor accepts for link nodes. Everything else
// (javascript:, data:, ...) is rejected before it reaches the tree.
var allowedLinkSchemes = []string{"http", "https", "mailto"}

// ValidateLink validates an href before it is committed to the document.
// Scheme-relative and path-relative hrefs are allowed.
func ValidateLink(href string) error {
	trimmed := strings.TrimSpace(href)
	if trimmed == "" {
		return ErrUnsafeLink
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return ErrUnsafeLink
	}

	if u.Scheme == "" {
		return nil
	}

	if !slices.Contains(allowedLinkSchemes, strings.ToLower(u.Scheme)) {
		return ErrUnsafeLink
	}

	return nil
}
