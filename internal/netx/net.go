// Package netx holds network-facing helpers shared by the server packages.
package netx

import (
	"net/url"
	"strings"

	"github.com/dmitrijs2005/checkers/internal/common"
)

// CleanURL trims raw and checks that it is an absolute http or https URL.
// An empty result means the URL is unset.
func CleanURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	u, err := url.Parse(trimmed)
	if err != nil || strings.ContainsRune(trimmed, 0) {
		return "", common.InvalidURL(trimmed)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", common.InvalidURL(trimmed)
	}

	if u.Host == "" {
		return "", common.InvalidURL(trimmed)
	}

	return trimmed, nil
}
