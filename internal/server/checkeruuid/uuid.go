// Package checkeruuid generates and validates checker identifiers.
//
// A checker UUID has the shape "<scheme>:<id>". The scheme names the system
// that owns the checker, the id is opaque and may itself contain colons.
package checkeruuid

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/google/uuid"
)

var schemePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// newRandom is a seam for tests.
var newRandom = uuid.NewRandom

// Generate returns a fresh checker UUID in the given scheme. The id part is
// a random (version 4) UUID.
func Generate(scheme string) (string, error) {
	if !schemePattern.MatchString(scheme) {
		return "", fmt.Errorf("invalid checker UUID scheme %q", scheme)
	}
	id, err := newRandom()
	if err != nil {
		return "", fmt.Errorf("generate checker UUID: %w", err)
	}
	return scheme + ":" + id.String(), nil
}

// Parse validates s and returns it unchanged.
func Parse(s string) (string, error) {
	if !IsUUID(s) {
		return "", common.InvalidUUID(s)
	}
	return s, nil
}

// IsUUID reports whether s has the "<scheme>:<id>" shape.
func IsUUID(s string) bool {
	scheme, id, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return false
	}
	if !schemePattern.MatchString(scheme) {
		return false
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Scheme returns the scheme part of a valid checker UUID.
func Scheme(s string) string {
	scheme, _, _ := strings.Cut(s, ":")
	return scheme
}
