// Package projects answers whether a repository exists. Checkers may only be
// attached to repositories known here.
package projects

import (
	"context"
	"strings"
)

// Lookup is the repository-existence contract used when validating a
// checker's repository field.
type Lookup interface {
	Exists(ctx context.Context, name string) (bool, error)
	Canonicalize(name string) string
}

// Repository is the writable side of the projects table.
type Repository interface {
	Lookup
	Create(ctx context.Context, name string) error
}

// Canonicalize returns the canonical form of a repository name: surrounding
// whitespace, trailing slashes and a trailing ".git" are removed.
func Canonicalize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, "/")
	name = strings.TrimSuffix(name, ".git")
	return strings.TrimRight(name, "/")
}
