// Package query validates the change-selection queries attached to checkers.
//
// A query is a boolean combination (AND, OR, NOT, "-", parentheses and
// juxtaposition) of operator terms such as "f:foo" or "branch:master". Only a
// fixed vocabulary of operators is accepted; operators that would let a
// checker select changes outside its own repository are not.
package query

import (
	"strings"

	"github.com/dmitrijs2005/checkers/internal/common"
)

var allowedOperators = map[string]struct{}{
	"added":          {},
	"after":          {},
	"age":            {},
	"author":         {},
	"before":         {},
	"branch":         {},
	"committer":      {},
	"deleted":        {},
	"delta":          {},
	"dir":            {},
	"directory":      {},
	"exact":          {},
	"ext":            {},
	"extension":      {},
	"f":              {},
	"file":           {},
	"footer":         {},
	"has":            {},
	"hashtag":        {},
	"intopic":        {},
	"is":             {},
	"label":          {},
	"message":        {},
	"onlyextensions": {},
	"onlyexts":       {},
	"ownerin":        {},
	"path":           {},
	"r":              {},
	"ref":            {},
	"reviewer":       {},
	"reviewerin":     {},
	"size":           {},
	"status":         {},
	"submittable":    {},
	"topic":          {},
	"unresolved":     {},
	"wip":            {},
}

// IsAllowedOperator reports whether op may appear in a checker query.
func IsAllowedOperator(op string) bool {
	_, ok := allowedOperators[strings.ToLower(op)]
	return ok
}

// Clean trims q and validates its syntax and operators. The returned query
// is the trimmed input; an empty result means the query is unset.
//
// The term ceiling is not checked here because it depends on the configured
// index; see CheckTermLimit.
func Clean(q string) (string, error) {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return "", nil
	}
	if strings.ContainsRune(trimmed, 0) {
		return "", common.InvalidQuery(strings.ReplaceAll(trimmed, "\x00", `\x00`), "NUL character")
	}
	if _, err := Parse(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// Parse parses q and rejects unsupported operators.
func Parse(q string) (*Node, error) {
	n, err := parse(q)
	if err != nil {
		return nil, common.InvalidQuery(q, err.Error())
	}
	err = n.Walk(func(term *Node) error {
		if !IsAllowedOperator(term.Operator) {
			return common.UnsupportedOperator(term.Operator)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// CountTerms returns the number of operator terms in q. An empty query has
// no terms.
func CountTerms(q string) (int, error) {
	if strings.TrimSpace(q) == "" {
		return 0, nil
	}
	n, err := Parse(strings.TrimSpace(q))
	if err != nil {
		return 0, err
	}
	return n.Terms(), nil
}

// CheckTermLimit fails when the cleaned query q of the given checker has more
// terms than maxTerms. A non-positive maxTerms disables the check.
func CheckTermLimit(checkerUUID, q string, maxTerms int) error {
	if maxTerms <= 0 || q == "" {
		return nil
	}
	terms, err := CountTerms(q)
	if err != nil {
		return err
	}
	if terms > maxTerms {
		return common.TooManyTerms(checkerUUID, q)
	}
	return nil
}
