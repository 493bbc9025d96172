// Package models defines server-side data models persisted in the database.
package models

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/dmitrijs2005/checkers/internal/common"
)

// CheckerStatus tells whether a checker is active on its repository.
type CheckerStatus string

const (
	StatusEnabled  CheckerStatus = "ENABLED"
	StatusDisabled CheckerStatus = "DISABLED"
)

// ParseCheckerStatus converts the wire representation to a CheckerStatus.
func ParseCheckerStatus(s string) (CheckerStatus, error) {
	switch CheckerStatus(s) {
	case StatusEnabled, StatusDisabled:
		return CheckerStatus(s), nil
	}
	return "", common.InvalidStatus(s)
}

// BlockingCondition is a condition under which a checker blocks submission.
type BlockingCondition string

const (
	BlockingStateNotPassing BlockingCondition = "STATE_NOT_PASSING"
)

// ParseBlockingCondition converts the wire representation to a BlockingCondition.
func ParseBlockingCondition(s string) (BlockingCondition, error) {
	switch BlockingCondition(s) {
	case BlockingStateNotPassing:
		return BlockingCondition(s), nil
	}
	return "", common.InvalidBlockingCondition(s)
}

// NormalizeBlocking returns the conditions sorted and without duplicates, so
// that two sets with the same members compare equal.
func NormalizeBlocking(in []BlockingCondition) []BlockingCondition {
	out := make([]BlockingCondition, 0, len(in))
	out = append(out, in...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Checker is the persisted state of a checker at one revision.
//
// Optional string fields use "" for unset: the validators never produce an
// empty value for a set field.
type Checker struct {
	UUID        string              `json:"uuid"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	URL         string              `json:"url,omitempty"`
	Repository  string              `json:"repository"`
	Status      CheckerStatus       `json:"status"`
	Blocking    []BlockingCondition `json:"blocking"`
	Query       string              `json:"query,omitempty"`
	Created     time.Time           `json:"created"`
	Updated     time.Time           `json:"updated"`
	// RefState identifies the revision this state was read from.
	RefState string `json:"ref_state,omitempty"`
}

// Content returns the canonical JSON encoding of c as stored in a revision.
// The RefState is left out since it is derived from the content.
func (c *Checker) Content() ([]byte, error) {
	out := c.Clone()
	out.RefState = ""
	out.Blocking = NormalizeBlocking(out.Blocking)
	out.Created = out.Created.UTC()
	out.Updated = out.Updated.UTC()
	return json.Marshal(out)
}

// Clone returns a deep copy of c.
func (c *Checker) Clone() *Checker {
	out := *c
	out.Blocking = slices.Clone(c.Blocking)
	return &out
}

// IsEnabled reports whether the checker counts as attached to its repository.
func (c *Checker) IsEnabled() bool {
	return c.Status == StatusEnabled
}

// Equal compares two checkers field by field. Blocking conditions are
// compared as sets.
func (c *Checker) Equal(o *Checker) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.UUID == o.UUID &&
		c.Name == o.Name &&
		c.Description == o.Description &&
		c.URL == o.URL &&
		c.Repository == o.Repository &&
		c.Status == o.Status &&
		slices.Equal(NormalizeBlocking(c.Blocking), NormalizeBlocking(o.Blocking)) &&
		c.Query == o.Query &&
		c.Created.Equal(o.Created) &&
		c.Updated.Equal(o.Updated) &&
		c.RefState == o.RefState
}
