package models

import "time"

// Commit messages recorded for checker revisions.
const (
	MessageCreateChecker = "Create checker"
	MessageUpdateChecker = "Update checker"
)

// Author identifies who committed a revision.
type Author struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Revision is one entry of a checker's append-only commit log.
type Revision struct {
	// RefState is the content address of this revision.
	RefState string `json:"ref_state"`
	// Parent is the RefState of the previous revision, empty for the first one.
	Parent      string    `json:"parent,omitempty"`
	CheckerUUID string    `json:"checker_uuid"`
	Message     string    `json:"message"`
	Author      Author    `json:"author"`
	CommittedAt time.Time `json:"committed_at"`
	// Content is the canonical JSON encoding of the checker at this revision.
	Content []byte `json:"content"`
}
