// Package checkersbyrepo maintains the secondary index from a repository to
// the checkers attached to it. Only ENABLED checkers are attached.
package checkersbyrepo

import (
	"context"

	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// Repository defines operations on the repository index.
type Repository interface {
	// Add attaches checkerUUID to repository. Adding an existing pair is not an error.
	Add(ctx context.Context, repository, checkerUUID string) error

	// Remove detaches checkerUUID from repository. Removing a missing pair is not an error.
	Remove(ctx context.Context, repository, checkerUUID string) error

	// CheckersOf returns the UUIDs attached to repository in ascending order.
	CheckersOf(ctx context.Context, repository string) ([]string, error)

	// RepositoriesWithCheckers returns the hashes of all repositories that
	// have at least one attached checker.
	RepositoriesWithCheckers(ctx context.Context) ([]string, error)
}

// Reindex moves checkerUUID between index entries after its repository or
// status changed. It must run in the same transaction as the record write.
func Reindex(ctx context.Context, r Repository, checkerUUID string,
	oldRepository string, oldStatus models.CheckerStatus,
	newRepository string, newStatus models.CheckerStatus) error {

	if oldRepository != "" && oldStatus == models.StatusEnabled {
		if err := r.Remove(ctx, oldRepository, checkerUUID); err != nil {
			return err
		}
	}
	if newStatus == models.StatusEnabled {
		if err := r.Add(ctx, newRepository, checkerUUID); err != nil {
			return err
		}
	}
	return nil
}
