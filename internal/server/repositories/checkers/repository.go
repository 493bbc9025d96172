package checkers

import (
	"context"

	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// Repository is the current-state table of the checker record store.
type Repository interface {
	Get(ctx context.Context, uuid string) (*models.Checker, error)
	List(ctx context.Context) ([]*models.Checker, error)
	Insert(ctx context.Context, checker *models.Checker) error
	// Update replaces the stored checker if its ref state still equals
	// expectedRefState.
	Update(ctx context.Context, checker *models.Checker, expectedRefState string) error
}
