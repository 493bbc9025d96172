package revisions

import (
	"context"

	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// Repository is the append-only commit log of checker revisions.
type Repository interface {
	Append(ctx context.Context, rev *models.Revision) error
	Latest(ctx context.Context, checkerUUID string) (*models.Revision, error)
	List(ctx context.Context, checkerUUID string) ([]*models.Revision, error)
}
