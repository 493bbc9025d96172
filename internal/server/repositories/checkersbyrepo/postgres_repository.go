package checkersbyrepo

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/checkers/internal/cryptox"
	"github.com/dmitrijs2005/checkers/internal/dbx"
)

// PostgresRepository implements Repository over the checkers_by_repository table.
// Entries are keyed by cryptox.RepositoryHash of the repository name; rows are
// deleted when a checker detaches, so empty entries are pruned.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, repository, checkerUUID string) error {
	query := `
		INSERT INTO checkers_by_repository (repository_hash, repository, checker_uuid)
		VALUES ($1, $2, $3)
		ON CONFLICT (repository_hash, checker_uuid) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, cryptox.RepositoryHash(repository), repository, checkerUUID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Remove(ctx context.Context, repository, checkerUUID string) error {
	query := `DELETE FROM checkers_by_repository WHERE repository_hash = $1 AND checker_uuid = $2`

	_, err := r.db.ExecContext(ctx, query, cryptox.RepositoryHash(repository), checkerUUID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CheckersOf(ctx context.Context, repository string) ([]string, error) {
	query := `SELECT checker_uuid FROM checkers_by_repository WHERE repository_hash = $1 ORDER BY checker_uuid`

	return r.selectStrings(ctx, query, cryptox.RepositoryHash(repository))
}

func (r *PostgresRepository) RepositoriesWithCheckers(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT repository_hash FROM checkers_by_repository ORDER BY repository_hash`

	return r.selectStrings(ctx, query)
}

func (r *PostgresRepository) selectStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
