package projects

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/checkers/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Canonicalize(name string) string {
	return Canonicalize(name)
}

// Exists reports whether the canonical form of name is a known repository.
func (r *PostgresRepository) Exists(ctx context.Context, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM projects WHERE name = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, Canonicalize(name)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create registers a repository. Creating an existing one is a no-op.
func (r *PostgresRepository) Create(ctx context.Context, name string) error {
	query :=
		`INSERT INTO projects (name)
		 VALUES ($1)
		 ON CONFLICT (name) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, Canonicalize(name)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
