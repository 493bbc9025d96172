// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/server/migrations"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkers"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkersbyrepo"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/projects"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/revisions"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Checkers returns the current-state checker table bound to the provided DBTX.
func (m *PostgresRepositoryManager) Checkers(db dbx.DBTX) checkers.Repository {
	return checkers.NewPostgresRepository(db)
}

// Revisions returns the checker commit log bound to the provided DBTX.
func (m *PostgresRepositoryManager) Revisions(db dbx.DBTX) revisions.Repository {
	return revisions.NewPostgresRepository(db)
}

// Index returns the repository→checkers index bound to the provided DBTX.
func (m *PostgresRepositoryManager) Index(db dbx.DBTX) checkersbyrepo.Repository {
	return checkersbyrepo.NewPostgresRepository(db)
}

// Projects returns the repository-existence lookup bound to the provided DBTX.
func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
// Repositories are bound to a handle per call, so the manager holds no state.
func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}
