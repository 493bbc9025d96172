// Package revisions stores the commit log of checker revisions in PostgreSQL.
package revisions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `ref_state, parent_ref_state, checker_uuid, message, author_name, author_email, committed_at, content`

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(row scanner) (*models.Revision, error) {
	var (
		rev     models.Revision
		parent  sql.NullString
		content string
	)
	err := row.Scan(&rev.RefState, &parent, &rev.CheckerUUID, &rev.Message,
		&rev.Author.Name, &rev.Author.Email, &rev.CommittedAt, &content)
	if err != nil {
		return nil, err
	}
	rev.Parent = parent.String
	rev.Content = []byte(content)
	return &rev, nil
}

// Append writes a new revision. Revisions are never updated in place.
func (r *PostgresRepository) Append(ctx context.Context, rev *models.Revision) error {
	query := `
		INSERT INTO checker_revisions (ref_state, parent_ref_state, checker_uuid, message, author_name, author_email, committed_at, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	parent := sql.NullString{String: rev.Parent, Valid: rev.Parent != ""}

	_, err := r.db.ExecContext(ctx, query, rev.RefState, parent, rev.CheckerUUID, rev.Message,
		rev.Author.Name, rev.Author.Email, rev.CommittedAt, string(rev.Content))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Latest returns the newest revision of the checker.
func (r *PostgresRepository) Latest(ctx context.Context, checkerUUID string) (*models.Revision, error) {
	query := `SELECT ` + selectColumns + ` FROM checker_revisions
		WHERE checker_uuid = $1
		ORDER BY seq DESC
		LIMIT 1`

	rev, err := scanRevision(r.db.QueryRowContext(ctx, query, checkerUUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.CheckerNotFound(checkerUUID)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rev, nil
}

// List returns every revision of the checker, newest first.
func (r *PostgresRepository) List(ctx context.Context, checkerUUID string) ([]*models.Revision, error) {
	query := `SELECT ` + selectColumns + ` FROM checker_revisions
		WHERE checker_uuid = $1
		ORDER BY seq DESC`

	rows, err := r.db.QueryContext(ctx, query, checkerUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to select revisions: %w", err)
	}
	defer rows.Close()

	var result []*models.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
