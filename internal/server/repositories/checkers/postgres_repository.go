// Package checkers provides the PostgreSQL-backed current-state table of the
// checker record store.
package checkers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// PostgresRepository implements checker storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `uuid, name, description, url, repository, status, blocking, query, created, updated, ref_state`

type scanner interface {
	Scan(dest ...any) error
}

func scanChecker(row scanner) (*models.Checker, error) {
	var (
		c                       models.Checker
		description, url, query sql.NullString
		status, blocking        string
	)
	err := row.Scan(&c.UUID, &c.Name, &description, &url, &c.Repository, &status, &blocking, &query,
		&c.Created, &c.Updated, &c.RefState)
	if err != nil {
		return nil, err
	}
	c.Description = description.String
	c.URL = url.String
	c.Query = query.String
	c.Status = models.CheckerStatus(status)
	if err := json.Unmarshal([]byte(blocking), &c.Blocking); err != nil {
		return nil, fmt.Errorf("decode blocking conditions of %s: %w", c.UUID, err)
	}
	return &c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func encodeBlocking(in []models.BlockingCondition) (string, error) {
	b, err := json.Marshal(models.NormalizeBlocking(in))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Get returns the checker with the given UUID or a not-found error.
func (r *PostgresRepository) Get(ctx context.Context, uuid string) (*models.Checker, error) {
	query := `SELECT ` + selectColumns + ` FROM checkers WHERE uuid = $1`

	c, err := scanChecker(r.db.QueryRowContext(ctx, query, uuid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.CheckerNotFound(uuid)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// List returns all checkers ordered by UUID.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Checker, error) {
	query := `SELECT ` + selectColumns + ` FROM checkers ORDER BY uuid`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select checkers: %w", err)
	}
	defer rows.Close()

	var result []*models.Checker
	for rows.Next() {
		c, err := scanChecker(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores a new checker. A checker with the same UUID yields an
// already-exists error.
func (r *PostgresRepository) Insert(ctx context.Context, c *models.Checker) error {
	blocking, err := encodeBlocking(c.Blocking)
	if err != nil {
		return fmt.Errorf("encode blocking conditions: %w", err)
	}

	query := `
		INSERT INTO checkers (uuid, name, description, url, repository, status, blocking, query, created, updated, ref_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		c.UUID, c.Name, nullString(c.Description), nullString(c.URL), c.Repository, string(c.Status),
		blocking, nullString(c.Query), c.Created, c.Updated, c.RefState)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.CheckerAlreadyExists(c.UUID)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update overwrites the stored checker, guarded by the ref state the caller
// loaded. If another writer got there first, no row matches and a
// concurrent-modification error is returned.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Checker, expectedRefState string) error {
	blocking, err := encodeBlocking(c.Blocking)
	if err != nil {
		return fmt.Errorf("encode blocking conditions: %w", err)
	}

	query := `
		UPDATE checkers SET
			name = $2,
			description = $3,
			url = $4,
			repository = $5,
			status = $6,
			blocking = $7,
			query = $8,
			updated = $9,
			ref_state = $10
		WHERE uuid = $1 AND ref_state = $11
	`
	res, err := r.db.ExecContext(ctx, query,
		c.UUID, c.Name, nullString(c.Description), nullString(c.URL), c.Repository, string(c.Status),
		blocking, nullString(c.Query), c.Updated, c.RefState, expectedRefState)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ConcurrentModification(c.UUID)
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
