package revisions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var (
	committedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	columns     = []string{"ref_state", "parent_ref_state", "checker_uuid", "message", "author_name", "author_email", "committed_at", "content"}
)

func TestAppend_FirstRevisionHasNullParent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+checker_revisions`).
		WithArgs("r1", nil, "checks:abc", models.MessageCreateChecker, "Admin", "admin@example.com", committedAt, `{"uuid":"checks:abc"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), &models.Revision{
		RefState:    "r1",
		CheckerUUID: "checks:abc",
		Message:     models.MessageCreateChecker,
		Author:      models.Author{Name: "Admin", Email: "admin@example.com"},
		CommittedAt: committedAt,
		Content:     []byte(`{"uuid":"checks:abc"}`),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_WithParent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+checker_revisions`).
		WithArgs("r2", "r1", "checks:abc", models.MessageUpdateChecker, "Admin", "admin@example.com", committedAt, "{}").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Append(context.Background(), &models.Revision{
		RefState:    "r2",
		Parent:      "r1",
		CheckerUUID: "checks:abc",
		Message:     models.MessageUpdateChecker,
		Author:      models.Author{Name: "Admin", Email: "admin@example.com"},
		CommittedAt: committedAt,
		Content:     []byte("{}"),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAppend_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+checker_revisions`).WillReturnError(errors.New("boom"))

	err := repo.Append(context.Background(), &models.Revision{RefState: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestLatest_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("r2", "r1", "checks:abc", models.MessageUpdateChecker, "Admin", "admin@example.com", committedAt, "{}")
	mock.ExpectQuery(`(?s)FROM\s+checker_revisions\s+WHERE\s+checker_uuid\s*=\s*\$1\s+ORDER\s+BY\s+seq\s+DESC\s+LIMIT\s+1`).
		WithArgs("checks:abc").
		WillReturnRows(rows)

	rev, err := repo.Latest(context.Background(), "checks:abc")
	require.NoError(t, err)
	assert.Equal(t, "r2", rev.RefState)
	assert.Equal(t, "r1", rev.Parent)
	assert.Equal(t, models.MessageUpdateChecker, rev.Message)
	assert.Equal(t, "Admin", rev.Author.Name)
	assert.Equal(t, []byte("{}"), rev.Content)
}

func TestLatest_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+checker_revisions`).WithArgs("checks:none").WillReturnError(sql.ErrNoRows)

	_, err := repo.Latest(context.Background(), "checks:none")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLatest_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+checker_revisions`).WillReturnError(errors.New("boom"))

	_, err := repo.Latest(context.Background(), "checks:abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("r2", "r1", "checks:abc", models.MessageUpdateChecker, "Admin", "admin@example.com", committedAt.Add(time.Minute), "{}").
		AddRow("r1", nil, "checks:abc", models.MessageCreateChecker, "Admin", "admin@example.com", committedAt, "{}")
	mock.ExpectQuery(`(?s)FROM\s+checker_revisions.*ORDER\s+BY\s+seq\s+DESC`).
		WithArgs("checks:abc").
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), "checks:abc")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[0].RefState)
	assert.Equal(t, "", got[1].Parent)
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+checker_revisions`).WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background(), "checks:abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to select revisions")
}
