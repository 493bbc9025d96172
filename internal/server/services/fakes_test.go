package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/cryptox"
	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkers"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkersbyrepo"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/projects"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/revisions"
)

// memStore backs the in-memory repositories handed out by fakeRepoManager.
type memStore struct {
	mu        sync.Mutex
	checkers  map[string]*models.Checker
	revisions []*models.Revision
	index     map[string]map[string]string // hash -> uuid -> repository
	projects  map[string]bool

	// hooks
	beforeUpdate func(st *memStore, c *models.Checker)
	existsErr    error

	writes int
}

func newMemStore(projectNames ...string) *memStore {
	st := &memStore{
		checkers: map[string]*models.Checker{},
		index:    map[string]map[string]string{},
		projects: map[string]bool{},
	}
	for _, p := range projectNames {
		st.projects[p] = true
	}
	return st
}

type memCheckers struct{ st *memStore }

func (r *memCheckers) Get(_ context.Context, uuid string) (*models.Checker, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	c, ok := r.st.checkers[uuid]
	if !ok {
		return nil, common.CheckerNotFound(uuid)
	}
	return c.Clone(), nil
}

func (r *memCheckers) List(context.Context) ([]*models.Checker, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.Checker
	for _, c := range r.st.checkers {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UUID < out[j].UUID })
	return out, nil
}

func (r *memCheckers) Insert(_ context.Context, c *models.Checker) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	if _, ok := r.st.checkers[c.UUID]; ok {
		return common.CheckerAlreadyExists(c.UUID)
	}
	r.st.checkers[c.UUID] = c.Clone()
	r.st.writes++
	return nil
}

func (r *memCheckers) Update(_ context.Context, c *models.Checker, expected string) error {
	if r.st.beforeUpdate != nil {
		r.st.beforeUpdate(r.st, c)
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cur, ok := r.st.checkers[c.UUID]
	if !ok || cur.RefState != expected {
		return common.ConcurrentModification(c.UUID)
	}
	r.st.checkers[c.UUID] = c.Clone()
	r.st.writes++
	return nil
}

type memRevisions struct{ st *memStore }

func (r *memRevisions) Append(_ context.Context, rev *models.Revision) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	cp := *rev
	r.st.revisions = append(r.st.revisions, &cp)
	return nil
}

func (r *memRevisions) List(_ context.Context, uuid string) ([]*models.Revision, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var out []*models.Revision
	for i := len(r.st.revisions) - 1; i >= 0; i-- {
		if r.st.revisions[i].CheckerUUID == uuid {
			out = append(out, r.st.revisions[i])
		}
	}
	return out, nil
}

func (r *memRevisions) Latest(ctx context.Context, uuid string) (*models.Revision, error) {
	revs, _ := r.List(ctx, uuid)
	if len(revs) == 0 {
		return nil, common.CheckerNotFound(uuid)
	}
	return revs[0], nil
}

type memIndex struct{ st *memStore }

func (r *memIndex) Add(_ context.Context, repository, uuid string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	h := cryptox.RepositoryHash(repository)
	if r.st.index[h] == nil {
		r.st.index[h] = map[string]string{}
	}
	r.st.index[h][uuid] = repository
	return nil
}

func (r *memIndex) Remove(_ context.Context, repository, uuid string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	h := cryptox.RepositoryHash(repository)
	delete(r.st.index[h], uuid)
	if len(r.st.index[h]) == 0 {
		delete(r.st.index, h)
	}
	return nil
}

func (r *memIndex) CheckersOf(_ context.Context, repository string) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := []string{}
	for u := range r.st.index[cryptox.RepositoryHash(repository)] {
		out = append(out, u)
	}
	sort.Strings(out)
	return out, nil
}

func (r *memIndex) RepositoriesWithCheckers(context.Context) ([]string, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	out := []string{}
	for h := range r.st.index {
		out = append(out, h)
	}
	sort.Strings(out)
	return out, nil
}

type memProjects struct{ st *memStore }

func (r *memProjects) Canonicalize(name string) string { return projects.Canonicalize(name) }

func (r *memProjects) Exists(_ context.Context, name string) (bool, error) {
	if r.st.existsErr != nil {
		return false, r.st.existsErr
	}
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.projects[projects.Canonicalize(name)], nil
}

func (r *memProjects) Create(_ context.Context, name string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	r.st.projects[projects.Canonicalize(name)] = true
	return nil
}

type fakeRepoManager struct{ st *memStore }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Checkers(db dbx.DBTX) checkers.Repository     { return &memCheckers{m.st} }
func (m *fakeRepoManager) Revisions(db dbx.DBTX) revisions.Repository   { return &memRevisions{m.st} }
func (m *fakeRepoManager) Index(db dbx.DBTX) checkersbyrepo.Repository  { return &memIndex{m.st} }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projects.Repository     { return &memProjects{m.st} }

// fakeClock returns a fixed time that tests move explicitly.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type memArchive struct {
	stored []*models.Revision
	err    error
}

func (a *memArchive) Store(_ context.Context, rev *models.Revision) error {
	if a.err != nil {
		return a.err
	}
	a.stored = append(a.stored, rev)
	return nil
}

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}
