// Package services contains server-side business logic. This file implements
// CheckerService: the initial write of a checker, the update orchestrator
// and the read side of the record store and repository index.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/cryptox"
	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/logging"
	"github.com/dmitrijs2005/checkers/internal/netx"
	"github.com/dmitrijs2005/checkers/internal/server/archive"
	"github.com/dmitrijs2005/checkers/internal/server/checkeruuid"
	"github.com/dmitrijs2005/checkers/internal/server/config"
	"github.com/dmitrijs2005/checkers/internal/server/metrics"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/dmitrijs2005/checkers/internal/server/query"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkersbyrepo"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/repomanager"
)

// CheckerService manages checkers. Every effective write commits a new
// revision, and the repository index is updated in the same transaction as
// the record.
type CheckerService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	uuidScheme    string
	maxQueryTerms int

	clock    Clock
	identity Identity
	archive  archive.Archive
	metrics  *metrics.Metrics
	log      logging.Logger
}

// Option customises a CheckerService.
type Option func(*CheckerService)

// WithClock sets the time source of revisions.
func WithClock(c Clock) Option {
	return func(s *CheckerService) { s.clock = c }
}

// WithIdentity sets the author provider of revisions.
func WithIdentity(i Identity) Option {
	return func(s *CheckerService) { s.identity = i }
}

// WithArchive sets where committed revisions are copied to.
func WithArchive(a archive.Archive) Option {
	return func(s *CheckerService) { s.archive = a }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *CheckerService) { s.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(s *CheckerService) { s.log = l }
}

// NewCheckerService constructs a CheckerService using repositories and server config.
func NewCheckerService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *CheckerService {
	s := &CheckerService{
		db:            db,
		repomanager:   m,
		uuidScheme:    cfg.UUIDScheme,
		maxQueryTerms: cfg.MaxQueryTerms,
		clock:         SystemClock{},
		identity: ContextIdentity{Server: models.Author{
			Name:  cfg.ServerIdentName,
			Email: cfg.ServerIdentEmail,
		}},
		archive: archive.NopArchive{},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New(nil)
	}
	return s
}

// Get returns the current state of a checker.
func (s *CheckerService) Get(ctx context.Context, uuid string) (*models.Checker, error) {
	id, err := checkeruuid.Parse(uuid)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Checkers(s.db).Get(ctx, id)
}

// List returns all checkers ordered by UUID.
func (s *CheckerService) List(ctx context.Context) ([]*models.Checker, error) {
	return s.repomanager.Checkers(s.db).List(ctx)
}

// CheckersOf returns the UUIDs of the ENABLED checkers of repository.
func (s *CheckerService) CheckersOf(ctx context.Context, repository string) ([]string, error) {
	canonical := s.repomanager.Projects(s.db).Canonicalize(repository)
	return s.repomanager.Index(s.db).CheckersOf(ctx, canonical)
}

// RepositoriesWithCheckers returns the hashes of repositories that have at
// least one ENABLED checker.
func (s *CheckerService) RepositoriesWithCheckers(ctx context.Context) ([]string, error) {
	return s.repomanager.Index(s.db).RepositoriesWithCheckers(ctx)
}

// LastCommit returns the newest revision of a checker.
func (s *CheckerService) LastCommit(ctx context.Context, uuid string) (*models.Revision, error) {
	id, err := checkeruuid.Parse(uuid)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Revisions(s.db).Latest(ctx, id)
}

// History returns all revisions of a checker, newest first.
func (s *CheckerService) History(ctx context.Context, uuid string) ([]*models.Revision, error) {
	id, err := checkeruuid.Parse(uuid)
	if err != nil {
		return nil, err
	}
	revs, err := s.repomanager.Revisions(s.db).List(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, common.CheckerNotFound(id)
	}
	return revs, nil
}

// Create performs the initial write of a checker: the record, its first
// revision and, if it starts ENABLED, its index entry.
func (s *CheckerService) Create(ctx context.Context, in models.CheckerCreate) (*models.Checker, error) {
	c, err := s.prepareCreate(ctx, in)
	if err != nil {
		s.metrics.Create(outcome(err))
		return nil, err
	}

	now := s.now()
	c.Created = now
	c.Updated = now

	rev, err := s.newRevision(ctx, c, "", models.MessageCreateChecker)
	if err != nil {
		s.metrics.Create(metrics.ResultError)
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Checkers(tx).Insert(ctx, c); err != nil {
			return err
		}
		if err := s.repomanager.Revisions(tx).Append(ctx, rev); err != nil {
			return err
		}
		return checkersbyrepo.Reindex(ctx, s.repomanager.Index(tx), c.UUID, "", "", c.Repository, c.Status)
	})
	if err != nil {
		s.metrics.Create(outcome(err))
		return nil, err
	}

	s.metrics.Create(metrics.ResultCommitted)
	s.log.Info(ctx, "checker created", "uuid", c.UUID, "repository", c.Repository, "ref_state", c.RefState)
	s.archiveRevision(ctx, rev)
	return c, nil
}

func (s *CheckerService) prepareCreate(ctx context.Context, in models.CheckerCreate) (*models.Checker, error) {
	var (
		c   = &models.Checker{}
		err error
	)

	if strings.TrimSpace(in.UUID) == "" {
		c.UUID, err = checkeruuid.Generate(s.uuidScheme)
	} else {
		c.UUID, err = checkeruuid.Parse(strings.TrimSpace(in.UUID))
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, common.NameRequired
	}
	if err := checkText("name", in.Name); err != nil {
		return nil, err
	}
	c.Name = in.Name

	if c.Description, err = cleanDescription(in.Description); err != nil {
		return nil, err
	}
	if c.URL, err = netx.CleanURL(in.URL); err != nil {
		return nil, err
	}
	if c.Query, err = query.Clean(in.Query); err != nil {
		return nil, err
	}

	c.Status = models.StatusEnabled
	if in.Status != "" {
		if c.Status, err = models.ParseCheckerStatus(string(in.Status)); err != nil {
			return nil, err
		}
	}
	if c.Blocking, err = parseBlocking(in.Blocking); err != nil {
		return nil, err
	}

	if c.Repository, err = resolveRepository(ctx, s.repomanager.Projects(s.db), in.Repository); err != nil {
		return nil, err
	}
	if err := query.CheckTermLimit(c.UUID, c.Query, s.maxQueryTerms); err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies a partial update to a checker.
//
// Fields absent from u are left alone. If the resulting record equals the
// stored one, nothing is written and the stored record is returned as is.
// Otherwise the record, a new revision and the repository index are written
// in one transaction, guarded by the ref state that was read; a concurrent
// writer makes the update fail with a concurrent-modification error.
func (s *CheckerService) Update(ctx context.Context, uuid string, u models.CheckerUpdate) (*models.Checker, error) {
	next, err := s.update(ctx, uuid, u)
	if err != nil {
		result := outcome(err)
		s.metrics.Update(result)
		if result == metrics.ResultError {
			s.log.Error(ctx, "checker update failed", "uuid", uuid, "error", err)
		} else {
			s.log.Warn(ctx, "checker update rejected", "uuid", uuid, "error", err)
		}
		return nil, err
	}
	return next, nil
}

func (s *CheckerService) update(ctx context.Context, uuid string, u models.CheckerUpdate) (*models.Checker, error) {
	id, err := checkeruuid.Parse(uuid)
	if err != nil {
		return nil, err
	}

	u, err = validateUpdate(u)
	if err != nil {
		return nil, err
	}

	current, err := s.repomanager.Checkers(s.db).Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := applyUpdate(ctx, current, u, s.repomanager.Projects(s.db), s.maxQueryTerms)
	if err != nil {
		return nil, err
	}

	if next.Equal(current) {
		s.metrics.Update(metrics.ResultNoop)
		s.log.Debug(ctx, "checker unchanged", "uuid", id)
		return current, nil
	}

	next.Updated = s.nextUpdated(current.Updated)

	rev, err := s.newRevision(ctx, next, current.RefState, models.MessageUpdateChecker)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Checkers(tx).Update(ctx, next, current.RefState); err != nil {
			return err
		}
		if err := s.repomanager.Revisions(tx).Append(ctx, rev); err != nil {
			return err
		}
		if next.Repository == current.Repository && next.Status == current.Status {
			return nil
		}
		return checkersbyrepo.Reindex(ctx, s.repomanager.Index(tx), id,
			current.Repository, current.Status, next.Repository, next.Status)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Update(metrics.ResultCommitted)
	s.log.Info(ctx, "checker updated", "uuid", id, "parent", current.RefState, "ref_state", next.RefState)
	s.archiveRevision(ctx, rev)
	return next, nil
}

// now returns the clock time at the precision the store keeps.
func (s *CheckerService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// nextUpdated returns a timestamp strictly after prev.
func (s *CheckerService) nextUpdated(prev time.Time) time.Time {
	now := s.now()
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// newRevision builds the revision that records c and sets c.RefState to its
// address.
func (s *CheckerService) newRevision(ctx context.Context, c *models.Checker, parent, message string) (*models.Revision, error) {
	content, err := c.Content()
	if err != nil {
		return nil, fmt.Errorf("encode checker %s: %w", c.UUID, err)
	}
	author := s.identity.Author(ctx)

	rev := &models.Revision{
		Parent:      parent,
		CheckerUUID: c.UUID,
		Message:     message,
		Author:      author,
		CommittedAt: c.Updated,
		Content:     content,
	}
	rev.RefState = cryptox.RefState(cryptox.RefStateInput{
		Parent:      parent,
		Message:     message,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		CommittedAt: rev.CommittedAt,
		Content:     content,
	})
	c.RefState = rev.RefState
	return rev, nil
}

// archiveRevision copies rev to the archive. The commit already happened,
// so failures are only logged and counted.
func (s *CheckerService) archiveRevision(ctx context.Context, rev *models.Revision) {
	if err := s.archive.Store(ctx, rev); err != nil {
		s.metrics.ArchiveFailure()
		s.log.Warn(ctx, "archive revision failed", "uuid", rev.CheckerUUID, "ref_state", rev.RefState, "error", err)
	}
}

// outcome classifies a failed write for metrics.
func outcome(err error) string {
	switch {
	case errors.Is(err, common.ErrConcurrentModification), errors.Is(err, common.ErrAlreadyExists):
		return metrics.ResultConflict
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrNotFound),
		errors.Is(err, common.ErrUnprocessable):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
