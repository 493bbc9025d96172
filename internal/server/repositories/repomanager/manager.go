package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/checkers/internal/dbx"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkers"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/checkersbyrepo"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/projects"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/revisions"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Checkers(db dbx.DBTX) checkers.Repository
	Revisions(db dbx.DBTX) revisions.Repository
	Index(db dbx.DBTX) checkersbyrepo.Repository
	Projects(db dbx.DBTX) projects.Repository
}
