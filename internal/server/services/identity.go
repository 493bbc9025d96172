package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/checkers/internal/server/models"
)

// Clock is the time source of committed revisions.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Identity supplies the author recorded on a revision.
type Identity interface {
	Author(ctx context.Context) models.Author
}

type authorKey struct{}

// WithAuthor returns a context carrying the acting author.
func WithAuthor(ctx context.Context, a models.Author) context.Context {
	return context.WithValue(ctx, authorKey{}, a)
}

// AuthorFrom returns the author stored by WithAuthor.
func AuthorFrom(ctx context.Context) (models.Author, bool) {
	a, ok := ctx.Value(authorKey{}).(models.Author)
	return a, ok
}

// ContextIdentity takes the author from the request context and falls back
// to the server identity for requests without one.
type ContextIdentity struct {
	Server models.Author
}

func (i ContextIdentity) Author(ctx context.Context) models.Author {
	a, ok := AuthorFrom(ctx)
	if !ok || a.Name == "" {
		return i.Server
	}
	if a.Email == "" {
		a.Email = i.Server.Email
	}
	return a
}
