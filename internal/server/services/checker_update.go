package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/netx"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/dmitrijs2005/checkers/internal/server/query"
	"github.com/dmitrijs2005/checkers/internal/server/repositories/projects"
)

// cleanOptional maps an empty cleaned value to Clear so that the patch step
// only sees Unset, Clear or a non-empty Set.
func cleanOptional(f models.Field[string], clean func(string) (string, error)) (models.Field[string], error) {
	v, ok := f.Get()
	if !ok {
		return f, nil
	}
	cleaned, err := clean(v)
	if err != nil {
		return f, err
	}
	if cleaned == "" {
		return models.Clear[string](), nil
	}
	return models.Set(cleaned), nil
}

// checkText rejects values the store cannot hold.
func checkText(field, v string) error {
	if strings.ContainsRune(v, 0) {
		return common.InvalidText(field)
	}
	return nil
}

func cleanDescription(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if err := checkText("description", trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// validateUpdate runs the field validators over the present fields of u and
// returns the cleaned update. It does not need the stored checker.
func validateUpdate(u models.CheckerUpdate) (models.CheckerUpdate, error) {
	var err error

	if u.Description, err = cleanOptional(u.Description, cleanDescription); err != nil {
		return u, err
	}
	if u.URL, err = cleanOptional(u.URL, netx.CleanURL); err != nil {
		return u, err
	}
	if u.Query, err = cleanOptional(u.Query, query.Clean); err != nil {
		return u, err
	}

	if u.Status.IsClear() {
		return u, common.StatusRequired
	}
	if v, ok := u.Status.Get(); ok {
		status, err := models.ParseCheckerStatus(string(v))
		if err != nil {
			return u, err
		}
		u.Status = models.Set(status)
	}

	if u.Blocking.IsClear() {
		u.Blocking = models.Set([]models.BlockingCondition{})
	}
	if v, ok := u.Blocking.Get(); ok {
		blocking, err := parseBlocking(v)
		if err != nil {
			return u, err
		}
		u.Blocking = models.Set(blocking)
	}

	return u, nil
}

func parseBlocking(in []models.BlockingCondition) ([]models.BlockingCondition, error) {
	out := make([]models.BlockingCondition, 0, len(in))
	for _, c := range in {
		parsed, err := models.ParseBlockingCondition(string(c))
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return models.NormalizeBlocking(out), nil
}

// resolveRepository checks that name refers to an existing repository and
// returns its canonical form.
func resolveRepository(ctx context.Context, lookup projects.Lookup, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", common.RepositoryRequired
	}
	if err := checkText("repository", trimmed); err != nil {
		return "", err
	}
	canonical := lookup.Canonicalize(trimmed)
	if canonical == "" {
		return "", common.RepositoryNotFound(trimmed)
	}
	ok, err := lookup.Exists(ctx, canonical)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", common.RepositoryNotFound(canonical)
	}
	return canonical, nil
}

// applyUpdate builds the candidate record from current and the validated
// update u. Timestamps and ref state are carried over unchanged; the caller
// bumps them only if the candidate differs from current.
func applyUpdate(ctx context.Context, current *models.Checker, u models.CheckerUpdate,
	lookup projects.Lookup, maxQueryTerms int) (*models.Checker, error) {

	next := current.Clone()

	if u.UUID.IsClear() {
		return nil, common.UUIDImmutable
	}
	if v, ok := u.UUID.Get(); ok && strings.TrimSpace(v) != current.UUID {
		return nil, common.UUIDImmutable
	}

	if u.Name.IsClear() {
		return nil, common.NameRequired
	}
	if v, ok := u.Name.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return nil, common.NameRequired
		}
		if err := checkText("name", v); err != nil {
			return nil, err
		}
		next.Name = v
	}

	if u.Repository.IsClear() {
		return nil, common.RepositoryRequired
	}
	if v, ok := u.Repository.Get(); ok {
		repo, err := resolveRepository(ctx, lookup, v)
		if err != nil {
			return nil, err
		}
		next.Repository = repo
	}

	applyOptional(&next.Description, u.Description)
	applyOptional(&next.URL, u.URL)
	applyOptional(&next.Query, u.Query)

	if v, ok := u.Query.Get(); ok {
		if err := query.CheckTermLimit(current.UUID, v, maxQueryTerms); err != nil {
			return nil, err
		}
	}

	if v, ok := u.Status.Get(); ok {
		next.Status = v
	}
	if v, ok := u.Blocking.Get(); ok {
		next.Blocking = v
	}

	return next, nil
}

func applyOptional(dst *string, f models.Field[string]) {
	switch {
	case f.IsClear():
		*dst = ""
	case f.Present():
		*dst, _ = f.Get()
	}
}
