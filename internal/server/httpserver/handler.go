package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/dmitrijs2005/checkers/internal/server/models"
	"github.com/gin-gonic/gin"
)

// checkerSvc is the part of services.CheckerService the handlers call.
type checkerSvc interface {
	Create(ctx context.Context, in models.CheckerCreate) (*models.Checker, error)
	Get(ctx context.Context, uuid string) (*models.Checker, error)
	List(ctx context.Context) ([]*models.Checker, error)
	Update(ctx context.Context, uuid string, u models.CheckerUpdate) (*models.Checker, error)
	CheckersOf(ctx context.Context, repository string) ([]string, error)
	LastCommit(ctx context.Context, uuid string) (*models.Revision, error)
	History(ctx context.Context, uuid string) ([]*models.Revision, error)
}

type errorResponse struct {
	Message string `json:"message"`
}

// commitResponse is the revision metadata exposed per checker.
type commitResponse struct {
	RefState    string        `json:"ref_state"`
	Parent      string        `json:"parent,omitempty"`
	Message     string        `json:"message"`
	Author      models.Author `json:"author"`
	CommittedAt time.Time     `json:"committed_at"`
}

func toCommit(rev *models.Revision) commitResponse {
	return commitResponse{
		RefState:    rev.RefState,
		Parent:      rev.Parent,
		Message:     rev.Message,
		Author:      rev.Author,
		CommittedAt: rev.CommittedAt.UTC(),
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: msg})
}

// statusOf maps a service error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrConcurrentModification), errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (s *HTTPServer) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		abort(c, status, "internal error")
		return
	}
	abort(c, status, err.Error())
}

func (s *HTTPServer) createChecker(c *gin.Context) {
	var in models.CheckerCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	out, err := s.checkers.Create(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Checker created", "uuid", out.UUID)
	c.JSON(http.StatusCreated, out)
}

func (s *HTTPServer) updateChecker(c *gin.Context) {
	var u models.CheckerUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		abort(c, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	out, err := s.checkers.Update(c.Request.Context(), c.Param("uuid"), u)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) getChecker(c *gin.Context) {
	out, err := s.checkers.Get(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) listCheckers(c *gin.Context) {
	out, err := s.checkers.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if out == nil {
		out = []*models.Checker{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) lastCommit(c *gin.Context) {
	rev, err := s.checkers.LastCommit(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCommit(rev))
}

func (s *HTTPServer) history(c *gin.Context) {
	revs, err := s.checkers.History(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out := make([]commitResponse, 0, len(revs))
	for _, rev := range revs {
		out = append(out, toCommit(rev))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) checkersOf(c *gin.Context) {
	uuids, err := s.checkers.CheckersOf(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uuids)
}
