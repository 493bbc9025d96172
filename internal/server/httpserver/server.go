// Package httpserver exposes the checker service over HTTP/JSON using gin.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/checkers/internal/logging"
	"github.com/dmitrijs2005/checkers/internal/server/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServer struct {
	address         string
	checkers        checkerSvc
	logger          logging.Logger
	metrics         *metrics.Metrics
	gatherer        prometheus.Gatherer
	jwtSecret       []byte
	shutdownTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, cs checkerSvc, m *metrics.Metrics, g prometheus.Gatherer,
	secretKey string, shutdownTimeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address:         a,
		logger:          l.With("module", "http_server"),
		checkers:        cs,
		metrics:         m,
		gatherer:        g,
		jwtSecret:       []byte(secretKey),
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the gin engine with all routes registered.
func (s *HTTPServer) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = true
	r.Use(gin.Recovery(), s.observe)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	read := r.Group("/", s.authenticate)
	write := r.Group("/", s.authenticate, s.requireCapability)

	read.GET("/checkers/", s.listCheckers)
	read.GET("/checkers/:uuid", s.getChecker)
	read.GET("/checkers/:uuid/commit", s.lastCommit)
	read.GET("/checkers/:uuid/history", s.history)
	read.GET("/repositories/:name/checkers", s.checkersOf)

	write.POST("/checkers/", s.createChecker)
	write.POST("/checkers/:uuid", s.updateChecker)

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
