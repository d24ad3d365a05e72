// Package server exposes the analysis over HTTP.
//
// Routes:
//
//	GET  /abunai/test                  connection test
//	POST /abunai/set/model/:modelName  upload model files (multipart)
//	POST /abunai/run                   run an analysis
//	GET  /abunai/runs                  list persisted runs
//	GET  /abunai/runs/:id              show a persisted run
//	GET  /metrics                      Prometheus metrics
//
// The run routes are only registered when a run store is configured, the
// metrics route only when metrics are.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abunai/impact/internal/observability"
	"github.com/abunai/impact/internal/runner"
	"github.com/abunai/impact/internal/store"
)

const servicePath = "/abunai"

// Options configures a Server.
type Options struct {
	// CaseStudiesDir holds uploaded models as
	// CaseStudy-<name>/<name>/<files>.
	CaseStudiesDir string

	// Runner executes analyses. Required.
	Runner *runner.Runner

	// Store enables the run listing routes. Optional.
	Store *store.Store

	// Metrics enables /metrics and request metrics. Optional.
	Metrics *observability.Metrics

	Logger *slog.Logger

	// Clock stamps analysis titles. Defaults to time.Now.
	Clock func() time.Time
}

// Server is the HTTP boundary of the analysis.
type Server struct {
	caseStudies string
	runner      *runner.Runner
	store       *store.Store
	metrics     *observability.Metrics
	logger      *slog.Logger
	clock       func() time.Time
}

// New creates a server.
func New(opts Options) *Server {
	s := &Server{
		caseStudies: opts.CaseStudiesDir,
		runner:      opts.Runner,
		store:       opts.Store,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		clock:       opts.Clock,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))
	if s.metrics != nil {
		router.Use(s.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	abunai := router.Group(servicePath)
	{
		abunai.GET("/test", s.handleTest)
		abunai.POST("/set/model/:modelName", s.handleSetModel)
		abunai.POST("/run", s.handleRun)
		if s.store != nil {
			abunai.GET("/runs", s.handleListRuns)
			abunai.GET("/runs/:id", s.handleGetRun)
		}
	}
	return router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP())
	}
}
