// Serves the icondup HTTP API on top of a batch orchestrator.
package server

import (
	"context"
	"net/http"

	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Catalog provides the icons compared to the submitted references.
type Catalog interface {
	Candidates() []batch.Candidate
}

// Server is the HTTP server for the icondup API.
type Server struct {
	orchestrator *batch.Orchestrator
	catalog      Catalog
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	orchestrator *batch.Orchestrator,
	catalog Catalog,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		orchestrator: orchestrator,
		catalog:      catalog,
		config:       cfg,
		logger:       logger,
	}
}

// Router returns the handler serving the API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/compare", s.handleCompare)
	r.Get("/api/v1/progress", s.handleProgress)
	r.Post("/api/v1/reset", s.handleReset)
	r.Get("/api/v1/icons", s.handleIcons)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
