// Package server exposes digest jobs, stored digests and validation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/config"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/core"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/logger"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/pipeline"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/store"
	"github.com/Alexandria-s-Design/bite-size-academic-sub000/internal/validation"
)

// JobRunner triggers the weekly digest job
type JobRunner interface {
	Run(ctx context.Context, opts pipeline.JobOptions) (*pipeline.JobReport, error)
}

// DigestReader reads persisted digests
type DigestReader interface {
	GetDigest(ctx context.Context, id string) (*store.Record, error)
	ListDigests(ctx context.Context, field core.FieldID, limit int) ([]store.Summary, error)
	Stats(ctx context.Context) (*store.Stats, error)
	Driver() string
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	runner     JobRunner
	digests    DigestReader
	validator  *validation.Engine
	config     config.Server
	log        logger.Logger
	started    time.Time
}

// New creates a new HTTP server instance. runner and digests may be nil, in
// which case their routes answer 503.
func New(runner JobRunner, digests DigestReader, validator *validation.Engine, cfg config.Server, log logger.Logger) *Server {
	if validator == nil {
		validator = validation.NewEngine(validation.DefaultRules())
	}
	s := &Server{
		router:    chi.NewRouter(),
		runner:    runner,
		digests:   digests,
		validator: validator,
		config:    cfg,
		log:       log,
		started:   time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)

	if len(s.config.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Route("/jobs", func(r chi.Router) {
			r.Use(s.requireAPIKey)
			// Composing a digest for every field can take a while with a
			// remote summarizer.
			r.With(middleware.Timeout(10*time.Minute)).Post("/digest", s.handleRunDigestJob)
		})

		r.Route("/digests", func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/", s.handleListDigests)
			r.Get("/{id}", s.handleGetDigest)
		})

		r.Route("/validate", func(r chi.Router) {
			r.Post("/article", s.handleValidateArticles)
			r.Post("/user", s.handleValidateUser)
		})
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"read_timeout", s.config.ReadTimeout,
		"write_timeout", s.config.WriteTimeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
