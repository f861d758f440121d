// Package api provides the HTTP API server and handlers for the KeyDash
// sync backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/keydashapp/keydash-sync/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	progress *service.ProgressService
	router   *chi.Mux
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(progress *service.ProgressService, logger *slog.Logger) *Server {
	s := &Server{
		progress: progress,
		router:   chi.NewRouter(),
		logger:   logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The trainer runs in a browser extension or Electron shell; its origin
	// is never the backend's.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/leaderboard", func(r chi.Router) {
			r.Post("/", s.handleSubmitLeaderboardEntry)
			r.Get("/", s.handleListLeaderboard)
			r.Get("/aggregated", s.handleAggregatedLeaderboard)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleRecordSession)
			r.Get("/", s.handleListSessions)
		})

		r.Route("/answers", func(r chi.Router) {
			r.Post("/", s.handleRecordAnswer)
			r.Get("/", s.handleListAnswers)
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handleSaveProfile)
			r.Post("/rename", s.handleRename)
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Post("/", s.handleCompleteChallenge)
			r.Get("/", s.handleGetChallenge)
		})

		r.Get("/streaks", s.handleGetStreak)
	})
}
