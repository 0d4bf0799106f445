// Package server exposes the workout service over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/damiensprinkle/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *workout.Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *workout.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Read endpoints (no auth — tsnet handles access)
	s.router.Get("/api/v1/workouts", s.handleListWorkouts)
	s.router.Get("/api/v1/workouts/colors", s.handleWorkoutColors)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
	s.router.Get("/api/v1/workouts/{id}/details", s.handleWorkoutDetails)
	s.router.Get("/api/v1/workouts/{id}/export", s.handleExportWorkout)
	s.router.Get("/api/v1/workouts/{id}/history", s.handleWorkoutHistory)
	s.router.Get("/api/v1/session", s.handleActiveSession)
	s.router.Get("/api/v1/sessions", s.handleSessions)
	s.router.Get("/api/v1/history", s.handleMonthHistory)

	// Write endpoints (API key required)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Put("/api/v1/workouts/{id}", s.handleUpdateWorkout)
		r.Delete("/api/v1/workouts/{id}", s.handleDeleteWorkout)
		r.Put("/api/v1/workouts/{id}/title", s.handleUpdateTitle)
		r.Put("/api/v1/workouts/{id}/color", s.handleUpdateColor)
		r.Post("/api/v1/workouts/{id}/duplicate", s.handleDuplicateWorkout)
		r.Post("/api/v1/workouts/import", s.handleImportWorkout)
		r.Post("/api/v1/workouts/{id}/session/start", s.handleStartSession)
		r.Post("/api/v1/workouts/{id}/session/cancel", s.handleCancelSession)
		r.Put("/api/v1/workouts/{id}/session/sets", s.handleSaveSessionSets)
		r.Post("/api/v1/workouts/{id}/session/complete", s.handleCompleteSession)
		r.Delete("/api/v1/history/{id}", s.handleDeleteHistory)
	})
}
