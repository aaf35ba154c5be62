// Package server exposes the reconstruction engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"txf-bar-engine/internal/domain"
	"txf-bar-engine/internal/observability"
	"txf-bar-engine/internal/session"
)

// Engine is the surface the HTTP layer needs from the reconstruction engine.
type Engine interface {
	GetHistory(ctx context.Context, dateStr string, night bool) ([]domain.Bar, error)
	LiveSnapshot() []domain.Bar
	Status() domain.FeedStatus
}

// Server routes API requests to the engine.
type Server struct {
	mux    *http.ServeMux
	engine Engine
	origin string
	logger *log.Logger
}

// New creates a Server. origin is the CORS Access-Control-Allow-Origin
// value; empty disables the header.
func New(engine Engine, origin string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		mux:    http.NewServeMux(),
		engine: engine,
		origin: origin,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/live", s.handleLive)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/health", handleHealth)
	s.mux.Handle("/metrics", observability.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", s.origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	}
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// handleHistory serves GET /api/history?date=YYYY-MM-DD&session=day|night.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")

	kind := r.URL.Query().Get("session")
	if kind == "" {
		kind = domain.SessionDay.String()
	}
	if !domain.SessionKind(kind).IsValid() {
		http.Error(w, "session must be day or night", http.StatusBadRequest)
		return
	}
	night := domain.SessionKind(kind) == domain.SessionNight

	bars, err := s.engine.GetHistory(r.Context(), dateStr, night)
	if err != nil {
		if errors.Is(err, session.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// The engine degrades internally; anything else is unexpected.
		s.logger.Printf("history %s %s: %v", dateStr, kind, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, s.logger, bars)
}

// handleLive serves GET /api/live with the streamed points since start.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.engine.LiveSnapshot())
}

// handleStatus serves GET /api/status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, s.engine.Status())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Printf("write response: %v", err)
	}
}
