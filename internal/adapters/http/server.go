// Package http exposes the assistant over a small JSON API: one endpoint per
// external turn plus session introspection, health and metrics.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unanue/mostrador"
	"github.com/unanue/mostrador/internal/logging"
	"github.com/unanue/mostrador/pkg/domain"
)

// Assistant is the surface the server needs from the intake assistant.
type Assistant interface {
	HandleMessage(ctx context.Context, sessionID, messageID, text string) (*mostrador.Turn, error)
	State(ctx context.Context, sessionID string) (*domain.State, error)
	Sessions(ctx context.Context) ([]string, error)
	Forget(ctx context.Context, sessionID string) error
}

// Server handles the HTTP surface.
type Server struct {
	assistant Assistant
	logger    *slog.Logger
	registry  *prometheus.Registry
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts /metrics for the given registry.
func WithMetrics(reg *prometheus.Registry) ServerOption {
	return func(s *Server) { s.registry = reg }
}

// NewHandler builds the HTTP handler.
func NewHandler(assistant Assistant, opts ...ServerOption) http.Handler {
	s := &Server{
		assistant: assistant,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/messages", s.postMessage)
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
		})
	})

	return enableCORS(r)
}

type messageRequest struct {
	// MessageID enables idempotent redelivery; generated when empty.
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

type messageResponse struct {
	Replies  []string    `json:"replies"`
	Finished bool        `json:"finished"`
	Step     domain.Step `json:"step"`
}

func (s *Server) postMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	turn, err := s.assistant.HandleMessage(r.Context(), sessionID, body.MessageID, body.Message)
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Replies:  turn.Replies,
		Finished: turn.Finished,
		Step:     turn.Step,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.assistant.State(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("session read failed", "session_id", sessionID, "err", err)
		http.Error(w, "failed to read session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, state.Summary())
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := s.assistant.Forget(r.Context(), sessionID); err != nil {
		s.logger.Error("session delete failed", "session_id", sessionID, "err", err)
		http.Error(w, "failed to delete session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.assistant.Sessions(r.Context())
	if err != nil {
		s.logger.Error("session list failed", "err", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
