package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/rolodex/internal/processor"
)

// Status describes the running configuration reported by /api/v1/status.
type Status struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Storage      string `json:"storage"`
	CalendarMode string `json:"calendar_mode"`
	Transcribe   bool   `json:"transcription_enabled"`
	Events       bool   `json:"events_enabled"`
}

type Server struct {
	router *chi.Mux
	port   int
	proc   *processor.Processor
	status Status
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(port int, apiToken string, proc *processor.Processor, status Status, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		proc:   proc,
		status: status,
		logger: logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))
		r.Get("/status", s.statusHandler)
		r.Post("/extract", s.extract)
		r.Post("/voice", s.voice)
		r.Get("/sessions/{id}", s.pending)
		r.Post("/records", s.save)
		r.Get("/records", s.list)
		r.Get("/insights", s.insights)
		r.Post("/insights/summary", s.summary)
		r.Post("/insights/ask", s.ask)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":  "rolodex",
		"config": s.status,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
