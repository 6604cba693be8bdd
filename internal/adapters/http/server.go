// Package http exposes the daemon status API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/flipper/pkg/domain"
	"github.com/aretw0/flipper/pkg/ports"
)

// apiVersion tracks the wire contract of the status API.
const apiVersion = "0.1.0"

// defaultRunListLimit bounds GET /runs when no limit is given.
const defaultRunListLimit = 20

// Config wires the handler's collaborators.
type Config struct {
	// Pipeline serves POST /trigger.
	Pipeline ports.Pipeline

	// Store serves the run history endpoints.
	Store ports.RunStore

	// Version is the application version reported by GET /info.
	Version string

	// Metrics, when set, is mounted at GET /metrics.
	Metrics http.Handler

	Logger *slog.Logger
}

// Server handles the status API routes.
type Server struct {
	pipeline ports.Pipeline
	store    ports.RunStore
	version  string
	logger   *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type runListResponse struct {
	Runs []*domain.Run `json:"runs"`
}

// NewHandler builds the chi router for the status API.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		pipeline: cfg.Pipeline,
		store:    cfg.Store,
		version:  cfg.Version,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/info", s.info)
	r.Post("/trigger", s.trigger)
	r.Get("/runs", s.listRuns)
	r.Get("/runs/latest", s.latestRun)
	r.Get("/runs/{id}", s.getRun)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"app":         "flipper",
		"version":     s.version,
		"api_version": apiVersion,
	})
}

// trigger runs a manual pipeline pass synchronously. The response is the
// run record; a failed run still responds 200 with the failure captured in
// the record. Only contention and transport problems map to error statuses.
func (s *Server) trigger(w http.ResponseWriter, r *http.Request) {
	run, err := s.pipeline.Execute(r.Context(), domain.TriggerManual)
	switch {
	case errors.Is(err, domain.ErrRunInProgress):
		s.respondJSON(w, http.StatusConflict, errorResponse{Error: "a run is already in progress"})
	case run == nil:
		s.logger.Error("manual trigger failed", "error", err)
		http.Error(w, fmt.Sprintf("Trigger error: %v", err), http.StatusInternalServerError)
	default:
		s.respondJSON(w, http.StatusOK, run)
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("run listing failed", "error", err)
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	s.respondJSON(w, http.StatusOK, runListResponse{Runs: runs})
}

func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List(r.Context(), 1)
	if err != nil {
		s.logger.Error("run listing failed", "error", err)
		http.Error(w, fmt.Sprintf("List error: %v", err), http.StatusInternalServerError)
		return
	}
	if len(runs) == 0 {
		http.Error(w, "no runs recorded yet", http.StatusNotFound)
		return
	}
	s.respondJSON(w, http.StatusOK, runs[0])
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.store.Load(r.Context(), id)
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		http.Error(w, fmt.Sprintf("run %s not found", id), http.StatusNotFound)
	case err != nil:
		s.logger.Error("run lookup failed", "run_id", id, "error", err)
		http.Error(w, fmt.Sprintf("Load error: %v", err), http.StatusInternalServerError)
	default:
		s.respondJSON(w, http.StatusOK, run)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}
