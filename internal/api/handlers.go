package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/maltedev/fashion-etl/internal/jobs"
)

// RunManager starts and tracks pipeline runs.
type RunManager interface {
	Start() (*jobs.Run, error)
	Get(id string) (*jobs.Run, error)
	List() []*jobs.Run
}

type Handlers struct {
	runs   RunManager
	logger *slog.Logger
}

func NewHandlers(runs RunManager, logger *slog.Logger) *Handlers {
	return &Handlers{
		runs:   runs,
		logger: logger.With("component", "api"),
	}
}

// Router mounts the handlers behind the standard middleware stack.
func (h *Handlers) Router(requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", h.StartRun)
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{runID}", h.GetRun)
	})

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StartRun kicks off a crawl, transform and load cycle in the background.
func (h *Handlers) StartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Start()
	if errors.Is(err, jobs.ErrRunInProgress) {
		h.respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to start run", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+run.ID)
	h.respondJSON(w, http.StatusAccepted, run)
}

func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.runs.Get(chi.URLParam(r, "runID"))
	if errors.Is(err, jobs.ErrRunNotFound) {
		h.respondError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get run", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs": h.runs.List(),
	})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
