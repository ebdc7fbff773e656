// Package httpapi exposes generation control, check results and persisted
// candidates over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/uberswe/domaingen/internal/check"
	"github.com/uberswe/domaingen/internal/generate"
	"github.com/uberswe/domaingen/pkg/domain"
	"github.com/uberswe/domaingen/pkg/store"
)

// Server wires the controller, the scheduler and the store to HTTP handlers
type Server struct {
	gen       *generate.Controller
	scheduler *check.Scheduler
	store     store.Store
	suffixes  []string
	opts      check.Options
	baseCtx   context.Context

	mu       sync.Mutex
	checking bool
	lastRun  *check.Report
	progress domain.CheckProgress
	wg       sync.WaitGroup
}

// Option configures a Server
type Option func(*Server)

// WithBaseContext sets the context background runs started over HTTP are
// bound to. Cancelling it stops generation and prevents further check batches.
func WithBaseContext(ctx context.Context) Option {
	return func(s *Server) { s.baseCtx = ctx }
}

// WithCheckOptions sets batching and pacing of checks started over HTTP
func WithCheckOptions(o check.Options) Option {
	return func(s *Server) { s.opts = o }
}

// New returns a server checking generated candidates against suffixes
func New(gen *generate.Controller, scheduler *check.Scheduler, st store.Store, suffixes []string, opts ...Option) *Server {
	s := &Server{
		gen:       gen,
		scheduler: scheduler,
		store:     st,
		suffixes:  suffixes,
		opts:      check.DefaultOptions(),
		baseCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns a chi.Router with every endpoint mounted
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/state", s.handleState)
	r.Get("/candidates", s.handleCandidates)
	r.Route("/generation", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/pause", s.handleControl(s.gen.Pause))
		r.Post("/resume", s.handleControl(s.gen.Resume))
		r.Post("/stop", s.handleControl(func() error { s.gen.Stop(); return nil }))
		r.Post("/clear", s.handleControl(func() error { s.gen.Clear(); return nil }))
	})

	r.Post("/check", s.handleCheck)
	r.Get("/check", s.handleCheckState)
	r.Get("/status", s.handleStatus)
	r.Get("/available", s.handleAvailable)

	r.Get("/export", s.handleExport)
	r.Get("/favorites", s.handleFavorites)
	r.Post("/favorites/{name}", s.handleAddFavorite)
	r.Delete("/favorites/{name}", s.handleRemoveFavorite)
	r.Delete("/collections/{name}", s.handleClearCollection)

	return r
}

// Wait blocks until a running check has finished and its results were persisted
func (s *Server) Wait() {
	s.wg.Wait()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsConfigError(err):
		status = http.StatusBadRequest
	case errors.Is(err, generate.ErrAlreadyRunning), generate.IsTransitionError(err), errors.Is(err, errCheckRunning):
		status = http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var (
	errCheckRunning = errors.New("a check is already running")
	errBadRequest   = errors.New("bad request")
)
