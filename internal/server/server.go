package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/texprogress/internal/series"
	"github.com/lazypower/texprogress/internal/store"
)

// RunLister is implemented by stores that keep a run log.
type RunLister interface {
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Options configures a Server. Zero values are usable.
type Options struct {
	Title  string
	Clock  func() time.Time
	Logger *slog.Logger
	// Runs enables /api/runs.
	Runs RunLister
}

// Server serves the progress chart and the series behind it.
type Server struct {
	store   series.Store
	opts    Options
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server reading from st.
func New(st series.Store, version string, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		store:   st,
		opts:    opts,
		version: version,
		started: opts.Clock(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/progress.svg", http.StatusFound)
	})
	r.Get("/progress.svg", s.handleChart)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/series", s.handleSeries)
		r.Get("/deltas", s.handleDeltas)
		r.Get("/runs", s.handleRuns)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, err := s.store.Load(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  s.opts.Clock().Sub(s.started).Seconds(),
		"store":   err == nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
