package server

import (
	"net/http"
	"strconv"

	"github.com/lazypower/texprogress/internal/chart"
	"github.com/lazypower/texprogress/internal/series"
)

func (s *Server) load(w http.ResponseWriter, r *http.Request) ([]series.Record, bool) {
	records, err := s.store.Load(r.Context())
	if err != nil {
		s.opts.Logger.Error("load series", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load series")
		return nil, false
	}
	return records, true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}
	svg := chart.Render(records, chart.Options{Now: s.opts.Clock(), Title: s.opts.Title})

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write([]byte(svg))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}
	if records == nil {
		records = []series.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily_counts": records})
}

func (s *Server) handleDeltas(w http.ResponseWriter, r *http.Request) {
	records, ok := s.load(w, r)
	if !ok {
		return
	}
	deltas := series.Deltas(records)
	if deltas == nil {
		deltas = []series.Delta{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deltas": deltas})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.opts.Runs == nil {
		writeError(w, http.StatusNotFound, "run log requires the sqlite backend")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := s.opts.Runs.RecentRuns(r.Context(), limit)
	if err != nil {
		s.opts.Logger.Error("load runs", "error", err)
		writeError(w, http.StatusInternalServerError, "could not load runs")
		return
	}

	type runJSON struct {
		ID       string `json:"id"`
		Day      string `json:"day"`
		Started  string `json:"started_at"`
		Finished string `json:"finished_at"`
		Total    int    `json:"total"`
		Repos    int    `json:"repos"`
		Failed   int    `json:"failed"`
	}
	out := make([]runJSON, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON{
			ID:       run.ID,
			Day:      run.Day,
			Started:  run.StartedAt.UTC().Format(timeLayout),
			Finished: run.FinishedAt.UTC().Format(timeLayout),
			Total:    run.Total,
			Repos:    run.Repos,
			Failed:   run.Failed,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": out})
}

const timeLayout = "2006-01-02T15:04:05Z"
