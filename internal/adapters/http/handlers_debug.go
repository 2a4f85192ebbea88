package web

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/adapters/http/perf"
)

// handlePerf serves the perf collector snapshot. ?window=5m and ?top=10
// narrow the view.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.Collector == nil {
		http.Error(w, "perf collection disabled", http.StatusNotFound)
		return
	}
	window := 15 * time.Minute
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	top := 10
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "top must be a positive integer", http.StatusBadRequest)
			return
		}
		top = n
	}
	writeJSON(w, http.StatusOK, struct {
		Window string `json:"window"`
		perf.Snapshot
	}{Window: window.String(), Snapshot: s.Collector.Snapshot(s.Now().Add(-window), top)})
}
