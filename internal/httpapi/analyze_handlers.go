package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"bdintel-engine/internal/pipeline"
)

type AnalyzeHandler struct {
	Status      *atomic.Value // httpapi.AnalysisStatus
	RunAnalysis func(ctx context.Context) (pipeline.Result, error)
	Limiter     *rate.Limiter
}

func (h AnalyzeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := h.Status.Load().(AnalysisStatus)
	writeJSON(w, st)
}

// Run triggers a re-analysis in the background. Rate limited; a run already
// in flight wins over a new trigger.
func (h AnalyzeHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow() {
		WriteError(w, r, http.StatusTooManyRequests, "rate_limited", "analysis trigger rate exceeded")
		return
	}

	st := h.Status.Load().(AnalysisStatus)
	if st.Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	h.Status.Store(AnalysisStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		LastOkAt:  st.LastOkAt,
		LastRunID: st.LastRunID,
		Running:   true,
	})

	go func() {
		res, err := h.RunAnalysis(context.Background())

		now := time.Now().Format(time.RFC3339)
		next := h.Status.Load().(AnalysisStatus)
		next.Running = false
		next.LastRunAt = now
		if err != nil {
			next.LastError = err.Error()
		} else {
			next.LastError = ""
			next.LastOkAt = now
			next.LastRunID = res.RunID
			next.LastMapped = res.Mapped
		}
		h.Status.Store(next)
	}()

	writeJSON(w, map[string]any{"ok": true})
}
