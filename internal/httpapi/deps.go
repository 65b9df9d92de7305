package httpapi

import (
	"context"
	"sync/atomic"

	"golang.org/x/time/rate"

	"bdintel-engine/internal/events"
	"bdintel-engine/internal/pipeline"
	"bdintel-engine/internal/store"
)

type Deps struct {
	DB  *store.DB
	Hub *events.Hub

	// AnalysisStatus stores httpapi.AnalysisStatus
	AnalysisStatus *atomic.Value

	// Analyze entrypoint (inject for testability)
	RunAnalysis func(ctx context.Context) (pipeline.Result, error)

	// Throttles POST /analyze; re-running the whole pipeline is cheap but
	// not free, and the trigger is exposed to any local UI.
	AnalyzeLimiter *rate.Limiter
}
