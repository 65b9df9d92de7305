package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"bdintel-engine/internal/emit"
	"bdintel-engine/internal/events"
	"bdintel-engine/internal/pipeline"
	"bdintel-engine/internal/store"
)

func testDeps(t *testing.T) Deps {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	status := &atomic.Value{}
	status.Store(AnalysisStatus{})

	return Deps{
		DB:             db,
		Hub:            events.NewHub(),
		AnalysisStatus: status,
		RunAnalysis: func(ctx context.Context) (pipeline.Result, error) {
			return pipeline.Result{RunID: "run-x", Mapped: 1}, nil
		},
		AnalyzeLimiter: rate.NewLimiter(rate.Every(time.Minute), 2),
	}
}

func seedRun(t *testing.T, db *store.DB, id string) {
	t.Helper()
	sum := store.RunSummary{
		ID:         id,
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		FinishedAt: time.Now().UTC().Truncate(time.Second),
		JobsLoaded: 1,
		Mapped:     1,
	}
	mappings := []emit.MappingEntry{{
		JobID:           "j1",
		Status:          "mapped",
		MappedPrograms:  []string{"GBSD"},
		ConfidenceScore: 0.7,
		KeywordsFound:   []string{"GBSD"},
	}}
	orgs := []emit.OrgGroupEntry{{
		Company:     "Northrop",
		ProgramCode: "GBSD",
		Root:        "engineer|",
		Nodes: []emit.OrgNodeEntry{{
			Key: "engineer|", Title: "engineer", LevelRank: 4,
			JobIDs: []string{"j1"}, Children: []string{},
		}},
	}}
	require.NoError(t, db.SaveRun(context.Background(), sum, mappings, orgs))
}

func doReq(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := doReq(mux, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := doReq(mux, http.MethodPost, "/runs")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRunsLatestEmpty(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := doReq(mux, http.MethodGet, "/runs/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "no_runs", e.Error.Code)
}

func TestRunsListAndLatest(t *testing.T) {
	deps := testDeps(t)
	seedRun(t, deps.DB, "run-1")
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodGet, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []store.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)

	rec = doReq(mux, http.MethodGet, "/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum store.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, "run-1", sum.ID)
}

func TestRunsListEmptyIsArray(t *testing.T) {
	mux := NewMux(testDeps(t))
	rec := doReq(mux, http.MethodGet, "/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestMappingsDefaultToLatestRun(t *testing.T) {
	deps := testDeps(t)
	seedRun(t, deps.DB, "run-1")
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodGet, "/mappings")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID    string              `json:"run_id"`
		Mappings []emit.MappingEntry `json:"mappings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Mappings, 1)
	assert.Equal(t, "j1", body.Mappings[0].JobID)
}

func TestOrgsExplicitRunParam(t *testing.T) {
	deps := testDeps(t)
	seedRun(t, deps.DB, "run-1")
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodGet, "/orgs?run=run-1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		RunID  string               `json:"run_id"`
		Groups []emit.OrgGroupEntry `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body.RunID)
	require.Len(t, body.Groups, 1)
	assert.Equal(t, "GBSD", body.Groups[0].ProgramCode)
}

func TestAnalyzeStatusAndTrigger(t *testing.T) {
	deps := testDeps(t)
	done := make(chan struct{})
	deps.RunAnalysis = func(ctx context.Context) (pipeline.Result, error) {
		defer close(done)
		return pipeline.Result{RunID: "run-x", Mapped: 2}, nil
	}
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodGet, "/analyze/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st AnalysisStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Running)

	rec = doReq(mux, http.MethodPost, "/analyze")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis never ran")
	}

	require.Eventually(t, func() bool {
		cur := deps.AnalysisStatus.Load().(AnalysisStatus)
		return !cur.Running && cur.LastRunID == "run-x"
	}, 2*time.Second, 10*time.Millisecond)
	cur := deps.AnalysisStatus.Load().(AnalysisStatus)
	assert.Equal(t, 2, cur.LastMapped)
	assert.Empty(t, cur.LastError)
}

func TestAnalyzeRateLimited(t *testing.T) {
	deps := testDeps(t)
	deps.AnalyzeLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodPost, "/analyze")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doReq(mux, http.MethodPost, "/analyze")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAnalyzeAlreadyRunning(t *testing.T) {
	deps := testDeps(t)
	deps.AnalysisStatus.Store(AnalysisStatus{Running: true})
	mux := NewMux(deps)

	rec := doReq(mux, http.MethodPost, "/analyze")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already running")
}
