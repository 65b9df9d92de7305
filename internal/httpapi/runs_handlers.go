package httpapi

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"bdintel-engine/internal/store"
)

type RunsHandler struct {
	DB *store.DB
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.DB.ListRuns(r.Context(), limit)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	writeJSON(w, runs)
}

func (h RunsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	sum, err := h.DB.LatestRun(r.Context())
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "no_runs", "no analysis runs yet")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, sum)
}

// runIDOrLatest resolves the run query param, defaulting to the newest run.
func runIDOrLatest(r *http.Request, db *store.DB) (string, error) {
	if id := r.URL.Query().Get("run"); id != "" {
		return id, nil
	}
	sum, err := db.LatestRun(r.Context())
	if err != nil {
		return "", err
	}
	return sum.ID, nil
}

type MappingsHandler struct {
	DB *store.DB
}

func (h MappingsHandler) List(w http.ResponseWriter, r *http.Request) {
	runID, err := runIDOrLatest(r, h.DB)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "no_runs", "no analysis runs yet")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	mappings, err := h.DB.MappingsForRun(r.Context(), runID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"run_id": runID, "mappings": mappings})
}

type OrgsHandler struct {
	DB *store.DB
}

func (h OrgsHandler) List(w http.ResponseWriter, r *http.Request) {
	runID, err := runIDOrLatest(r, h.DB)
	if errors.Is(err, sql.ErrNoRows) {
		WriteError(w, r, http.StatusNotFound, "no_runs", "no analysis runs yet")
		return
	}
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	groups, err := h.DB.OrgGroupsForRun(r.Context(), runID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"run_id": runID, "groups": groups})
}
