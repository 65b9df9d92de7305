package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bdintel-engine/internal/emit"
)

// RunSummary is the persisted header row for one analysis run.
type RunSummary struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	JobsLoaded  int       `json:"jobs_loaded"`
	JobsSkipped int       `json:"jobs_skipped"`
	Mapped      int       `json:"mapped"`
	Unresolved  int       `json:"unresolved"`
	Unmatched   int       `json:"unmatched"`
}

// SaveRun persists a run header plus its mapping rows and org nodes in one
// transaction, so the API never observes a half-written run.
func (d *DB) SaveRun(ctx context.Context, sum RunSummary, mappings []emit.MappingEntry, orgs []emit.OrgGroupEntry) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, started_at, finished_at, jobs_loaded, jobs_skipped, mapped, unresolved, unmatched)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);`,
		sum.ID,
		sum.StartedAt.UTC().Format(time.RFC3339),
		sum.FinishedAt.UTC().Format(time.RFC3339),
		sum.JobsLoaded, sum.JobsSkipped, sum.Mapped, sum.Unresolved, sum.Unmatched,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range mappings {
		progs, _ := json.Marshal(m.MappedPrograms)
		kws, _ := json.Marshal(m.KeywordsFound)
		_, err = tx.ExecContext(ctx, `
INSERT INTO mappings (run_id, job_id, status, programs, confidence, reasoning, keywords)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
			sum.ID, m.JobID, m.Status, string(progs), m.ConfidenceScore, m.Reasoning, string(kws),
		)
		if err != nil {
			return fmt.Errorf("insert mapping %s: %w", m.JobID, err)
		}
	}

	for _, g := range orgs {
		for _, n := range g.Nodes {
			ids, _ := json.Marshal(n.JobIDs)
			kids, _ := json.Marshal(n.Children)
			isRoot := 0
			if n.Key == g.Root {
				isRoot = 1
			}
			_, err = tx.ExecContext(ctx, `
INSERT INTO org_nodes (run_id, company, program_code, node_key, title, level_rank, location, job_ids, children, is_root)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
				sum.ID, g.Company, g.ProgramCode, n.Key, n.Title, n.LevelRank, n.Location, string(ids), string(kids), isRoot,
			)
			if err != nil {
				return fmt.Errorf("insert org node %s/%s/%s: %w", g.Company, g.ProgramCode, n.Key, err)
			}
		}
	}

	return tx.Commit()
}

// LatestRun returns the most recent run header, or sql.ErrNoRows.
func (d *DB) LatestRun(ctx context.Context) (RunSummary, error) {
	row := d.Pool.QueryRowContext(ctx, `
SELECT id, started_at, finished_at, jobs_loaded, jobs_skipped, mapped, unresolved, unmatched
FROM runs ORDER BY started_at DESC LIMIT 1;`)
	return scanRun(row)
}

// ListRuns returns run headers, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, started_at, finished_at, jobs_loaded, jobs_skipped, mapped, unresolved, unmatched
FROM runs ORDER BY started_at DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		sum, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var sum RunSummary
	var started, finished string
	err := row.Scan(&sum.ID, &started, &finished,
		&sum.JobsLoaded, &sum.JobsSkipped, &sum.Mapped, &sum.Unresolved, &sum.Unmatched)
	if err != nil {
		return RunSummary{}, err
	}
	sum.StartedAt, _ = time.Parse(time.RFC3339, started)
	sum.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return sum, nil
}

// MappingsForRun reloads the mapping export rows for a run.
func (d *DB) MappingsForRun(ctx context.Context, runID string) ([]emit.MappingEntry, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT job_id, status, programs, confidence, reasoning, keywords
FROM mappings WHERE run_id = ? ORDER BY job_id;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []emit.MappingEntry
	for rows.Next() {
		var m emit.MappingEntry
		var progs, kws string
		if err := rows.Scan(&m.JobID, &m.Status, &progs, &m.ConfidenceScore, &m.Reasoning, &kws); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(progs), &m.MappedPrograms)
		_ = json.Unmarshal([]byte(kws), &m.KeywordsFound)
		m.Source = "keyword_matching"
		out = append(out, m)
	}
	return out, rows.Err()
}

// OrgGroupsForRun reloads the exported trees for a run.
func (d *DB) OrgGroupsForRun(ctx context.Context, runID string) ([]emit.OrgGroupEntry, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT company, program_code, node_key, title, level_rank, location, job_ids, children, is_root
FROM org_nodes WHERE run_id = ?
ORDER BY company, program_code, level_rank, node_key;`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []emit.OrgGroupEntry
	idx := map[[2]string]int{}
	for rows.Next() {
		var company, code string
		var n emit.OrgNodeEntry
		var ids, kids string
		var isRoot int
		if err := rows.Scan(&company, &code, &n.Key, &n.Title, &n.LevelRank, &n.Location, &ids, &kids, &isRoot); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(ids), &n.JobIDs)
		_ = json.Unmarshal([]byte(kids), &n.Children)

		gk := [2]string{company, code}
		i, ok := idx[gk]
		if !ok {
			out = append(out, emit.OrgGroupEntry{Company: company, ProgramCode: code})
			i = len(out) - 1
			idx[gk] = i
		}
		if isRoot == 1 {
			out[i].Root = n.Key
		}
		out[i].Nodes = append(out[i].Nodes, n)
	}
	return out, rows.Err()
}

var ErrNoRuns = sql.ErrNoRows
