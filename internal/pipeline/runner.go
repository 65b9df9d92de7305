package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/emit"
	"bdintel-engine/internal/events"
	"bdintel-engine/internal/ingest"
	"bdintel-engine/internal/store"
)

// Runner wraps the pure Engine with the run's side effects: the data-dir
// lock, sqlite persistence, export files and SSE events. DB, Hub and OutDir
// are each optional.
type Runner struct {
	Engine  Engine
	DB      *store.DB
	Hub     *events.Hub
	DataDir string
	OutDir  string
}

// AnalyzeFile runs the full pipeline over one normalized-jobs file. Two
// engine processes sharing a data dir would race on the sqlite db and the
// export files, so the run holds a flock for its duration.
func (r Runner) AnalyzeFile(ctx context.Context, jobsPath string) (Result, error) {
	jobs, report, err := ingest.LoadFile(jobsPath)
	if err != nil {
		return Result{}, err
	}
	return r.Analyze(ctx, jobs, report)
}

// Analyze runs the engine over already-loaded jobs and applies the side
// effects.
func (r Runner) Analyze(ctx context.Context, jobs []domain.JobRecord, report ingest.Report) (Result, error) {
	if r.DataDir != "" {
		lock := flock.New(filepath.Join(r.DataDir, "engine.lock"))
		locked, err := lock.TryLock()
		if err != nil {
			return Result{}, fmt.Errorf("run lock: %w", err)
		}
		if !locked {
			return Result{}, fmt.Errorf("another run holds %s", lock.Path())
		}
		defer lock.Unlock()
	}

	r.publish(events.RunStarted("", "", len(jobs)))

	res, err := r.Engine.Run(ctx, jobs, report)
	if err != nil {
		r.publish(events.RunFailed("", "", err.Error()))
		return Result{}, err
	}

	if r.DB != nil {
		sum := store.RunSummary{
			ID:          res.RunID,
			StartedAt:   res.StartedAt,
			FinishedAt:  res.FinishedAt,
			JobsLoaded:  report.Loaded,
			JobsSkipped: report.Skipped,
			Mapped:      res.Mapped,
			Unresolved:  res.Unresolved,
			Unmatched:   res.Unmatched,
		}
		if err := r.DB.SaveRun(ctx, sum, res.MappingExport, res.OrgExport); err != nil {
			r.publish(events.RunFailed("", res.RunID, err.Error()))
			return Result{}, fmt.Errorf("persist run: %w", err)
		}
	}

	if r.OutDir != "" {
		if err := r.WriteExports(res, r.OutDir); err != nil {
			r.publish(events.RunFailed("", res.RunID, err.Error()))
			return Result{}, err
		}
	}

	r.publish(events.RunCompleted("", res.RunID, res.Mapped, res.Unresolved, res.Unmatched))
	return res, nil
}

func (r Runner) publish(evt string) {
	if r.Hub != nil {
		r.Hub.Publish(evt)
	}
}

// WriteExports writes the mapping and org export files plus the skipped-
// record report into dir.
func (r Runner) WriteExports(res Result, dir string) error {
	if err := emit.WriteFile(filepath.Join(dir, "program_mappings.json"), res.MappingExport); err != nil {
		return err
	}
	if err := emit.WriteFile(filepath.Join(dir, "org_trees.json"), res.OrgExport); err != nil {
		return err
	}
	if err := emit.WriteFile(filepath.Join(dir, "ingest_report.json"), res.Report); err != nil {
		return err
	}
	r.Engine.Log.Infof("[run] exports written dir=%s", dir)
	return nil
}
