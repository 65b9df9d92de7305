package pipeline

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/dictionary"
	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/emit"
	"bdintel-engine/internal/ingest"
	"bdintel-engine/internal/match"
	"bdintel-engine/internal/orgchart"
	"bdintel-engine/internal/resolve"
)

// Engine runs match -> resolve -> org build over one batch of jobs. The
// dictionary is read-only for the whole run; swap the Engine value to
// reload it.
type Engine struct {
	Cfg  config.Config
	Dict *dictionary.Dictionary
	Log  *zap.SugaredLogger
}

// Result is everything one analysis run produced.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Report   ingest.Report
	Mappings []domain.ResolvedMapping
	Trees    map[orgchart.GroupKey]*domain.OrgTree

	MappingExport []emit.MappingEntry
	OrgExport     []emit.OrgGroupEntry

	Mapped     int
	Unresolved int
	Unmatched  int
}

// Run evaluates the whole batch. Matching and resolving are pure per job,
// so companies are scored in parallel; the org builder waits for all of a
// group's mappings (it needs the full sibling set) behind the errgroup
// barrier.
func (e Engine) Run(ctx context.Context, jobs []domain.JobRecord, report ingest.Report) (Result, error) {
	res := Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Report:    report,
	}

	matcher := match.Matcher{Dict: e.Dict, Cfg: e.Cfg}
	resolver := resolve.Resolver{Cfg: e.Cfg}

	// Stable job order in, stable mapping order out.
	ordered := make([]domain.JobRecord, len(jobs))
	copy(ordered, jobs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	batches := map[string][]int{}
	for i, job := range ordered {
		batches[job.Company] = append(batches[job.Company], i)
	}

	mappings := make([]domain.ResolvedMapping, len(ordered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Cfg.Analysis.BatchWorkers)

	var done atomic.Int64
	every := int64(e.Cfg.Analysis.ProgressEvery)

	for company, idxs := range batches {
		g.Go(func() error {
			for _, i := range idxs {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				job := ordered[i]
				mappings[i] = resolver.Resolve(job.ID, matcher.Match(job))

				if n := done.Add(1); every > 0 && n%every == 0 {
					e.Log.Infof("[map] %d/%d jobs", n, len(ordered))
				}
			}
			e.Log.Debugf("[map] company=%q done jobs=%d", company, len(idxs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res.Mappings = mappings
	for _, m := range mappings {
		switch m.Status {
		case domain.StatusMapped:
			res.Mapped++
		case domain.StatusUnresolved:
			res.Unresolved++
		case domain.StatusUnmatched:
			res.Unmatched++
		}
	}

	// Barrier reached: every group's mappings exist, build the trees.
	mapped := make([]orgchart.MappedJob, len(ordered))
	for i, job := range ordered {
		mapped[i] = orgchart.MappedJob{Job: job, Mapping: mappings[i]}
	}
	builder := orgchart.Builder{Cfg: e.Cfg}
	res.Trees = builder.Build(mapped)

	res.FinishedAt = time.Now().UTC()
	res.MappingExport = emit.BuildMappingExport(res.Mappings, res.FinishedAt)
	res.OrgExport = emit.BuildOrgExport(res.Trees)

	e.Log.Infof("[run] id=%s jobs=%d mapped=%d unresolved=%d unmatched=%d groups=%d",
		res.RunID, len(ordered), res.Mapped, res.Unresolved, res.Unmatched, len(res.Trees))
	return res, nil
}
