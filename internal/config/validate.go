package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims/dedupes list fields and sanity-checks weights
// and bands, returning a normalized copy plus the report.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	// copy the rank table so trimming never mutates the caller's config
	out.Org.TitleRanks = append([]TitleRank(nil), cfg.Org.TitleRanks...)
	for i := range out.Org.TitleRanks {
		out.Org.TitleRanks[i].Any = trimList(out.Org.TitleRanks[i].Any)
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			res.addErr("%s must be in [0,1], got %v", name, v)
		}
	}
	unit("matching.threshold", out.Matching.Threshold)
	unit("matching.coverage_weight", out.Matching.CoverageWeight)
	unit("matching.location_bonus", out.Matching.LocationBonus)
	unit("matching.skills_bonus", out.Matching.SkillsBonus)
	unit("matching.description_term_weight", out.Matching.DescTermWeight)
	if out.Matching.TitleTermWeight <= 0 {
		res.addErr("matching.title_term_weight must be > 0")
	}
	if out.Matching.DescTermWeight > out.Matching.TitleTermWeight {
		res.addWarn("description_term_weight exceeds title_term_weight; title is normally the stronger signal")
	}

	unit("resolver.overlap_band", out.Resolver.OverlapBand)
	unit("resolver.ambiguity_band", out.Resolver.AmbiguityBand)
	if out.Resolver.AmbiguityBand > out.Resolver.OverlapBand {
		res.addWarn("resolver.ambiguity_band exceeds overlap_band; near-ties will rarely co-map")
	}

	if out.Org.DefaultRank <= 0 {
		res.addErr("org.default_rank must be > 0")
	}
	seenRank := map[int]bool{}
	for i, tr := range out.Org.TitleRanks {
		if tr.Rank <= 0 {
			res.addErr("org.title_ranks[%d].rank must be > 0", i)
		}
		if len(tr.Any) == 0 {
			res.addErr("org.title_ranks[%d].any must have at least 1 term", i)
		}
		if seenRank[tr.Rank] {
			res.addWarn("org.title_ranks has multiple entries for rank %d; terms are merged", tr.Rank)
		}
		seenRank[tr.Rank] = true
		if tr.Rank >= out.Org.DefaultRank {
			res.addWarn("org.title_ranks[%d].rank %d is not above default_rank %d", i, tr.Rank, out.Org.DefaultRank)
		}
	}

	if out.Analysis.BatchWorkers <= 0 {
		res.addErr("analysis.batch_workers must be > 0")
	}
	if out.Analysis.ProgressEvery <= 0 {
		res.addErr("analysis.progress_every must be > 0")
	}

	if out.Serve.RescanSeconds <= 0 {
		res.addErr("serve.rescan_seconds must be > 0")
	} else if out.Serve.RescanSeconds < 10 {
		res.addWarn("serve.rescan_seconds is very low (%d); rescans may overlap.", out.Serve.RescanSeconds)
	}
	if out.Serve.AnalyzePerMinute <= 0 {
		res.addErr("serve.analyze_per_minute must be > 0")
	}
	if out.Serve.AnalyzeBurst <= 0 {
		res.addErr("serve.analyze_burst must be > 0")
	}

	return out, res
}
