package resolve

import (
	"sort"
	"strings"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/domain"
)

// Resolver turns a job's candidate matches into one canonical mapping.
type Resolver struct {
	Cfg config.Config
}

// Resolve applies the disambiguation policy:
//   - no candidates -> Unmatched
//   - one candidate -> accept it
//   - several: accept the top plus every match within overlap_band of it
//     (real dual-program roles; ties are kept, never broken arbitrarily) —
//     unless the top two sit within ambiguity_band AND share no matched
//     keyword, which means the matcher genuinely cannot tell -> Unresolved.
func (r Resolver) Resolve(jobID string, matches []domain.ProgramMatch) domain.ResolvedMapping {
	if len(matches) == 0 {
		return domain.ResolvedMapping{JobID: jobID, Status: domain.StatusUnmatched}
	}

	sorted := make([]domain.ProgramMatch, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].ProgramCode < sorted[j].ProgramCode
	})

	top := sorted[0]
	if len(sorted) > 1 {
		second := sorted[1]
		near := top.Confidence-second.Confidence <= r.Cfg.Resolver.AmbiguityBand
		if near && !shareKeyword(top, second) {
			return domain.ResolvedMapping{JobID: jobID, Status: domain.StatusUnresolved}
		}
	}

	var accepted []domain.AcceptedProgram
	for _, m := range sorted {
		if top.Confidence-m.Confidence > r.Cfg.Resolver.OverlapBand {
			break
		}
		accepted = append(accepted, domain.AcceptedProgram{
			ProgramCode:     m.ProgramCode,
			Confidence:      m.Confidence,
			MatchedKeywords: m.MatchedKeywords,
			Reasoning:       m.Reasoning,
		})
	}

	return domain.ResolvedMapping{JobID: jobID, Status: domain.StatusMapped, Accepted: accepted}
}

func shareKeyword(a, b domain.ProgramMatch) bool {
	set := make(map[string]bool, len(a.MatchedKeywords))
	for _, k := range a.MatchedKeywords {
		set[strings.ToLower(k)] = true
	}
	for _, k := range b.MatchedKeywords {
		if set[strings.ToLower(k)] {
			return true
		}
	}
	return false
}
