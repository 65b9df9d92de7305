package match

import (
	"fmt"
	"strings"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/dictionary"
	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/textutil"
)

// Matcher maps a job to candidate programs with confidence scores. Pure:
// identical (job, dictionary, weights) always yields identical matches and
// reasoning text.
type Matcher struct {
	Dict *dictionary.Dictionary
	Cfg  config.Config
}

// termHit records where a dictionary term was found.
type termHit struct {
	text    string
	inTitle bool
}

// Match scans title and description for dictionary terms, scores each
// candidate program, and returns those at or above the threshold. Candidate
// order follows first occurrence (title before description).
func (m Matcher) Match(job domain.JobRecord) []domain.ProgramMatch {
	w := m.Cfg.Matching

	titleCands := m.Dict.LookupCandidates(job.Title)
	descCands := m.Dict.LookupCandidates(job.Description)

	hits := map[string][]termHit{}
	var order []string

	for _, c := range titleCands {
		if _, ok := hits[c.ProgramCode]; !ok {
			order = append(order, c.ProgramCode)
		}
		for _, kw := range c.MatchedKeywords {
			hits[c.ProgramCode] = append(hits[c.ProgramCode], termHit{text: kw, inTitle: true})
		}
	}
	for _, c := range descCands {
		if _, ok := hits[c.ProgramCode]; !ok {
			order = append(order, c.ProgramCode)
		}
		seen := map[string]bool{}
		for _, h := range hits[c.ProgramCode] {
			seen[strings.ToLower(h.text)] = true
		}
		for _, kw := range c.MatchedKeywords {
			if seen[strings.ToLower(kw)] {
				continue
			}
			hits[c.ProgramCode] = append(hits[c.ProgramCode], termHit{text: kw})
		}
	}

	descTokens := textutil.Tokenize(job.Description)

	var out []domain.ProgramMatch
	for _, code := range order {
		prog, ok := m.Dict.Program(code)
		if !ok {
			continue
		}
		ph := hits[code]

		// (a) coverage: weighted fraction of the program's term set matched
		weighted := 0.0
		for _, h := range ph {
			if h.inTitle {
				weighted += w.TitleTermWeight
			} else {
				weighted += w.DescTermWeight
			}
		}
		coverage := 0.0
		if n := m.Dict.TermCount(code); n > 0 {
			coverage = weighted / float64(n)
			if coverage > 1 {
				coverage = 1
			}
		}

		// (b) location bonus; a job without a location just scores none
		locHit := job.Location != nil && locationMatches(*job.Location, prog.Locations)

		// (c) skills bonus if any key skill shows up in the description
		skills := matchedSkills(descTokens, prog.KeySkills)

		confidence := w.CoverageWeight * coverage
		if locHit {
			confidence += w.LocationBonus
		}
		if len(skills) > 0 {
			confidence += w.SkillsBonus
		}
		if confidence > 1 {
			confidence = 1
		}
		if confidence < w.Threshold {
			continue
		}

		keywords := make([]string, 0, len(ph)+len(skills))
		for _, h := range ph {
			keywords = append(keywords, h.text)
		}
		keywords = append(keywords, skills...)

		out = append(out, domain.ProgramMatch{
			JobID:           job.ID,
			ProgramCode:     code,
			Confidence:      confidence,
			MatchedKeywords: keywords,
			Reasoning:       reasoning(job, prog, ph, locHit, skills),
		})
	}
	return out
}

// locationMatches reports whether the job location shares any token with a
// program location. Weak signal on purpose: a state-only record still
// matches a program site in that state.
func locationMatches(loc domain.Location, programLocs []string) bool {
	jobTokens := textutil.Tokenize(loc.String())
	if len(jobTokens) == 0 {
		return false
	}
	jobSet := map[string]bool{}
	for _, t := range jobTokens {
		jobSet[t] = true
	}
	for _, pl := range programLocs {
		for _, t := range textutil.Tokenize(pl) {
			if jobSet[t] {
				return true
			}
		}
	}
	return false
}

// matchedSkills returns the program skills present in the description, in
// the program's declared order.
func matchedSkills(descTokens []string, skills []string) []string {
	var out []string
	for _, s := range skills {
		want := textutil.Tokenize(s)
		if len(want) == 0 {
			continue
		}
		for i := range descTokens {
			if tokensAt(descTokens, i, want) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func tokensAt(tokens []string, i int, want []string) bool {
	if i+len(want) > len(tokens) {
		return false
	}
	for j, w := range want {
		if tokens[i+j] != w {
			return false
		}
	}
	return true
}

// reasoning builds the justification string in a fixed order (alias hits,
// then location, then skills) so identical input yields identical text.
func reasoning(job domain.JobRecord, prog domain.ProgramDefinition, hits []termHit, locHit bool, skills []string) string {
	var parts []string

	var terms []string
	for _, h := range hits {
		where := "description"
		if h.inTitle {
			where = "title"
		}
		terms = append(terms, fmt.Sprintf("%q in %s", h.text, where))
	}
	if len(terms) > 0 {
		parts = append(parts, "matched "+strings.Join(terms, ", "))
	}
	if locHit {
		parts = append(parts, fmt.Sprintf("location %s matches a %s site", job.Location.String(), prog.ProgramCode))
	}
	if len(skills) > 0 {
		parts = append(parts, "key skills: "+strings.Join(skills, ", "))
	}
	return strings.Join(parts, "; ")
}
