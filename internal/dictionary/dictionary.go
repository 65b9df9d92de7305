package dictionary

import (
	"fmt"
	"sort"

	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/textutil"
)

// ConfigError means the dictionary itself is malformed or ambiguous.
// Fatal: no matching may run against a partial or self-contradictory
// dictionary.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "dictionary config: " + e.Msg }

func configErrorf(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// term is one indexed alias/code name/full name.
type term struct {
	programCode string
	text        string   // original casing, used in reasoning output
	tokens      []string // lowercased word tokens
}

// Dictionary is the immutable program reference set plus a precomputed
// token index (first token -> terms starting with it). Built once at load;
// safe for concurrent readers. Reload is a whole-value swap by the caller.
type Dictionary struct {
	programs   map[string]domain.ProgramDefinition
	codes      []string // sorted, for deterministic iteration
	index      map[string][]term
	termCounts map[string]int
}

// Programs returns the program codes in sorted order.
func (d *Dictionary) Programs() []string { return d.codes }

// Program returns the definition for code.
func (d *Dictionary) Program(code string) (domain.ProgramDefinition, bool) {
	p, ok := d.programs[code]
	return p, ok
}

func (d *Dictionary) Len() int { return len(d.programs) }

// Candidate is one unranked dictionary hit for a piece of text.
type Candidate struct {
	ProgramCode     string
	MatchedKeywords []string // distinct matched terms, first-occurrence order
}

// LookupCandidates scans text for every alias, code name and full name
// across all programs. Case-insensitive and word-boundary aware: terms only
// match on whole-token runs. Hits are unranked; candidate order follows
// first occurrence in the text, so identical input gives identical output.
func (d *Dictionary) LookupCandidates(text string) []Candidate {
	tokens := textutil.Tokenize(text)

	type hitSet struct {
		keywords []string
		seen     map[string]bool
	}
	byProgram := map[string]*hitSet{}
	var order []string

	for i, tok := range tokens {
		for _, t := range d.index[tok] {
			if !tokensMatchAt(tokens, i, t.tokens) {
				continue
			}
			hs := byProgram[t.programCode]
			if hs == nil {
				hs = &hitSet{seen: map[string]bool{}}
				byProgram[t.programCode] = hs
				order = append(order, t.programCode)
			}
			if !hs.seen[t.text] {
				hs.seen[t.text] = true
				hs.keywords = append(hs.keywords, t.text)
			}
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, code := range order {
		out = append(out, Candidate{ProgramCode: code, MatchedKeywords: byProgram[code].keywords})
	}
	return out
}

func tokensMatchAt(tokens []string, i int, want []string) bool {
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

// build constructs the index, failing on alias collisions across programs.
func build(programs map[string]domain.ProgramDefinition) (*Dictionary, error) {
	d := &Dictionary{
		programs:   programs,
		index:      map[string][]term{},
		termCounts: map[string]int{},
	}
	for code := range programs {
		d.codes = append(d.codes, code)
	}
	sort.Strings(d.codes)

	// termKey -> owning program, for collision detection
	owners := map[string]string{}

	for _, code := range d.codes {
		p := programs[code]
		seen := map[string]bool{} // dedupe within one program

		// the program code itself is always a term; postings routinely cite
		// a program by bare code without it being listed as an acronym
		terms := make([]string, 0, 2+len(p.Aliases)+len(p.CodeNames))
		terms = append(terms, p.FullName, code)
		terms = append(terms, p.Aliases...)
		terms = append(terms, p.CodeNames...)

		for _, raw := range terms {
			tokens := textutil.Tokenize(raw)
			if len(tokens) == 0 {
				continue
			}
			key := textutil.TokenKey(tokens)
			if seen[key] {
				continue
			}
			seen[key] = true

			if owner, taken := owners[key]; taken && owner != code {
				return nil, configErrorf("alias %q claimed by both %s and %s", raw, owner, code)
			}
			owners[key] = code

			d.index[tokens[0]] = append(d.index[tokens[0]], term{
				programCode: code,
				text:        raw,
				tokens:      tokens,
			})
			d.termCounts[code]++
		}
	}
	return d, nil
}

// TermCount returns how many distinct indexed terms code owns. Used by the
// matcher for coverage.
func (d *Dictionary) TermCount(code string) int {
	return d.termCounts[code]
}
