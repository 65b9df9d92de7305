package domain

// ProgramMatch is one scored (job, program) candidate produced by the matcher.
// Ephemeral: feeds the resolver, never persisted on its own.
type ProgramMatch struct {
	JobID           string
	ProgramCode     string
	Confidence      float64
	MatchedKeywords []string // first-occurrence order, provenance of the score
	Reasoning       string
}

// MappingStatus distinguishes "ambiguous" from "no evidence".
type MappingStatus string

const (
	StatusMapped     MappingStatus = "mapped"
	StatusUnresolved MappingStatus = "unresolved" // scores too close, disjoint evidence
	StatusUnmatched  MappingStatus = "unmatched"  // nothing cleared the threshold
)

// AcceptedProgram is one program a job was mapped to, with its evidence.
type AcceptedProgram struct {
	ProgramCode     string
	Confidence      float64
	MatchedKeywords []string
	Reasoning       string
}

// ResolvedMapping is the canonical per-job outcome of match+resolve.
// Accepted is non-empty iff Status == StatusMapped. A job may carry more
// than one accepted program (shared subsystem work).
type ResolvedMapping struct {
	JobID    string
	Status   MappingStatus
	Accepted []AcceptedProgram
}

// ProgramCodes returns the accepted codes in confidence order.
func (m ResolvedMapping) ProgramCodes() []string {
	out := make([]string, 0, len(m.Accepted))
	for _, a := range m.Accepted {
		out = append(out, a.ProgramCode)
	}
	return out
}
