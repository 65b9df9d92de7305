package emit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/orgchart"
)

// Fixed reasoning strings for the non-mapped outcomes, so downstream triage
// tooling can key off them.
const (
	reasonUnmatched  = "no dictionary terms cleared the match threshold"
	reasonUnresolved = "top candidates scored too close to call with disjoint keyword evidence"
)

// MappingEntry is one row of the mapping export. Field names follow the
// downstream scoring/playbook contract.
type MappingEntry struct {
	JobID           string    `json:"job_id"`
	Status          string    `json:"status"`
	MappedPrograms  []string  `json:"mapped_programs"`
	ConfidenceScore float64   `json:"confidence_score"`
	Reasoning       string    `json:"reasoning"`
	KeywordsFound   []string  `json:"keywords_found"`
	MappedAt        time.Time `json:"mapped_at"`
	Source          string    `json:"source"`
}

// OrgNodeEntry is one node of an exported tree; children reference node
// keys within the same group.
type OrgNodeEntry struct {
	Key       string   `json:"key"`
	Title     string   `json:"title"`
	LevelRank int      `json:"level_rank"`
	Location  string   `json:"location,omitempty"`
	JobIDs    []string `json:"job_ids"`
	Children  []string `json:"children"`
}

// OrgGroupEntry is one (company, program) tree with its root made explicit.
type OrgGroupEntry struct {
	Company     string         `json:"company"`
	ProgramCode string         `json:"program_code"`
	Root        string         `json:"root"`
	Nodes       []OrgNodeEntry `json:"nodes"`
}

// BuildMappingExport serializes every mapping — Unresolved and Unmatched
// included, with an explicit status, since omitting them would silently
// lose triage signal.
func BuildMappingExport(mappings []domain.ResolvedMapping, at time.Time) []MappingEntry {
	out := make([]MappingEntry, 0, len(mappings))
	for _, m := range mappings {
		e := MappingEntry{
			JobID:          m.JobID,
			Status:         string(m.Status),
			MappedPrograms: []string{},
			KeywordsFound:  []string{},
			MappedAt:       at,
			Source:         "keyword_matching",
		}
		switch m.Status {
		case domain.StatusUnmatched:
			e.Reasoning = reasonUnmatched
		case domain.StatusUnresolved:
			e.Reasoning = reasonUnresolved
		default:
			var reasons []string
			seen := map[string]bool{}
			for _, a := range m.Accepted {
				e.MappedPrograms = append(e.MappedPrograms, a.ProgramCode)
				if a.Confidence > e.ConfidenceScore {
					e.ConfidenceScore = a.Confidence
				}
				reasons = append(reasons, fmt.Sprintf("%s: %s", a.ProgramCode, a.Reasoning))
				for _, kw := range a.MatchedKeywords {
					k := strings.ToLower(kw)
					if seen[k] {
						continue
					}
					seen[k] = true
					e.KeywordsFound = append(e.KeywordsFound, kw)
				}
			}
			e.Reasoning = strings.Join(reasons, " | ")
		}
		out = append(out, e)
	}
	return out
}

// BuildOrgExport flattens the trees into the org contract. A job co-mapped
// to two programs appears in both groups; that fan-out is expected and must
// not be deduplicated away.
func BuildOrgExport(trees map[orgchart.GroupKey]*domain.OrgTree) []OrgGroupEntry {
	keys := make([]orgchart.GroupKey, 0, len(trees))
	for k := range trees {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Company != keys[j].Company {
			return keys[i].Company < keys[j].Company
		}
		return keys[i].ProgramCode < keys[j].ProgramCode
	})

	out := make([]OrgGroupEntry, 0, len(keys))
	for _, k := range keys {
		tree := trees[k]
		group := OrgGroupEntry{
			Company:     tree.Company,
			ProgramCode: tree.ProgramCode,
			Root:        string(tree.Root),
		}
		nodeKeys := make([]string, 0, len(tree.Nodes))
		for nk := range tree.Nodes {
			nodeKeys = append(nodeKeys, string(nk))
		}
		sort.Strings(nodeKeys)
		// root first, then rank order, then key
		sort.SliceStable(nodeKeys, func(i, j int) bool {
			a, b := tree.Nodes[domain.NodeKey(nodeKeys[i])], tree.Nodes[domain.NodeKey(nodeKeys[j])]
			return a.LevelRank < b.LevelRank
		})
		for _, nk := range nodeKeys {
			n := tree.Nodes[domain.NodeKey(nk)]
			entry := OrgNodeEntry{
				Key:       string(n.Key),
				Title:     n.TitleNormalized,
				LevelRank: n.LevelRank,
				Location:  n.Location,
				JobIDs:    append([]string{}, n.JobIDs...),
				Children:  []string{},
			}
			for _, c := range n.Children {
				entry.Children = append(entry.Children, string(c))
			}
			group.Nodes = append(group.Nodes, entry)
		}
		out = append(out, group)
	}
	return out
}

// WriteFile writes v as indented JSON, matching the export files the rest
// of the tooling consumes.
func WriteFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
