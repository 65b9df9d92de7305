package orgchart

import (
	"sort"
	"strings"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/domain"
	"bdintel-engine/internal/textutil"
)

// SyntheticRootTitle labels the placeholder root used when a group has no
// identifiable single leader.
const SyntheticRootTitle = "unknown management"

// syntheticRootKey cannot collide with a title-derived NodeKey: normalized
// titles only contain letters, digits and spaces, never '*'.
const syntheticRootKey = domain.NodeKey("*synthetic-root")

// GroupKey identifies one (company, program) org group.
type GroupKey struct {
	Company     string
	ProgramCode string
}

// MappedJob pairs a job with its resolved mapping.
type MappedJob struct {
	Job     domain.JobRecord
	Mapping domain.ResolvedMapping
}

// Builder infers an org tree per (company, program) group from flat job
// records. Pure; rebuilt from scratch every run.
type Builder struct {
	Cfg config.Config
}

// Build groups mapped jobs by (company, accepted program) — a co-mapped job
// lands in every group it belongs to — and grows one rooted tree per group.
func (b Builder) Build(jobs []MappedJob) map[GroupKey]*domain.OrgTree {
	groups := map[GroupKey][]domain.JobRecord{}
	for _, mj := range jobs {
		if mj.Mapping.Status != domain.StatusMapped {
			continue
		}
		for _, acc := range mj.Mapping.Accepted {
			key := GroupKey{Company: mj.Job.Company, ProgramCode: acc.ProgramCode}
			groups[key] = append(groups[key], mj.Job)
		}
	}

	out := make(map[GroupKey]*domain.OrgTree, len(groups))
	for key, members := range groups {
		out[key] = b.buildTree(key, members)
	}
	return out
}

// node is the working state for one collapsed (title, location) position.
type node struct {
	key      domain.NodeKey
	title    string
	rank     int
	location string
	jobIDs   []string
	order    int // first-seen index, tiebreaker for deterministic layout
}

func (b Builder) buildTree(key GroupKey, members []domain.JobRecord) *domain.OrgTree {
	// Input order must not change the tree.
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	// Collapse postings into (title, location) nodes.
	byKey := map[domain.NodeKey]*node{}
	var nodes []*node
	for _, job := range members {
		title := NormalizeTitle(job.Title)
		loc := ""
		if job.Location != nil {
			loc = textutil.CleanText(job.Location.String())
		}
		nk := domain.NodeKey(title + "|" + strings.ToLower(loc))

		n := byKey[nk]
		if n == nil {
			n = &node{
				key:      nk,
				title:    title,
				rank:     b.rankFor(title),
				location: loc,
				order:    len(nodes),
			}
			byKey[nk] = n
			nodes = append(nodes, n)
		}
		n.jobIDs = append(n.jobIDs, job.ID)
	}

	// Seniority-first placement: every node can only attach to something
	// already placed, so cycles cannot form.
	placement := make([]*node, len(nodes))
	copy(placement, nodes)
	sort.SliceStable(placement, func(i, j int) bool {
		if placement[i].rank != placement[j].rank {
			return placement[i].rank < placement[j].rank
		}
		return placement[i].order < placement[j].order
	})

	tree := &domain.OrgTree{
		Company:     key.Company,
		ProgramCode: key.ProgramCode,
		Nodes:       map[domain.NodeKey]*domain.OrgNode{},
	}
	children := map[domain.NodeKey][]domain.NodeKey{}
	parent := map[domain.NodeKey]domain.NodeKey{}
	var placed []*node

	for _, n := range placement {
		if p := pickParent(placed, n); p != nil {
			parent[n.key] = p.key
			children[p.key] = append(children[p.key], n.key)
		}
		placed = append(placed, n)
	}

	// Root selection: a lone orphan at the leadership rank roots the tree.
	// Anything else (several orphans, or a most-senior node that is no
	// leader) gets a synthesized "unknown management" root, so an individual
	// contributor never poses as management.
	var orphans []*node
	for _, n := range nodes {
		if _, ok := parent[n.key]; !ok {
			orphans = append(orphans, n)
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].order < orphans[j].order })

	if len(orphans) == 1 && orphans[0].rank == b.leadRank() {
		tree.Root = orphans[0].key
	} else {
		tree.Root = syntheticRootKey
		var kids []domain.NodeKey
		for _, n := range orphans {
			kids = append(kids, n.key)
		}
		tree.Nodes[syntheticRootKey] = &domain.OrgNode{
			Key:             syntheticRootKey,
			TitleNormalized: SyntheticRootTitle,
			LevelRank:       0,
			Children:        kids,
		}
	}

	for _, n := range nodes {
		tree.Nodes[n.key] = &domain.OrgNode{
			Key:             n.key,
			TitleNormalized: n.title,
			LevelRank:       n.rank,
			Location:        n.location,
			JobIDs:          n.jobIDs,
			Children:        children[n.key],
		}
	}
	return tree
}

// pickParent finds the parent for n among already-placed seniors: the
// nearest-rank node sharing n's location, falling back to the nearest-rank
// senior anywhere. Location is a refinement, never a requirement. Among
// equal candidates the most recently placed wins, which also settles
// rank-tie sibling placement deterministically.
func pickParent(placed []*node, n *node) *node {
	pick := func(requireLoc bool) *node {
		var best *node
		for _, p := range placed {
			if p.rank >= n.rank {
				continue
			}
			if requireLoc && !sameLocation(p, n) {
				continue
			}
			if best == nil || p.rank >= best.rank {
				best = p
			}
		}
		return best
	}
	if p := pick(true); p != nil {
		return p
	}
	return pick(false)
}

func sameLocation(a, b *node) bool {
	return a.location != "" && strings.EqualFold(a.location, b.location)
}

// NormalizeTitle canonicalizes a posting title: lowercased word tokens with
// punctuation dropped, so "Sr. Software Engineer II" and "sr software
// engineer ii" collapse together.
func NormalizeTitle(title string) string {
	return textutil.TokenKey(textutil.Tokenize(title))
}

// leadRank is the most senior configured rank; only a node at this rank may
// root a tree on its own.
func (b Builder) leadRank() int {
	best := 0
	for _, tr := range b.Cfg.Org.TitleRanks {
		if best == 0 || tr.Rank < best {
			best = tr.Rank
		}
	}
	return best
}

// rankFor assigns the configured seniority rank for a normalized title.
// Unknown titles get the default (least senior) rank instead of failing.
func (b Builder) rankFor(titleNorm string) int {
	tokens := textutil.Tokenize(titleNorm)
	for _, tr := range b.Cfg.Org.TitleRanks {
		for _, kw := range tr.Any {
			want := textutil.Tokenize(kw)
			if len(want) == 0 {
				continue
			}
			for i := range tokens {
				if i+len(want) <= len(tokens) && equalRun(tokens[i:], want) {
					return tr.Rank
				}
			}
		}
	}
	return b.Cfg.Org.DefaultRank
}

func equalRun(tokens, want []string) bool {
	for i, w := range want {
		if tokens[i] != w {
			return false
		}
	}
	return true
}
