package domain

// NodeKey addresses an OrgNode inside its tree's arena. Stable within a run.
type NodeKey string

// OrgNode is one inferred hierarchy position. Children are key relations
// into the owning tree, not owned values, so the structure cannot cycle
// through ownership.
type OrgNode struct {
	Key             NodeKey
	TitleNormalized string
	LevelRank       int // lower = more senior; 0 is reserved for synthesized roots
	Location        string
	JobIDs          []string // supporting postings; size is the node's weight signal
	Children        []NodeKey
}

// OrgTree is the rooted hierarchy inferred for one (company, program) group.
// Rebuilt per analysis run; a disposable derived view.
type OrgTree struct {
	Company     string
	ProgramCode string
	Root        NodeKey
	Nodes       map[NodeKey]*OrgNode
}

// Node returns the node for key, or nil.
func (t *OrgTree) Node(key NodeKey) *OrgNode {
	return t.Nodes[key]
}
