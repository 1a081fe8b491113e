package proof

type (
	NodeID   uint32
	ObjectID uint32
)

// Hypothesis is one entry of a goal's context.
type Hypothesis struct {
	Var    string `json:"var"`
	Ty     Term   `json:"ty"`
	Hidden bool   `json:"hidden"`
}

// Goal is the sequent a proof node has to establish.
type Goal struct {
	Hyps  []Hypothesis `json:"hys"`
	Concl Term         `json:"concl"`
}

// Child is the summary a node keeps of each subgoal. The checker omits the
// id for subgoals it never materialised as nodes.
type Child struct {
	ID       NodeID
	HasID    bool
	Goal     Goal
	Extract  *Term
	Expanded bool
	Conflict bool
}

// ProofNode is one arena entry of a theorem's proof tree.
type ProofNode struct {
	ID      NodeID
	Goal    Goal
	Extract *Term // nil until the witness is known

	// Expanded is false when the checker reported no children at all, as
	// opposed to an empty list of subgoals.
	Expanded bool
	Children []Child
	Conflict bool
}

// IsHole reports whether the node has neither children nor an extract.
func (n *ProofNode) IsHole() bool {
	return !n.Expanded && n.Extract == nil
}

// IsHole reports the same predicate for a subgoal summary.
func (c *Child) IsHole() bool {
	return !c.Expanded && c.Extract == nil
}

// Proof is the arena of one theorem's nodes plus an id index.
type Proof struct {
	Nodes []ProofNode
	index map[NodeID]int
}

// NewProof indexes nodes by id. When ids repeat the first node wins.
func NewProof(nodes []ProofNode) *Proof {
	p := &Proof{Nodes: nodes, index: make(map[NodeID]int, len(nodes))}
	for i := range nodes {
		if _, dup := p.index[nodes[i].ID]; !dup {
			p.index[nodes[i].ID] = i
		}
	}
	return p
}

// Node looks a node up by id.
func (p *Proof) Node(id NodeID) (*ProofNode, bool) {
	if p == nil {
		return nil, false
	}
	i, ok := p.index[id]
	if !ok {
		return nil, false
	}
	return &p.Nodes[i], true
}

// Len returns the number of nodes in the arena.
func (p *Proof) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Nodes)
}
