package owl2

// BlockingStrategy selects how the blocking engine decides that a node's
// obligations are already witnessed by an ancestor (spec.md §4.G).
type BlockingStrategy int

const (
	// SubsetBlocking blocks n by ancestor m when label(n) ⊆ label(m).
	SubsetBlocking BlockingStrategy = iota
	// EqualityBlocking blocks n by ancestor m only when label(n) = label(m).
	EqualityBlocking
	// DynamicBlocking is equality blocking (label(n) = label(m)) recomputed
	// whenever n's label changes, so a formerly-blocked node unblocks once
	// its label no longer equals its witness's. This is the default
	// strategy.
	DynamicBlocking
)

// String returns a human-readable blocking strategy name.
func (s BlockingStrategy) String() string {
	switch s {
	case SubsetBlocking:
		return "subset"
	case EqualityBlocking:
		return "equality"
	case DynamicBlocking:
		return "dynamic"
	default:
		return "unknown"
	}
}

// BlockingEngine recomputes node blocking status against ancestor
// witnesses (spec.md §4.G). It holds no mutable state of its own beyond
// the configured strategy: Status and BlockedWitness live on the Node and
// are a pure function of current labels, so after a backjump rewind
// restores labels to an earlier watermark, calling Recompute again
// reproduces the correct blocking status without needing its own undo
// trail entries.
type BlockingEngine struct {
	strategy BlockingStrategy
}

// NewBlockingEngine creates a blocking engine using strategy.
func NewBlockingEngine(strategy BlockingStrategy) *BlockingEngine {
	return &BlockingEngine{strategy: strategy}
}

// Recompute re-evaluates n's blocking status against its ancestor chain
// in g (spec.md §4.G "Blocking checks run after each add_label that
// introduces a concept involving an existential or at-least restriction
// in its ancestor chain"). Only blank (non-ABox-seeded) nodes can be
// blocked, and only blank ancestors are eligible witnesses: ABox
// individuals are distinguished identities, not interchangeable tree
// witnesses, so ABox root nodes never block or are blocked (an Open
// Question in spec.md resolved this way; see DESIGN.md). The blank,
// depth-0 root of a satisfiability test is never blocked but can serve
// as a witness for its descendants.
func (be *BlockingEngine) Recompute(g *Graph, n NodeID) {
	node := g.Node(n)
	if !node.IsBlank() || node.Depth == 0 {
		node.Status = Unblocked
		node.BlockedWitness = NoNode
		return
	}

	ancestor := node.Parent
	for ancestor != NoNode {
		witness := g.rawNode(ancestor)
		if witness.IsBlank() && be.witnesses(node, witness) {
			node.Status = Blocked
			node.BlockedWitness = ancestor
			return
		}
		ancestor = witness.Parent
	}
	node.Status = Unblocked
	node.BlockedWitness = NoNode
}

// witnesses reports whether ancestor's label satisfies n's obligations
// under the configured strategy.
func (be *BlockingEngine) witnesses(n, ancestor *Node) bool {
	switch be.strategy {
	case EqualityBlocking, DynamicBlocking:
		return labelSubset(n, ancestor) && labelSubset(ancestor, n)
	default: // SubsetBlocking
		return labelSubset(n, ancestor)
	}
}

// labelSubset reports whether every concept in sub's label (by structural
// hash) is also present in sup's label.
func labelSubset(sub, sup *Node) bool {
	if len(sub.label) > len(sup.label) {
		return false
	}
	for h := range sub.labelIndex {
		if _, ok := sup.labelIndex[h]; !ok {
			return false
		}
	}
	return true
}

// RecomputeSubtree recomputes blocking status for n and every descendant
// reachable via Parent links recorded in g's node arena. The expansion
// engine does not call it: it recomputes blocking one node at a time via
// Recompute, for the node whose label or creation is being processed.
func (be *BlockingEngine) RecomputeSubtree(g *Graph, n NodeID) {
	children := make(map[NodeID][]NodeID)
	for _, id := range g.AllNodeIDs() {
		if g.IsTombstoned(id) {
			continue
		}
		p := g.rawNode(id).Parent
		if p != NoNode {
			children[p] = append(children[p], id)
		}
	}
	var walk func(NodeID)
	walk = func(cur NodeID) {
		be.Recompute(g, cur)
		for _, c := range children[cur] {
			walk(c)
		}
	}
	walk(n)
}
