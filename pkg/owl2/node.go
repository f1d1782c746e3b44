package owl2

// NodeID identifies a completion-graph node. NodeIDs are dense integers
// indexing the graph's node arena (spec.md §9 "Cyclic graphs without
// ownership cycles"): back-references (blocking witnesses, merge
// survivors, tree parents) are plain NodeIDs, never owning pointers, so
// cycles in the model being constructed never become cycles in Go's
// object graph.
type NodeID int

// NoNode is the zero-value sentinel meaning "no such node" (e.g. a root
// node's Parent, or an unblocked node's BlockedWitness).
const NoNode NodeID = -1

// BlockingStatus classifies a node's blocking state (spec.md §3, §4.G).
type BlockingStatus int

const (
	// Unblocked nodes are eligible for rule expansion.
	Unblocked BlockingStatus = iota
	// BlockedCandidate names a node with a potential witness whose blocking
	// has not been (re)confirmed since its label last changed.
	// BlockingEngine.Recompute never assigns it; it sets only Unblocked or
	// Blocked.
	BlockedCandidate
	// Blocked nodes are inactive: no expansion rule may fire on them, and
	// the final model interprets them by looping to their witness.
	Blocked
)

// String returns a human-readable blocking status name.
func (s BlockingStatus) String() string {
	switch s {
	case Unblocked:
		return "unblocked"
	case BlockedCandidate:
		return "blocked-candidate"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// labelEntry pairs a concept admitted into a node's label with the
// dependency set that justifies its presence (spec.md §3 "Dependency
// Set").
type labelEntry struct {
	Concept *ClassExpression
	Deps    DepSet
}

// Node is a completion-graph node (spec.md §3, §4.C). Nodes are created by
// existential/at-least rules or seeded from ABox individuals, and never
// physically removed on merge — merged-away nodes are left as tombstones
// whose canonical identity is resolved through the equality reasoner's
// Find, per the design note in graph.go.
type Node struct {
	ID         NodeID
	Individual IRI // zero IRI for blank (non-ABox-seeded) tree nodes

	label      []labelEntry
	labelIndex map[uint64]int // concept structural hash -> index into label

	Depth          int    // tree depth from the nearest ABox root / fresh root
	Parent         NodeID // NoNode for ABox roots and the root of a satisfiability test
	ParentProperty IRI    // the property of the edge from Parent to this node

	Status         BlockingStatus
	BlockedWitness NodeID // valid iff Status == Blocked

	tombstone bool // true once merged into another node
}

func newNode(id NodeID, individual IRI, parent NodeID, parentProperty IRI, depth int) *Node {
	return &Node{
		ID:             id,
		Individual:     individual,
		labelIndex:     make(map[uint64]int),
		Depth:          depth,
		Parent:         parent,
		ParentProperty: parentProperty,
		BlockedWitness: NoNode,
	}
}

// Label returns the node's current set of labelled concepts. The returned
// slice must not be mutated by the caller; use Graph.AddLabel to mutate.
func (n *Node) Label() []*ClassExpression {
	out := make([]*ClassExpression, len(n.label))
	for i, e := range n.label {
		out[i] = e.Concept
	}
	return out
}

// Has reports whether c (already in NNF) is present in the node's label,
// and if so returns the dependency set that justifies it.
func (n *Node) Has(c *ClassExpression) (DepSet, bool) {
	idx, ok := n.labelIndex[c.StructuralHash()]
	if !ok {
		return DepSet{}, false
	}
	return n.label[idx].Deps, true
}

// IsBlank reports whether the node has no ABox individual identity.
func (n *Node) IsBlank() bool { return n.Individual.IsZero() }
