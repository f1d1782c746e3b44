package owl2

// AddLabelResult reports the outcome of Graph.AddLabel (spec.md §4.C
// "add_label(n, C, deps) → {Added, Present, Clash(witness, deps')}").
type AddLabelResult int

const (
	LabelAdded AddLabelResult = iota
	LabelPresent
	LabelClash
)

// String returns a human-readable add-label result name.
func (r AddLabelResult) String() string {
	switch r {
	case LabelAdded:
		return "added"
	case LabelPresent:
		return "present"
	case LabelClash:
		return "clash"
	default:
		return "unknown"
	}
}

// MergeResult reports the outcome of Graph.Merge (spec.md §4.C
// "merge(n, m, deps) → {Ok, Clash}").
type MergeResult int

const (
	MergeOk MergeResult = iota
	MergeClash
)

// String returns a human-readable merge result name.
func (r MergeResult) String() string {
	switch r {
	case MergeOk:
		return "ok"
	case MergeClash:
		return "clash"
	default:
		return "unknown"
	}
}

// Graph is a single reasoning task's completion graph (spec.md §3, §4.C):
// a set of nodes, each labelled with concepts and dependency sets, joined
// by property-labelled edges. Node and edge storage is append-only and
// journaled through MemoryManager so that Rewind restores prior graph
// state exactly; merged-away nodes are tombstoned rather than removed, and
// edges are never rewritten — both endpoints are resolved through the
// equality reasoner's Find at read time (see the doc comment on Edge).
type Graph struct {
	mm  *MemoryManager
	eq  *EqualityReasoner
	rb  *RBox

	nodes    []*Node
	edges    []*Edge
	byNode   map[NodeID][]int // node ID -> indices into edges, both directions
	nextEdge int
}

// NewGraph creates an empty completion graph whose node/equality state is
// journaled through mm. rb (the ontology's RBox, built once at load time
// and shared read-only across reasoning tasks spawned from the same
// Ontology) is stored but not read by the graph itself; transitive and
// chain propagation run in the expansion engine.
func NewGraph(mm *MemoryManager, eq *EqualityReasoner, rb *RBox) *Graph {
	return &Graph{
		mm:     mm,
		eq:     eq,
		rb:     rb,
		byNode: make(map[NodeID][]int),
	}
}

// NewNode allocates a fresh node, optionally seeded with an ABox
// individual (spec.md §4.C "new_node(individual?) → NodeId"). parent and
// parentProperty describe the tree edge that created this node
// (NoNode/zero IRI for ABox roots). Returns a ResourceExhausted-kind
// *ReasonerError if the memory manager's node cap would be exceeded.
func (g *Graph) NewNode(individual IRI, parent NodeID, parentProperty IRI, depth int) (NodeID, error) {
	if err := g.mm.CheckCapacity(1); err != nil {
		return NoNode, err
	}
	id := NodeID(len(g.nodes))
	n := newNode(id, individual, parent, parentProperty, depth)
	g.nodes = append(g.nodes, n)
	g.mm.NodeCreated()
	g.mm.Record(func() {
		g.nodes = g.nodes[:len(g.nodes)-1]
	})
	g.eq.MakeSet(id)
	return id, nil
}

// Node returns the node identified by id, resolved through the equality
// reasoner to its current representative. Panics if id is out of range,
// since callers only ever hold IDs this graph handed out.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[g.eq.Find(id)]
}

// rawNode bypasses equality resolution, used internally where the exact
// (possibly tombstoned) node identity matters, e.g. when reporting a
// merge's absorbed side.
func (g *Graph) rawNode(id NodeID) *Node { return g.nodes[id] }

// AddLabel admits concept c (already NNF-normalized by the caller, per
// spec.md §4.B "Concepts are kept in NNF once admitted to a node's label,
// so clash checks reduce to a label lookup") into node n's label under
// justification deps. If c's structural-hash twin already carries the
// concept, AddLabel returns Present without widening deps — a fact
// justified by a subset of choice points is still justified by the
// superset that any later derivation would produce, and spec.md's clash
// contract asks for the minimal witness, so we keep whichever dependency
// set arrived first. If the node's label already contains the negation of
// c, AddLabel returns a clash with the union of both dependency sets.
func (g *Graph) AddLabel(n NodeID, c *ClassExpression, deps DepSet) (AddLabelResult, DepSet) {
	node := g.Node(n)
	if existing, ok := node.Has(c); ok {
		return LabelPresent, existing
	}
	for _, e := range node.label {
		if IsNegationOf(e.Concept, c) {
			return LabelClash, e.Deps.Union(deps)
		}
	}
	idx := len(node.label)
	node.label = append(node.label, labelEntry{Concept: c, Deps: deps})
	node.labelIndex[c.StructuralHash()] = idx
	g.mm.Record(func() {
		delete(node.labelIndex, c.StructuralHash())
		node.label = node.label[:idx]
	})
	return LabelAdded, deps
}

// AddEdge creates an edge (from, Property, to) justified by deps (spec.md
// §4.C "add_edge(n, P, m, deps)"). Parallel edges for the same property
// between the same pair of raw endpoints are not deduplicated here — the
// expansion engine is responsible for checking successors before
// creating a fresh one, since whether two edges are "the same" depends on
// rule context (e.g. an at-most rule deliberately wants to see all
// parallel R-successors to decide which to merge).
func (g *Graph) AddEdge(from NodeID, property IRI, to NodeID, deps DepSet) *Edge {
	e := &Edge{ID: g.nextEdge, From: from, To: to, Property: property, Deps: deps}
	g.nextEdge++
	idx := len(g.edges)
	g.edges = append(g.edges, e)
	g.byNode[from] = append(g.byNode[from], idx)
	g.byNode[to] = append(g.byNode[to], idx)
	g.mm.Record(func() {
		g.edges = g.edges[:idx]
		g.byNode[from] = g.byNode[from][:len(g.byNode[from])-1]
		g.byNode[to] = g.byNode[to][:len(g.byNode[to])-1]
		g.nextEdge--
	})
	return e
}

// Merge unions n and m's equivalence classes (spec.md §4.C "merge(n, m,
// deps) → {Ok, Clash}"), folding the absorbed node's label into the
// survivor. A clash occurs either because n and m were previously marked
// different-from each other (detected by the equality reasoner), or
// because folding the absorbed label in produces a concept/negation
// collision on the survivor. Edges are left untouched: both endpoints are
// always read back through Find, so an edge into the absorbed node
// transparently becomes an edge into the survivor without a rewrite.
func (g *Graph) Merge(n, m NodeID, deps DepSet) (MergeResult, DepSet) {
	survivor := g.eq.Find(n)
	absorbed := g.eq.Find(m)
	if survivor == absorbed {
		return MergeOk, deps
	}
	if clash, clashDeps := g.eq.Same(survivor, absorbed, deps); clash {
		return MergeClash, clashDeps
	}
	// eq.Same may have picked either side as the new root depending on
	// rank; re-resolve to find which of {survivor, absorbed} is now the
	// live representative and fold the other node's label into it.
	root := g.eq.Find(survivor)
	var dead NodeID
	if root == survivor {
		dead = absorbed
	} else {
		dead = survivor
	}
	deadNode := g.rawNode(dead)
	for _, e := range deadNode.label {
		if result, clashDeps := g.AddLabel(root, e.Concept, e.Deps.Union(deps)); result == LabelClash {
			return MergeClash, clashDeps
		}
	}
	if !deadNode.tombstone {
		deadNode.tombstone = true
		g.mm.Record(func() { deadNode.tombstone = false })
	}
	return MergeOk, deps
}

// IterSuccessors returns the R-successors of n for property p (spec.md
// §4.C "iter_successors(n, P)"): every node m such that an edge (n', P,
// m) exists with n' resolving to the same representative as n, reported
// by m's own current representative. If p.IsZero(), edges of every
// property are returned.
func (g *Graph) IterSuccessors(n NodeID, p IRI) []*Edge {
	return g.iterEdges(n, p, true)
}

// IterPredecessors returns the R-predecessors of n for property p
// (spec.md §4.C "iter_predecessors(n, P)"), symmetric to IterSuccessors.
func (g *Graph) IterPredecessors(n NodeID, p IRI) []*Edge {
	return g.iterEdges(n, p, false)
}

func (g *Graph) iterEdges(n NodeID, p IRI, successors bool) []*Edge {
	target := g.eq.Find(n)
	var out []*Edge
	seen := make(map[int]bool)
	for _, raw := range []NodeID{n, target} {
		for _, idx := range g.byNode[raw] {
			if seen[idx] {
				continue
			}
			e := g.edges[idx]
			if successors {
				if g.eq.Find(e.From) != target {
					continue
				}
			} else {
				if g.eq.Find(e.To) != target {
					continue
				}
			}
			if !p.IsZero() && e.Property != p {
				continue
			}
			seen[idx] = true
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes allocated in this graph and not
// undone by a rewind (including tombstoned ones), i.e. the current length
// of the node arena. MemoryManager.NodeCount counts the same allocations;
// neither count drops when a merge tombstones a node.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// AllNodeIDs returns every node ID ever allocated, for callers (the
// expansion engine's scheduler, the model builder) that need to walk the
// whole graph including tombstoned nodes reachable only as merge
// survivors' history.
func (g *Graph) AllNodeIDs() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i := range g.nodes {
		ids[i] = NodeID(i)
	}
	return ids
}

// IsTombstoned reports whether id has been merged away into another
// node's representative.
func (g *Graph) IsTombstoned(id NodeID) bool { return g.rawNode(id).tombstone }
