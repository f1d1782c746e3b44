package owl2

// EqualityReasoner is a disjoint-set forest over completion-graph node
// identities, with path compression and union-by-rank, plus a symmetric
// different-from relation whose violation is a clash (spec.md §4.D). The
// union-find shape itself is grounded in the DSU used by
// prim_kruskal.Kruskal in the reference graph library: parent/rank maps
// with the textbook "walk to root, compress, union by rank" algorithm.
type EqualityReasoner struct {
	mm       *MemoryManager
	parent   map[NodeID]NodeID
	rank     map[NodeID]int
	diffFrom map[NodeID]map[NodeID]DepSet // symmetric: diffFrom[a][b] and diffFrom[b][a] both set
}

// NewEqualityReasoner creates an empty equality reasoner journaled
// against mm so unions and different-from assertions are undone on
// backjump.
func NewEqualityReasoner(mm *MemoryManager) *EqualityReasoner {
	return &EqualityReasoner{
		mm:       mm,
		parent:   make(map[NodeID]NodeID),
		rank:     make(map[NodeID]int),
		diffFrom: make(map[NodeID]map[NodeID]DepSet),
	}
}

// MakeSet registers a freshly created node as its own representative.
func (e *EqualityReasoner) MakeSet(n NodeID) {
	e.parent[n] = n
	e.rank[n] = 0
	e.mm.Record(func() {
		delete(e.parent, n)
		delete(e.rank, n)
	})
}

// Find returns the canonical representative of n's equivalence class,
// compressing the path as it walks (spec.md §4.D "Union-Find with
// path-compression"). Path compression mutates e.parent in place, so each
// compressed link is journaled individually; this keeps rewind correct at
// the cost of slightly more trail entries during heavy find() traffic, a
// trade accepted because compression only shortens chains it never
// lengthens, and correctness under backjump matters more than trail size
// here.
func (e *EqualityReasoner) Find(n NodeID) NodeID {
	root := n
	for e.parent[root] != root {
		root = e.parent[root]
	}
	// Path compression.
	for e.parent[n] != root {
		next := e.parent[n]
		old := e.parent[n]
		nn := n
		e.parent[n] = root
		e.mm.Record(func() { e.parent[nn] = old })
		n = next
	}
	return root
}

// Same unions n and m's equivalence classes, recording deps as the
// justification for the union. Returns true and the combined witness deps
// if n and m were already marked different-from each other (a clash),
// per spec.md §4.D "Merging two nodes marked different-from each other
// yields a clash with the union of both witnesses' deps".
func (e *EqualityReasoner) Same(n, m NodeID, deps DepSet) (clash bool, clashDeps DepSet) {
	rn, rm := e.Find(n), e.Find(m)
	if rn == rm {
		return false, DepSet{}
	}
	if witnessDeps, differ := e.AreDifferent(rn, rm); differ {
		return true, witnessDeps.Union(deps)
	}

	// Union by rank.
	if e.rank[rn] < e.rank[rm] {
		rn, rm = rm, rn
	}
	oldParent := e.parent[rm]
	oldRank := e.rank[rn]
	e.parent[rm] = rn
	if e.rank[rn] == e.rank[rm] {
		e.rank[rn]++
	}
	e.mm.Record(func() {
		e.parent[rm] = oldParent
		e.rank[rn] = oldRank
	})
	e.migrateDifferentFrom(rm, rn)
	return false, DepSet{}
}

// migrateDifferentFrom re-homes every different-from relationship
// recorded against the representative `from` onto `to`, the root that
// just absorbed it in a union. Without this, a different-from pair
// filed under `from` as a key becomes unreachable the moment `from`
// stops being anyone's Find() result: AreDifferent resolves both sides
// through Find before ever touching the map, so a stale key under the
// old root is silently skipped and a later merge can violate a
// different-from constraint nothing detects (spec.md §4.D).
func (e *EqualityReasoner) migrateDifferentFrom(from, to NodeID) {
	for other, deps := range e.diffFrom[from] {
		if other == to {
			continue
		}
		e.recordDifferent(to, other, deps)
		e.recordDifferent(other, to, deps)
		e.removeDifferent(other, from)
	}
}

// removeDifferent deletes the recorded different-from entry diffFrom[a][b],
// journaled so a rewind past this point restores it.
func (e *EqualityReasoner) removeDifferent(a, b NodeID) {
	set, ok := e.diffFrom[a]
	if !ok {
		return
	}
	existed, had := set[b]
	if !had {
		return
	}
	delete(set, b)
	e.mm.Record(func() {
		if e.diffFrom[a] == nil {
			e.diffFrom[a] = make(map[NodeID]DepSet)
		}
		e.diffFrom[a][b] = existed
	})
}

// Different asserts n and m are different individuals, recording deps as
// the witness. Returns true and combined deps if n and m are already in
// the same equivalence class (a clash).
func (e *EqualityReasoner) Different(n, m NodeID, deps DepSet) (clash bool, clashDeps DepSet) {
	rn, rm := e.Find(n), e.Find(m)
	if rn == rm {
		return true, deps
	}
	e.recordDifferent(rn, rm, deps)
	e.recordDifferent(rm, rn, deps)
	return false, DepSet{}
}

func (e *EqualityReasoner) recordDifferent(a, b NodeID, deps DepSet) {
	if e.diffFrom[a] == nil {
		e.diffFrom[a] = make(map[NodeID]DepSet)
	}
	existed, had := e.diffFrom[a][b]
	e.diffFrom[a][b] = deps
	e.mm.Record(func() {
		if had {
			e.diffFrom[a][b] = existed
		} else {
			delete(e.diffFrom[a], b)
		}
	})
}

// AreDifferent reports whether n and m (by current representative) are
// marked different-from each other, and if so the witness dependency set.
func (e *EqualityReasoner) AreDifferent(n, m NodeID) (DepSet, bool) {
	rn, rm := e.Find(n), e.Find(m)
	if set, ok := e.diffFrom[rn]; ok {
		if deps, ok := set[rm]; ok {
			return deps, true
		}
	}
	return DepSet{}, false
}

// SameRepresentative reports whether n and m currently resolve to the
// same equivalence-class representative.
func (e *EqualityReasoner) SameRepresentative(n, m NodeID) bool {
	return e.Find(n) == e.Find(m)
}
