package owl2

// This file implements spec.md §4.H rule family 2: property & axiom
// propagation (subproperty, transitive closure, inverse, symmetric
// (self-inverse), domain/range, property-chain automaton step, subclass
// GCI unfolding — GCI unfolding itself lives in Engine.SeedNode, called
// at node-creation time rather than edge-creation time since it is
// per-node, not per-edge).

// applyPropertyPropagation fires every consequence of a freshly created
// edge t.edge = (n, P, m): subproperty edges, the inverse edge, and
// domain/range obligations. Chain-automaton propagation (including
// transitivity, folded as the chain P∘P⊑P) is handled separately by
// propagateChains, invoked from here so both directions of a chain match
// are checked from a single edge insertion.
func (e *Engine) applyPropertyPropagation(t task) *BackjumpPlan {
	edge := t.edge
	p := edge.Property

	for _, super := range e.rbox.AllSuperProperties(p) {
		if e.hasEdge(edge.From, super, edge.To) {
			continue
		}
		newEdge := e.graph.AddEdge(edge.From, super, edge.To, t.deps)
		if plan := e.propagateUniversalsAcross(newEdge); plan != nil {
			return plan
		}
		e.enqueuePropertyPropagation(newEdge, t.deps)
	}

	if inv, ok := e.rbox.Inverse(p); ok {
		if !e.hasEdge(edge.To, inv, edge.From) {
			newEdge := e.graph.AddEdge(edge.To, inv, edge.From, t.deps)
			if plan := e.propagateUniversalsAcross(newEdge); plan != nil {
				return plan
			}
			e.enqueuePropertyPropagation(newEdge, t.deps)
		}
	}

	// A symmetric property is its own inverse (spec.md §3 RBox
	// characteristic "symmetric"): P(n,m) entails P(m,n).
	if e.rbox.Characteristics(p).Symmetric && edge.From != edge.To {
		if !e.hasEdge(edge.To, p, edge.From) {
			newEdge := e.graph.AddEdge(edge.To, p, edge.From, t.deps)
			if plan := e.propagateUniversalsAcross(newEdge); plan != nil {
				return plan
			}
			e.enqueuePropertyPropagation(newEdge, t.deps)
		}
	}

	for _, dom := range e.rbox.Domains(p) {
		if plan := e.seedLabel(edge.From, dom, t.deps); plan != nil {
			return plan
		}
	}
	for _, rng := range e.rbox.Ranges(p) {
		if plan := e.seedLabel(edge.To, rng, t.deps); plan != nil {
			return plan
		}
	}

	return e.propagateChains(edge, t.deps)
}

// hasEdge reports whether an edge (from, p, to) already exists, resolved
// through the equality reasoner's current representatives.
func (e *Engine) hasEdge(from NodeID, p IRI, to NodeID) bool {
	target := e.eq.Find(to)
	for _, edge := range e.graph.IterSuccessors(from, p) {
		if e.eq.Find(edge.To) == target {
			return true
		}
	}
	return false
}

// propagateChains matches the compiled chain automata against edge:
// for a chain P1 o P2 ⊑ Q (length 2, which also covers the folded
// transitivity chain P o P ⊑ P), check both that edge extends a chain as
// its first step (edge.Property == P1, look for a P2-successor of
// edge.To) and as its second step (edge.Property == P2, look for a
// P1-predecessor of edge.From). The RBox stores chains of any length, but
// chains longer than two properties are skipped here and never propagate:
// no per-partial-match automaton state is kept.
func (e *Engine) propagateChains(edge *Edge, deps DepSet) *BackjumpPlan {
	for _, ca := range e.rbox.AllChains() {
		props := ca.Properties()
		if len(props) != 2 {
			continue
		}
		p1, p2 := props[0], props[1]
		if edge.Property == p1 {
			for _, next := range e.graph.IterSuccessors(edge.To, p2) {
				if plan := e.addChainEdge(edge.From, ca.Super(), next.To, deps.Union(next.Deps)); plan != nil {
					return plan
				}
			}
		}
		if edge.Property == p2 {
			for _, prev := range e.graph.IterPredecessors(edge.From, p1) {
				if plan := e.addChainEdge(prev.From, ca.Super(), edge.To, deps.Union(prev.Deps)); plan != nil {
					return plan
				}
			}
		}
	}
	return nil
}

func (e *Engine) addChainEdge(from NodeID, super IRI, to NodeID, deps DepSet) *BackjumpPlan {
	if e.hasEdge(from, super, to) {
		return nil
	}
	newEdge := e.graph.AddEdge(from, super, to, deps)
	if plan := e.propagateUniversalsAcross(newEdge); plan != nil {
		return plan
	}
	e.enqueuePropertyPropagation(newEdge, deps)
	return nil
}
