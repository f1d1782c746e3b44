package owl2

// This file implements the deterministic class rules of spec.md §4.H
// rule family 1: ⊓-rule, ∀-rule, ≥n-rule (existence/counting half only —
// forcing merges when there are too many successors is the ≤n-rule in
// rules_nondet.go), has-value, and ∃-rule (grouped here as a deterministic
// class rule per the per-rule contract list in spec.md §4.H, even though
// the summary line omits it).

// applyIntersection implements the ⊓-rule: if C⊓D ∈ label(n) and
// {C,D} ⊄ label(n), add both with the same deps (spec.md §4.H). Already
// NNF-idempotent since seedLabel dedups on structural hash.
func (e *Engine) applyIntersection(t task) *BackjumpPlan {
	for _, operand := range t.concept.Operands {
		if plan := e.seedLabel(t.node, operand, t.deps); plan != nil {
			return plan
		}
	}
	return nil
}

// applyUniversal implements the ∀-rule: for every P-successor m of n,
// ensure C ∈ label(m) whenever ∀P.C ∈ label(n) (spec.md §4.H). Also
// applied retroactively whenever a fresh P-edge is created, via
// Engine.propagateUniversalsAcross below.
func (e *Engine) applyUniversal(t task) *BackjumpPlan {
	for _, edge := range e.graph.IterSuccessors(t.node, t.concept.Property) {
		if plan := e.seedLabel(edge.To, t.concept.Filler, t.deps.Union(edge.Deps)); plan != nil {
			return plan
		}
	}
	return nil
}

// propagateUniversalsAcross re-checks every ∀P.C in n's label against a
// freshly created P-edge (n, P, m), the mirror image of applyUniversal:
// that rule fires when ∀P.C is added to an existing node, this fires
// when a new successor appears on a node that already carries ∀P.C.
func (e *Engine) propagateUniversalsAcross(edge *Edge) *BackjumpPlan {
	for _, c := range e.graph.Node(edge.From).Label() {
		if c.Kind != ExprUniversal || c.Property != edge.Property {
			continue
		}
		existingDeps, _ := e.graph.Node(edge.From).Has(c)
		if plan := e.seedLabel(edge.To, c.Filler, existingDeps.Union(edge.Deps)); plan != nil {
			return plan
		}
	}
	return nil
}

// applyExistential implements the ∃-rule: if ∃P.C ∈ label(n) and no
// P-successor m has C ∈ label(m), create fresh m, add the edge, and
// label m with C (spec.md §4.H). No-ops if n is blocked, and no-ops
// (rather than creating a redundant witness) if an existing successor
// already satisfies the obligation.
func (e *Engine) applyExistential(t task) *BackjumpPlan {
	node := e.graph.Node(t.node)
	if node.Status == Blocked {
		return nil
	}
	for _, edge := range e.graph.IterSuccessors(t.node, t.concept.Property) {
		if _, ok := e.graph.Node(edge.To).Has(t.concept.Filler); ok {
			return nil
		}
	}
	m, err := e.graph.NewNode(IRI{}, t.node, t.concept.Property, node.Depth+1)
	if err != nil {
		return e.handleClash(t.deps) // resource exhaustion surfaces as a clash-shaped abort; caller sees the error via Run's deadline/ctx path in practice
	}
	if plan := e.SeedNode(m); plan != nil {
		return plan
	}
	edge := e.graph.AddEdge(t.node, t.concept.Property, m, t.deps)
	e.blocking.Recompute(e.graph, m)
	if plan := e.seedLabel(m, t.concept.Filler, t.deps); plan != nil {
		return plan
	}
	if plan := e.propagateUniversalsAcross(edge); plan != nil {
		return plan
	}
	e.enqueuePropertyPropagation(edge, t.deps)
	return nil
}

// applyMinCardinality implements the existence half of the ≥n P.C-rule:
// ensure n has at least n pairwise-different P-successors labelled C,
// creating fresh nodes and asserting mutual differentFrom as needed
// (spec.md §4.H). If n already has >= n qualifying successors (whether
// freshly counted or pre-existing), this is a no-op.
func (e *Engine) applyMinCardinality(t task) *BackjumpPlan {
	node := e.graph.Node(t.node)
	if node.Status == Blocked {
		return nil
	}
	var qualifying []NodeID
	for _, edge := range e.graph.IterSuccessors(t.node, t.concept.Property) {
		if _, ok := e.graph.Node(edge.To).Has(t.concept.Filler); ok {
			qualifying = append(qualifying, edge.To)
		}
	}
	if len(qualifying) >= t.concept.Cardinality {
		return nil
	}
	needed := t.concept.Cardinality - len(qualifying)
	fresh := make([]NodeID, 0, needed)
	for i := 0; i < needed; i++ {
		m, err := e.graph.NewNode(IRI{}, t.node, t.concept.Property, node.Depth+1)
		if err != nil {
			return e.handleClash(t.deps)
		}
		if plan := e.SeedNode(m); plan != nil {
			return plan
		}
		edge := e.graph.AddEdge(t.node, t.concept.Property, m, t.deps)
		e.blocking.Recompute(e.graph, m)
		if plan := e.seedLabel(m, t.concept.Filler, t.deps); plan != nil {
			return plan
		}
		if plan := e.propagateUniversalsAcross(edge); plan != nil {
			return plan
		}
		e.enqueuePropertyPropagation(edge, t.deps)
		fresh = append(fresh, m)
	}
	all := append(append([]NodeID(nil), qualifying...), fresh...)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if clash, clashDeps := e.eq.Different(all[i], all[j], t.deps); clash {
				return e.handleClash(clashDeps)
			}
		}
	}
	return nil
}

// applyHasValue implements the has-value rule: if P:a ∈ label(n), ensure
// an edge (n, P, node-for(a)) exists, creating the individual's node on
// first reference (spec.md §4.H; has-value is listed among the
// deterministic class rules).
func (e *Engine) applyHasValue(t task) *BackjumpPlan {
	for _, edge := range e.graph.IterSuccessors(t.node, t.concept.Property) {
		if e.graph.Node(edge.To).Individual == t.concept.Individual {
			return nil
		}
	}
	m, err := e.findOrCreateIndividualNode(t.concept.Individual)
	if err != nil {
		return e.handleClash(t.deps)
	}
	if plan := e.SeedNode(m); plan != nil {
		return plan
	}
	edge := e.graph.AddEdge(t.node, t.concept.Property, m, t.deps)
	if plan := e.propagateUniversalsAcross(edge); plan != nil {
		return plan
	}
	e.enqueuePropertyPropagation(edge, t.deps)
	return nil
}

// findOrCreateIndividualNode returns the node seeded with ABox individual
// iri, creating a root node for it if this is the first reference (e.g.
// a has-value restriction naming an individual not otherwise asserted).
func (e *Engine) findOrCreateIndividualNode(iri IRI) (NodeID, error) {
	for _, id := range e.graph.AllNodeIDs() {
		if e.graph.IsTombstoned(id) {
			continue
		}
		if e.graph.rawNode(id).Individual == iri {
			return e.graph.eq.Find(id), nil
		}
	}
	return e.graph.NewNode(iri, NoNode, IRI{}, 0)
}
