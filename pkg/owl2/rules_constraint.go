package owl2

// This file implements spec.md §4.H rule family 3: constraint rules
// (functional → merge; differentFrom / sameAs; irreflexive/asymmetric →
// clash on offending edge). SameIndividual/DifferentIndividuals ABox
// axioms themselves are seeded once at ingestion by the reasoner façade
// (reasoner.go), which calls EqualityReasoner.Same/Different directly;
// this file only covers the rules that re-derive such facts during
// expansion.

// applyFunctional implements "Functional P: if n has two P-successors,
// merge them (deterministic)" (spec.md §4.H), plus the symmetric
// inverse-functional check on predecessors.
func (e *Engine) applyFunctional(t task) *BackjumpPlan {
	p := t.edge.Property
	if e.rbox.Characteristics(p).Functional {
		if plan := e.mergeAllSuccessors(t.edge.From, p, t.deps); plan != nil {
			return plan
		}
	}
	if e.rbox.Characteristics(p).InverseFunctional {
		if plan := e.mergeAllPredecessors(t.edge.To, p, t.deps); plan != nil {
			return plan
		}
	}
	return nil
}

func (e *Engine) mergeAllSuccessors(n NodeID, p IRI, deps DepSet) *BackjumpPlan {
	for {
		succs := e.graph.IterSuccessors(n, p)
		if len(succs) < 2 {
			return nil
		}
		first := e.eq.Find(succs[0].To)
		var other NodeID
		found := false
		for _, s := range succs[1:] {
			if e.eq.Find(s.To) != first {
				other = s.To
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		mergeDeps := deps.Union(succs[0].Deps)
		result, clashDeps := e.graph.Merge(succs[0].To, other, mergeDeps)
		if result == MergeClash {
			return e.handleClash(clashDeps)
		}
		e.blocking.Recompute(e.graph, e.eq.Find(succs[0].To))
	}
}

func (e *Engine) mergeAllPredecessors(n NodeID, p IRI, deps DepSet) *BackjumpPlan {
	for {
		preds := e.graph.IterPredecessors(n, p)
		if len(preds) < 2 {
			return nil
		}
		first := e.eq.Find(preds[0].From)
		var other NodeID
		found := false
		for _, s := range preds[1:] {
			if e.eq.Find(s.From) != first {
				other = s.From
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		mergeDeps := deps.Union(preds[0].Deps)
		result, clashDeps := e.graph.Merge(preds[0].From, other, mergeDeps)
		if result == MergeClash {
			return e.handleClash(clashDeps)
		}
		e.blocking.Recompute(e.graph, e.eq.Find(preds[0].From))
	}
}

// applyIrreflexiveAsymmetric implements "irreflexive/asymmetric → clash
// on offending edge" (spec.md §4.H). An irreflexive property may never
// have a self-loop; an asymmetric property may never have both (n,P,m)
// and (m,P,n) for distinct n, m.
func (e *Engine) applyIrreflexiveAsymmetric(t task) *BackjumpPlan {
	p := t.edge.Property
	chars := e.rbox.Characteristics(p)
	from, to := e.eq.Find(t.edge.From), e.eq.Find(t.edge.To)

	if chars.Irreflexive && from == to {
		return e.handleClash(t.deps)
	}
	if chars.Asymmetric && from != to {
		for _, back := range e.graph.IterSuccessors(t.edge.To, p) {
			if e.eq.Find(back.To) == from {
				return e.handleClash(t.deps.Union(back.Deps))
			}
		}
	}
	return nil
}
