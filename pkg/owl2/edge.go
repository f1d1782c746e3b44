package owl2

// Edge is a completion-graph edge `(n, P, m)` labelled with an object
// property (spec.md §3, §4.C). Edges are stored by raw endpoint NodeID and
// are never rewritten on merge; Graph.IterSuccessors/IterPredecessors
// resolve both endpoints through the equality reasoner's Find before
// reporting them, so a merged-away endpoint transparently reads as its
// surviving representative.
type Edge struct {
	ID       int
	From, To NodeID
	Property IRI
	Deps     DepSet
}
