package owl2

import "context"

// TaskKind identifies which expansion rule a queued task applies (spec.md
// §4.H).
type TaskKind int

const (
	TaskIntersection TaskKind = iota
	TaskUniversal
	TaskMinCardinality
	TaskHasValue
	TaskExistential
	TaskPropertyPropagation
	TaskFunctional
	TaskIrreflexiveAsymmetric
	TaskUnion
	TaskMaxCardinality
	TaskOneOf
	TaskHasKey
	taskKindCount
)

// priorityOf maps a task kind to its scheduling tier (spec.md §4.H rule
// priority 1-4: deterministic class rules, property/axiom propagation,
// constraint rules, non-deterministic rules). Lower numbers run first.
func priorityOf(k TaskKind) int {
	switch k {
	case TaskIntersection, TaskUniversal, TaskMinCardinality, TaskHasValue, TaskExistential:
		return 0
	case TaskPropertyPropagation, TaskHasKey:
		return 1
	case TaskFunctional, TaskIrreflexiveAsymmetric:
		return 2
	case TaskUnion, TaskMaxCardinality, TaskOneOf:
		return 3
	default:
		return 3
	}
}

const numPriorities = 4

// task is a single unit of expansion work (spec.md §4.H "work queue of
// tasks (rule, node)"). Concept is the triggering label for rules that
// fire off a single label (⊓, ∀, ≥n, has-value, ∃, ⊔, ≤n); it is nil for
// tasks that scan a node's full label/successor set (property
// propagation, functional, irreflexive/asymmetric).
type task struct {
	kind    TaskKind
	node    NodeID
	concept *ClassExpression
	edge    *Edge // set instead of concept for edge-triggered tasks
	deps    DepSet
}

// Engine is the expansion engine: the scheduler that drains a work queue
// of (rule, node) tasks against a single reasoning task's completion
// graph, applying rules in priority order until the graph is clash-free
// and fully expanded (SAT) or a clash propagates past every choice point
// (UNSAT) (spec.md §4.H). One Engine belongs to exactly one Graph /
// DependencyTracker / MemoryManager triple; parallel reasoning tasks each
// get their own Engine, mirroring the teacher's DFSSearch owning its own
// ConstraintStore per search (search.go).
type Engine struct {
	graph    *Graph
	eq       *EqualityReasoner
	deps     *DependencyTracker
	mm       *MemoryManager
	blocking *BlockingEngine
	rbox     *RBox

	queues [numPriorities][]task
	seen   map[uint64]bool // allocated by NewEngine but not read or written by any rule; tasks are not deduplicated

	gcis    []*Axiom // SubClassOf axioms, absorbed as universal (¬Sub ⊔ Super) obligations on every node
	hasKeys []*Axiom // HasKey axioms, checked whenever a node is labeled with the axiom's key class
}

// NewEngine wires an expansion engine over the given components, all of
// which must belong to the same reasoning task. tboxAxioms are the
// ontology's TBox axioms; every kind that expresses a general concept
// inclusion — directly (SubClassOf) or by definition (EquivalentClasses,
// DisjointClasses, DisjointUnion) — is normalized by normalizeGCIs into
// the GCI set absorbed as a universal obligation seeded onto every node
// (spec.md §4.H rule family 2 "subclass GCI unfolding"; spec.md §3 lists
// EquivalentClasses/DisjointClasses/DisjointUnion as TBox axioms the
// engine must enforce, not just report on in the profile validators).
func NewEngine(g *Graph, eq *EqualityReasoner, dt *DependencyTracker, mm *MemoryManager, be *BlockingEngine, rb *RBox, tboxAxioms []*Axiom) *Engine {
	eng := &Engine{graph: g, eq: eq, deps: dt, mm: mm, blocking: be, rbox: rb, seen: make(map[uint64]bool)}
	eng.gcis = normalizeGCIs(tboxAxioms)
	for _, ax := range tboxAxioms {
		if ax.Kind == AxiomHasKey {
			eng.hasKeys = append(eng.hasKeys, ax)
		}
	}
	return eng
}

// normalizeGCIs expands every TBox axiom kind into the set of SubClassOf-
// shaped general concept inclusions that realize it, so a single
// "seed ¬Sub⊔Super on every node" obligation (SeedNode) is enough to
// enforce all of them:
//
//   - SubClassOf(Sub, Super) passes through unchanged.
//   - EquivalentClasses(C0, ..., Cn) becomes the adjacent chain
//     Ci⊑Ci+1, Ci+1⊑Ci for each i — sufficient because the chain closes
//     transitively through the tableau's own deterministic propagation
//     (each GCI obligation re-evaluates against the node's current label
//     when its ⊔-task is dispatched, and tier-0..2 tasks always drain
//     before any tier-3 disjunction is dispatched, so a label added by
//     one link in the chain is already visible to the next).
//   - DisjointClasses(C0, ..., Cn) becomes Ci⊑¬Cj for every ordered pair
//     i≠j (both directions, since the GCI only fires off its subject
//     class).
//   - DisjointUnion(Defined, C0, ..., Cn) becomes the EquivalentClasses
//     expansion of Defined ≡ (C0⊔...⊔Cn) plus the DisjointClasses
//     expansion over C0..Cn.
func normalizeGCIs(tboxAxioms []*Axiom) []*Axiom {
	var gcis []*Axiom
	for _, ax := range tboxAxioms {
		switch ax.Kind {
		case AxiomSubClassOf:
			gcis = append(gcis, ax)
		case AxiomEquivalentClasses:
			gcis = append(gcis, equivalentChainGCIs(ax.Classes)...)
		case AxiomDisjointClasses:
			gcis = append(gcis, disjointPairGCIs(ax.Classes)...)
		case AxiomDisjointUnion:
			gcis = append(gcis, equivalentChainGCIs([]*ClassExpression{ax.Defined, Union(ax.Classes...)})...)
			gcis = append(gcis, disjointPairGCIs(ax.Classes)...)
		}
	}
	return gcis
}

// equivalentChainGCIs returns SubClassOf(classes[i], classes[i+1]) and its
// reverse for each adjacent pair, realizing classes[0] ≡ ... ≡ classes[n].
func equivalentChainGCIs(classes []*ClassExpression) []*Axiom {
	var out []*Axiom
	for i := 0; i+1 < len(classes); i++ {
		out = append(out, SubClassOf(classes[i], classes[i+1]))
		out = append(out, SubClassOf(classes[i+1], classes[i]))
	}
	return out
}

// disjointPairGCIs returns SubClassOf(Ci, Complement(Cj)) for every
// ordered pair i≠j, realizing pairwise disjointness over classes.
func disjointPairGCIs(classes []*ClassExpression) []*Axiom {
	var out []*Axiom
	for i := range classes {
		for j := range classes {
			if i == j {
				continue
			}
			out = append(out, SubClassOf(classes[i], Complement(classes[j])))
		}
	}
	return out
}

// SeedNode admits every absorbed GCI obligation (¬Sub ⊔ Super, for each
// SubClassOf(Sub, Super) axiom in the ontology) onto a freshly created
// node, the standard tableaux technique for handling general concept
// inclusions without unfolding them structurally into every expression
// (spec.md §4.H "subclass GCI unfolding"). Call immediately after
// Graph.NewNode, before the node takes part in any other rule.
func (e *Engine) SeedNode(n NodeID) *BackjumpPlan {
	for _, ax := range e.gcis {
		obligation := Union(Complement(ax.Sub), ax.Super)
		if plan := e.seedLabel(n, obligation, EmptyDepSet()); plan != nil {
			return plan
		}
	}
	return nil
}

// Outcome is the terminal result of a single Run of the expansion engine
// (spec.md §4.H "Answers").
type Outcome int

const (
	OutcomeSatisfiable Outcome = iota
	OutcomeUnsatisfiable
)

func (o Outcome) String() string {
	if o == OutcomeSatisfiable {
		return "satisfiable"
	}
	return "unsatisfiable"
}

// enqueue schedules a task in its priority tier.
func (e *Engine) enqueue(t task) {
	p := priorityOf(t.kind)
	e.queues[p] = append(e.queues[p], t)
}

// isNodeCreating reports whether a task kind's rule handler may allocate
// a fresh node (∃-rule, ≥n-rule), as opposed to deterministic rules that
// only ever mutate existing labels/edges.
func isNodeCreating(k TaskKind) bool {
	return k == TaskExistential || k == TaskMinCardinality
}

// popTask returns the next task to run, preferring lower-numbered
// priority tiers, and ok=false if every queue is empty. Per spec.md
// §4.H "Completeness", when the deterministic tiers (0-2) drain, exactly
// one non-deterministic task (tier 3) is selected before the engine is
// allowed to report the graph fully expanded. Per spec.md §4.F "when
// pressure reaches High, the engine must prefer rules that reduce
// non-determinism (deterministic completion rules) before creating new
// nodes", under high memory pressure tier 0 is scanned for a non-node-
// creating task before falling back to a node-creating one, so label-only
// rules drain first and node growth is deferred as long as other work
// remains.
func (e *Engine) popTask() (task, bool) {
	if e.mm.Pressure() == PressureHigh {
		q := e.queues[0]
		for i, t := range q {
			if !isNodeCreating(t.kind) {
				e.queues[0] = append(q[:i:i], q[i+1:]...)
				return t, true
			}
		}
	}
	for p := 0; p < numPriorities; p++ {
		if len(e.queues[p]) > 0 {
			t := e.queues[p][0]
			e.queues[p] = e.queues[p][1:]
			return t, true
		}
	}
	return task{}, false
}

// seedLabel admits concept into n's label via the engine (rather than
// calling graph.AddLabel directly), so that a successful Added result is
// immediately followed by scheduling whatever rule tasks that concept's
// shape triggers (spec.md §4.G "blocking checks run after each add_label"
// and §4.H task generation). Returns nil when the concept was admitted
// or already present; on a clash it returns handleClash's BackjumpPlan,
// which is non-nil both for a global UNSAT and for a backjump to a choice
// point that still has an alternative.
func (e *Engine) seedLabel(n NodeID, concept *ClassExpression, deps DepSet) *BackjumpPlan {
	concept = NNF(concept)
	result, resultDeps := e.graph.AddLabel(n, concept, deps)
	switch result {
	case LabelPresent:
		return nil
	case LabelClash:
		return e.handleClash(resultDeps)
	}
	if concept.Kind == ExprBottom {
		return e.handleClash(resultDeps)
	}
	e.blocking.Recompute(e.graph, n)
	if e.graph.Node(n).Status == Blocked {
		return nil
	}
	e.scheduleForConcept(n, concept, resultDeps)
	for _, ax := range e.hasKeys {
		if concept.Equal(ax.KeyClass) {
			e.enqueue(task{kind: TaskHasKey, node: n, concept: ax.KeyClass, deps: resultDeps})
		}
	}
	return nil
}

// scheduleForConcept enqueues the rule task(s) triggered by concept
// having just been added to n's label.
func (e *Engine) scheduleForConcept(n NodeID, concept *ClassExpression, deps DepSet) {
	switch concept.Kind {
	case ExprIntersection:
		e.enqueue(task{kind: TaskIntersection, node: n, concept: concept, deps: deps})
	case ExprUnion:
		e.enqueue(task{kind: TaskUnion, node: n, concept: concept, deps: deps})
	case ExprUniversal:
		e.enqueue(task{kind: TaskUniversal, node: n, concept: concept, deps: deps})
	case ExprExistential:
		e.enqueue(task{kind: TaskExistential, node: n, concept: concept, deps: deps})
	case ExprMinCardinality:
		e.enqueue(task{kind: TaskMinCardinality, node: n, concept: concept, deps: deps})
	case ExprMaxCardinality:
		e.enqueue(task{kind: TaskMaxCardinality, node: n, concept: concept, deps: deps})
	case ExprHasValue:
		e.enqueue(task{kind: TaskHasValue, node: n, concept: concept, deps: deps})
	case ExprOneOf:
		e.enqueue(task{kind: TaskOneOf, node: n, concept: concept, deps: deps})
	}
}

// handleClash resolves a clash's dependency set through the dependency
// tracker and always returns the resulting BackjumpPlan — never nil — so
// the caller can tell a globally-unsatisfiable clash from one a surviving
// choice point can still retry. A non-deterministic rule handler
// (tryDisjunct/tryMerge/tryNominal) inspects plan.TargetEpoch against its
// own epoch to decide whether to drive its next alternative itself or
// propagate the plan further out; every other caller just forwards
// whatever handleClash returns up to Run, which only acts on
// GloballyUnsat and otherwise lets the next pop_task continue the
// now-rewound graph.
func (e *Engine) handleClash(deps DepSet) *BackjumpPlan {
	plan := e.deps.Clash(deps)
	if plan.GloballyUnsat {
		for p := range e.queues {
			e.queues[p] = e.queues[p][:0]
		}
		return &plan
	}
	wm, ok := e.deps.WatermarkOf(plan.TargetEpoch)
	if ok {
		_ = e.mm.Rewind(wm)
	}
	// Drop only tasks justified (even partly) by an epoch at or above the
	// target: Clash has just popped those choice points, and Rewind just
	// erased the graph/equality state their alternatives produced, so
	// those tasks refer to state that no longer exists. Tasks justified
	// entirely by epochs below the target (or by axioms alone) describe
	// state the rewind left untouched and must stay queued.
	for p := range e.queues {
		kept := e.queues[p][:0]
		for _, t := range e.queues[p] {
			if t.deps.Max() < plan.TargetEpoch {
				kept = append(kept, t)
			}
		}
		e.queues[p] = kept
	}
	return &plan
}

// Run drains the work queue until the graph is fully expanded and
// clash-free (Satisfiable) or a clash survives every choice point
// (Unsatisfiable), observing ctx for cancellation/deadline at every
// pop_task boundary (spec.md §5 "every pop_task ... must observe a
// cancellation flag ... A soft deadline is checked at the same
// observation point").
func (e *Engine) Run(ctx context.Context) (Outcome, error) {
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return OutcomeUnsatisfiable, NewTimeoutError("expansion deadline exceeded")
			}
			return OutcomeUnsatisfiable, NewCancelledError("expansion cancelled")
		default:
		}

		t, ok := e.popTask()
		if !ok {
			return OutcomeSatisfiable, nil
		}
		if e.graph.Node(t.node).Status == Blocked {
			continue
		}
		plan := e.dispatch(t)
		if plan != nil && plan.GloballyUnsat {
			return OutcomeUnsatisfiable, nil
		}
	}
}

// dispatch applies a single task to its target rule handler.
func (e *Engine) dispatch(t task) *BackjumpPlan {
	switch t.kind {
	case TaskIntersection:
		return e.applyIntersection(t)
	case TaskUnion:
		return e.applyUnion(t)
	case TaskUniversal:
		return e.applyUniversal(t)
	case TaskExistential:
		return e.applyExistential(t)
	case TaskMinCardinality:
		return e.applyMinCardinality(t)
	case TaskMaxCardinality:
		return e.applyMaxCardinality(t)
	case TaskHasValue:
		return e.applyHasValue(t)
	case TaskPropertyPropagation:
		return e.applyPropertyPropagation(t)
	case TaskFunctional:
		return e.applyFunctional(t)
	case TaskIrreflexiveAsymmetric:
		return e.applyIrreflexiveAsymmetric(t)
	case TaskHasKey:
		return e.applyHasKey(t)
	case TaskOneOf:
		return e.applyOneOf(t)
	default:
		return nil
	}
}

// enqueuePropertyPropagation schedules a property-propagation sweep for
// the edge (from, p, to); called by rule handlers whenever AddEdge
// creates a fresh edge, since subproperty/inverse/domain/range/chain
// consequences all key off edges (spec.md §4.H rule family 2).
func (e *Engine) enqueuePropertyPropagation(edge *Edge, deps DepSet) {
	e.enqueue(task{kind: TaskPropertyPropagation, node: edge.From, edge: edge, deps: deps})
	e.enqueue(task{kind: TaskFunctional, node: edge.From, edge: edge, deps: deps})
	e.enqueue(task{kind: TaskIrreflexiveAsymmetric, node: edge.From, edge: edge, deps: deps})
}
