package owl2

import (
	"context"
	"sort"
	"sync"

	"github.com/owl2go/reasoner/internal/parallel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// sortedIRIs returns a copy of iris sorted by their rendered string form,
// giving every caller that walks EntityStore.EntitiesOfKind (which
// iterates a Go map, so raw order is unspecified) a canonical order.
// Without this, Classify/InstancesOf could report the same answer set in
// a different slice order across runs, violating spec.md §5/§8's
// determinism guarantee that "two runs on identical input produce
// identical... model structures".
func sortedIRIs(iris []IRI) []IRI {
	out := append([]IRI(nil), iris...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// ClashWitness renders the concepts whose simultaneous presence produced
// an UNSAT answer, for diagnostics (spec.md §7 "Clashes ... when
// unrecoverable, produce a boolean answer (UNSAT) plus an optional clash
// witness").
type ClashWitness struct {
	Node     IRI
	Concepts []string
}

// HierarchyNode is one class's position in a ClassHierarchy (spec.md §6
// "classify() → Result<ClassHierarchy>"): its direct (transitively
// reduced) super- and subclasses.
type HierarchyNode struct {
	Class  IRI
	Supers []IRI
	Subs   []IRI
}

// ClassHierarchy is the result of Reasoner.Classify.
type ClassHierarchy struct {
	Nodes map[IRI]*HierarchyNode
}

// Reasoner is the tableaux reasoner façade exposed to callers (spec.md
// §6 "Reasoner API exposed to callers"). One Reasoner owns one ontology's
// RBox, entity store, and result caches; each query call spins up a
// fresh Graph/DependencyTracker/MemoryManager/Engine quartet for its own
// reasoning task, so concurrent queries on the same Reasoner (e.g.
// Classify's pairwise subsumption tests) never share mutable tableaux
// state (spec.md §5 "the only shared state is the read-only axiom model
// and the IRI intern table").
type Reasoner struct {
	ontology *Ontology
	entities *EntityStore
	rbox     *RBox
	config   ReasonerConfig
	profiles *ProfileValidator
	log      *zap.Logger

	mu             sync.Mutex
	consistency    *bool
	satCache       map[uint64]bool
	subclassCache  map[[2]uint64]bool
}

// New builds a Reasoner over ontology (spec.md §6 "new(ontology) →
// Reasoner"). The ontology must carry no parse diagnostics; named
// classes, properties, and individuals referenced by its axioms are
// auto-declared into the entity store, since the ingestion contract
// (spec.md §6) does not carry a separate declaration list.
func New(ontology *Ontology, config ReasonerConfig) (*Reasoner, error) {
	if ontology.HasParseErrors() {
		return nil, NewParseInputError("ontology %s carries %d unresolved parse diagnostic(s)", ontology.IRI, len(ontology.Diagnostics))
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	entities := NewEntityStore()
	if err := declareEntities(entities, ontology.Axioms); err != nil {
		return nil, err
	}
	logger, err := zap.NewProduction()
	if err != nil {
		logger = zap.NewNop()
	}
	return &Reasoner{
		ontology:      ontology,
		entities:      entities,
		rbox:          BuildRBox(ontology.Axioms),
		config:        config,
		profiles:      NewProfileValidator(),
		log:           logger,
		satCache:      make(map[uint64]bool),
		subclassCache: make(map[[2]uint64]bool),
	}, nil
}

// declareEntities walks axioms and declares every named class, property,
// and individual it references, inferring kind from field position
// (spec.md §4.A "intern/class_of/property_of/individual_of"). Properties
// are declared ObjectProperty since spec.md §3 does not distinguish
// object- from data-property axioms structurally; a data-property
// ingestion pipeline would declare those explicitly before handing the
// ontology to the reasoner.
func declareEntities(entities *EntityStore, axioms []*Axiom) error {
	declareClass := func(c *ClassExpression) error { return declareClassEntities(entities, c) }
	for _, ax := range axioms {
		if ax.Sub != nil {
			if err := declareClass(ax.Sub); err != nil {
				return err
			}
		}
		if ax.Super != nil {
			if err := declareClass(ax.Super); err != nil {
				return err
			}
		}
		for _, c := range ax.Classes {
			if err := declareClass(c); err != nil {
				return err
			}
		}
		if ax.Defined != nil {
			if err := declareClass(ax.Defined); err != nil {
				return err
			}
		}
		if ax.Domain != nil {
			if err := declareClass(ax.Domain); err != nil {
				return err
			}
		}
		if ax.Range != nil {
			if err := declareClass(ax.Range); err != nil {
				return err
			}
		}
		if ax.ClassExpr != nil {
			if err := declareClass(ax.ClassExpr); err != nil {
				return err
			}
		}
		if ax.KeyClass != nil {
			if err := declareClass(ax.KeyClass); err != nil {
				return err
			}
		}
		for _, p := range [][]IRI{{ax.Property}, {ax.Super2}, ax.Chain, ax.Properties, ax.KeyProps} {
			for _, iri := range p {
				if iri.IsZero() {
					continue
				}
				if _, err := entities.Declare(KindObjectProperty, iri); err != nil {
					return err
				}
			}
		}
		for _, iri := range []IRI{ax.Individual, ax.Individual2} {
			if iri.IsZero() {
				continue
			}
			if _, err := entities.Declare(KindNamedIndividual, iri); err != nil {
				return err
			}
		}
		for _, iri := range ax.Individuals {
			if _, err := entities.Declare(KindNamedIndividual, iri); err != nil {
				return err
			}
		}
	}
	return nil
}

func declareClassEntities(entities *EntityStore, c *ClassExpression) error {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case ExprAtomic:
		_, err := entities.Declare(KindClass, c.Atom)
		return err
	case ExprIntersection, ExprUnion:
		for _, o := range c.Operands {
			if err := declareClassEntities(entities, o); err != nil {
				return err
			}
		}
	case ExprComplement:
		return declareClassEntities(entities, c.Operand)
	case ExprExistential, ExprUniversal, ExprMinCardinality, ExprMaxCardinality, ExprExactCardinality:
		if !c.Property.IsZero() {
			if _, err := entities.Declare(KindObjectProperty, c.Property); err != nil {
				return err
			}
		}
		return declareClassEntities(entities, c.Filler)
	case ExprHasValue:
		if !c.Property.IsZero() {
			if _, err := entities.Declare(KindObjectProperty, c.Property); err != nil {
				return err
			}
		}
		if !c.Individual.IsZero() {
			_, err := entities.Declare(KindNamedIndividual, c.Individual)
			return err
		}
	case ExprOneOf:
		for _, ind := range c.Individuals {
			if _, err := entities.Declare(KindNamedIndividual, ind); err != nil {
				return err
			}
		}
	}
	return nil
}

// newTask spins up a fresh, independent reasoning task's components
// (graph, equality reasoner, dependency tracker, memory manager, engine),
// wired exactly as spec.md §4 describes their dependencies.
func (r *Reasoner) newTask() (*Graph, *EqualityReasoner, *DependencyTracker, *MemoryManager, *Engine) {
	mm := NewMemoryManager(r.config.MaxGraphNodes)
	eq := NewEqualityReasoner(mm)
	g := NewGraph(mm, eq, r.rbox)
	dt := NewDependencyTracker(r.config.MaxDependencyDepth)
	be := NewBlockingEngine(r.config.BlockingStrategy)
	eng := NewEngine(g, eq, dt, mm, be, r.rbox, r.ontology.Axioms)
	return g, eq, dt, mm, eng
}

// taskContext derives a context honoring the configured soft deadline.
func (r *Reasoner) taskContext() (context.Context, context.CancelFunc) {
	if r.config.Deadline <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.config.Deadline)
}

// IsConsistent reports whether the ontology's ABox (together with its
// TBox/RBox obligations) admits a model (spec.md §6 "is_consistent() →
// Result<bool>"). Idempotent: repeated calls hit the cache.
func (r *Reasoner) IsConsistent() (bool, error) {
	r.mu.Lock()
	if r.consistency != nil {
		v := *r.consistency
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	g, eq, _, _, eng := r.newTask()
	if err := seedABox(g, eq, eng, r.entities, r.ontology.Axioms, nil); err != nil {
		return false, err
	}
	ctx, cancel := r.taskContext()
	defer cancel()
	outcome, err := eng.Run(ctx)
	if err != nil {
		return false, err
	}
	consistent := outcome == OutcomeSatisfiable
	r.mu.Lock()
	r.consistency = &consistent
	r.mu.Unlock()
	r.log.Debug("is_consistent", zap.Bool("consistent", consistent))
	return consistent, nil
}

// IsSatisfiable reports whether concept denotes a non-empty class in some
// model of the TBox/RBox (spec.md §6 "is_satisfiable(class_expr) →
// Result<bool>").
func (r *Reasoner) IsSatisfiable(concept *ClassExpression) (bool, error) {
	h := concept.StructuralHash()
	r.mu.Lock()
	if v, ok := r.satCache[h]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	g, _, _, _, eng := r.newTask()
	root, err := g.NewNode(IRI{}, NoNode, IRI{}, 0)
	if err != nil {
		return false, err
	}
	if plan := eng.SeedNode(root); plan != nil && plan.GloballyUnsat {
		r.cacheSat(h, false)
		return false, nil
	}
	if plan := eng.seedLabel(root, concept, EmptyDepSet()); plan != nil && plan.GloballyUnsat {
		r.cacheSat(h, false)
		return false, nil
	}
	ctx, cancel := r.taskContext()
	defer cancel()
	outcome, err := eng.Run(ctx)
	if err != nil {
		return false, err
	}
	sat := outcome == OutcomeSatisfiable
	r.cacheSat(h, sat)
	return sat, nil
}

func (r *Reasoner) cacheSat(h uint64, v bool) {
	r.mu.Lock()
	r.satCache[h] = v
	r.mu.Unlock()
}

// IsSubclassOf tests C ⊑ D by checking unsatisfiability of C ⊓ ¬D on a
// fresh root (spec.md §6, §4.H "Subsumption").
func (r *Reasoner) IsSubclassOf(sub, sup *ClassExpression) (bool, error) {
	key := [2]uint64{sub.StructuralHash(), sup.StructuralHash()}
	r.mu.Lock()
	if v, ok := r.subclassCache[key]; ok {
		r.mu.Unlock()
		return v, nil
	}
	r.mu.Unlock()

	sat, err := r.IsSatisfiable(Intersection(sub, Complement(sup)))
	if err != nil {
		return false, err
	}
	result := !sat
	r.mu.Lock()
	r.subclassCache[key] = result
	r.mu.Unlock()
	return result, nil
}

// Classify computes the full named-class subsumption hierarchy (spec.md
// §6, §4.H "Classification: pairwise subsumption guided by an Enhanced
// Traversal exploiting known hierarchy; results cached by (C,D)").
// Pairwise tests run concurrently via an errgroup, each against its own
// reasoning task; the shared subclassCache (guarded by r.mu) is what the
// "guided by known hierarchy" caching in the spec amounts to once the
// full matrix is warm.
func (r *Reasoner) Classify() (*ClassHierarchy, error) {
	classIRIs := sortedIRIs(r.entities.EntitiesOfKind(KindClass))
	n := len(classIRIs)
	subsumes := make([][]bool, n)
	for i := range subsumes {
		subsumes[i] = make([]bool, n)
	}

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			i, j := i, j
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				ok, err := r.IsSubclassOf(Atomic(classIRIs[i]), Atomic(classIRIs[j]))
				if err != nil {
					return err
				}
				subsumes[i][j] = ok
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hierarchy := &ClassHierarchy{Nodes: make(map[IRI]*HierarchyNode, n)}
	for i, iri := range classIRIs {
		hierarchy.Nodes[iri] = &HierarchyNode{Class: iri}
	}
	for i := range classIRIs {
		for j := range classIRIs {
			if i == j || !subsumes[i][j] {
				continue
			}
			if !hasIntermediate(subsumes, classIRIs, i, j) {
				hierarchy.Nodes[classIRIs[i]].Supers = append(hierarchy.Nodes[classIRIs[i]].Supers, classIRIs[j])
				hierarchy.Nodes[classIRIs[j]].Subs = append(hierarchy.Nodes[classIRIs[j]].Subs, classIRIs[i])
			}
		}
	}
	return hierarchy, nil
}

// hasIntermediate reports whether some third class k (k != i, j) witnesses
// i ⊑ k ⊑ j, making the direct i ⊑ j edge redundant under transitive
// reduction.
func hasIntermediate(subsumes [][]bool, classIRIs []IRI, i, j int) bool {
	for k := range classIRIs {
		if k == i || k == j {
			continue
		}
		if subsumes[i][k] && subsumes[k][j] {
			return true
		}
	}
	return false
}

// InstancesOf returns every named individual a such that a:concept holds
// in every model, tested via instance-check unsatisfiability of ABox ∪
// {a : ¬concept} (spec.md §6, §4.H "Instance check a:C"). Each
// individual's check is an independent reasoning task, so they run
// concurrently on a bounded worker pool rather than one at a time.
func (r *Reasoner) InstancesOf(concept *ClassExpression) ([]IRI, error) {
	individuals := sortedIRIs(r.entities.EntitiesOfKind(KindNamedIndividual))
	pool := parallel.NewWorkerPool(0)
	defer pool.Shutdown()

	ctx, cancel := r.taskContext()
	defer cancel()

	var mu sync.Mutex
	var result []IRI
	var firstErr error
	var wg sync.WaitGroup

	for _, a := range individuals {
		a := a
		wg.Add(1)
		submitErr := pool.Submit(ctx, func() {
			defer wg.Done()
			isInstance, err := r.checkInstance(a, concept)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if isInstance {
				result = append(result, a)
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	// Concurrent completion order is not deterministic; sort so repeated
	// calls return the answer set in the same order (spec.md §5/§8).
	sort.Slice(result, func(i, j int) bool { return result[i].String() < result[j].String() })
	r.log.Debug("instances_of", zap.Int("individuals_checked", len(individuals)), zap.Int("matched", len(result)))
	return result, nil
}

// checkInstance runs a single a:¬concept unsatisfiability test in its own
// reasoning task.
func (r *Reasoner) checkInstance(a IRI, concept *ClassExpression) (bool, error) {
	extra := ClassAssertion(a, Complement(concept))
	g, eq, _, _, eng := r.newTask()
	if err := seedABox(g, eq, eng, r.entities, r.ontology.Axioms, extra); err != nil {
		return false, err
	}
	ctx, cancel := r.taskContext()
	defer cancel()
	outcome, err := eng.Run(ctx)
	if err != nil {
		return false, err
	}
	return outcome == OutcomeUnsatisfiable, nil
}

// ValidateProfile checks every ontology axiom against profile (spec.md
// §6 "validate_profile(EL|QL|RL) → ProfileValidationResult"). When
// EnableProfileCache is false, a throwaway validator is used so repeated
// calls never benefit from the structural-hash cache, matching the
// configuration's documented effect.
func (r *Reasoner) ValidateProfile(profile Profile) ProfileValidationResult {
	validator := r.profiles
	if !r.config.EnableProfileCache {
		validator = NewProfileValidator()
	}
	return validator.Validate(r.ontology.Axioms, profile)
}

// seedABox builds the initial completion graph from every ABox axiom in
// axioms: one node per named individual, class assertions folded in as
// labels, property assertions as edges, and same/different-individual
// axioms folded into the equality reasoner. extra, if non-nil, is an
// additional ClassAssertion seeded after the ontology's own ABox (used
// by InstancesOf to test a:¬C without mutating the ontology). Negative
// property assertions are checked last, after every positive assertion
// has been seeded, against the edges asserted directly in the ABox; edges
// that property propagation derives later during Engine.Run are not
// checked against them. Callers invoke this before Run.
func seedABox(g *Graph, eq *EqualityReasoner, eng *Engine, entities *EntityStore, axioms []*Axiom, extra *Axiom) error {
	nodeFor := make(map[IRI]NodeID)
	ensureNode := func(iri IRI) (NodeID, error) {
		if id, ok := nodeFor[iri]; ok {
			return id, nil
		}
		id, err := g.NewNode(iri, NoNode, IRI{}, 0)
		if err != nil {
			return NoNode, err
		}
		if plan := eng.SeedNode(id); plan != nil && plan.GloballyUnsat {
			return NoNode, NewInternalInvariantError("reasoner/seed-node-clash", "GCI obligations clashed while seeding individual %s", iri)
		}
		nodeFor[iri] = id
		return id, nil
	}
	for _, iri := range entities.EntitiesOfKind(KindNamedIndividual) {
		if _, err := ensureNode(iri); err != nil {
			return err
		}
	}

	all := axioms
	if extra != nil {
		all = append(append([]*Axiom(nil), axioms...), extra)
	}

	var negatives []*Axiom
	for _, ax := range all {
		switch ax.Kind {
		case AxiomClassAssertion:
			n, err := ensureNode(ax.Individual)
			if err != nil {
				return err
			}
			if plan := eng.seedLabel(n, ax.ClassExpr, EmptyDepSet()); plan != nil && plan.GloballyUnsat {
				// handleClash has emptied the queues; queue the assertion again
				// so that Run re-derives the same clash.
				eng.enqueue(task{kind: TaskIntersection, node: n, concept: &ClassExpression{Kind: ExprIntersection, Operands: []*ClassExpression{ax.ClassExpr}}, deps: EmptyDepSet()})
				return nil // global clash surfaces as UNSAT when Run executes, not as an error
			}
		case AxiomPropertyAssertion:
			from, err := ensureNode(ax.Individual)
			if err != nil {
				return err
			}
			to, err := ensureNode(ax.Individual2)
			if err != nil {
				return err
			}
			edge := g.AddEdge(from, ax.Property, to, EmptyDepSet())
			eng.enqueuePropertyPropagation(edge, EmptyDepSet())
		case AxiomSameIndividual:
			for i := 1; i < len(ax.Individuals); i++ {
				a, err := ensureNode(ax.Individuals[0])
				if err != nil {
					return err
				}
				b, err := ensureNode(ax.Individuals[i])
				if err != nil {
					return err
				}
				eq.Same(a, b, EmptyDepSet())
			}
		case AxiomDifferentIndividuals:
			for i := 0; i < len(ax.Individuals); i++ {
				for j := i + 1; j < len(ax.Individuals); j++ {
					a, err := ensureNode(ax.Individuals[i])
					if err != nil {
						return err
					}
					b, err := ensureNode(ax.Individuals[j])
					if err != nil {
						return err
					}
					eq.Different(a, b, EmptyDepSet())
				}
			}
		case AxiomNegativePropertyAssertion:
			negatives = append(negatives, ax)
		}
	}
	for _, ax := range negatives {
		from, err := ensureNode(ax.Individual)
		if err != nil {
			return err
		}
		to, err := ensureNode(ax.Individual2)
		if err != nil {
			return err
		}
		for _, edge := range g.IterSuccessors(from, ax.Property) {
			if eq.Find(edge.To) == eq.Find(to) {
				// ⊥ is the single operand of the queued ⊓, so applyIntersection
				// adds it to from's label and the clash is raised during Run.
				eng.enqueue(task{kind: TaskIntersection, node: from, concept: &ClassExpression{Kind: ExprIntersection, Operands: []*ClassExpression{Bottom()}}, deps: EmptyDepSet()})
			}
		}
	}
	return nil
}
