package owl2

import "fmt"

// AxiomKind tags the variant of an Axiom (spec.md §3). As with
// ClassExpression, axioms dispatch structurally on this tag.
type AxiomKind int

const (
	// TBox
	AxiomSubClassOf AxiomKind = iota
	AxiomEquivalentClasses
	AxiomDisjointClasses
	AxiomDisjointUnion

	// RBox
	AxiomSubPropertyOf
	AxiomSubPropertyChain
	AxiomEquivalentProperties
	AxiomInverseProperties
	AxiomPropertyDomain
	AxiomPropertyRange
	AxiomFunctional
	AxiomInverseFunctional
	AxiomTransitive
	AxiomSymmetric
	AxiomAsymmetric
	AxiomReflexive
	AxiomIrreflexive

	// ABox
	AxiomClassAssertion
	AxiomPropertyAssertion
	AxiomNegativePropertyAssertion
	AxiomSameIndividual
	AxiomDifferentIndividuals
	AxiomHasKey
)

// String returns a human-readable axiom kind name.
func (k AxiomKind) String() string {
	names := [...]string{
		"SubClassOf", "EquivalentClasses", "DisjointClasses", "DisjointUnion",
		"SubPropertyOf", "SubPropertyChain", "EquivalentProperties", "InverseProperties",
		"PropertyDomain", "PropertyRange", "Functional", "InverseFunctional",
		"Transitive", "Symmetric", "Asymmetric", "Reflexive", "Irreflexive",
		"ClassAssertion", "PropertyAssertion", "NegativePropertyAssertion",
		"SameIndividual", "DifferentIndividuals", "HasKey",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// Axiom is a structural representation of a single TBox, RBox, or ABox
// axiom (spec.md §3). Like ClassExpression it is one tagged struct rather
// than a type hierarchy, for the same structural-dispatch reasons
// (spec.md §9).
type Axiom struct {
	Kind AxiomKind

	// TBox: SubClassOf(Sub, Super); EquivalentClasses/DisjointClasses(Classes...);
	// DisjointUnion(Defined, Classes...).
	Sub      *ClassExpression
	Super    *ClassExpression
	Classes  []*ClassExpression
	Defined  *ClassExpression

	// RBox: property-valued fields.
	Property   IRI
	Super2     IRI   // SubPropertyOf target, SubPropertyChain consequent, InverseProperties partner
	Chain      []IRI // SubPropertyChain: P1 o ... o Pn subproperty-of Super2
	Properties []IRI // EquivalentProperties operands
	Domain     *ClassExpression
	Range      *ClassExpression

	// ABox
	Individual   IRI
	Individual2  IRI
	ClassExpr    *ClassExpression
	Individuals  []IRI // SameIndividual / DifferentIndividuals operands
	KeyClass     *ClassExpression
	KeyProps     []IRI

	ref string // opaque source reference for diagnostics, e.g. "axiom#42"
}

// Ref returns an opaque reference string identifying this axiom's
// provenance (line in source, or synthetic ID), used in clash witnesses
// and profile violations. Empty if the axiom was constructed
// programmatically without SetRef.
func (a *Axiom) Ref() string { return a.ref }

// SetRef attaches a provenance reference and returns a for chaining.
func (a *Axiom) SetRef(ref string) *Axiom {
	a.ref = ref
	return a
}

// SubClassOf builds `sub ⊑ super`.
func SubClassOf(sub, super *ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomSubClassOf, Sub: sub, Super: super}
}

// EquivalentClasses builds `C1 ≡ C2 ≡ ... ≡ Cn`.
func EquivalentClasses(classes ...*ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomEquivalentClasses, Classes: classes}
}

// DisjointClasses builds pairwise disjointness over classes.
func DisjointClasses(classes ...*ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomDisjointClasses, Classes: classes}
}

// DisjointUnion builds `Defined ≡ C1 ⊔ ... ⊔ Cn` with Ci pairwise disjoint.
func DisjointUnion(defined *ClassExpression, classes ...*ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomDisjointUnion, Defined: defined, Classes: classes}
}

// SubPropertyOf builds `sub ⊑ super` over object/data properties.
func SubPropertyOf(sub, super IRI) *Axiom {
	return &Axiom{Kind: AxiomSubPropertyOf, Property: sub, Super2: super}
}

// SubPropertyChain builds `P1 o P2 o ... o Pn ⊑ super`.
func SubPropertyChain(chain []IRI, super IRI) *Axiom {
	return &Axiom{Kind: AxiomSubPropertyChain, Chain: chain, Super2: super}
}

// EquivalentProperties builds an equivalence class of properties.
func EquivalentProperties(properties ...IRI) *Axiom {
	return &Axiom{Kind: AxiomEquivalentProperties, Properties: properties}
}

// InverseProperties builds `p ≡ q⁻`.
func InverseProperties(p, q IRI) *Axiom {
	return &Axiom{Kind: AxiomInverseProperties, Property: p, Super2: q}
}

// PropertyDomain builds `domain(P) ⊑ C`.
func PropertyDomain(p IRI, c *ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomPropertyDomain, Property: p, Domain: c}
}

// PropertyRange builds `range(P) ⊑ C`.
func PropertyRange(p IRI, c *ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomPropertyRange, Property: p, Range: c}
}

// Functional declares P functional.
func Functional(p IRI) *Axiom { return &Axiom{Kind: AxiomFunctional, Property: p} }

// InverseFunctional declares P inverse-functional.
func InverseFunctional(p IRI) *Axiom { return &Axiom{Kind: AxiomInverseFunctional, Property: p} }

// Transitive declares P transitive.
func Transitive(p IRI) *Axiom { return &Axiom{Kind: AxiomTransitive, Property: p} }

// Symmetric declares P symmetric.
func Symmetric(p IRI) *Axiom { return &Axiom{Kind: AxiomSymmetric, Property: p} }

// Asymmetric declares P asymmetric.
func Asymmetric(p IRI) *Axiom { return &Axiom{Kind: AxiomAsymmetric, Property: p} }

// Reflexive declares P reflexive.
func Reflexive(p IRI) *Axiom { return &Axiom{Kind: AxiomReflexive, Property: p} }

// Irreflexive declares P irreflexive.
func Irreflexive(p IRI) *Axiom { return &Axiom{Kind: AxiomIrreflexive, Property: p} }

// ClassAssertion builds `a : C`.
func ClassAssertion(a IRI, c *ClassExpression) *Axiom {
	return &Axiom{Kind: AxiomClassAssertion, Individual: a, ClassExpr: c}
}

// PropertyAssertion builds `P(a, b)`.
func PropertyAssertion(p IRI, a, b IRI) *Axiom {
	return &Axiom{Kind: AxiomPropertyAssertion, Property: p, Individual: a, Individual2: b}
}

// NegativePropertyAssertion builds `¬P(a, b)`.
func NegativePropertyAssertion(p IRI, a, b IRI) *Axiom {
	return &Axiom{Kind: AxiomNegativePropertyAssertion, Property: p, Individual: a, Individual2: b}
}

// SameIndividual builds `a1 = a2 = ... = an`.
func SameIndividual(individuals ...IRI) *Axiom {
	return &Axiom{Kind: AxiomSameIndividual, Individuals: individuals}
}

// DifferentIndividuals builds pairwise difference over individuals.
func DifferentIndividuals(individuals ...IRI) *Axiom {
	return &Axiom{Kind: AxiomDifferentIndividuals, Individuals: individuals}
}

// HasKey builds `HasKey(C, (P1 ... Pk))`.
func HasKey(class *ClassExpression, props ...IRI) *Axiom {
	return &Axiom{Kind: AxiomHasKey, KeyClass: class, KeyProps: props}
}

// StructuralHash hashes an axiom the same way ClassExpression does, for
// the profile-validation cache (spec.md §4.I).
func (a *Axiom) StructuralHash() uint64 {
	h := uint64(14695981039346656037) // fnv offset basis, mixed manually below
	mix := func(x uint64) { h = (h ^ x) * 1099511628211 }
	mix(uint64(a.Kind))
	if a.Sub != nil {
		mix(a.Sub.StructuralHash())
	}
	if a.Super != nil {
		mix(a.Super.StructuralHash())
	}
	for _, c := range a.Classes {
		mix(c.StructuralHash())
	}
	if a.Defined != nil {
		mix(a.Defined.StructuralHash())
	}
	mix(uint64(a.Property.handle))
	mix(uint64(a.Super2.handle))
	for _, p := range a.Chain {
		mix(uint64(p.handle))
	}
	for _, p := range a.Properties {
		mix(uint64(p.handle))
	}
	if a.Domain != nil {
		mix(a.Domain.StructuralHash())
	}
	if a.Range != nil {
		mix(a.Range.StructuralHash())
	}
	mix(uint64(a.Individual.handle))
	mix(uint64(a.Individual2.handle))
	if a.ClassExpr != nil {
		mix(a.ClassExpr.StructuralHash())
	}
	for _, ind := range a.Individuals {
		mix(uint64(ind.handle))
	}
	if a.KeyClass != nil {
		mix(a.KeyClass.StructuralHash())
	}
	for _, p := range a.KeyProps {
		mix(uint64(p.handle))
	}
	return h
}

// String renders the axiom using conventional DL notation for diagnostics.
func (a *Axiom) String() string {
	switch a.Kind {
	case AxiomSubClassOf:
		return fmt.Sprintf("%s ⊑ %s", a.Sub, a.Super)
	case AxiomClassAssertion:
		return fmt.Sprintf("%s : %s", a.Individual, a.ClassExpr)
	case AxiomPropertyAssertion:
		return fmt.Sprintf("%s(%s, %s)", a.Property, a.Individual, a.Individual2)
	default:
		return fmt.Sprintf("%s(...)", a.Kind)
	}
}

// PropertyCharacteristics summarizes the RBox characteristics declared for
// a single property IRI.
type PropertyCharacteristics struct {
	Functional        bool
	InverseFunctional bool
	Transitive        bool
	Symmetric         bool
	Asymmetric        bool
	Reflexive         bool
	Irreflexive       bool
}

// RBox is the normalized representation of the role hierarchy and
// property characteristics, built once at ingestion time (spec.md §4.B
// "Normal form produced on ingestion ... chained subproperty axioms
// stored in an auxiliary RBox automaton"). A property chain
// `P1 o ... o Pn ⊑ Q` is stored as a chainAutomaton holding the sequence
// P1..Pn and the consequent Q; no per-step automaton state is kept. The
// expansion engine's propagateChains matches only chains of length two.
type RBox struct {
	characteristics map[IRI]*PropertyCharacteristics
	superProperties map[IRI][]IRI   // direct sub ⊑ super edges
	inverses        map[IRI]IRI     // p -> p's declared inverse, if any
	equivalents     map[IRI][]IRI   // p -> properties declared equivalent to p
	domains         map[IRI][]*ClassExpression
	ranges          map[IRI][]*ClassExpression
	chains          []chainAutomaton
}

type chainAutomaton struct {
	chain []IRI // P1, ..., Pn
	super IRI   // Q
}

// NewRBox creates an empty RBox.
func NewRBox() *RBox {
	return &RBox{
		characteristics: make(map[IRI]*PropertyCharacteristics),
		superProperties: make(map[IRI][]IRI),
		inverses:        make(map[IRI]IRI),
		equivalents:     make(map[IRI][]IRI),
		domains:         make(map[IRI][]*ClassExpression),
		ranges:          make(map[IRI][]*ClassExpression),
	}
}

func (rb *RBox) charsFor(p IRI) *PropertyCharacteristics {
	c, ok := rb.characteristics[p]
	if !ok {
		c = &PropertyCharacteristics{}
		rb.characteristics[p] = c
	}
	return c
}

// Characteristics returns the declared characteristics for p (zero-value
// if none were declared).
func (rb *RBox) Characteristics(p IRI) PropertyCharacteristics {
	if c, ok := rb.characteristics[p]; ok {
		return *c
	}
	return PropertyCharacteristics{}
}

// Inverse returns p's declared inverse property and whether one exists.
func (rb *RBox) Inverse(p IRI) (IRI, bool) {
	q, ok := rb.inverses[p]
	return q, ok
}

// SuperProperties returns the properties directly declared super to p
// (not transitively closed; callers walk the chain themselves).
func (rb *RBox) SuperProperties(p IRI) []IRI {
	return rb.superProperties[p]
}

// IsSubPropertyOf reports whether sub is reflexive-transitively a
// subproperty of super, by walking superProperties/equivalents.
func (rb *RBox) IsSubPropertyOf(sub, super IRI) bool {
	if sub == super {
		return true
	}
	visited := make(map[IRI]bool)
	var walk func(p IRI) bool
	walk = func(p IRI) bool {
		if visited[p] {
			return false
		}
		visited[p] = true
		for _, s := range rb.superProperties[p] {
			if s == super || walk(s) {
				return true
			}
		}
		for _, e := range rb.equivalents[p] {
			if e == super || walk(e) {
				return true
			}
		}
		return false
	}
	return walk(sub)
}

// AllSuperProperties returns every property Q reachable from p through
// one or more declared subproperty or equivalence links (p itself is not
// included unless such a cycle leads back to it), used by the property-propagation rule to decide which additional
// edges a freshly asserted P-edge implies (spec.md §4.H rule family 2
// "subproperty").
func (rb *RBox) AllSuperProperties(p IRI) []IRI {
	visited := make(map[IRI]bool)
	var out []IRI
	var walk func(IRI)
	walk = func(q IRI) {
		for _, s := range rb.superProperties[q] {
			if !visited[s] {
				visited[s] = true
				out = append(out, s)
				walk(s)
			}
		}
		for _, eq := range rb.equivalents[q] {
			if !visited[eq] {
				visited[eq] = true
				out = append(out, eq)
				walk(eq)
			}
		}
	}
	walk(p)
	return out
}

// Domains returns the class expressions declared as domain restrictions
// on p.
func (rb *RBox) Domains(p IRI) []*ClassExpression { return rb.domains[p] }

// Ranges returns the class expressions declared as range restrictions on p.
func (rb *RBox) Ranges(p IRI) []*ClassExpression { return rb.ranges[p] }

// ChainsFor returns the compiled property-chain automata whose consequent is
// super (i.e. chains that can fire to add a super-edge).
func (rb *RBox) ChainsFor(super IRI) []chainAutomaton {
	var out []chainAutomaton
	for _, ca := range rb.chains {
		if ca.super == super {
			out = append(out, ca)
		}
	}
	return out
}

// AllChains returns every compiled chain automaton, used by the property
// propagation rule (spec.md §4.H, rule family 2) to check, for every edge
// pair (n,P,m) and (m,Q,k), whether some chain P o Q ⊑ ... matches.
func (rb *RBox) AllChains() []chainAutomaton { return rb.chains }

// Properties returns the automaton's property sequence.
func (ca chainAutomaton) Properties() []IRI { return ca.chain }

// Super returns the automaton's consequent property.
func (ca chainAutomaton) Super() IRI { return ca.super }

// BuildRBox normalizes the RBox axioms of axioms into an RBox, compiling
// property-chain axioms into automata. Characteristics, domains, ranges,
// and the subproperty/equivalence graph are populated directly; the
// chain automata are stored for the expansion engine's transitive/chain
// propagation rule to consume (spec.md §4.H "Transitive P").
func BuildRBox(axioms []*Axiom) *RBox {
	rb := NewRBox()
	for _, ax := range axioms {
		switch ax.Kind {
		case AxiomSubPropertyOf:
			rb.superProperties[ax.Property] = append(rb.superProperties[ax.Property], ax.Super2)
		case AxiomSubPropertyChain:
			rb.chains = append(rb.chains, chainAutomaton{chain: append([]IRI(nil), ax.Chain...), super: ax.Super2})
		case AxiomEquivalentProperties:
			for _, p := range ax.Properties {
				for _, q := range ax.Properties {
					if p != q {
						rb.equivalents[p] = append(rb.equivalents[p], q)
					}
				}
			}
		case AxiomInverseProperties:
			rb.inverses[ax.Property] = ax.Super2
			rb.inverses[ax.Super2] = ax.Property
		case AxiomPropertyDomain:
			rb.domains[ax.Property] = append(rb.domains[ax.Property], ax.Domain)
		case AxiomPropertyRange:
			rb.ranges[ax.Property] = append(rb.ranges[ax.Property], ax.Range)
		case AxiomFunctional:
			rb.charsFor(ax.Property).Functional = true
		case AxiomInverseFunctional:
			rb.charsFor(ax.Property).InverseFunctional = true
		case AxiomTransitive:
			rb.charsFor(ax.Property).Transitive = true
		case AxiomSymmetric:
			rb.charsFor(ax.Property).Symmetric = true
		case AxiomAsymmetric:
			rb.charsFor(ax.Property).Asymmetric = true
		case AxiomReflexive:
			rb.charsFor(ax.Property).Reflexive = true
		case AxiomIrreflexive:
			rb.charsFor(ax.Property).Irreflexive = true
		}
	}
	// A transitive property P is equivalent to the chain P o P ⊑ P; fold
	// it in here so the chain-propagation rule handles transitivity too
	// without a separate code path.
	for p, c := range rb.characteristics {
		if c.Transitive {
			rb.chains = append(rb.chains, chainAutomaton{chain: []IRI{p, p}, super: p})
		}
	}
	return rb
}
