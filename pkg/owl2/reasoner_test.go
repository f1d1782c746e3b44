package owl2_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/owl2go/reasoner/pkg/owl2"
)

func TestReasonerIsConsistentOnSimpleABox(t *testing.T) {
	person := owl2.Atomic(owl2.MustIntern("Person"))
	parent := owl2.Atomic(owl2.MustIntern("Parent"))
	hasChild := owl2.MustIntern("hasChild")

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/family"))
	ont.AddAxiom(owl2.SubClassOf(parent, person))
	ont.AddAxiom(owl2.ClassAssertion(owl2.MustIntern("alice"), parent))
	ont.AddAxiom(owl2.PropertyAssertion(hasChild, owl2.MustIntern("alice"), owl2.MustIntern("bob")))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.True(t, consistent)
}

func TestReasonerDetectsClassAssertionClash(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("A"))
	b := owl2.Atomic(owl2.MustIntern("B"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/clash"))
	ont.AddAxiom(owl2.DisjointClasses(a, b))
	ont.AddAxiom(owl2.ClassAssertion(owl2.MustIntern("x"), a))
	ont.AddAxiom(owl2.ClassAssertion(owl2.MustIntern("x"), b))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.False(t, consistent, "x cannot be both A and B when they are disjoint")
}

func TestReasonerSatisfiabilityWithDisjointness(t *testing.T) {
	cat := owl2.Atomic(owl2.MustIntern("Cat"))
	dog := owl2.Atomic(owl2.MustIntern("Dog"))
	mammal := owl2.Atomic(owl2.MustIntern("Mammal"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/animals"))
	ont.AddAxiom(owl2.SubClassOf(cat, mammal))
	ont.AddAxiom(owl2.SubClassOf(dog, mammal))
	ont.AddAxiom(owl2.DisjointClasses(cat, dog))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	sat, err := r.IsSatisfiable(owl2.Intersection(cat, dog))
	require.NoError(t, err)
	require.False(t, sat, "Cat and Dog are disjoint")

	sat, err = r.IsSatisfiable(cat)
	require.NoError(t, err)
	require.True(t, sat)
}

func TestReasonerSubsumption(t *testing.T) {
	cat := owl2.Atomic(owl2.MustIntern("Cat"))
	mammal := owl2.Atomic(owl2.MustIntern("Mammal"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/subsumption"))
	ont.AddAxiom(owl2.SubClassOf(cat, mammal))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	sub, err := r.IsSubclassOf(cat, mammal)
	require.NoError(t, err)
	require.True(t, sub)

	sub, err = r.IsSubclassOf(mammal, cat)
	require.NoError(t, err)
	require.False(t, sub)
}

func TestReasonerClassificationIsTransitivelyReduced(t *testing.T) {
	animal := owl2.Atomic(owl2.MustIntern("Animal2"))
	mammal := owl2.Atomic(owl2.MustIntern("Mammal2"))
	cat := owl2.Atomic(owl2.MustIntern("Cat2"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/taxonomy"))
	ont.AddAxiom(owl2.SubClassOf(mammal, animal))
	ont.AddAxiom(owl2.SubClassOf(cat, mammal))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	hierarchy, err := r.Classify()
	require.NoError(t, err)

	catIRI := owl2.MustIntern("Cat2")
	mammalIRI := owl2.MustIntern("Mammal2")
	animalIRI := owl2.MustIntern("Animal2")

	catNode, ok := hierarchy.Nodes[catIRI]
	require.True(t, ok)
	require.Contains(t, catNode.Supers, mammalIRI)
	require.NotContains(t, catNode.Supers, animalIRI, "Animal2 is not a direct super of Cat2, Mammal2 is")

	mammalNode, ok := hierarchy.Nodes[mammalIRI]
	require.True(t, ok)
	require.Contains(t, mammalNode.Supers, animalIRI)
	require.Contains(t, mammalNode.Subs, catIRI)
}

func TestReasonerClassificationIsDeterministic(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("DA"))
	b := owl2.Atomic(owl2.MustIntern("DB"))
	c := owl2.Atomic(owl2.MustIntern("DC"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/deterministic"))
	ont.AddAxiom(owl2.SubClassOf(b, a))
	ont.AddAxiom(owl2.SubClassOf(c, b))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	first, err := r.Classify()
	require.NoError(t, err)
	second, err := r.Classify()
	require.NoError(t, err)

	require.Equal(t, len(first.Nodes), len(second.Nodes))
	for iri, node := range first.Nodes {
		other, ok := second.Nodes[iri]
		require.True(t, ok)
		require.ElementsMatch(t, node.Supers, other.Supers)
		require.ElementsMatch(t, node.Subs, other.Subs)
	}
}

func TestReasonerInstancesOfIncludesDirectAndInheritedMembers(t *testing.T) {
	person := owl2.Atomic(owl2.MustIntern("PersonI"))
	parent := owl2.Atomic(owl2.MustIntern("ParentI"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/instances"))
	ont.AddAxiom(owl2.SubClassOf(parent, person))
	ont.AddAxiom(owl2.ClassAssertion(owl2.MustIntern("alice2"), parent))
	ont.AddAxiom(owl2.ClassAssertion(owl2.MustIntern("carol2"), person))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	members, err := r.InstancesOf(person)
	require.NoError(t, err)
	require.ElementsMatch(t, members, []owl2.IRI{owl2.MustIntern("alice2"), owl2.MustIntern("carol2")})
}

func TestReasonerFunctionalPropertyForcesMerge(t *testing.T) {
	hasSpouse := owl2.MustIntern("hasSpouseT")
	alice := owl2.MustIntern("aliceT")
	bob := owl2.MustIntern("bobT")
	robert := owl2.MustIntern("robertT")

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/merge"))
	ont.AddAxiom(owl2.Functional(hasSpouse))
	ont.AddAxiom(owl2.PropertyAssertion(hasSpouse, alice, bob))
	ont.AddAxiom(owl2.PropertyAssertion(hasSpouse, alice, robert))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.True(t, consistent, "bob and robert may be merged since nothing forbids it")
}

func TestReasonerFunctionalPropertyClashesWithDifferentFrom(t *testing.T) {
	hasSpouse := owl2.MustIntern("hasSpouseU")
	alice := owl2.MustIntern("aliceU")
	bob := owl2.MustIntern("bobU")
	robert := owl2.MustIntern("robertU")

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/merge-blocked"))
	ont.AddAxiom(owl2.Functional(hasSpouse))
	ont.AddAxiom(owl2.PropertyAssertion(hasSpouse, alice, bob))
	ont.AddAxiom(owl2.PropertyAssertion(hasSpouse, alice, robert))
	ont.AddAxiom(owl2.DifferentIndividuals(bob, robert))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.False(t, consistent, "a functional property cannot have two provably distinct fillers")
}

func TestReasonerSelfReferentialExistentialTerminatesViaBlocking(t *testing.T) {
	hasNext := owl2.MustIntern("hasNextT")
	c := owl2.Existential(hasNext, owl2.Atomic(owl2.MustIntern("CT")))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/blocking"))
	ont.AddAxiom(owl2.EquivalentClasses(owl2.Atomic(owl2.MustIntern("CT")), c))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	sat, err := r.IsSatisfiable(c)
	require.NoError(t, err)
	require.True(t, sat, "blocking should let this terminate as satisfiable rather than loop forever")
}

func TestReasonerProfileValidationFlagsDisjunctionInEL(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("PA"))
	b := owl2.Atomic(owl2.MustIntern("PB"))
	c := owl2.Atomic(owl2.MustIntern("PC"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/profile"))
	ont.AddAxiom(owl2.SubClassOf(a, owl2.Union(b, c)))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	result := r.ValidateProfile(owl2.ProfileEL)
	require.False(t, result.InProfile)
	require.NotEmpty(t, result.Violations)
}

func TestReasonerProfileValidationAcceptsPlainSubClassInEL(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("QA"))
	b := owl2.Atomic(owl2.MustIntern("QB"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/profile-ok"))
	ont.AddAxiom(owl2.SubClassOf(a, b))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	result := r.ValidateProfile(owl2.ProfileEL)
	require.True(t, result.InProfile)
	require.Empty(t, result.Violations)
}

func TestReasonerRejectsOntologyWithParseErrors(t *testing.T) {
	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/broken"))
	ont.Diagnostics = append(ont.Diagnostics, &owl2.ParseError{})

	_, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.Error(t, err)
}

func TestReasonerEmptyOntologyIsConsistent(t *testing.T) {
	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/empty"))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.True(t, consistent)
}

func TestReasonerProfileValidationHintsSurviveRepeatedCalls(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("HintA"))
	b := owl2.Atomic(owl2.MustIntern("HintB"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/hints"))
	ont.AddAxiom(owl2.SubClassOf(a, b))

	config := owl2.DefaultReasonerConfig()
	config.EnableProfileCache = true
	r, err := owl2.New(ont, config)
	require.NoError(t, err)

	first := r.ValidateProfile(owl2.ProfileEL)
	second := r.ValidateProfile(owl2.ProfileEL)

	require.NotEmpty(t, first.Hints, "a plain EL-expressible SubClassOf should earn an optimization hint")
	require.Equal(t, first.Hints, second.Hints, "repeated calls on an unchanged ontology must return equal results")
}

func TestReasonerSymmetricPropertyPropagatesBothDirections(t *testing.T) {
	knows := owl2.MustIntern("knowsSym")
	alice := owl2.MustIntern("aliceSym")
	bob := owl2.MustIntern("bobSym")
	person := owl2.Atomic(owl2.MustIntern("PersonSym"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/symmetric"))
	ont.AddAxiom(owl2.Symmetric(knows))
	ont.AddAxiom(owl2.PropertyDomain(knows, person))
	ont.AddAxiom(owl2.PropertyAssertion(knows, alice, bob))
	// If knows(alice,bob) doesn't entail knows(bob,alice), bob never picks
	// up the domain obligation and this ontology stays consistent.
	ont.AddAxiom(owl2.ClassAssertion(bob, owl2.Complement(person)))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.False(t, consistent, "knows is symmetric so bob is also a knows-subject, clashing with ¬Person")
}

func TestReasonerDisjunctionRetriesSecondAlternativeAfterClash(t *testing.T) {
	b := owl2.Atomic(owl2.MustIntern("DisjB"))
	c := owl2.Atomic(owl2.MustIntern("DisjC"))

	r, err := owl2.New(owl2.NewOntology(owl2.MustIntern("https://example.org/disjunction-retry")), owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	// Neither disjunct is individually satisfiable alongside both
	// negations, so the ⊔-rule must try B, see it clash with ¬B, then
	// retry C and see that clash too before reporting UNSAT.
	concept := owl2.Intersection(owl2.Union(b, c), owl2.Complement(b), owl2.Complement(c))
	sat, err := r.IsSatisfiable(concept)
	require.NoError(t, err)
	require.False(t, sat, "both disjuncts are individually excluded, so (B⊔C)⊓¬B⊓¬C must be unsatisfiable")
}

func TestReasonerEquivalentClassesAreMutuallySubsumed(t *testing.T) {
	a := owl2.Atomic(owl2.MustIntern("EquivA"))
	b := owl2.Atomic(owl2.MustIntern("EquivB"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/equivalent"))
	ont.AddAxiom(owl2.EquivalentClasses(a, b))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	aSubB, err := r.IsSubclassOf(a, b)
	require.NoError(t, err)
	require.True(t, aSubB, "EquivalentClasses must entail A⊑B")

	bSubA, err := r.IsSubclassOf(b, a)
	require.NoError(t, err)
	require.True(t, bSubA, "EquivalentClasses must entail B⊑A")
}

func TestReasonerDisjointUnionEntailsCoverageAndDisjointness(t *testing.T) {
	defined := owl2.Atomic(owl2.MustIntern("DUDefined"))
	c1 := owl2.Atomic(owl2.MustIntern("DUChild1"))
	c2 := owl2.Atomic(owl2.MustIntern("DUChild2"))

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/disjoint-union"))
	ont.AddAxiom(owl2.DisjointUnion(defined, c1, c2))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	childSubDefined, err := r.IsSubclassOf(c1, defined)
	require.NoError(t, err)
	require.True(t, childSubDefined, "each disjunct must be a subclass of the defined class")

	sat, err := r.IsSatisfiable(owl2.Intersection(c1, c2))
	require.NoError(t, err)
	require.False(t, sat, "DisjointUnion's disjuncts must be pairwise disjoint")
}

func TestReasonerDifferentFromSurvivesAbsorbedMerge(t *testing.T) {
	p := owl2.MustIntern("pFunc")
	q := owl2.MustIntern("qFunc")
	a := owl2.MustIntern("aNode")
	b := owl2.MustIntern("bNode")
	c := owl2.MustIntern("cNode")
	d := owl2.MustIntern("dNode")
	e := owl2.MustIntern("eNode")

	ont := owl2.NewOntology(owl2.MustIntern("https://example.org/diff-merge"))
	ont.AddAxiom(owl2.Functional(p))
	ont.AddAxiom(owl2.Functional(q))
	ont.AddAxiom(owl2.PropertyAssertion(p, a, b))
	ont.AddAxiom(owl2.PropertyAssertion(p, a, c))
	ont.AddAxiom(owl2.DifferentIndividuals(c, d))
	ont.AddAxiom(owl2.PropertyAssertion(q, e, b))
	ont.AddAxiom(owl2.PropertyAssertion(q, e, d))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	require.NoError(t, err)

	consistent, err := r.IsConsistent()
	require.NoError(t, err)
	require.False(t, consistent,
		"p forces b=c, c is different-from d, and q forces b=d: the different-from "+
			"constraint recorded against c must survive being absorbed into b's "+
			"equivalence class for the second merge to clash")
}
