// Package main demonstrates basic reasoner usage patterns: building a
// small family-relationships ontology, checking consistency and
// satisfiability, classifying its class hierarchy, retrieving
// instances, and validating it against an OWL 2 profile.
package main

import (
	"fmt"

	"github.com/owl2go/reasoner/pkg/owl2"
)

func main() {
	fmt.Println("=== owl2 reasoner demo ===")
	fmt.Println()

	basicConsistency()
	satisfiabilityAndSubsumption()
	classification()
	instanceRetrieval()
	profileValidation()
}

func mustIntern(s string) owl2.IRI {
	return owl2.MustIntern(s)
}

// basicConsistency builds a small ontology with a GCI and an ABox
// assertion that respects it, and checks consistency.
func basicConsistency() {
	fmt.Println("1. Consistency:")

	person := owl2.Atomic(mustIntern("Person"))
	parent := owl2.Atomic(mustIntern("Parent"))
	hasChild := mustIntern("hasChild")

	ont := owl2.NewOntology(mustIntern("https://example.org/family"))
	ont.AddAxiom(owl2.SubClassOf(parent, person))
	ont.AddAxiom(owl2.ClassAssertion(mustIntern("alice"), parent))
	ont.AddAxiom(owl2.PropertyAssertion(hasChild, mustIntern("alice"), mustIntern("bob")))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	if err != nil {
		fmt.Println("   failed to build reasoner:", err)
		return
	}
	consistent, err := r.IsConsistent()
	if err != nil {
		fmt.Println("   is_consistent error:", err)
		return
	}
	fmt.Printf("   is_consistent() => %v\n\n", consistent)
}

// satisfiabilityAndSubsumption shows a class made unsatisfiable by a
// disjointness axiom, and a straightforward subsumption check.
func satisfiabilityAndSubsumption() {
	fmt.Println("2. Satisfiability and Subsumption:")

	cat := owl2.Atomic(mustIntern("Cat"))
	dog := owl2.Atomic(mustIntern("Dog"))
	mammal := owl2.Atomic(mustIntern("Mammal"))

	ont := owl2.NewOntology(mustIntern("https://example.org/animals"))
	ont.AddAxiom(owl2.SubClassOf(cat, mammal))
	ont.AddAxiom(owl2.SubClassOf(dog, mammal))
	ont.AddAxiom(owl2.DisjointClasses(cat, dog))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	if err != nil {
		fmt.Println("   failed to build reasoner:", err)
		return
	}

	catAndDog := owl2.Intersection(cat, dog)
	sat, err := r.IsSatisfiable(catAndDog)
	if err != nil {
		fmt.Println("   is_satisfiable error:", err)
		return
	}
	fmt.Printf("   is_satisfiable(Cat ⊓ Dog) => %v (disjointness makes this empty)\n", sat)

	sub, err := r.IsSubclassOf(cat, mammal)
	if err != nil {
		fmt.Println("   is_subclass_of error:", err)
		return
	}
	fmt.Printf("   Cat ⊑ Mammal => %v\n\n", sub)
}

// classification builds a small taxonomy and prints its transitively
// reduced hierarchy.
func classification() {
	fmt.Println("3. Classification:")

	animal := owl2.Atomic(mustIntern("Animal"))
	mammal := owl2.Atomic(mustIntern("Mammal"))
	cat := owl2.Atomic(mustIntern("Cat"))

	ont := owl2.NewOntology(mustIntern("https://example.org/taxonomy"))
	ont.AddAxiom(owl2.SubClassOf(mammal, animal))
	ont.AddAxiom(owl2.SubClassOf(cat, mammal))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	if err != nil {
		fmt.Println("   failed to build reasoner:", err)
		return
	}
	hierarchy, err := r.Classify()
	if err != nil {
		fmt.Println("   classify error:", err)
		return
	}
	for iri, node := range hierarchy.Nodes {
		fmt.Printf("   %s direct supers=%v subs=%v\n", iri, node.Supers, node.Subs)
	}
	fmt.Println()
}

// instanceRetrieval finds every named individual asserted (directly or
// by entailment) to belong to a class.
func instanceRetrieval() {
	fmt.Println("4. Instance Retrieval:")

	person := owl2.Atomic(mustIntern("Person"))
	parent := owl2.Atomic(mustIntern("Parent"))
	hasChild := mustIntern("hasChild")

	ont := owl2.NewOntology(mustIntern("https://example.org/instances"))
	ont.AddAxiom(owl2.SubClassOf(parent, person))
	ont.AddAxiom(owl2.ClassAssertion(mustIntern("alice"), parent))
	ont.AddAxiom(owl2.ClassAssertion(mustIntern("carol"), person))
	ont.AddAxiom(owl2.PropertyAssertion(hasChild, mustIntern("alice"), mustIntern("bob")))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	if err != nil {
		fmt.Println("   failed to build reasoner:", err)
		return
	}
	members, err := r.InstancesOf(person)
	if err != nil {
		fmt.Println("   instances_of error:", err)
		return
	}
	fmt.Printf("   instances_of(Person) => %v\n\n", members)
}

// profileValidation checks an ontology with a disjunction against EL,
// which forbids disjunction on the right-hand side of SubClassOf.
func profileValidation() {
	fmt.Println("5. Profile Validation:")

	a := owl2.Atomic(mustIntern("A"))
	b := owl2.Atomic(mustIntern("B"))
	c := owl2.Atomic(mustIntern("C"))

	ont := owl2.NewOntology(mustIntern("https://example.org/profile"))
	ont.AddAxiom(owl2.SubClassOf(a, owl2.Union(b, c)))

	r, err := owl2.New(ont, owl2.DefaultReasonerConfig())
	if err != nil {
		fmt.Println("   failed to build reasoner:", err)
		return
	}
	result := r.ValidateProfile(owl2.ProfileEL)
	fmt.Printf("   in_profile(EL) => %v, violations=%d\n", result.InProfile, len(result.Violations))
	for _, v := range result.Violations {
		fmt.Printf("     - %s: %s\n", v.AxiomRef, v.Kind)
	}
}
