package owl2

import "fmt"

// Ontology is the value the parser surface hands to the reasoner (spec.md
// §6 "Ingestion contract"): an ontology IRI, its axioms in declaration
// order, its imports, and any diagnostics the parser collected along the
// way. The reasoner accepts only an Ontology with no unrecovered parse
// errors in Diagnostics.
type Ontology struct {
	IRI         IRI
	Axioms      []*Axiom
	Imports     []IRI
	Diagnostics []*ParseError
}

// NewOntology constructs an empty ontology with the given IRI.
func NewOntology(iri IRI) *Ontology {
	return &Ontology{IRI: iri}
}

// AddAxiom appends ax to the ontology's axiom list, tagging it with a
// provenance reference if it doesn't already carry one.
func (o *Ontology) AddAxiom(ax *Axiom) *Ontology {
	if ax.Ref() == "" {
		ax.SetRef(axiomRef(o.IRI, len(o.Axioms)))
	}
	o.Axioms = append(o.Axioms, ax)
	return o
}

func axiomRef(ontology IRI, index int) string {
	return fmt.Sprintf("%s#axiom%d", ontology, index)
}

// HasParseErrors reports whether the ontology carries any diagnostics,
// meaning the reasoner must refuse to accept it (spec.md §6 "the
// reasoner accepts only a successfully parsed ontology").
func (o *Ontology) HasParseErrors() bool { return len(o.Diagnostics) > 0 }
