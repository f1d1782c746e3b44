package owl2

// elChecker validates axioms against OWL 2 EL (spec.md §4.I "EL
// restrictions (summary): no universal restrictions, no inverse
// properties, no disjunction, no negation, no cardinality >0, no
// nominals except in subclass position").
type elChecker struct{}

func (elChecker) checkAxiom(ax *Axiom) ([]ProfileViolation, []OptimizationHint) {
	var violations []ProfileViolation
	report := func(kind string) {
		violations = append(violations, ProfileViolation{AxiomRef: ax.Ref(), Kind: kind, Severity: SeverityError})
	}

	switch ax.Kind {
	case AxiomSubClassOf:
		elWalk(ax.Sub, true, report)
		elWalk(ax.Super, false, report)
	case AxiomEquivalentClasses, AxiomDisjointClasses:
		for _, c := range ax.Classes {
			elWalk(c, false, report)
		}
	case AxiomDisjointUnion:
		report("disjoint-union-implies-disjunction")
	case AxiomInverseProperties:
		report("inverse-property")
	case AxiomInverseFunctional:
		report("inverse-functional-property")
	case AxiomSymmetric, AxiomAsymmetric, AxiomIrreflexive:
		report("non-el-property-characteristic")
	case AxiomPropertyDomain:
		elWalk(ax.Domain, false, report)
	case AxiomPropertyRange:
		elWalk(ax.Range, false, report)
	case AxiomClassAssertion:
		elWalk(ax.ClassExpr, false, report)
	}

	var hints []OptimizationHint
	if len(violations) == 0 && ax.Kind == AxiomSubClassOf {
		hints = append(hints, OptimizationHint{
			AxiomRef: ax.Ref(),
			Message:  "EL-expressible SubClassOf: eligible for polynomial-time classification without full tableaux expansion",
		})
	}
	return violations, hints
}

// elWalk recursively checks c against the EL grammar. atSubjectPosition
// is true only for the left-hand side of a SubClassOf, the one place
// nominals are still EL-expressible (spec.md "no nominals except in
// subclass position").
func elWalk(c *ClassExpression, atSubjectPosition bool, report func(string)) {
	if c == nil {
		return
	}
	switch c.Kind {
	case ExprTop, ExprAtomic:
	case ExprBottom:
	case ExprIntersection:
		for _, o := range c.Operands {
			elWalk(o, atSubjectPosition, report)
		}
	case ExprUnion:
		report("disjunction")
	case ExprComplement:
		report("negation")
	case ExprExistential:
		elWalk(c.Filler, false, report)
	case ExprUniversal:
		report("universal-restriction")
	case ExprMinCardinality, ExprMaxCardinality, ExprExactCardinality:
		if c.Cardinality > 0 {
			report("cardinality-restriction")
		}
	case ExprHasValue:
	case ExprOneOf:
		if !atSubjectPosition {
			report("nominal-outside-subject-position")
		}
	}
}
