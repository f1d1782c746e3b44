package owl2

// qlChecker validates axioms against OWL 2 QL (spec.md §4.I "QL: no
// existential on right-hand side of subclass, no property chains beyond
// length 1, no functional properties").
type qlChecker struct{}

func (qlChecker) checkAxiom(ax *Axiom) ([]ProfileViolation, []OptimizationHint) {
	var violations []ProfileViolation
	report := func(kind string) {
		violations = append(violations, ProfileViolation{AxiomRef: ax.Ref(), Kind: kind, Severity: SeverityError})
	}

	switch ax.Kind {
	case AxiomSubClassOf:
		qlWalkLHS(ax.Sub, report)
		qlWalkRHS(ax.Super, report)
	case AxiomEquivalentClasses:
		for _, c := range ax.Classes {
			qlWalkLHS(c, report)
		}
	case AxiomSubPropertyChain:
		if len(ax.Chain) > 1 {
			report("property-chain-too-long")
		}
	case AxiomFunctional:
		report("functional-property")
	case AxiomInverseFunctional:
		report("inverse-functional-property")
	case AxiomDisjointUnion:
		report("disjoint-union-not-in-ql")
	case AxiomHasKey:
		report("has-key-not-in-ql")
	}

	var hints []OptimizationHint
	if len(violations) == 0 && ax.Kind == AxiomSubClassOf {
		hints = append(hints, OptimizationHint{
			AxiomRef: ax.Ref(),
			Message:  "QL-expressible SubClassOf: can be compiled into a query-rewriting rule instead of tableaux expansion",
		})
	}
	return violations, hints
}

// qlWalkLHS checks the left-hand side of a SubClassOf/EquivalentClasses
// axiom: QL restricts subjects to "basic concepts" — atomic classes and
// existentials over a basic concept filler, nothing richer.
func qlWalkLHS(c *ClassExpression, report func(string)) {
	if c == nil {
		return
	}
	switch c.Kind {
	case ExprTop, ExprAtomic, ExprBottom:
	case ExprExistential:
		if c.Filler != nil && c.Filler.Kind != ExprTop && c.Filler.Kind != ExprAtomic {
			report("existential-filler-too-complex")
		}
	default:
		report("lhs-construct-not-in-ql")
	}
}

// qlWalkRHS checks the right-hand side: intersections of basic concepts
// and their negations are allowed, existentials are not (spec.md "no
// existential on right-hand side of subclass").
func qlWalkRHS(c *ClassExpression, report func(string)) {
	if c == nil {
		return
	}
	switch c.Kind {
	case ExprTop, ExprAtomic, ExprBottom:
	case ExprIntersection:
		for _, o := range c.Operands {
			qlWalkRHS(o, report)
		}
	case ExprComplement:
		qlWalkRHS(c.Operand, report)
	case ExprExistential:
		report("existential-on-rhs")
	default:
		report("rhs-construct-not-in-ql")
	}
}
