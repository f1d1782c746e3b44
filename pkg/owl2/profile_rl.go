package owl2

// rlChecker validates axioms against OWL 2 RL (spec.md §4.I "RL:
// restricts shapes of left-hand and right-hand of subclass axioms per
// the spec"). The left-hand (subclass) grammar admits intersection,
// union, existential-to-RL-subclass, has-value, and one-of; the
// right-hand (superclass) grammar admits intersection, universal-to-
// RL-superclass, has-value, at-most-1, and negation of an atomic class —
// unions and unrestricted existentials are excluded from the RHS because
// they would require the disjunctive/non-deterministic reasoning RL's
// rule-based engine is built to avoid.
type rlChecker struct{}

func (rlChecker) checkAxiom(ax *Axiom) ([]ProfileViolation, []OptimizationHint) {
	var violations []ProfileViolation
	report := func(kind string) {
		violations = append(violations, ProfileViolation{AxiomRef: ax.Ref(), Kind: kind, Severity: SeverityError})
	}

	switch ax.Kind {
	case AxiomSubClassOf:
		rlWalkSub(ax.Sub, report)
		rlWalkSuper(ax.Super, report)
	case AxiomEquivalentClasses:
		for _, c := range ax.Classes {
			rlWalkSub(c, report)
			rlWalkSuper(c, report)
		}
	case AxiomDisjointUnion:
		report("disjoint-union-not-in-rl")
	case AxiomInverseFunctional:
		// inverse-functional is expressible in RL only as a key-like rule;
		// flagged as a warning rather than an error since a rule-engine
		// implementation can still approximate it.
		violations = append(violations, ProfileViolation{AxiomRef: ax.Ref(), Kind: "inverse-functional-approximated", Severity: SeverityWarning})
	}

	var hints []OptimizationHint
	if len(violations) == 0 && ax.Kind == AxiomSubClassOf {
		hints = append(hints, OptimizationHint{
			AxiomRef: ax.Ref(),
			Message:  "RL-expressible SubClassOf: compilable into a forward-chaining rule instead of tableaux expansion",
		})
	}
	return violations, hints
}

func rlWalkSub(c *ClassExpression, report func(string)) {
	if c == nil {
		return
	}
	switch c.Kind {
	case ExprTop, ExprAtomic, ExprBottom, ExprOneOf, ExprHasValue:
	case ExprIntersection, ExprUnion:
		for _, o := range c.Operands {
			rlWalkSub(o, report)
		}
	case ExprExistential:
		rlWalkSub(c.Filler, report)
	default:
		report("lhs-construct-not-in-rl")
	}
}

func rlWalkSuper(c *ClassExpression, report func(string)) {
	if c == nil {
		return
	}
	switch c.Kind {
	case ExprTop, ExprAtomic, ExprBottom, ExprHasValue:
	case ExprIntersection:
		for _, o := range c.Operands {
			rlWalkSuper(o, report)
		}
	case ExprUniversal:
		rlWalkSuper(c.Filler, report)
	case ExprMaxCardinality:
		if c.Cardinality > 1 {
			report("max-cardinality-too-large-for-rl")
		}
	case ExprComplement:
		if c.Operand.Kind != ExprAtomic {
			report("negation-of-non-atomic-on-rhs")
		}
	default:
		report("rhs-construct-not-in-rl")
	}
}
