package owl2

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// ExprKind tags the variant of a ClassExpression (spec.md §3). Class
// expressions dispatch structurally on this tag rather than through
// virtual methods (spec.md §9 "Dispatch over class expressions"): this
// keeps the hot tableaux path branch-predictable and gives every
// expression a cheap structural hash for the profile-validator cache and
// the completion-graph label sets.
type ExprKind int

const (
	ExprTop ExprKind = iota
	ExprBottom
	ExprAtomic
	ExprIntersection
	ExprUnion
	ExprComplement
	ExprExistential
	ExprUniversal
	ExprMinCardinality
	ExprMaxCardinality
	ExprExactCardinality
	ExprHasValue
	ExprOneOf
)

// ClassExpression is a recursive sum over the OWL 2 class expression
// grammar (spec.md §3). It is represented as a single struct with a Kind
// tag rather than an interface hierarchy so that structural hashing and
// equality can be computed uniformly without type switches scattered
// across the codebase.
type ClassExpression struct {
	Kind ExprKind

	// ExprAtomic
	Atom IRI

	// ExprIntersection / ExprUnion: Operands has len >= 2.
	Operands []*ClassExpression

	// ExprComplement: Operand is the negated expression.
	Operand *ClassExpression

	// ExprExistential / ExprUniversal / Expr{Min,Max,Exact}Cardinality /
	// ExprHasValue: Property is the role, Filler the class filled on the
	// restriction (nil for HasValue, which instead uses Individual).
	Property IRI
	Filler   *ClassExpression

	// Expr{Min,Max,Exact}Cardinality: the cardinality bound n.
	Cardinality int

	// ExprHasValue: the individual value.
	Individual IRI

	// ExprOneOf: the nominal individuals {a1, ..., an}.
	Individuals []IRI

	hash     uint64 // memoized structural hash, valid once hashOnce is set
	hashOnce bool
}

// Top is the universal class expression ⊤.
func Top() *ClassExpression { return &ClassExpression{Kind: ExprTop} }

// Bottom is the empty class expression ⊥.
func Bottom() *ClassExpression { return &ClassExpression{Kind: ExprBottom} }

// Atomic wraps a named class IRI as a class expression.
func Atomic(iri IRI) *ClassExpression { return &ClassExpression{Kind: ExprAtomic, Atom: iri} }

// Intersection builds C1 ⊓ C2 ⊓ ... ⊓ Cn. A single operand is returned
// unwrapped; zero operands returns Top.
func Intersection(operands ...*ClassExpression) *ClassExpression {
	if len(operands) == 0 {
		return Top()
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &ClassExpression{Kind: ExprIntersection, Operands: operands}
}

// Union builds C1 ⊔ C2 ⊔ ... ⊔ Cn.
func Union(operands ...*ClassExpression) *ClassExpression {
	if len(operands) == 0 {
		return Bottom()
	}
	if len(operands) == 1 {
		return operands[0]
	}
	return &ClassExpression{Kind: ExprUnion, Operands: operands}
}

// Complement builds ¬C.
func Complement(c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprComplement, Operand: c}
}

// Existential builds ∃P.C.
func Existential(p IRI, c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprExistential, Property: p, Filler: c}
}

// Universal builds ∀P.C.
func Universal(p IRI, c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprUniversal, Property: p, Filler: c}
}

// MinCardinality builds ≥n P.C.
func MinCardinality(n int, p IRI, c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprMinCardinality, Cardinality: n, Property: p, Filler: c}
}

// MaxCardinality builds ≤n P.C.
func MaxCardinality(n int, p IRI, c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprMaxCardinality, Cardinality: n, Property: p, Filler: c}
}

// ExactCardinality builds =n P.C. It keeps its own tag (rather than being
// built directly as (≥n P.C) ⊓ (≤n P.C)) so structural hashing and
// profile validation see the axiom's original shape; NNF desugars it into
// (≥n P.C) ⊓ (≤n P.C), and its negation into (≤n-1 P.C) ⊔ (≥n+1 P.C),
// since the expansion engine only carries rule handlers for ≥n and ≤n.
func ExactCardinality(n int, p IRI, c *ClassExpression) *ClassExpression {
	return &ClassExpression{Kind: ExprExactCardinality, Cardinality: n, Property: p, Filler: c}
}

// HasValue builds P:a (the has-value restriction).
func HasValue(p IRI, a IRI) *ClassExpression {
	return &ClassExpression{Kind: ExprHasValue, Property: p, Individual: a}
}

// OneOf builds the nominal {a1, ..., an}.
func OneOf(individuals ...IRI) *ClassExpression {
	return &ClassExpression{Kind: ExprOneOf, Individuals: individuals}
}

// NNF returns c rewritten into negation normal form: negations are pushed
// down to atoms and nominals via De Morgan's laws and restriction duals,
// and double negation is cancelled. Every class expression admitted into
// a node's label (§4.C) is kept in NNF so the clash check "¬C ∈ label(n)"
// is a simple structural lookup rather than a semantic entailment check.
func NNF(c *ClassExpression) *ClassExpression {
	return nnf(c, false)
}

func nnf(c *ClassExpression, negate bool) *ClassExpression {
	switch c.Kind {
	case ExprTop:
		if negate {
			return Bottom()
		}
		return Top()
	case ExprBottom:
		if negate {
			return Top()
		}
		return Bottom()
	case ExprAtomic:
		if negate {
			return Complement(Atomic(c.Atom))
		}
		return Atomic(c.Atom)
	case ExprComplement:
		return nnf(c.Operand, !negate)
	case ExprIntersection:
		ops := nnfOperands(c.Operands, negate)
		if negate {
			return Union(ops...)
		}
		return Intersection(ops...)
	case ExprUnion:
		ops := nnfOperands(c.Operands, negate)
		if negate {
			return Intersection(ops...)
		}
		return Union(ops...)
	case ExprExistential:
		filler := nnf(c.Filler, negate)
		if negate {
			return Universal(c.Property, filler)
		}
		return Existential(c.Property, filler)
	case ExprUniversal:
		filler := nnf(c.Filler, negate)
		if negate {
			return Existential(c.Property, filler)
		}
		return Universal(c.Property, filler)
	case ExprMinCardinality:
		filler := nnf(c.Filler, false)
		if negate {
			if c.Cardinality == 0 {
				return Bottom() // ¬(≥0 P.C) is unsatisfiable
			}
			return MaxCardinality(c.Cardinality-1, c.Property, filler)
		}
		return MinCardinality(c.Cardinality, c.Property, filler)
	case ExprMaxCardinality:
		filler := nnf(c.Filler, false)
		if negate {
			return MinCardinality(c.Cardinality+1, c.Property, filler)
		}
		return MaxCardinality(c.Cardinality, c.Property, filler)
	case ExprExactCardinality:
		filler := nnf(c.Filler, false)
		if negate {
			// ¬(=n P.C) = (≤n-1 P.C) ⊔ (≥n+1 P.C)
			var alts []*ClassExpression
			if c.Cardinality > 0 {
				alts = append(alts, MaxCardinality(c.Cardinality-1, c.Property, filler))
			} else {
				alts = append(alts, Bottom())
			}
			alts = append(alts, MinCardinality(c.Cardinality+1, c.Property, filler))
			return Union(alts...)
		}
		return Intersection(
			MinCardinality(c.Cardinality, c.Property, filler),
			MaxCardinality(c.Cardinality, c.Property, filler),
		)
	case ExprHasValue:
		if negate {
			return Complement(HasValue(c.Property, c.Individual))
		}
		return HasValue(c.Property, c.Individual)
	case ExprOneOf:
		if negate {
			return Complement(OneOf(c.Individuals...))
		}
		return OneOf(c.Individuals...)
	default:
		return c
	}
}

func nnfOperands(ops []*ClassExpression, negate bool) []*ClassExpression {
	out := make([]*ClassExpression, len(ops))
	for i, o := range ops {
		out[i] = nnf(o, negate)
	}
	return out
}

// IsNegationOf reports whether c is structurally the NNF-negation of
// other — i.e. label(n) containing both would be a clash. Only meaningful
// for expressions already in NNF.
func IsNegationOf(c, other *ClassExpression) bool {
	switch c.Kind {
	case ExprAtomic:
		return other.Kind == ExprComplement && other.Operand.Kind == ExprAtomic && other.Operand.Atom == c.Atom
	case ExprComplement:
		if c.Operand.Kind != ExprAtomic {
			return false
		}
		return other.Kind == ExprAtomic && other.Atom == c.Operand.Atom
	case ExprTop:
		return other.Kind == ExprBottom
	case ExprBottom:
		return other.Kind == ExprTop
	case ExprHasValue:
		return other.Kind == ExprComplement && other.Operand.Kind == ExprHasValue &&
			other.Operand.Property == c.Property && other.Operand.Individual == c.Individual
	default:
		return false
	}
}

// StructuralHash returns an order-independent hash of c's shape, used to
// key the profile-validation cache (spec.md §4.I) and to deduplicate
// labels in completion-graph nodes (spec.md §4.C invariant i). The hash
// is memoized on first computation since class expressions are treated as
// immutable once constructed.
func (c *ClassExpression) StructuralHash() uint64 {
	if c.hashOnce {
		return c.hash
	}
	h := fnv.New64a()
	c.writeHash(h)
	c.hash = h.Sum64()
	c.hashOnce = true
	return c.hash
}

func (c *ClassExpression) writeHash(h interface{ Write([]byte) (int, error) }) {
	write := func(s string) { _, _ = h.Write([]byte(s)) }
	write(fmt.Sprintf("k%d|", c.Kind))
	switch c.Kind {
	case ExprAtomic:
		write(c.Atom.String())
	case ExprIntersection, ExprUnion:
		// Order-independent: sort sub-hashes before mixing so A⊓B and B⊓A
		// (which are semantically and structurally the same set) hash equal.
		subs := make([]uint64, len(c.Operands))
		for i, o := range c.Operands {
			subs[i] = o.StructuralHash()
		}
		sort.Slice(subs, func(i, j int) bool { return subs[i] < subs[j] })
		for _, s := range subs {
			write(fmt.Sprintf("%d|", s))
		}
	case ExprComplement:
		write(fmt.Sprintf("%d|", c.Operand.StructuralHash()))
	case ExprExistential, ExprUniversal:
		write(c.Property.String())
		write(fmt.Sprintf("%d|", c.Filler.StructuralHash()))
	case ExprMinCardinality, ExprMaxCardinality, ExprExactCardinality:
		write(fmt.Sprintf("%d|%s|", c.Cardinality, c.Property))
		write(fmt.Sprintf("%d|", c.Filler.StructuralHash()))
	case ExprHasValue:
		write(c.Property.String())
		write(c.Individual.String())
	case ExprOneOf:
		vals := make([]string, len(c.Individuals))
		for i, v := range c.Individuals {
			vals[i] = v.String()
		}
		sort.Strings(vals)
		write(strings.Join(vals, ","))
	}
}

// Equal reports structural equality between c and other. Equivalent to
// comparing structural hashes, modulo hash collisions, but re-derives the
// comparison recursively so it remains correct even when hashes collide.
func (c *ClassExpression) Equal(other *ClassExpression) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil || c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ExprTop, ExprBottom:
		return true
	case ExprAtomic:
		return c.Atom == other.Atom
	case ExprIntersection, ExprUnion:
		return equalOperandSets(c.Operands, other.Operands)
	case ExprComplement:
		return c.Operand.Equal(other.Operand)
	case ExprExistential, ExprUniversal:
		return c.Property == other.Property && c.Filler.Equal(other.Filler)
	case ExprMinCardinality, ExprMaxCardinality, ExprExactCardinality:
		return c.Cardinality == other.Cardinality && c.Property == other.Property && c.Filler.Equal(other.Filler)
	case ExprHasValue:
		return c.Property == other.Property && c.Individual == other.Individual
	case ExprOneOf:
		return equalIRISets(c.Individuals, other.Individuals)
	default:
		return false
	}
}

func equalOperandSets(a, b []*ClassExpression) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for j, y := range b {
			if !used[j] && x.Equal(y) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalIRISets(a, b []IRI) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[IRI]int, len(a))
	for _, x := range a {
		seen[x]++
	}
	for _, y := range b {
		if seen[y] == 0 {
			return false
		}
		seen[y]--
	}
	return true
}

// String renders c using conventional DL notation, mainly for test
// failures and clash-witness messages.
func (c *ClassExpression) String() string {
	switch c.Kind {
	case ExprTop:
		return "⊤"
	case ExprBottom:
		return "⊥"
	case ExprAtomic:
		return c.Atom.String()
	case ExprIntersection:
		return joinOperands(c.Operands, "⊓")
	case ExprUnion:
		return joinOperands(c.Operands, "⊔")
	case ExprComplement:
		return "¬" + wrapped(c.Operand)
	case ExprExistential:
		return fmt.Sprintf("∃%s.%s", c.Property, wrapped(c.Filler))
	case ExprUniversal:
		return fmt.Sprintf("∀%s.%s", c.Property, wrapped(c.Filler))
	case ExprMinCardinality:
		return fmt.Sprintf("≥%d %s.%s", c.Cardinality, c.Property, wrapped(c.Filler))
	case ExprMaxCardinality:
		return fmt.Sprintf("≤%d %s.%s", c.Cardinality, c.Property, wrapped(c.Filler))
	case ExprExactCardinality:
		return fmt.Sprintf("=%d %s.%s", c.Cardinality, c.Property, wrapped(c.Filler))
	case ExprHasValue:
		return fmt.Sprintf("%s:%s", c.Property, c.Individual)
	case ExprOneOf:
		strs := make([]string, len(c.Individuals))
		for i, v := range c.Individuals {
			strs[i] = v.String()
		}
		return "{" + strings.Join(strs, ",") + "}"
	default:
		return "?"
	}
}

func wrapped(c *ClassExpression) string {
	switch c.Kind {
	case ExprAtomic, ExprTop, ExprBottom, ExprOneOf:
		return c.String()
	default:
		return "(" + c.String() + ")"
	}
}

func joinOperands(ops []*ClassExpression, sep string) string {
	strs := make([]string, len(ops))
	for i, o := range ops {
		strs[i] = wrapped(o)
	}
	return strings.Join(strs, sep)
}
