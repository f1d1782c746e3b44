package owl2

import "sort"

// Epoch identifies a choice point by its position in the monotonic
// sequence of choices ever pushed during a single reasoning task (spec.md
// §3 "Choice Point": "a monotonic epoch"). Epoch 0 is reserved to mean
// "no choice": facts justified only by axioms, not by any disjunctive
// guess, carry an empty dependency set, whose Max() is 0.
type Epoch int

// RuleOrigin identifies which non-deterministic rule opened a choice
// point; it is recorded on the choice point and not otherwise read.
type RuleOrigin int

const (
	RuleDisjunction RuleOrigin = iota
	RuleAtMost
	RuleNominal
)

// String returns a human-readable rule origin name.
func (r RuleOrigin) String() string {
	switch r {
	case RuleDisjunction:
		return "disjunction"
	case RuleAtMost:
		return "at-most"
	case RuleNominal:
		return "nominal"
	default:
		return "unknown"
	}
}

// DepSet is a set of choice-point epochs that justify a fact (a labelled
// concept, an edge, or a merge — spec.md §3 "Dependency Set"). It is kept
// as a sorted slice rather than a map: dependency sets are small (bounded
// by search depth) and are mixed far more often (union on every rule
// firing) than queried by membership, so a sorted-slice union is both
// simpler and faster than map allocation in the hot path — the same
// trade-off the teacher's BitSet domain makes for small, dense sets.
type DepSet struct {
	epochs []Epoch
}

// EmptyDepSet returns a DepSet justified by axioms alone (no choices).
func EmptyDepSet() DepSet { return DepSet{} }

// SingletonDep returns a DepSet justified by exactly one choice-point epoch.
func SingletonDep(e Epoch) DepSet { return DepSet{epochs: []Epoch{e}} }

// Union returns the union of d and other as a new DepSet.
func (d DepSet) Union(other DepSet) DepSet {
	if len(d.epochs) == 0 {
		return other
	}
	if len(other.epochs) == 0 {
		return d
	}
	merged := make([]Epoch, 0, len(d.epochs)+len(other.epochs))
	i, j := 0, 0
	for i < len(d.epochs) && j < len(other.epochs) {
		switch {
		case d.epochs[i] < other.epochs[j]:
			merged = append(merged, d.epochs[i])
			i++
		case d.epochs[i] > other.epochs[j]:
			merged = append(merged, other.epochs[j])
			j++
		default:
			merged = append(merged, d.epochs[i])
			i++
			j++
		}
	}
	merged = append(merged, d.epochs[i:]...)
	merged = append(merged, other.epochs[j:]...)
	return DepSet{epochs: merged}
}

// Max returns the largest epoch in d, or 0 if d is empty (axiom-only).
func (d DepSet) Max() Epoch {
	if len(d.epochs) == 0 {
		return 0
	}
	return d.epochs[len(d.epochs)-1]
}

// Contains reports whether e is in d.
func (d DepSet) Contains(e Epoch) bool {
	i := sort.Search(len(d.epochs), func(i int) bool { return d.epochs[i] >= e })
	return i < len(d.epochs) && d.epochs[i] == e
}

// Epochs returns the sorted epochs in d. The returned slice must not be
// mutated by the caller.
func (d DepSet) Epochs() []Epoch { return d.epochs }

// choicePoint is a snapshot of one non-deterministic decision (spec.md
// §3 "Choice Point"): the rule responsible, the alternative index chosen,
// a watermark into each arena for O(1) rewind, and the dependency sets of
// the clashes resolved at this point (triedNogood). Clash appends to
// triedNogood but nothing reads it, so it does not affect which
// alternative a backjump tries next.
type choicePoint struct {
	epoch       Epoch
	rule        RuleOrigin
	node        NodeID
	altIndex    int
	numAlts     int
	watermark   Watermark
	triedNogood []DepSet // dependency sets of clashes seen for alternatives already tried at this point
}

// BackjumpPlan is the result of resolving a clash's dependency set against
// the choice-point stack (spec.md §4.E): where to rewind to, and whether
// any surviving choice point still has an untried alternative.
type BackjumpPlan struct {
	TargetEpoch      Epoch
	HasAlternative   bool // true if targetEpoch's choice point has an untried alternative
	GloballyUnsat    bool // true if the stack emptied with no alternative left anywhere
	ResidualDeps     DepSet
}

// DependencyTracker owns the choice-point stack for a single reasoning
// task (spec.md §4.E). It is not safe for concurrent use: each parallel
// reasoning task (spec.md §5) owns its own tracker.
type DependencyTracker struct {
	stack     []choicePoint
	nextEpoch Epoch
	maxDepth  int // 0 = unbounded; mirrors config.MaxDependencyDepth
}

// NewDependencyTracker creates an empty tracker. maxDepth bounds the
// choice-point stack height (spec.md §6 "max_dependency_depth"); 0 means
// unbounded.
func NewDependencyTracker(maxDepth int) *DependencyTracker {
	return &DependencyTracker{nextEpoch: 1, maxDepth: maxDepth}
}

// PushChoice opens a new choice point for a non-deterministic rule firing
// on node at the given watermark, with numAlts total alternatives
// (alt 0 tried first). Returns the new epoch, or a ResourceExhausted
// error if the configured stack-depth bound would be exceeded.
func (dt *DependencyTracker) PushChoice(rule RuleOrigin, node NodeID, numAlts int, wm Watermark) (Epoch, error) {
	if dt.maxDepth > 0 && len(dt.stack) >= dt.maxDepth {
		return 0, NewResourceExhaustedError("dependency stack exceeded max_dependency_depth=%d", dt.maxDepth)
	}
	e := dt.nextEpoch
	dt.nextEpoch++
	dt.stack = append(dt.stack, choicePoint{
		epoch: e, rule: rule, node: node, altIndex: 0, numAlts: numAlts, watermark: wm,
	})
	return e, nil
}

// Depth returns the current choice-point stack height.
func (dt *DependencyTracker) Depth() int { return len(dt.stack) }

// CurrentAlt returns the alternative index currently being tried at
// epoch e, and ok=false if e is not on the stack.
func (dt *DependencyTracker) CurrentAlt(e Epoch) (int, bool) {
	for i := len(dt.stack) - 1; i >= 0; i-- {
		if dt.stack[i].epoch == e {
			return dt.stack[i].altIndex, true
		}
	}
	return 0, false
}

// Clash resolves a clash whose combined dependency set is deps into a
// BackjumpPlan (spec.md §4.E "clash(deps) → BackjumpPlan"). Backjump
// policy: pop every choice point strictly newer than the target; at the
// target, if an untried alternative remains, record the clash reason and
// advance to it; otherwise keep popping until an alternative is found or
// the stack empties.
func (dt *DependencyTracker) Clash(deps DepSet) BackjumpPlan {
	target := deps.Max()
	for {
		idx := dt.indexOf(target)
		if idx < 0 {
			// target epoch is not on the stack (already popped, or 0 =
			// axiom-only): global unsat if nothing remains, otherwise the
			// caller should retry against the new stack top.
			if len(dt.stack) == 0 {
				return BackjumpPlan{TargetEpoch: 0, GloballyUnsat: true, ResidualDeps: deps}
			}
			target = dt.stack[len(dt.stack)-1].epoch
			continue
		}
		// Pop everything strictly above idx.
		dt.stack = dt.stack[:idx+1]
		cp := &dt.stack[idx]
		cp.triedNogood = append(cp.triedNogood, deps)
		if cp.altIndex+1 < cp.numAlts {
			cp.altIndex++
			return BackjumpPlan{TargetEpoch: cp.epoch, HasAlternative: true, ResidualDeps: deps}
		}
		// Exhausted this choice point's alternatives: pop it and keep
		// looking at the next one down, carrying this clash's deps
		// (minus the exhausted epoch) forward as the new dependency set.
		dt.stack = dt.stack[:idx]
		deps = removeEpoch(deps, cp.epoch)
		if len(dt.stack) == 0 {
			return BackjumpPlan{TargetEpoch: 0, GloballyUnsat: true, ResidualDeps: deps}
		}
		target = deps.Max()
		if target == 0 {
			target = dt.stack[len(dt.stack)-1].epoch
		}
	}
}

func removeEpoch(d DepSet, e Epoch) DepSet {
	out := make([]Epoch, 0, len(d.epochs))
	for _, x := range d.epochs {
		if x != e {
			out = append(out, x)
		}
	}
	return DepSet{epochs: out}
}

func (dt *DependencyTracker) indexOf(e Epoch) int {
	for i := len(dt.stack) - 1; i >= 0; i-- {
		if dt.stack[i].epoch == e {
			return i
		}
	}
	return -1
}

// WatermarkOf returns the watermark recorded when epoch e's choice point
// was pushed, used by the memory manager to rewind arenas on backjump
// (spec.md invariant 3: "the completion graph after rewind is equal to
// the graph state captured at e's watermark").
func (dt *DependencyTracker) WatermarkOf(e Epoch) (Watermark, bool) {
	idx := dt.indexOf(e)
	if idx < 0 {
		return 0, false
	}
	return dt.stack[idx].watermark, true
}

// Reset clears the tracker for reuse (between independent reasoning
// tasks sharing a pooled tracker).
func (dt *DependencyTracker) Reset() {
	dt.stack = dt.stack[:0]
	dt.nextEpoch = 1
}
