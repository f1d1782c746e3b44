package owl2

import "time"

// DeterministicRulePriority selects how strictly the expansion engine
// enforces rule-priority ordering (spec.md §6 "deterministic_rule_priority
// ∈ {Strict, Interleaved} (effect: starvation vs locality trade-off)").
type DeterministicRulePriority int

const (
	// PriorityStrict drains a higher-priority tier completely before
	// touching a lower one, which is what Engine.popTask does.
	PriorityStrict DeterministicRulePriority = iota
	// PriorityInterleaved is accepted by the configuration, but the
	// expansion engine does not read DeterministicRulePriority: popTask
	// drains tiers strictly under either setting, and no lower tier is
	// serviced while a higher tier has pending work.
	PriorityInterleaved
)

func (p DeterministicRulePriority) String() string {
	if p == PriorityInterleaved {
		return "interleaved"
	}
	return "strict"
}

// ReasonerConfig is the reasoner's enumerated configuration surface
// (spec.md §6 "Configuration (enumerated)").
type ReasonerConfig struct {
	// MaxGraphNodes hard-caps the completion graph's node arena; exceeding
	// it surfaces as ResourceExhausted. Zero means unbounded.
	MaxGraphNodes int
	// MaxDependencyDepth bounds the choice-point stack height. Zero means
	// unbounded.
	MaxDependencyDepth int
	// BlockingStrategy selects the blocking engine's witness comparison.
	BlockingStrategy BlockingStrategy
	// DeterministicRulePriority names a rule-priority mode; the expansion
	// engine does not consult it (see PriorityInterleaved).
	DeterministicRulePriority DeterministicRulePriority
	// EnableProfileCache memoizes profile validation per structural hash.
	EnableProfileCache bool
	// Deadline is a soft per-reasoning-task timeout; zero means no deadline.
	Deadline time.Duration
}

// DefaultReasonerConfig returns the configuration spec.md §6 names as
// defaults: dynamic equality blocking, strict rule priority, profile
// caching enabled, no hard caps or deadline.
func DefaultReasonerConfig() ReasonerConfig {
	return ReasonerConfig{
		MaxGraphNodes:             0,
		MaxDependencyDepth:        0,
		BlockingStrategy:          DynamicBlocking,
		DeterministicRulePriority: PriorityStrict,
		EnableProfileCache:        true,
		Deadline:                 0,
	}
}

// Validate reports an InternalInvariant-kind error if the configuration
// contains an inconsistent combination (currently: negative bounds).
func (c ReasonerConfig) Validate() error {
	if c.MaxGraphNodes < 0 {
		return NewInternalInvariantError("config/negative-max-graph-nodes", "max_graph_nodes must be >= 0, got %d", c.MaxGraphNodes)
	}
	if c.MaxDependencyDepth < 0 {
		return NewInternalInvariantError("config/negative-max-dependency-depth", "max_dependency_depth must be >= 0, got %d", c.MaxDependencyDepth)
	}
	if c.Deadline < 0 {
		return NewInternalInvariantError("config/negative-deadline", "deadline must be >= 0, got %s", c.Deadline)
	}
	return nil
}
