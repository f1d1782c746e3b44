package owl2

import "fmt"

// Pressure is the memory manager's coarse signal of how close the current
// reasoning task is to its configured resource caps (spec.md §4.F).
type Pressure int

const (
	PressureLow Pressure = iota
	PressureWarn
	PressureHigh
)

// String returns a human-readable pressure level.
func (p Pressure) String() string {
	switch p {
	case PressureLow:
		return "low"
	case PressureWarn:
		return "warn"
	case PressureHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Watermark is an opaque position in the memory manager's undo trail,
// captured by MemoryManager.Mark and restored by MemoryManager.Rewind.
// Per spec.md invariant 3, rewinding to a watermark must restore the
// completion graph "byte-for-byte (modulo arena reuse)".
type Watermark int

// MemoryManager is the bounded, journaled allocator backing a single
// reasoning task's completion graph, equality reasoner, and dependency
// tracker (spec.md §4.F). Every mutation that needs to be undoable on
// backjump records one undo closure on a single shared trail, the same
// "journal of reversible steps" idiom as the teacher's FDStore
// (fd.go: trail []FDChange, snapshot()=len(trail), undo(to)). Using one
// shared trail rather than per-structure arenas keeps rewind trivially
// correct: popping the trail in reverse order undoes exactly the
// mutations performed since the watermark, regardless of which
// component (graph, equality forest) performed them.
type MemoryManager struct {
	trail     []func()
	nodeCount int
	maxNodes  int // 0 = unbounded; mirrors config.MaxGraphNodes
	warnAt    int
	highAt    int
}

// NewMemoryManager creates a manager bounding the total node count at
// maxNodes (0 = unbounded). Warn/High thresholds are derived from
// maxNodes so pressure escalates smoothly as the cap approaches.
func NewMemoryManager(maxNodes int) *MemoryManager {
	mm := &MemoryManager{maxNodes: maxNodes}
	if maxNodes > 0 {
		mm.warnAt = maxNodes * 7 / 10
		mm.highAt = maxNodes * 9 / 10
	}
	return mm
}

// Record appends an undo closure to the trail. Every in-place mutation
// (label added to an existing node, edge added, nodes merged, equality
// union) must call Record with a closure that exactly reverses it before
// the mutation is considered committed.
func (mm *MemoryManager) Record(undo func()) {
	mm.trail = append(mm.trail, undo)
}

// Mark returns the current trail position, to later Rewind to.
func (mm *MemoryManager) Mark() Watermark { return Watermark(len(mm.trail)) }

// Rewind undoes every trail entry recorded since wm, in reverse order,
// and truncates the trail back to wm. O(1) per undone entry, matching
// spec.md §4.F "Rewinding on backjump reclaims all allocations above the
// watermark in O(1) per arena".
func (mm *MemoryManager) Rewind(wm Watermark) error {
	if int(wm) > len(mm.trail) {
		return NewInternalInvariantError("memory/watermark-in-future",
			"watermark %d is ahead of trail length %d", wm, len(mm.trail))
	}
	for i := len(mm.trail) - 1; i >= int(wm); i-- {
		mm.trail[i]()
	}
	mm.trail = mm.trail[:wm]
	return nil
}

// CheckCapacity returns ErrResourceExhausted if adding n more nodes would
// exceed max_graph_nodes (spec.md §4.F "at saturation it aborts with
// ResourceExhausted, never corrupts"). Call before allocating nodes.
func (mm *MemoryManager) CheckCapacity(n int) error {
	if mm.maxNodes <= 0 {
		return nil
	}
	if mm.nodeCount+n > mm.maxNodes {
		return NewResourceExhaustedError(
			"adding %d node(s) would exceed max_graph_nodes=%d (current=%d)", n, mm.maxNodes, mm.nodeCount)
	}
	return nil
}

// NodeCreated records that one more node now exists, registering the
// matching undo so a rewind past this point decrements the count again.
func (mm *MemoryManager) NodeCreated() {
	mm.nodeCount++
	mm.Record(func() { mm.nodeCount-- })
}

// NodeCount returns the number of live nodes at the current trail position.
func (mm *MemoryManager) NodeCount() int { return mm.nodeCount }

// Pressure reports the current pressure level, derived from live node
// count relative to the configured warn/high thresholds. Per spec.md
// §4.F, the expansion engine consults this to prefer deterministic rules
// over node-creating rules as pressure rises.
func (mm *MemoryManager) Pressure() Pressure {
	if mm.maxNodes <= 0 {
		return PressureLow
	}
	switch {
	case mm.nodeCount >= mm.highAt:
		return PressureHigh
	case mm.nodeCount >= mm.warnAt:
		return PressureWarn
	default:
		return PressureLow
	}
}

// String renders a short diagnostic summary of manager state.
func (mm *MemoryManager) String() string {
	return fmt.Sprintf("MemoryManager{nodes=%d/%d, pressure=%s, trail=%d}",
		mm.nodeCount, mm.maxNodes, mm.Pressure(), len(mm.trail))
}
