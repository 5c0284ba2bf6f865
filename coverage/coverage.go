package coverage

import (
	"sync"

	chainTypes "github.com/kevin-valerio/phink/chain/types"
)

// Coverage accumulates the traces produced by every message in a single executing CallSequence.
// Max is the highest known beacon id for the current contract, learned during instrumentation; it
// bounds the unrolled ladder the bridge emits to the external driver.
type Coverage struct {
	Branches []CoverageTrace
	Max      uint32
}

// NewCoverage constructs an empty Coverage bounded by max, the contract's highest beacon id.
func NewCoverage(max uint32) *Coverage {
	return &Coverage{Max: max}
}

// Collect appends one CoverageTrace per response's debug output, in message order, mirroring
// "each buffer is appended to Coverage.branches" from the harness's coverage-capture contract.
func (c *Coverage) Collect(responses []chainTypes.Response) {
	for _, r := range responses {
		c.Branches = append(c.Branches, CoverageTrace(r.DebugOutput))
	}
}

// BeaconIDs flattens every branch and returns the deduplicated, order-preserved set of observed
// beacon ids across the whole sequence.
func (c *Coverage) BeaconIDs() []uint32 {
	seen := make(map[uint32]bool)
	var ids []uint32
	for _, branch := range c.Branches {
		for _, id := range ExtractBeaconIDs(branch) {
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// Map is a process-wide, mutex-guarded accumulation of beacon ids observed across iterations,
// mirroring CoverageMaps' role of merging coverage across many executions so the report generator
// can render a whole-session picture rather than a single sequence's.
type Map struct {
	mu      sync.Mutex
	covered map[uint32]bool
}

// NewMap constructs an empty Map.
func NewMap() *Map {
	return &Map{covered: make(map[uint32]bool)}
}

// Update merges newIDs into the map, returning how many of them were not already covered.
func (m *Map) Update(newIDs []uint32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, id := range newIDs {
		if !m.covered[id] {
			m.covered[id] = true
			added++
		}
	}
	return added
}

// IsCovered reports whether a beacon id has ever been observed.
func (m *Map) IsCovered(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.covered[id]
}

// Len returns the number of distinct beacon ids observed so far.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.covered)
}

// Snapshot returns a defensive copy of every beacon id observed so far.
func (m *Map) Snapshot() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uint32, 0, len(m.covered))
	for id := range m.covered {
		ids = append(ids, id)
	}
	return ids
}
