package coverage

import (
	"sync"

	"github.com/kevin-valerio/phink/logging"
)

var logger = logging.GlobalLogger.NewSubLogger("module", logging.COVERAGE_SERVICE)

// Bridge lifts a completed Coverage's beacon ids into the external driver's feedback loop by
// exercising the compiled-in Ladder for each observed id within [0, Max].
type Bridge struct {
	max           uint32
	truncatedOnce sync.Once
}

// NewBridge constructs a Bridge bounded by max, the instrumented contract's highest beacon id
// (fuzzing.NewCampaign passes the MaxBeaconID the instrument step recorded). An id above
// coverage.LadderMax has no case in the compiled ladder, so observing it exercises no branch.
func NewBridge(max uint32) *Bridge {
	return &Bridge{max: max}
}

// Max returns the bridge's compiled ladder bound.
func (b *Bridge) Max() uint32 {
	return b.max
}

// Observe exercises the ladder for every beacon id in c, in order. Ids beyond the bridge's bound
// are silently dropped; a warning is logged once per session the first time this happens.
func (b *Bridge) Observe(c *Coverage) {
	truncated := false
	for _, id := range c.BeaconIDs() {
		if id > b.max {
			truncated = true
			continue
		}
		Ladder(id)
	}
	if truncated {
		b.truncatedOnce.Do(func() {
			logger.Warn(ErrCoverageOverflow.Error())
		})
	}
}
