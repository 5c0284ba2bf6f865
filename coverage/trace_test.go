package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBeaconIDsDedupesPreservingOrder(t *testing.T) {
	trace := CoverageTrace("garbage COV=3 more garbage COV=1 COV=3 trailer COV=2")
	assert.Equal(t, []uint32{3, 1, 2}, ExtractBeaconIDs(trace))
}

func TestExtractBeaconIDsIgnoresMalformedTokens(t *testing.T) {
	trace := CoverageTrace("COV=abc COV= COV=-1 COV=4")
	assert.Equal(t, []uint32{4}, ExtractBeaconIDs(trace))
}

func TestExtractBeaconIDsEmptyTrace(t *testing.T) {
	assert.Empty(t, ExtractBeaconIDs(CoverageTrace("")))
}

func TestCleanRemovesOnlyCoverageTokens(t *testing.T) {
	trace := CoverageTrace("panic: assertion failed COV=5 at line 10")
	assert.Equal(t, "panic: assertion failed at line 10", string(Clean(trace)))
}

func TestCoverageCollectAndBeaconIDs(t *testing.T) {
	c := NewCoverage(10)
	c.Collect(fakeResponses())
	ids := c.BeaconIDs()
	assert.Equal(t, []uint32{1, 2, 3}, ids)
}

func TestMapUpdateReportsNewCoverage(t *testing.T) {
	m := NewMap()
	assert.True(t, m.Update([]uint32{1, 2}) > 0)
	assert.False(t, m.Update([]uint32{1, 2}) > 0)
	assert.True(t, m.Update([]uint32{1, 3}) > 0)
	assert.Equal(t, 3, m.Len())
	assert.True(t, m.IsCovered(3))
	assert.False(t, m.IsCovered(99))
}
