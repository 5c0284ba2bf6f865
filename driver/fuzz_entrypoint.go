package driver

import (
	"testing"

	"github.com/kevin-valerio/phink/fuzzing"
)

// FuzzEntrypoint adapts campaign into a libFuzzer-style callback: a single raw blob in, an int out.
// A rejected or erroring blob returns -1; a clean run (crash or not) returns 0. This is what an
// external ziggy-like mutation driver shells into when PHINK_FROM_ZIGGY is set; the
// process-orchestration around invoking it is itself out of scope here.
func FuzzEntrypoint(campaign *fuzzing.Campaign) func([]byte) int {
	return func(data []byte) int {
		if _, err := campaign.RunOne(data); err != nil {
			return -1
		}
		return 0
	}
}

// RegisterFuzzTarget wires campaign into f as a native `go test -fuzz` target: every seed is added
// to the corpus, and f.Fuzz drives campaign.RunOne on every generated input, failing the test the
// moment an invariant is violated so `go test -fuzz=FuzzCampaign` surfaces the same crashes an
// external driver would, without any process-orchestration code in the core.
func RegisterFuzzTarget(f *testing.F, campaign *fuzzing.Campaign, seeds [][]byte) {
	for _, seed := range seeds {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		result, err := campaign.RunOne(data)
		if err != nil {
			// A rejected blob (payload.ErrInputReject) is not a failure: it is simply skipped.
			return
		}
		if len(result.Findings) > 0 {
			t.Fatalf("invariant violated: %s", result.Findings[0].Message)
		}
	})
}
