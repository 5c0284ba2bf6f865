package payload

import "github.com/kevin-valerio/phink/abi"

// argTranscoder is a minimal, shape-driven stand-in for a full ink!/SCALE argument codec. No
// SCALE-codec library exists anywhere in this project's dependency graph (ink! contract arguments
// are SCALE-encoded, not Ethereum-ABI-encoded, so the usual ABI-packing libraries do not apply
// here); rather than silently accept any byte string, this validates that a candidate frame's
// argument bytes are at least long enough to plausibly carry one SCALE-encoded value per declared
// argument (every SCALE primitive - including a compact-encoded zero - occupies at least one byte).
// This is deliberately conservative: it rejects frames that are too short to be valid, and accepts
// the (common) case of trailing padding the real codec would simply stop short of consuming.
type argTranscoder struct {
	argCount int
}

func newArgTranscoder(message abi.Message) *argTranscoder {
	return &argTranscoder{argCount: len(message.Args)}
}

// validate reports whether args is long enough to plausibly decode against this transcoder's
// message shape.
func (t *argTranscoder) validate(args []byte) bool {
	return len(args) >= t.argCount
}
