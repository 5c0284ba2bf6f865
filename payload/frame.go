package payload

import (
	"encoding/binary"
	"math/big"
)

const (
	// MinSeedLen is the minimum length, in bytes, of a raw input blob. Anything shorter is
	// rejected outright without attempting to parse a single frame.
	MinSeedLen = 4
	// MaxSeedLen is the maximum length, in bytes, of a raw input blob the external driver should
	// ever synthesize. It is communicated to the driver via --maxlength; it is not itself enforced
	// as a hard rejection bound on decode (a longer blob is simply truncated to as many full frames
	// as it contains).
	MaxSeedLen = 4096

	// frameHeaderLen is the fixed-size portion of a frame, before the variable-length args.
	//   selector_index(1) + origin_index(1) + value(16) + lapse(4) + args_len(2)
	frameHeaderLen = 1 + 1 + 16 + 4 + 2
)

// frame is one raw, not-yet-validated slice of a parsed input blob.
type frame struct {
	selectorIndex byte
	originIndex   byte
	value         *big.Int
	lapse         uint32
	args          []byte
}

// parseFrames partitions raw into as many fixed-layout frames as it can hold, stopping silently at
// a truncated trailing frame. It never returns an error: an empty result means no frame decoded.
func parseFrames(raw []byte) []frame {
	var frames []frame
	offset := 0
	for offset+frameHeaderLen <= len(raw) {
		selectorIndex := raw[offset]
		originIndex := raw[offset+1]
		value := new(big.Int).SetBytes(reverse(raw[offset+2 : offset+18]))
		lapse := binary.LittleEndian.Uint32(raw[offset+18 : offset+22])
		argsLen := int(binary.LittleEndian.Uint16(raw[offset+22 : offset+24]))

		argsStart := offset + frameHeaderLen
		argsEnd := argsStart + argsLen
		if argsEnd > len(raw) {
			// Truncated trailing frame: stop here, keep what we already parsed.
			break
		}

		frames = append(frames, frame{
			selectorIndex: selectorIndex,
			originIndex:   originIndex,
			value:         value,
			lapse:         lapse,
			args:          raw[argsStart:argsEnd],
		})
		offset = argsEnd
	}
	return frames
}

// reverse returns a reversed copy of b, used to convert the wire's little-endian 16-byte value
// field into the big-endian byte order big.Int.SetBytes expects.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
