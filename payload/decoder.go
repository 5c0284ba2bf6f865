// Package payload decodes a raw fuzzer-supplied byte blob into an ordered, ABI-valid CallSequence.
package payload

import (
	"sync"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/logging"
)

// Decoder turns raw bytes into a CallSequence using a shared abi.Reader. It owns a lazily
// populated, mutex-guarded transcoder cache: building an argument transcoder for a selector is
// comparatively expensive, so it is built once per selector and reused for the life of the
// session. Contention on the mutex is negligible since every fuzzing worker is single-threaded and
// only acquires it once per decoded frame.
type Decoder struct {
	reader *abi.Reader

	mu         sync.Mutex
	transcoder map[abi.Selector]*argTranscoder

	logger *logging.Logger
}

// NewDecoder constructs a Decoder bound to the given ABI reader.
func NewDecoder(reader *abi.Reader) *Decoder {
	return &Decoder{
		reader:     reader,
		transcoder: make(map[abi.Selector]*argTranscoder),
		logger:     logging.GlobalLogger.NewSubLogger("module", "payload"),
	}
}

// Decode parses raw into a CallSequence. originCount is the number of configured origin accounts,
// used to reduce each frame's origin index modulo the account count. A blob shorter than
// MinSeedLen, a blob with zero valid frames, or a blob where every frame fails ABI-aware
// validation is rejected with ErrInputReject.
func (d *Decoder) Decode(raw []byte, originCount int) (CallSequence, error) {
	if len(raw) < MinSeedLen {
		return CallSequence{}, rejectf("blob shorter than the minimum seed length")
	}

	selectors := d.reader.NonInvariantSelectors()
	if len(selectors) == 0 {
		return CallSequence{}, rejectf("ABI exposes no dispatchable (non-invariant) selectors")
	}
	if originCount <= 0 {
		originCount = 1
	}

	frames := parseFrames(raw)
	if len(frames) == 0 {
		return CallSequence{}, rejectf("blob contained zero valid frames")
	}

	var sequence CallSequence
	for _, f := range frames {
		// Index modulo selector count, guaranteeing total coverage of the selector space rather
		// than rejecting on an inverted out-of-bounds check.
		selector := selectors[int(f.selectorIndex)%len(selectors)]

		message, ok := d.reader.MessageBySelector(selector)
		if !ok {
			continue
		}

		transcoder := d.transcoderFor(selector, message)
		if !transcoder.validate(f.args) {
			// Frame fails ABI-aware decoding: dropped, not fatal to the sequence.
			continue
		}

		sequence.Messages = append(sequence.Messages, Message{
			Selector:    selector,
			Args:        f.args,
			OriginIndex: byte(int(f.originIndex) % originCount),
			Value:       f.value,
			Metadata:    message.Label,
		})
		sequence.BlockLapse ^= f.lapse
	}

	if len(sequence.Messages) == 0 {
		return CallSequence{}, rejectf("every frame failed ABI-aware argument validation")
	}

	return sequence, nil
}

// transcoderFor returns the cached argument transcoder for selector, building and caching one if
// this is the first time it has been requested this session.
func (d *Decoder) transcoderFor(selector abi.Selector, message abi.Message) *argTranscoder {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.transcoder[selector]; ok {
		return t
	}
	t := newArgTranscoder(message)
	d.transcoder[selector] = t
	return t
}
