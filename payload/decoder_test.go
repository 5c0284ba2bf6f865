package payload

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-valerio/phink/abi"
)

const testMetadata = `{
	"spec": {
		"constructors": [
			{"selector": "0x9bae9d5e", "label": "new", "args": []}
		],
		"messages": [
			{"selector": "0xed4b9d1b", "label": "flip", "args": []},
			{"selector": "0x633aa551", "label": "get", "args": []},
			{"selector": "0x2f865bd9", "label": "flip_with_seed", "args": [
				{"label": "seed", "type": {}}
			]}
		]
	}
}`

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	reader, err := abi.NewReader([]byte(testMetadata))
	require.NoError(t, err)
	return NewDecoder(reader)
}

// buildFrame encodes one frame using the decoder's expected wire layout.
func buildFrame(selectorIndex, originIndex byte, value *big.Int, lapse uint32, args []byte) []byte {
	buf := make([]byte, frameHeaderLen+len(args))
	buf[0] = selectorIndex
	buf[1] = originIndex
	valueBytes := value.Bytes()
	// Left-pad to 16 bytes big-endian, then store little-endian into the frame.
	padded := make([]byte, 16)
	copy(padded[16-len(valueBytes):], valueBytes)
	for i := 0; i < 16; i++ {
		buf[2+i] = padded[15-i]
	}
	binary.LittleEndian.PutUint32(buf[18:22], lapse)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(len(args)))
	copy(buf[24:], args)
	return buf
}

func TestParserRejectsUndersizedBlob(t *testing.T) {
	d := newTestDecoder(t)
	_, err := d.Decode([]byte{0x01, 0x02, 0x03}, 1)
	require.ErrorIs(t, err, ErrInputReject)
}

func TestParserDecodesSingleFrame(t *testing.T) {
	d := newTestDecoder(t)
	raw := buildFrame(0, 0, big.NewInt(42), 0, nil)

	seq, err := d.Decode(raw, 2)
	require.NoError(t, err)
	require.Len(t, seq.Messages, 1)
	assert.Equal(t, "flip", seq.Messages[0].Metadata)
	assert.Equal(t, big.NewInt(42), seq.Messages[0].Value)
}

func TestParserSelectorIndexingIsModulo(t *testing.T) {
	d := newTestDecoder(t)
	// Non-invariant selectors are [flip, get, flip_with_seed] (3 entries); index 3 should wrap to 0.
	raw := buildFrame(3, 0, big.NewInt(0), 0, nil)

	seq, err := d.Decode(raw, 1)
	require.NoError(t, err)
	require.Len(t, seq.Messages, 1)
	assert.Equal(t, "flip", seq.Messages[0].Metadata)
}

func TestParserOriginIndexingIsModulo(t *testing.T) {
	d := newTestDecoder(t)
	raw := buildFrame(0, 5, big.NewInt(0), 0, nil)

	seq, err := d.Decode(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, byte(1), seq.Messages[0].OriginIndex)
}

func TestParserTruncatedTrailingFrameEndsSequence(t *testing.T) {
	d := newTestDecoder(t)
	first := buildFrame(0, 0, big.NewInt(0), 0, nil)
	raw := append(first, 0x01, 0x02) // trailing, truncated second frame

	seq, err := d.Decode(raw, 1)
	require.NoError(t, err)
	assert.Len(t, seq.Messages, 1)
}

func TestParserBlockLapseIsXORedAcrossFrames(t *testing.T) {
	d := newTestDecoder(t)
	first := buildFrame(0, 0, big.NewInt(0), 0b0101, nil)
	second := buildFrame(1, 0, big.NewInt(0), 0b0110, nil)
	raw := append(first, second...)

	seq, err := d.Decode(raw, 1)
	require.NoError(t, err)
	require.Len(t, seq.Messages, 2)
	assert.Equal(t, uint32(0b0011), seq.BlockLapse)
}

func TestParserRejectsFrameFailingArgValidation(t *testing.T) {
	d := newTestDecoder(t)
	// flip_with_seed declares one argument but we supply zero bytes of args.
	raw := buildFrame(2, 0, big.NewInt(0), 0, nil)

	_, err := d.Decode(raw, 1)
	require.ErrorIs(t, err, ErrInputReject)
}

func TestParserIsPureFunctionOfInputAndSelectors(t *testing.T) {
	d := newTestDecoder(t)
	raw := buildFrame(1, 0, big.NewInt(7), 0, nil)

	seq1, err1 := d.Decode(raw, 1)
	seq2, err2 := d.Decode(raw, 1)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, seq1, seq2)
}
