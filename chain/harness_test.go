package chain

import (
	"math"
	"math/big"
	"strconv"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-valerio/phink/abi"
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/payload"
)

// fakeProgram is a deterministic ContractProgram used by harness tests in place of a real
// ink!/Substrate execution engine, which has no analogue anywhere in the example corpus.
type fakeProgram struct {
	state       *CopyOnWriteState[string, int64]
	deployAddr  common.Address
	trapOn      [4]byte
	dispatchLog []string
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{
		state:      NewCopyOnWriteState[string, int64](),
		deployAddr: common.HexToAddress("0xC0FFEE00000000000000000000000000000000"),
	}
}

func (f *fakeProgram) Deploy(deployer common.Address) (common.Address, error) {
	f.state.Set("value", 0)
	return f.deployAddr, nil
}

func (f *fakeProgram) Dispatch(origin, to common.Address, value *big.Int, selector [4]byte, args []byte) (chainTypes.Response, error) {
	f.dispatchLog = append(f.dispatchLog, string(selector[:]))
	if selector == f.trapOn {
		return chainTypes.Response{}, assertTrap{}
	}
	current, _ := f.state.Get("value")
	f.state.Set("value", current+1)
	return chainTypes.Response{
		ReturnData:  []byte{byte(current + 1)},
		DebugOutput: []byte("COV=1 COV=2"),
		Flags:       chainTypes.FlagSuccess,
	}, nil
}

func (f *fakeProgram) Snapshot() ProgramSnapshot {
	return f.state.Snapshot()
}

func (f *fakeProgram) Restore(snapshot ProgramSnapshot) {
	f.state.Restore(snapshot.(map[string]int64))
}

func (f *fakeProgram) StateDigest() string {
	current, _ := f.state.Get("value")
	return strconv.FormatInt(current, 10)
}

type assertTrap struct{}

func (assertTrap) Error() string { return "trapped" }

func testSelector(b byte) abi.Selector {
	return abi.Selector{b, b, b, b}
}

func TestHarnessDeployTransitionsToDeployed(t *testing.T) {
	program := newFakeProgram()
	h := NewHarness(program, []common.Address{common.HexToAddress("0x01")})

	assert.Equal(t, PhaseFresh, h.Phase())
	require.NoError(t, h.Deploy(common.HexToAddress("0x02")))
	assert.Equal(t, PhaseDeployed, h.Phase())
	assert.Equal(t, program.deployAddr, h.ContractAddress())
}

func TestHarnessDeployTwiceFails(t *testing.T) {
	program := newFakeProgram()
	h := NewHarness(program, []common.Address{common.HexToAddress("0x01")})
	require.NoError(t, h.Deploy(common.HexToAddress("0x02")))
	assert.Error(t, h.Deploy(common.HexToAddress("0x02")))
}

func TestHarnessRunDispatchesInOrder(t *testing.T) {
	program := newFakeProgram()
	origins := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	h := NewHarness(program, origins)
	require.NoError(t, h.Deploy(common.HexToAddress("0x03")))

	seq := payload.CallSequence{
		Messages: []payload.Message{
			{Selector: testSelector(0xAA), OriginIndex: 0, Value: big.NewInt(0)},
			{Selector: testSelector(0xBB), OriginIndex: 1, Value: big.NewInt(0)},
		},
		BlockLapse: 3,
	}

	responses, err := h.Run(seq)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, byte(1), responses[0].ReturnData[0])
	assert.Equal(t, byte(2), responses[1].ReturnData[0])
	assert.Equal(t, PhaseDone, h.Phase())
}

func TestHarnessRunBeforeDeployFails(t *testing.T) {
	program := newFakeProgram()
	h := NewHarness(program, []common.Address{common.HexToAddress("0x01")})

	_, err := h.Run(payload.CallSequence{Messages: []payload.Message{{Selector: testSelector(0x01)}}})
	assert.Error(t, err)
}

func TestHarnessTrapRevertsOnlyTrappingMessageAndTerminatesEarly(t *testing.T) {
	program := newFakeProgram()
	program.trapOn = testSelector(0xBB)
	origins := []common.Address{common.HexToAddress("0x01")}
	h := NewHarness(program, origins)
	require.NoError(t, h.Deploy(common.HexToAddress("0x02")))

	seq := payload.CallSequence{
		Messages: []payload.Message{
			{Selector: testSelector(0xAA), Value: big.NewInt(0)},
			{Selector: testSelector(0xBB), Value: big.NewInt(0)},
			{Selector: testSelector(0xCC), Value: big.NewInt(0)},
		},
	}

	responses, err := h.Run(seq)
	require.NoError(t, err)
	// Terminates early: the third message is never dispatched.
	require.Len(t, responses, 2)
	assert.True(t, responses[1].Trapped())

	// The first message's effect (value incremented to 1) survives; the trap only reverted its
	// own attempted mutation.
	current, _ := program.state.Get("value")
	assert.Equal(t, int64(1), current)
}

func TestHarnessRunRejectsEmptySequence(t *testing.T) {
	program := newFakeProgram()
	h := NewHarness(program, []common.Address{common.HexToAddress("0x01")})
	require.NoError(t, h.Deploy(common.HexToAddress("0x02")))

	_, err := h.Run(payload.CallSequence{})
	assert.Error(t, err)
}

func TestClockAdvanceIsSaturating(t *testing.T) {
	c := &clock{block: math.MaxUint64 - 1}
	c.advance(5)
	assert.Equal(t, uint64(math.MaxUint64), c.block)
}

func TestClockTimestampTracksBlock(t *testing.T) {
	c := newClock()
	assert.Equal(t, SlotDuration, c.timestamp())
	c.advance(2)
	assert.Equal(t, uint64(3)*SlotDuration, c.timestamp())
}
