package fuzzing

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/bugs"
	"github.com/kevin-valerio/phink/chain"
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/config"
)

const flipperInvariantMetadata = `{
	"spec": {
		"constructors": [
			{"selector": "0x9bae9d5e", "label": "new", "args": []}
		],
		"messages": [
			{"selector": "0xed4b9d1b", "label": "flip", "args": []},
			{"selector": "0x2e15cab0", "label": "phink_assert_ok", "args": []}
		]
	}
}`

const frameHeaderLen = 1 + 1 + 16 + 4 + 2

func buildFrame(selectorIndex, originIndex byte, value *big.Int, lapse uint32, args []byte) []byte {
	buf := make([]byte, frameHeaderLen+len(args))
	buf[0] = selectorIndex
	buf[1] = originIndex
	valueBytes := value.Bytes()
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

// fakeProgram dispatches a fixed response per selector and lets a test flip whether the invariant
// selector reports true or false, or force a trap on a chosen selector.
type fakeProgram struct {
	invariantSelector abi.Selector
	invariantHolds    bool
	trapOn            abi.Selector
}

func (f *fakeProgram) Deploy(common.Address) (common.Address, error) {
	return common.HexToAddress("0xC0FFEE"), nil
}

func (f *fakeProgram) Dispatch(origin, to common.Address, value *big.Int, selector [4]byte, args []byte) (chainTypes.Response, error) {
	if f.trapOn != (abi.Selector{}) && selector == f.trapOn {
		return chainTypes.Response{}, errors.New("unreachable instruction")
	}
	if selector == f.invariantSelector {
		ret := byte(0)
		if f.invariantHolds {
			ret = 1
		}
		return chainTypes.Response{ReturnData: []byte{ret}, Flags: chainTypes.FlagSuccess}, nil
	}
	return chainTypes.Response{ReturnData: []byte{1}, DebugOutput: []byte("COV=7 COV=8"), Flags: chainTypes.FlagSuccess}, nil
}

func (f *fakeProgram) Snapshot() chain.ProgramSnapshot        { return nil }
func (f *fakeProgram) Restore(snapshot chain.ProgramSnapshot) {}
func (f *fakeProgram) StateDigest() string                    { return "fake-state" }

func newTestCampaign(t *testing.T, invariantHolds bool) (*Campaign, abi.Selector) {
	t.Helper()
	reader, err := abi.NewReader([]byte(flipperInvariantMetadata))
	require.NoError(t, err)

	invariantSelector := reader.InvariantSelectors()[0]
	program := &fakeProgram{invariantSelector: invariantSelector, invariantHolds: invariantHolds}

	cfg := config.FuzzingConfig{
		ContractDirectory:  "./contracts/flipper",
		Workers:            1,
		CallSequenceLength: 10,
		MinSeedLength:      4,
		MaxSeedLength:      64,
		CoverageEnabled:    true,
		Origins:            []string{"0x0000000000000000000000000000000000000001"},
	}

	campaign, err := NewCampaign(cfg, reader, func() chain.ContractProgram { return program }, 8)
	require.NoError(t, err)
	return campaign, invariantSelector
}

func TestRunOneDecodesDispatchesAndCollectsCoverage(t *testing.T) {
	campaign, _ := newTestCampaign(t, true)

	raw := buildFrame(0, 0, big.NewInt(0), 1, nil)
	result, err := campaign.RunOne(raw)
	require.NoError(t, err)

	require.Len(t, result.Responses, 1)
	assert.Empty(t, result.Findings)
	assert.ElementsMatch(t, []uint32{7, 8}, result.Coverage.BeaconIDs())
	assert.Equal(t, uint64(1), campaign.Metrics().SequencesTested())
	assert.Equal(t, uint64(1), campaign.Metrics().TransactionsTested())
	assert.Equal(t, 2, campaign.CoverageMap().Len())
}

func TestRunOneRejectsUndersizedBlob(t *testing.T) {
	campaign, _ := newTestCampaign(t, true)
	_, err := campaign.RunOne([]byte{0x01})
	assert.Error(t, err)
}

func TestRunOneReportsMidSequenceTrapAsCrashOfEqualSeverity(t *testing.T) {
	reader, err := abi.NewReader([]byte(flipperInvariantMetadata))
	require.NoError(t, err)

	flipSelector := reader.NonInvariantSelectors()[0]
	program := &fakeProgram{
		invariantSelector: reader.InvariantSelectors()[0],
		invariantHolds:    true,
		trapOn:            flipSelector,
	}

	cfg := config.FuzzingConfig{
		ContractDirectory:  "./contracts/flipper",
		Workers:            1,
		CallSequenceLength: 10,
		MinSeedLength:      4,
		MaxSeedLength:      64,
		CoverageEnabled:    true,
		Origins:            []string{"0x0000000000000000000000000000000000000001"},
	}
	campaign, err := NewCampaign(cfg, reader, func() chain.ContractProgram { return program }, 8)
	require.NoError(t, err)

	var published *InvariantViolatedEvent
	campaign.OnInvariantViolated(func(e InvariantViolatedEvent) { published = &e })

	raw := buildFrame(0, 0, big.NewInt(0), 1, nil)
	result, err := campaign.RunOne(raw)
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	assert.Equal(t, bugs.KindMessageTrap, result.Findings[0].Kind)
	require.NotNil(t, published)
	assert.NotEmpty(t, published.Digest)
}

func TestRunOneReportsInvariantViolationAndPublishesEvent(t *testing.T) {
	campaign, _ := newTestCampaign(t, false)

	var published *InvariantViolatedEvent
	campaign.OnInvariantViolated(func(e InvariantViolatedEvent) { published = &e })

	raw := buildFrame(0, 0, big.NewInt(0), 1, nil)
	result, err := campaign.RunOne(raw)
	require.NoError(t, err)

	require.Len(t, result.Findings, 1)
	require.NotNil(t, published)
	assert.NotEmpty(t, published.Digest)
}

func TestRunOnePublishesCoverageUpdatedOnlyOnNewEdges(t *testing.T) {
	campaign, _ := newTestCampaign(t, true)

	updates := 0
	campaign.OnCoverageUpdated(func(CoverageUpdatedEvent) { updates++ })

	raw := buildFrame(0, 0, big.NewInt(0), 1, nil)
	_, err := campaign.RunOne(raw)
	require.NoError(t, err)
	_, err = campaign.RunOne(raw)
	require.NoError(t, err)

	assert.Equal(t, 1, updates)
}

func TestCampaignRunStopsAtTestLimit(t *testing.T) {
	campaign, _ := newTestCampaign(t, true)
	campaign.cfg.TestLimit = 3

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, campaign.Run(ctx, 42))
	assert.GreaterOrEqual(t, campaign.Metrics().TransactionsTested(), uint64(3))
}
