package bugs

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/chain"
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/payload"
)

const dnsMetadata = `{
	"spec": {
		"constructors": [
			{"selector": "0x9bae9d5e", "label": "new", "args": []}
		],
		"messages": [
			{"selector": "0x229b553f", "label": "set_address", "args": []},
			{"selector": "0x2e15cab0", "label": "phink_assert_owner_unchanged", "args": []},
			{"selector": "0x5d17ca7f", "label": "phink_assert_no_duplicate_records", "args": []}
		]
	}
}`

// fakeProgram returns a fixed response per selector, configured by the test. Dispatch ignores
// origin/value/args: Manager.Check never varies them.
type fakeProgram struct {
	responses map[abi.Selector]chainTypes.Response
	traps     map[abi.Selector]error
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{
		responses: make(map[abi.Selector]chainTypes.Response),
		traps:     make(map[abi.Selector]error),
	}
}

func (f *fakeProgram) Deploy(common.Address) (common.Address, error) { return common.Address{}, nil }

func (f *fakeProgram) Dispatch(origin, to common.Address, value *big.Int, selector [4]byte, args []byte) (chainTypes.Response, error) {
	if err, ok := f.traps[selector]; ok {
		return chainTypes.Response{}, err
	}
	return f.responses[selector], nil
}

func (f *fakeProgram) Snapshot() chain.ProgramSnapshot        { return nil }
func (f *fakeProgram) Restore(snapshot chain.ProgramSnapshot) {}
func (f *fakeProgram) StateDigest() string                    { return "fake-state" }

func selectorOf(t *testing.T, reader *abi.Reader, label string) abi.Selector {
	t.Helper()
	for _, m := range reader.AllMessages() {
		if m.Label == label {
			return m.Selector
		}
	}
	t.Fatalf("no message labeled %q", label)
	return abi.Selector{}
}

func TestCheckReturnsNoFindingsWhenAllInvariantsHold(t *testing.T) {
	reader, err := abi.NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	program := newFakeProgram()
	for _, s := range reader.InvariantSelectors() {
		program.responses[s] = chainTypes.Response{ReturnData: []byte{1}, Flags: chainTypes.FlagSuccess}
	}

	manager := NewManager(reader, common.Address{})
	findings := manager.Check(program, common.Address{1})
	assert.Empty(t, findings)
}

func TestCheckReportsFalseInvariantAsFinding(t *testing.T) {
	reader, err := abi.NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	violated := selectorOf(t, reader, "phink_assert_no_duplicate_records")
	program := newFakeProgram()
	for _, s := range reader.InvariantSelectors() {
		program.responses[s] = chainTypes.Response{ReturnData: []byte{1}, Flags: chainTypes.FlagSuccess}
	}
	program.responses[violated] = chainTypes.Response{ReturnData: []byte{0}, Flags: chainTypes.FlagSuccess}

	manager := NewManager(reader, common.Address{})
	findings := manager.Check(program, common.Address{1})

	require.Len(t, findings, 1)
	assert.Equal(t, "phink_assert_no_duplicate_records", findings[0].Label)
	assert.Equal(t, KindFalse, findings[0].Kind)
}

func TestCheckReportsTrapAsDistinguishedKind(t *testing.T) {
	reader, err := abi.NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	trapped := selectorOf(t, reader, "phink_assert_owner_unchanged")
	program := newFakeProgram()
	for _, s := range reader.InvariantSelectors() {
		program.responses[s] = chainTypes.Response{ReturnData: []byte{1}, Flags: chainTypes.FlagSuccess}
	}
	program.traps[trapped] = assert.AnError

	manager := NewManager(reader, common.Address{})
	findings := manager.Check(program, common.Address{1})

	require.Len(t, findings, 1)
	assert.Equal(t, KindTrap, findings[0].Kind)
}

func TestCheckTreatsEmptyReturnDataAsViolation(t *testing.T) {
	reader, err := abi.NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	program := newFakeProgram()
	for _, s := range reader.InvariantSelectors() {
		program.responses[s] = chainTypes.Response{Flags: chainTypes.FlagSuccess}
	}

	manager := NewManager(reader, common.Address{})
	findings := manager.Check(program, common.Address{1})
	assert.Len(t, findings, 2)
}

func TestWriteCrashIsContentAddressedAndReadable(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0x01, 0x02, 0x03}
	sequence := payload.CallSequence{
		Messages: []payload.Message{
			{Selector: abi.Selector{0xed, 0x4b, 0x9d, 0x1b}, OriginIndex: 0, Value: big.NewInt(0), Metadata: "flip"},
		},
		BlockLapse: 1,
	}
	findings := []Finding{{Label: "phink_assert_no_duplicate_records", Selector: abi.Selector{0x5d, 0x17, 0xca, 0x7f}, Kind: KindFalse, Message: "invariant returned false"}}

	report := NewCrashReport(Digest(raw), sequence, findings)
	require.NoError(t, WriteCrash(dir, raw, report))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Re-writing the same blob must not add new files: content-addressed names collide on purpose.
	require.NoError(t, WriteCrash(dir, raw, report))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	sidecar, err := os.ReadFile(filepath.Join(dir, Digest(raw)+".json"))
	require.NoError(t, err)
	assert.NotEmpty(t, sidecar)
}
