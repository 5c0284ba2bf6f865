package abi

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dnsMetadata mirrors the shape of the DNS sample contract's metadata: one nullary constructor,
// a handful of ordinary messages, and two "phink_"-prefixed invariant messages.
const dnsMetadata = `{
	"spec": {
		"constructors": [
			{"selector": "0x9bae9d5e", "label": "new", "args": []}
		],
		"messages": [
			{"selector": "0x229b553f", "label": "set_address", "args": [
				{"label": "name", "type": {}},
				{"label": "new_address", "type": {}}
			]},
			{"selector": "0x2e15cab0", "label": "phink_assert_owner_unchanged", "args": []},
			{"selector": "0x5d17ca7f", "label": "phink_assert_no_duplicate_records", "args": []}
		]
	}
}`

// flipperMetadata mirrors the flipper sample contract's metadata.
const flipperMetadata = `{
	"spec": {
		"constructors": [
			{"selector": "0x9bae9d5e", "label": "new", "args": [
				{"label": "init_value", "type": {}}
			]}
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

func TestExtractDNSInvariants(t *testing.T) {
	reader, err := NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	var got []string
	for _, s := range reader.InvariantSelectors() {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{"0x2e15cab0", "0x5d17ca7f"}, got)
}

func TestExtractFlipperSelectors(t *testing.T) {
	reader, err := NewReader([]byte(flipperMetadata))
	require.NoError(t, err)

	var got []string
	for _, s := range reader.AllSelectors() {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{"0x9bae9d5e", "0xed4b9d1b", "0x633aa551", "0x2f865bd9"}, got)
}

func TestDNSConstructorDiscovery(t *testing.T) {
	reader, err := NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	ctor, ok := reader.PreferredConstructor()
	require.True(t, ok)
	assert.Equal(t, "0x9bae9d5e", ctor.String())
}

func TestPreferredConstructorPrefersNullary(t *testing.T) {
	metadata := `{
		"spec": {
			"constructors": [
				{"selector": "0x11111111", "label": "with_args", "args": [{"label": "a", "type": {}}]},
				{"selector": "0x22222222", "label": "nullary", "args": []}
			],
			"messages": []
		}
	}`
	reader, err := NewReader([]byte(metadata))
	require.NoError(t, err)

	ctor, ok := reader.PreferredConstructor()
	require.True(t, ok)
	assert.Equal(t, "0x22222222", ctor.String())
}

func TestPreferredConstructorAbsent(t *testing.T) {
	reader, err := NewReader([]byte(`{"spec": {"constructors": [], "messages": []}}`))
	require.NoError(t, err)

	_, ok := reader.PreferredConstructor()
	assert.False(t, ok)
}

func TestInvariantFilterIsExactlyPrefixMatch(t *testing.T) {
	reader, err := NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	for _, m := range reader.AllMessages() {
		if m.IsInvariant() {
			assert.True(t, strings.HasPrefix(m.Label, "phink_"))
		}
	}
	assert.Len(t, reader.InvariantSelectors(), 2)
}

func TestMalformedSelectorWidthRejected(t *testing.T) {
	_, err := NewReader([]byte(`{"spec": {"constructors": [], "messages": [
		{"selector": "0xabcd", "label": "bad", "args": []}
	]}}`))
	require.Error(t, err)
}

func TestMissingSpecRootRejected(t *testing.T) {
	_, err := NewReader([]byte(`{"notspec": {}}`))
	require.Error(t, err)
}

func TestMalformedJSONRejected(t *testing.T) {
	_, err := NewReader([]byte(`{not json`))
	require.Error(t, err)
}

func TestMessageBySelector(t *testing.T) {
	reader, err := NewReader([]byte(flipperMetadata))
	require.NoError(t, err)

	flip := Selector{0xed, 0x4b, 0x9d, 0x1b}
	msg, ok := reader.MessageBySelector(flip)
	require.True(t, ok)
	assert.Equal(t, "flip", msg.Label)

	_, ok = reader.MessageBySelector(Selector{0xff, 0xff, 0xff, 0xff})
	assert.False(t, ok)
}

func TestNonInvariantSelectorsExcludesInvariantsAndConstructors(t *testing.T) {
	reader, err := NewReader([]byte(dnsMetadata))
	require.NoError(t, err)

	selectors := reader.NonInvariantSelectors()
	require.Len(t, selectors, 1)
	assert.Equal(t, "0x229b553f", selectors[0].String())
}
