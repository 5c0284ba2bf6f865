package coverage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor"

	"github.com/kevin-valerio/phink/utils"
)

// DefaultTracePath is the well-known relative path the session's trace file is persisted to.
const DefaultTracePath = "./output/phink/traces.cov"

// TraceStore accumulates raw per-iteration traces in memory and persists them to a single cbor-
// encoded file, a serialized list of byte arrays. cbor is reused here, the same way it is used
// elsewhere for contract metadata decoding, instead of introducing encoding/gob.
type TraceStore struct {
	mu     sync.Mutex
	traces [][]byte
}

// NewTraceStore constructs an empty TraceStore.
func NewTraceStore() *TraceStore {
	return &TraceStore{}
}

// Append records one iteration's raw trace bytes.
func (t *TraceStore) Append(trace []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.traces = append(t.traces, trace)
}

// Len returns the number of traces recorded so far.
func (t *TraceStore) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.traces)
}

// Flush serializes every recorded trace to path, creating parent directories as needed.
func (t *TraceStore) Flush(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return newError("failed to create trace output directory", err)
	}

	encoded, err := cbor.Marshal(t.traces)
	if err != nil {
		return newError("failed to encode traces", err)
	}

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return newError("failed to write trace file", err)
	}
	return nil
}

// LoadTraceStore reads a previously flushed trace file back into a TraceStore.
func LoadTraceStore(path string) (*TraceStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError("failed to read trace file", err)
	}

	var traces [][]byte
	if err := cbor.Unmarshal(data, &traces); err != nil {
		return nil, newError("failed to decode trace file", err)
	}
	return &TraceStore{traces: traces}, nil
}

// DefaultCoverageIDsPath is the well-known relative path a session's observed beacon ids are
// persisted to, alongside the trace file, so `cmd cover` can render a report in a process separate
// from the one that ran the campaign.
const DefaultCoverageIDsPath = "./output/phink/coverage.ids"

// Flush serializes every beacon id m has observed to path, creating parent directories as needed.
func (m *Map) Flush(path string) error {
	ids := m.Snapshot()

	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return newError("failed to create coverage output directory", err)
	}

	encoded, err := cbor.Marshal(ids)
	if err != nil {
		return newError("failed to encode observed beacon ids", err)
	}

	if err := os.WriteFile(path, encoded, 0644); err != nil {
		return newError("failed to write coverage ids file", err)
	}
	return nil
}

// LoadMap reads a previously flushed beacon id set back into a Map.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError("failed to read coverage ids file", err)
	}

	var ids []uint32
	if err := cbor.Unmarshal(data, &ids); err != nil {
		return nil, newError("failed to decode coverage ids file", err)
	}

	m := NewMap()
	m.Update(ids)
	return m, nil
}
