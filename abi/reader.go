// Package abi parses ink!-style contract metadata documents and exposes the selectors a fuzzing
// session needs: every constructor/message selector, the subset reserved for invariants (the
// "phink_"-prefixed convention), the preferred nullary constructor, and per-selector metadata used
// by the payload transcoder and the crash reporter.
package abi

import (
	"encoding/hex"
	"encoding/json"

	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/utils"
)

// selectorWidth is the number of bytes a selector must decode to.
const selectorWidth = 4

// invariantPrefix is the reserved message-label prefix that marks an invariant message.
const invariantPrefix = "phink_"

// Selector is a 4-byte opaque identifier for a contract entry point.
type Selector [selectorWidth]byte

// String renders the selector as a "0x"-prefixed lowercase hex string.
func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// ArgSpec describes a single argument of a constructor or message, kept only for reporting and for
// the payload decoder's shape-driven argument consumption.
type ArgSpec struct {
	Label string          `json:"label"`
	Type  json.RawMessage `json:"type"`
}

// Message describes one constructor or message entry extracted from the metadata document.
type Message struct {
	Selector Selector
	Label    string
	Args     []ArgSpec
	// IsConstructor distinguishes a constructor entry from a callable message entry.
	IsConstructor bool
}

// IsInvariant reports whether this message follows the "phink_" invariant naming convention.
func (m Message) IsInvariant() bool {
	return len(m.Label) >= len(invariantPrefix) && m.Label[:len(invariantPrefix)] == invariantPrefix
}

// rawEntry mirrors one constructor/message object in the metadata JSON.
type rawEntry struct {
	Selector string    `json:"selector"`
	Label    string    `json:"label"`
	Args     []ArgSpec `json:"args"`
}

// rawSpec mirrors the "spec" root of the metadata document.
type rawSpec struct {
	Constructors []rawEntry `json:"constructors"`
	Messages     []rawEntry `json:"messages"`
}

// rawDocument mirrors the top-level metadata document.
type rawDocument struct {
	Spec *rawSpec `json:"spec"`
}

// Reader exposes the selectors and metadata extracted from one contract's metadata document.
// It is constructed once per fuzzing session and shared by reference; it holds no mutable state.
type Reader struct {
	all        []Message
	invariants []Message
	bySelector map[Selector]Message
	logger     *logging.Logger
}

// NewReader parses the given metadata document (JSON bytes) and returns a Reader. A missing "spec"
// root, or any selector that fails to hex-decode to exactly 4 bytes, is a fatal ConfigError.
func NewReader(document []byte) (*Reader, error) {
	var doc rawDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil, newConfigError("failed to parse contract metadata as JSON", err)
	}
	if doc.Spec == nil {
		return nil, newConfigError("contract metadata is missing its \"spec\" root", nil)
	}

	r := &Reader{
		bySelector: make(map[Selector]Message),
		logger:     logging.GlobalLogger.NewSubLogger("module", logging.ABI_SERVICE),
	}

	for _, entry := range doc.Spec.Constructors {
		msg, err := decodeEntry(entry, true)
		if err != nil {
			return nil, err
		}
		r.all = append(r.all, msg)
		r.bySelector[msg.Selector] = msg
	}
	for _, entry := range doc.Spec.Messages {
		msg, err := decodeEntry(entry, false)
		if err != nil {
			return nil, err
		}
		r.all = append(r.all, msg)
		r.bySelector[msg.Selector] = msg
		if msg.IsInvariant() {
			r.invariants = append(r.invariants, msg)
		}
	}

	return r, nil
}

// decodeEntry decodes a single metadata entry's hex selector into a Selector, rejecting any width
// other than exactly 4 bytes.
func decodeEntry(entry rawEntry, isConstructor bool) (Message, error) {
	selector, err := decodeSelector(entry.Selector)
	if err != nil {
		return Message{}, newConfigError("failed to decode selector for \""+entry.Label+"\"", err)
	}
	return Message{
		Selector:      selector,
		Label:         entry.Label,
		Args:          entry.Args,
		IsConstructor: isConstructor,
	}, nil
}

// decodeSelector decodes a "0x"-prefixed hex selector string into a Selector, rejecting anything
// that does not decode to exactly 4 bytes.
func decodeSelector(hexString string) (Selector, error) {
	trimmed := hexString
	if len(trimmed) >= 2 && trimmed[0:2] == "0x" {
		trimmed = trimmed[2:]
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return Selector{}, err
	}
	if len(decoded) != selectorWidth {
		return Selector{}, errSelectorWidth(len(decoded))
	}
	var s Selector
	copy(s[:], decoded)
	return s, nil
}

// AllSelectors returns every constructor and message selector, in document order.
func (r *Reader) AllSelectors() []Selector {
	return utils.SliceSelect(r.all, func(m Message) Selector { return m.Selector })
}

// AllMessages returns every constructor and message entry, in document order.
func (r *Reader) AllMessages() []Message {
	return append([]Message(nil), r.all...)
}

// InvariantSelectors returns the subset of message selectors whose label begins with "phink_".
func (r *Reader) InvariantSelectors() []Selector {
	return utils.SliceSelect(r.invariants, func(m Message) Selector { return m.Selector })
}

// PreferredConstructor returns the nullary constructor if one exists; otherwise the first
// constructor; otherwise false if no constructor is present.
func (r *Reader) PreferredConstructor() (Selector, bool) {
	var first *Message
	for i := range r.all {
		if !r.all[i].IsConstructor {
			continue
		}
		if first == nil {
			first = &r.all[i]
		}
		if len(r.all[i].Args) == 0 {
			return r.all[i].Selector, true
		}
	}
	if first != nil {
		return first.Selector, true
	}
	return Selector{}, false
}

// MessageBySelector returns the metadata (label, argument schema) for the given selector.
func (r *Reader) MessageBySelector(s Selector) (Message, bool) {
	m, ok := r.bySelector[s]
	return m, ok
}

// NonInvariantSelectors returns every message selector that is NOT an invariant, in document
// order. This is the indexable set the Input Parser draws from: invariant selectors are only
// ever invoked by the Bug Manager, never dispatched as ordinary call-sequence messages.
func (r *Reader) NonInvariantSelectors() []Selector {
	dispatchable := utils.SliceWhere(r.all, func(m Message) bool {
		return !m.IsConstructor && !m.IsInvariant()
	})
	return utils.SliceSelect(dispatchable, func(m Message) Selector { return m.Selector })
}
