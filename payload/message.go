package payload

import (
	"math/big"

	"github.com/kevin-valerio/phink/abi"
)

// Message is a single well-typed contract call synthesized from one frame of the raw input blob.
type Message struct {
	// Selector identifies the contract entry point to dispatch.
	Selector abi.Selector
	// Args holds the (as yet un-SCALE-decoded) argument bytes following the selector.
	Args []byte
	// OriginIndex selects which configured origin account dispatches this message, modulo the
	// number of configured origins.
	OriginIndex uint8
	// Value is the u128 balance transferred alongside the call.
	Value *big.Int
	// Metadata is the human-readable message label from the ABI, carried only for reporting.
	Metadata string
}

// CallSequence is an ordered, non-empty list of Messages plus a sequence-wide block lapse.
// Sequences preserve order: message i+1 observes all state changes made by message i.
type CallSequence struct {
	Messages   []Message
	BlockLapse uint32
}

// Len returns the number of messages in the sequence.
func (c CallSequence) Len() int {
	return len(c.Messages)
}
