// Package bugs implements the Bug Manager: after a CallSequence has run to completion (or trapped)
// against the Runtime Harness, it invokes every "phink_"-prefixed invariant selector against the
// terminal chain state and classifies the outcome.
package bugs

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/chain"
	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/logging"
)

var logger = logging.GlobalLogger.NewSubLogger("module", logging.BUGS_SERVICE)

// Kind classifies how an invariant check failed.
type Kind int

const (
	// KindFalse marks an invariant selector that returned a decoded false.
	KindFalse Kind = iota
	// KindTrap marks an invariant selector whose call itself trapped the runtime, distinguished
	// from an ordinary message trap (chain.MessageTrap) encountered mid-sequence.
	KindTrap
	// KindMessageTrap marks a trap encountered while dispatching an ordinary sequence message,
	// rather than while checking an invariant selector. It carries equal severity to KindFalse/
	// KindTrap: the sequence that produced it is persisted as a crash the same way.
	KindMessageTrap
)

func (k Kind) String() string {
	switch k {
	case KindTrap:
		return "trap"
	case KindMessageTrap:
		return "message_trap"
	default:
		return "false"
	}
}

// Finding is one violated invariant discovered by a single Check call.
type Finding struct {
	Label    string
	Selector abi.Selector
	Kind     Kind
	Message  string
}

// Manager invokes every invariant selector exposed by an abi.Reader against a terminal chain
// state, using a fixed neutral origin and zero transferred value: every invariant method is
// checked the same way, with no special casing.
type Manager struct {
	reader *abi.Reader
	origin common.Address
}

// NewManager constructs a Manager bound to reader's invariant selectors and the given neutral
// origin account (ordinarily the first configured origin, but any funded account suffices: an
// invariant check reads state, it never mutates it for any other message).
func NewManager(reader *abi.Reader, origin common.Address) *Manager {
	return &Manager{reader: reader, origin: origin}
}

// Check dispatches every invariant selector against program at contractAddr with zero value and no
// arguments, returning one Finding per selector that trapped or decoded to false. A selector that
// traps is recorded with KindTrap; one that returns a decoded false is recorded with KindFalse. A
// selector that returns true is not a finding at all: the invariant held.
func (m *Manager) Check(program chain.ContractProgram, contractAddr common.Address) []Finding {
	var findings []Finding
	for _, selector := range m.reader.InvariantSelectors() {
		message, _ := m.reader.MessageBySelector(selector)

		response, err := program.Dispatch(m.origin, contractAddr, big.NewInt(0), selector, nil)
		if err != nil {
			logger.Warn("invariant " + message.Label + " trapped: " + err.Error())
			findings = append(findings, Finding{
				Label:    message.Label,
				Selector: selector,
				Kind:     KindTrap,
				Message:  err.Error(),
			})
			continue
		}
		if response.Flags == chainTypes.FlagTrapped {
			logger.Warn("invariant " + message.Label + " trapped")
			findings = append(findings, Finding{
				Label:    message.Label,
				Selector: selector,
				Kind:     KindTrap,
				Message:  "invariant call trapped the runtime",
			})
			continue
		}
		if !decodeBool(response.ReturnData) {
			logger.Warn("invariant " + message.Label + " violated")
			findings = append(findings, Finding{
				Label:    message.Label,
				Selector: selector,
				Kind:     KindFalse,
				Message:  "invariant returned false",
			})
		}
	}
	return findings
}

// decodeBool reads a SCALE-encoded bool: a single byte, zero for false, non-zero for true. Empty
// return data (a malformed or void-returning invariant) decodes to false, which Check reports as a
// violation rather than silently accepting it.
func decodeBool(data []byte) bool {
	return len(data) > 0 && data[0] != 0
}
