// Package chain implements the Runtime Harness: an ephemeral, single-execution chain state that
// deploys an instrumented contract, advances a block clock, and dispatches a CallSequence against
// it, collecting per-message responses and debug output for the coverage bridge and bug manager.
package chain

import (
	"github.com/ethereum/go-ethereum/common"

	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/payload"
)

var logger = logging.GlobalLogger.NewSubLogger("module", logging.CHAIN_SERVICE)

// Phase names the harness's position in its Fresh -> Deployed -> Executing(i) -> Done state
// machine.
type Phase int

const (
	PhaseFresh Phase = iota
	PhaseDeployed
	PhaseExecuting
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseFresh:
		return "Fresh"
	case PhaseDeployed:
		return "Deployed"
	case PhaseExecuting:
		return "Executing"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Harness is an ephemeral, single-execution chain state. It is owned by exactly one execution and
// is never shared across goroutines or reused across iterations; a fresh Harness is constructed
// per CallSequence.
type Harness struct {
	phase        Phase
	clock        *clock
	program      ContractProgram
	origins      []common.Address
	contractAddr common.Address
	executing    int
	trap         *MessageTrap
}

// NewHarness constructs a Harness in the Fresh state, wrapping the given program and configured
// origin accounts. The program is assumed already funded; this harness performs no balance
// bookkeeping of its own, since that belongs to the program's own state (see ContractProgram).
func NewHarness(program ContractProgram, origins []common.Address) *Harness {
	return &Harness{
		phase:   PhaseFresh,
		clock:   newClock(),
		program: program,
		origins: origins,
	}
}

// Phase reports the harness's current state.
func (h *Harness) Phase() Phase {
	return h.phase
}

// ContractAddress returns the address recorded at deployment. Only meaningful once Phase is at
// least Deployed.
func (h *Harness) ContractAddress() common.Address {
	return h.contractAddr
}

// Trap returns the MessageTrap that terminated Run early, or nil if the sequence ran to
// completion without one.
func (h *Harness) Trap() *MessageTrap {
	return h.trap
}

// Deploy uploads and instantiates the contract via its preferred constructor with zero args,
// transitioning Fresh -> Deployed.
func (h *Harness) Deploy(deployer common.Address) error {
	if h.phase != PhaseFresh {
		return newError("deploy called outside the Fresh state", nil)
	}
	addr, err := h.program.Deploy(deployer)
	if err != nil {
		return newError("contract deployment failed", err)
	}
	h.contractAddr = addr
	h.phase = PhaseDeployed
	return nil
}

// Run dispatches every message in sequence in order against the deployed contract, advancing the
// block clock by sequence.BlockLapse before the first dispatch and applying the harness's
// saturating lapse/on_finalize/on_initialize semantics before each dispatch. It returns one
// Response per message actually dispatched; a trapping message is recorded, its effects are
// reverted, and the sequence terminates early, so the returned slice may be shorter than
// sequence.Len(). Run may only be called once per Harness: Deployed -> Executing(i) -> Done.
func (h *Harness) Run(sequence payload.CallSequence) ([]chainTypes.Response, error) {
	if h.phase != PhaseDeployed {
		return nil, newError("run called outside the Deployed state", nil)
	}
	if sequence.Len() == 0 {
		return nil, newError("call sequence has no messages", nil)
	}

	responses := make([]chainTypes.Response, 0, sequence.Len())
	for i, msg := range sequence.Messages {
		h.phase = PhaseExecuting
		h.executing = i

		h.clock.advance(sequence.BlockLapse)

		origin := h.origins[int(msg.OriginIndex)%len(h.origins)]
		snapshot := h.program.Snapshot()

		response, err := h.program.Dispatch(origin, h.contractAddr, msg.Value, msg.Selector, msg.Args)
		if err == nil && response.Flags == chainTypes.FlagTrapped {
			err = newError("contract call trapped the runtime", nil)
		}
		if err != nil {
			h.program.Restore(snapshot)
			response.Flags = chainTypes.FlagTrapped
			responses = append(responses, response)
			h.trap = &MessageTrap{Selector: msg.Selector, Index: i, err: err}
			logger.Warn(h.trap.Error() + ", reverting and terminating sequence early")
			break
		}
		if response.Flags == chainTypes.FlagReverted {
			logger.Info(MessageRevert{Selector: msg.Selector, Index: i}.String())
		}
		responses = append(responses, response)
	}

	h.phase = PhaseDone
	return responses, nil
}

// Timestamp returns the runtime timestamp pallet value for the harness's current block.
func (h *Harness) Timestamp() uint64 {
	return h.clock.timestamp()
}

// BlockNumber returns the harness's current block number.
func (h *Harness) BlockNumber() uint64 {
	return h.clock.block
}
