package chain

import (
	"math/big"

	chainTypes "github.com/kevin-valerio/phink/chain/types"
	"github.com/ethereum/go-ethereum/common"
)

// ContractProgram is the interface the harness dispatches calls through. No WASM/ink!/Substrate
// execution engine exists anywhere in the retrieved dependency graph, so a real build satisfies
// this by shelling into the instrumented contract's compiled artifact under target/; tests satisfy
// it with deterministic fakes. This plays the role go-ethereum's vm.EVM plays for TestNode.
type ContractProgram interface {
	// Deploy instantiates the program via its preferred constructor with zero args, returning the
	// address the harness should record for subsequent dispatches.
	Deploy(deployer common.Address) (common.Address, error)

	// Dispatch executes one call against the program's current state and returns a response. A
	// non-nil error represents a trap; the harness treats this identically to a Flags-reported
	// trap and reverts the message's effects.
	Dispatch(origin common.Address, to common.Address, value *big.Int, selector [4]byte, args []byte) (chainTypes.Response, error)

	// Snapshot returns an opaque copy-on-write handle to the program's current state.
	Snapshot() ProgramSnapshot

	// Restore resets the program's state to a previously captured snapshot.
	Restore(snapshot ProgramSnapshot)

	// StateDigest returns a content hash of the program's current state, consulted when a crash
	// reproducer's terminal state needs recording alongside the blob, decoded sequence, and
	// failing invariant label.
	StateDigest() string
}

// ProgramSnapshot is an opaque, implementation-defined handle to a ContractProgram's state at a
// point in time. The harness never inspects it; it only ever threads it back through Restore.
type ProgramSnapshot interface{}
