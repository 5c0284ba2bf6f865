package chain

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"os/exec"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	chainTypes "github.com/kevin-valerio/phink/chain/types"
)

// ProcessProgram implements ContractProgram by shelling into the instrumented contract's compiled
// artifact under target/, one invocation per Deploy/Dispatch/Snapshot/Restore call: a single JSON
// request object is written to the artifact's stdin, and a single JSON response object is read back
// from its stdout. This mirrors the exec.Command-plus-json.Unmarshal idiom
// compilation/types.SlitherConfig.RunSlither uses to shell into an external analysis tool and parse
// its JSON result, adapted here to drive the compiled contract instead of a static analyzer.
type ProcessProgram struct {
	binaryPath string
}

// NewProcessProgram constructs a ProcessProgram that shells into the compiled artifact at
// binaryPath for every call.
func NewProcessProgram(binaryPath string) *ProcessProgram {
	return &ProcessProgram{binaryPath: binaryPath}
}

// processRequest is the JSON document written to the artifact's stdin for one call.
type processRequest struct {
	Command    string `json:"command"`
	Origin     string `json:"origin,omitempty"`
	To         string `json:"to,omitempty"`
	Value      string `json:"value,omitempty"`
	Selector   string `json:"selector,omitempty"`
	Args       string `json:"args,omitempty"`
	SnapshotID string `json:"snapshotId,omitempty"`
}

// processResponse is the JSON document the artifact writes to stdout in reply.
type processResponse struct {
	Address     string `json:"address,omitempty"`
	ReturnData  string `json:"returnData,omitempty"`
	DebugOutput string `json:"debugOutput,omitempty"`
	Reverted    bool   `json:"reverted,omitempty"`
	SnapshotID  string `json:"snapshotId,omitempty"`
	StateData   string `json:"stateData,omitempty"`
	Error       string `json:"error,omitempty"`
}

// processSnapshot is the ProgramSnapshot ProcessProgram hands back to the harness: an opaque id the
// artifact itself assigns and later resolves via SnapshotID on a "restore" request.
type processSnapshot struct {
	id string
}

func (p *ProcessProgram) call(req processRequest) (processResponse, error) {
	encoded, err := json.Marshal(req)
	if err != nil {
		return processResponse{}, errors.WithStack(err)
	}

	cmd := exec.Command(p.binaryPath)
	cmd.Stdin = bytes.NewReader(encoded)
	out, err := cmd.Output()
	if err != nil {
		return processResponse{}, errors.WithStack(err)
	}

	var resp processResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return processResponse{}, errors.WithStack(err)
	}
	if resp.Error != "" {
		return resp, errors.New(resp.Error)
	}
	return resp, nil
}

// Deploy shells into the artifact with a "deploy" command and records the address it reports.
func (p *ProcessProgram) Deploy(deployer common.Address) (common.Address, error) {
	resp, err := p.call(processRequest{Command: "deploy", Origin: deployer.Hex()})
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(resp.Address), nil
}

// Dispatch shells into the artifact with a "dispatch" command. An artifact-reported trap comes back
// as a non-empty Error field, which call converts into a returned Go error; a deliberate revert
// comes back as Reverted=true with no Error, surfaced via chainTypes.FlagReverted.
func (p *ProcessProgram) Dispatch(origin, to common.Address, value *big.Int, selector [4]byte, args []byte) (chainTypes.Response, error) {
	if value == nil {
		value = big.NewInt(0)
	}
	resp, err := p.call(processRequest{
		Command:  "dispatch",
		Origin:   origin.Hex(),
		To:       to.Hex(),
		Value:    value.String(),
		Selector: "0x" + hex.EncodeToString(selector[:]),
		Args:     "0x" + hex.EncodeToString(args),
	})
	if err != nil {
		return chainTypes.Response{}, err
	}

	returnData, decodeErr := hex.DecodeString(trimHexPrefix(resp.ReturnData))
	if decodeErr != nil {
		return chainTypes.Response{}, errors.WithStack(decodeErr)
	}

	flag := chainTypes.FlagSuccess
	if resp.Reverted {
		flag = chainTypes.FlagReverted
	}

	return chainTypes.Response{
		ReturnData:  returnData,
		DebugOutput: []byte(resp.DebugOutput),
		Flags:       flag,
	}, nil
}

// Snapshot shells into the artifact with a "snapshot" command and wraps the id it assigns.
func (p *ProcessProgram) Snapshot() ProgramSnapshot {
	resp, err := p.call(processRequest{Command: "snapshot"})
	if err != nil {
		logger.Warn("process program snapshot failed: " + err.Error())
		return processSnapshot{}
	}
	return processSnapshot{id: resp.SnapshotID}
}

// Restore shells into the artifact with a "restore" command naming the snapshot id to revert to.
func (p *ProcessProgram) Restore(snapshot ProgramSnapshot) {
	ps, ok := snapshot.(processSnapshot)
	if !ok || ps.id == "" {
		return
	}
	if _, err := p.call(processRequest{Command: "restore", SnapshotID: ps.id}); err != nil {
		logger.Warn("process program restore failed: " + err.Error())
	}
}

// StateDigest shells into the artifact with a "state" command and returns the hex-encoded
// sha3-256 hash of the raw state blob it reports.
func (p *ProcessProgram) StateDigest() string {
	resp, err := p.call(processRequest{Command: "state"})
	if err != nil {
		logger.Warn("process program state query failed: " + err.Error())
		return ""
	}
	digest := sha3.Sum256([]byte(resp.StateData))
	return hex.EncodeToString(digest[:])
}

// trimHexPrefix strips a leading "0x"/"0X" from s, if present.
func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
