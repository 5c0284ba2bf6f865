package chain

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chainTypes "github.com/kevin-valerio/phink/chain/types"
)

// writeFakeArtifact writes a shell script standing in for a compiled contract artifact: it ignores
// its JSON stdin and always replies with response, letting tests drive ProcessProgram without a
// real WASM/ink!/Substrate runtime.
func writeFakeArtifact(t *testing.T, response string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake artifact script requires a POSIX shell")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.sh")
	script := "#!/bin/sh\ncat >/dev/null\nprintf '%s' '"
	require.NoError(t, os.WriteFile(path, []byte(script+response+"'\n"), 0755))
	return path
}

func TestProcessProgramDeployParsesReportedAddress(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"address":"0x000000000000000000000000000000c0ffee00"}`)
	program := NewProcessProgram(artifact)

	addr, err := program.Deploy(common.Address{})
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xc0ffee00"), addr)
}

func TestProcessProgramDispatchDecodesReturnDataAndFlags(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"returnData":"0x01","reverted":false}`)
	program := NewProcessProgram(artifact)

	resp, err := program.Dispatch(common.Address{}, common.Address{}, nil, [4]byte{0xed, 0x4b, 0x9d, 0x1b}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, resp.ReturnData)
	assert.False(t, resp.Trapped())
}

func TestProcessProgramDispatchSurfacesReportedErrorAsTrap(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"error":"unreachable instruction"}`)
	program := NewProcessProgram(artifact)

	_, err := program.Dispatch(common.Address{}, common.Address{}, nil, [4]byte{}, nil)
	assert.Error(t, err)
}

func TestProcessProgramDispatchSurfacesRevertedFlag(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"returnData":"0x00","reverted":true}`)
	program := NewProcessProgram(artifact)

	resp, err := program.Dispatch(common.Address{}, common.Address{}, nil, [4]byte{}, nil)
	require.NoError(t, err)
	assert.Equal(t, chainTypes.FlagReverted, resp.Flags)
}

func TestProcessProgramStateDigestHashesReportedState(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"stateData":"deadbeef"}`)
	program := NewProcessProgram(artifact)

	digest := program.StateDigest()
	assert.NotEmpty(t, digest)
	assert.Equal(t, digest, program.StateDigest())
}

func TestProcessProgramSnapshotAndRestoreRoundTripID(t *testing.T) {
	artifact := writeFakeArtifact(t, `{"snapshotId":"snap-1"}`)
	program := NewProcessProgram(artifact)

	snap := program.Snapshot()
	ps, ok := snap.(processSnapshot)
	require.True(t, ok)
	assert.Equal(t, "snap-1", ps.id)

	program.Restore(snap)
}
