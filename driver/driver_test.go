package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin-valerio/phink/abi"
)

func TestReadEnvParsesAllFourVariables(t *testing.T) {
	t.Setenv(EnvContractDir, "/contracts/flipper")
	t.Setenv(EnvFromZiggy, "1")
	t.Setenv(EnvStartFuzzing, "1")
	t.Setenv(EnvCores, "4")

	env := ReadEnv()
	assert.Equal(t, "/contracts/flipper", env.ContractDir)
	assert.True(t, env.FromZiggy)
	assert.True(t, env.StartFuzzing)
	assert.Equal(t, 4, env.Cores)
}

func TestReadEnvDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv(EnvContractDir)
	os.Unsetenv(EnvFromZiggy)
	os.Unsetenv(EnvStartFuzzing)
	os.Unsetenv(EnvCores)

	env := ReadEnv()
	assert.Empty(t, env.ContractDir)
	assert.False(t, env.FromZiggy)
	assert.False(t, env.StartFuzzing)
	assert.Equal(t, 0, env.Cores)
}

func TestWriteSelectorDictWritesOneLibFuzzerTokenPerSelector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selectors.dict")

	selectors := []abi.Selector{{0xed, 0x4b, 0x9d, 0x1b}, {0x2e, 0x15, 0xca, 0xb0}}
	require.NoError(t, WriteSelectorDict(path, selectors))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\"\\xED\\x4B\\x9D\\x1B\"\n\"\\x2E\\x15\\xCA\\xB0\"\n", string(data))
}
