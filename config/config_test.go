package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProjectConfig {
	cfg := DefaultProjectConfig()
	cfg.Fuzzing.ContractDirectory = "./contracts/dns"
	cfg.Fuzzing.Origins = []string{"0x0000000000000000000000000000000000000001"}
	return cfg
}

func TestValidateAcceptsDefaultConfigWithContractDirectory(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Fuzzing.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedSeedLengthBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Fuzzing.MinSeedLength = 4096
	cfg.Fuzzing.MaxSeedLength = 4
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingContractDirectory(t *testing.T) {
	cfg := validConfig()
	cfg.Fuzzing.ContractDirectory = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateWarnsWithoutFailingWhenNoOriginsConfigured(t *testing.T) {
	cfg := validConfig()
	cfg.Fuzzing.Origins = nil
	assert.NoError(t, cfg.Validate())
}

func TestWriteThenReadProjectConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phink.json")

	cfg := validConfig()
	cfg.Fuzzing.Workers = 4
	require.NoError(t, cfg.WriteToFile(path))

	loaded, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, loaded.Fuzzing.Workers)
	assert.Equal(t, cfg.Fuzzing.ContractDirectory, loaded.Fuzzing.ContractDirectory)
}

func TestReadProjectConfigFromFileMissingFileFails(t *testing.T) {
	_, err := ReadProjectConfigFromFile("/nonexistent/phink.json")
	assert.Error(t, err)
}
