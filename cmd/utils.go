package cmd

import (
	"os"
	"path/filepath"

	"github.com/kevin-valerio/phink/abi"
	"github.com/kevin-valerio/phink/config"
	"github.com/kevin-valerio/phink/fuzzing"
)

// resolveConfigPath returns the project config file path a command should read: the value of
// --config if the user set it, or DefaultProjectConfigFilename under contractDir otherwise.
func resolveConfigPath(cmdConfigFlag string, contractDir string) string {
	if cmdConfigFlag != "" {
		return cmdConfigFlag
	}
	return filepath.Join(contractDir, DefaultProjectConfigFilename)
}

// loadProjectConfig reads the project config at path if it exists, or falls back to
// config.DefaultProjectConfig with ContractDirectory set to contractDir.
func loadProjectConfig(path string, contractDir string) (*config.ProjectConfig, error) {
	if _, err := os.Stat(path); err == nil {
		cmdLogger.Info("reading configuration file at ", path)
		return config.ReadProjectConfigFromFile(path)
	}

	cmdLogger.Warn("no configuration file found at ", path, ", using default project configuration")
	cfg := config.DefaultProjectConfig()
	cfg.Fuzzing.ContractDirectory = contractDir
	return cfg, nil
}

// loadABIReader reads and parses the ABI metadata document for contractDir.
func loadABIReader(contractDir string) (*abi.Reader, error) {
	data, err := os.ReadFile(filepath.Join(contractDir, MetadataRelPath))
	if err != nil {
		return nil, err
	}
	return abi.NewReader(data)
}

// newCampaignFor constructs a fuzzing.Campaign from a loaded project config, reader, and program
// factory, the construction every single-shot command (run, execute) shares with cmd fuzz.
func newCampaignFor(cfg *config.ProjectConfig, reader *abi.Reader, factory fuzzing.ProgramFactory) (*fuzzing.Campaign, error) {
	campaign, err := fuzzing.NewCampaign(cfg.Fuzzing, reader, factory, cfg.Fuzzing.MaxBeaconID)
	if err != nil {
		cmdLogger.Error("failed to construct fuzzing campaign", err)
		return nil, err
	}
	return campaign, nil
}
