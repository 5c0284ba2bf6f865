package cmd

import (
	"crypto/rand"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/chain"
	"github.com/kevin-valerio/phink/logging/colors"
)

// runCmd represents the command provider for a single bounded dry-run iteration.
var runCmd = &cobra.Command{
	Use:           "run <dir>",
	Short:         "Drive a single randomly-synthesized call sequence against an instrumented contract",
	Long:          `A smoke test: deploys the contract, dispatches one randomly-synthesized call sequence against it, and reports the responses and any invariant violations, without looping or persisting coverage.`,
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunOnce,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	runCmd.Flags().String("config", "", "path to the project configuration file")
	rootCmd.AddCommand(runCmd)
}

func cmdRunOnce(cmd *cobra.Command, args []string) error {
	contractDir := args[0]

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(resolveConfigPath(configFlag, contractDir), contractDir)
	if err != nil {
		return err
	}

	reader, err := loadABIReader(cfg.Fuzzing.ContractDirectory)
	if err != nil {
		cmdLogger.Error("failed to load ABI metadata", err)
		return err
	}

	artifactPath := filepath.Join(cfg.Fuzzing.ContractDirectory, ArtifactRelPath)
	factory := func() chain.ContractProgram {
		return chain.NewProcessProgram(artifactPath)
	}

	campaign, err := newCampaignFor(cfg, reader, factory)
	if err != nil {
		return err
	}

	length := cfg.Fuzzing.MinSeedLength
	if cfg.Fuzzing.MaxSeedLength > length {
		length = cfg.Fuzzing.MaxSeedLength
	}
	blob := make([]byte, length)
	if _, err := rand.Read(blob); err != nil {
		cmdLogger.Error("failed to synthesize a random seed", err)
		return err
	}

	result, err := campaign.RunOne(blob)
	if err != nil {
		cmdLogger.Error("iteration rejected", err)
		return err
	}

	cmdLogger.Info("dispatched ", len(result.Responses), " call(s)")
	for i, resp := range result.Responses {
		cmdLogger.Info("  [", i, "] flags=", resp.Flags, " returnData=", len(resp.ReturnData), " byte(s)")
	}

	if len(result.Findings) > 0 {
		cmdLogger.Error(colors.Bold, "invariant violated", colors.Reset)
		for _, finding := range result.Findings {
			cmdLogger.Error("  - ", finding.Message)
		}
	} else {
		cmdLogger.Info("no invariant violations observed")
	}

	return nil
}
