package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/bugs"
	"github.com/kevin-valerio/phink/chain"
	"github.com/kevin-valerio/phink/cmd/exitcodes"
	"github.com/kevin-valerio/phink/logging/colors"
)

// executeCmd represents the command provider for replaying one specific raw blob.
var executeCmd = &cobra.Command{
	Use:           "execute <seed> <dir>",
	Short:         "Replay one raw seed file against an instrumented contract",
	Long:          `Reads the raw blob at <seed> and drives it through the same decode/dispatch/invariant-check pipeline a fuzzing campaign would, for reproducing or confirming a saved crash.`,
	Args:          cobra.ExactArgs(2),
	RunE:          cmdRunExecute,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	executeCmd.Flags().String("config", "", "path to the project configuration file")
	rootCmd.AddCommand(executeCmd)
}

func cmdRunExecute(cmd *cobra.Command, args []string) error {
	seedPath := args[0]
	contractDir := args[1]

	raw, err := os.ReadFile(seedPath)
	if err != nil {
		cmdLogger.Error("failed to read seed file", err)
		return err
	}

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

	cmdLogger.Info("replaying ", colors.Bold, seedPath, colors.Reset, " (", len(raw), " byte(s))")

	result, err := campaign.RunOne(raw)
	if err != nil {
		cmdLogger.Error("seed rejected", err)
		return err
	}

	for i, msg := range result.Sequence.Messages {
		cmdLogger.Info("  call [", i, "] selector=", msg.Selector.String())
	}
	for i, resp := range result.Responses {
		cmdLogger.Info("  response [", i, "] flags=", resp.Flags, " returnData=", len(resp.ReturnData), " byte(s)")
	}

	if len(result.Findings) > 0 {
		cmdLogger.Error(colors.Bold, "invariant violated", colors.Reset)
		for _, finding := range result.Findings {
			cmdLogger.Error("  - ", finding.Message)
		}
		return exitcodes.NewErrorWithExitCode(bugs.ErrInvariantViolation, exitcodes.ExitCodeTestFailed)
	}

	cmdLogger.Info("no invariant violations observed")
	return nil
}
