package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/config"
	"github.com/kevin-valerio/phink/driver"
	"github.com/kevin-valerio/phink/instrumentation"
	"github.com/kevin-valerio/phink/logging/colors"
)

// instrumentCmd represents the command provider for instrumenting a contract source tree.
var instrumentCmd = &cobra.Command{
	Use:           "instrument <dir>",
	Short:         "Rewrite a contract source tree to emit coverage beacons",
	Long:          `Forks the contract source tree at <dir>, rewrites its entrypoint to emit a coverage beacon per statement, and writes the selector dictionary and project configuration a later fuzz/run/execute/cover invocation needs.`,
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunInstrument,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	instrumentCmd.Flags().String("out", "", "output path for the project configuration file (default: phink.json in the contract directory)")
	rootCmd.AddCommand(instrumentCmd)
}

func cmdRunInstrument(cmd *cobra.Command, args []string) error {
	contractDir := args[0]

	cmdLogger.Info("instrumenting contract source at ", colors.Bold, contractDir, colors.Reset)
	result, err := instrumentation.Instrument(contractDir)
	if err != nil {
		cmdLogger.Error("failed to instrument contract", err)
		return err
	}
	cmdLogger.Info("instrumented fork written to ", colors.Bold, result.ForkPath, colors.Reset,
		" (max beacon id ", result.MaxBeaconID, ")")

	cfg := config.DefaultProjectConfig()
	cfg.Fuzzing.ContractDirectory = result.ForkPath
	cfg.Fuzzing.MaxBeaconID = result.MaxBeaconID

	if reader, abiErr := loadABIReader(result.ForkPath); abiErr == nil {
		dictPath := cfg.Fuzzing.SelectorDictPath
		if err := driver.WriteSelectorDict(dictPath, reader.AllSelectors()); err != nil {
			cmdLogger.Warn("failed to write selector dictionary: ", err)
		} else {
			cmdLogger.Info("selector dictionary written to ", colors.Bold, dictPath, colors.Reset)
		}
	} else {
		cmdLogger.Warn("no ABI metadata found yet at ", filepath.Join(result.ForkPath, MetadataRelPath),
			"; selector dictionary will be written on the next instrument run after compilation")
	}

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = filepath.Join(result.ForkPath, DefaultProjectConfigFilename)
	}

	if err := cfg.WriteToFile(outPath); err != nil {
		cmdLogger.Error("failed to write project configuration", err)
		return err
	}

	absPath, err := filepath.Abs(outPath)
	if err != nil {
		absPath = outPath
	}
	cmdLogger.Info(fmt.Sprintf("project configuration written to: %s", absPath))
	return nil
}
