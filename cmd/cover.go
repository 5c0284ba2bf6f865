package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/coverage"
	"github.com/kevin-valerio/phink/instrumentation"
	"github.com/kevin-valerio/phink/logging/colors"
)

// coverCmd represents the command provider for rendering an HTML coverage report.
var coverCmd = &cobra.Command{
	Use:           "cover <dir>",
	Short:         "Render an HTML coverage report from a persisted fuzzing session",
	Long:          `Reads the beacon ids a prior instrument/fuzz run persisted for the instrumented contract at <dir> and renders a per-source-file HTML report marking covered and uncovered statements.`,
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunCover,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	coverCmd.Flags().String("config", "", "path to the project configuration file")
	coverCmd.Flags().String("out", "", "output directory for the rendered report (default: <dir>/output/phink/coverage)")
	rootCmd.AddCommand(coverCmd)
}

func cmdRunCover(cmd *cobra.Command, args []string) error {
	contractDir := args[0]

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(resolveConfigPath(configFlag, contractDir), contractDir)
	if err != nil {
		return err
	}

	coverageMap, err := coverage.LoadMap(cfg.Fuzzing.CoverageIDsPath)
	if err != nil {
		cmdLogger.Error("failed to load persisted coverage; run `phink fuzz` or `phink run` first", err)
		return err
	}
	cmdLogger.Info("loaded ", coverageMap.Len(), " observed beacon id(s) from ", cfg.Fuzzing.CoverageIDsPath)

	observed := make(map[uint32]bool)
	for _, id := range coverageMap.Snapshot() {
		observed[id] = true
	}

	entrypointPath := filepath.Join(cfg.Fuzzing.ContractDirectory, instrumentation.EntrypointFile)
	source, err := os.ReadFile(entrypointPath)
	if err != nil {
		cmdLogger.Error("failed to read instrumented source", err)
		return err
	}
	sources := map[string][]byte{entrypointPath: source}

	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = filepath.Join(cfg.Fuzzing.ContractDirectory, "output", "phink", "coverage")
	}

	if err := coverage.GenerateReport(sources, observed, outDir); err != nil {
		cmdLogger.Error("failed to render coverage report", err)
		return err
	}

	absPath, err := filepath.Abs(outDir)
	if err != nil {
		absPath = outDir
	}
	cmdLogger.Info("coverage report written to ", colors.Bold, absPath, colors.Reset)
	return nil
}
