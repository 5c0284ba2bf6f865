package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/bugs"
	"github.com/kevin-valerio/phink/chain"
	"github.com/kevin-valerio/phink/config"
	"github.com/kevin-valerio/phink/driver"
	"github.com/kevin-valerio/phink/fuzzing"
	"github.com/kevin-valerio/phink/logging"
	"github.com/kevin-valerio/phink/logging/colors"
	"github.com/kevin-valerio/phink/payload"
)

// fuzzCmd represents the command provider for running a continuous fuzzing campaign.
var fuzzCmd = &cobra.Command{
	Use:           "fuzz <dir>",
	Short:         "Continuously fuzz an instrumented contract until stopped or a limit is reached",
	Long:          `Loads the project configuration for <dir> and drives randomly-synthesized call sequences against the compiled contract artifact until interrupted (Ctrl-C), cfg.Fuzzing.Timeout elapses, or cfg.Fuzzing.TestLimit transactions have been tested.`,
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunFuzz,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	fuzzCmd.Flags().String("config", "", "path to the project configuration file")
	fuzzCmd.Flags().Int("cores", 0, "number of worker goroutines to run (overrides the configured value)")
	defaults := config.DefaultProjectConfig()
	driver.BindSeedLengthFlags(fuzzCmd, &defaults.Fuzzing)
	rootCmd.AddCommand(fuzzCmd)
}

func cmdRunFuzz(cmd *cobra.Command, args []string) error {
	contractDir := args[0]

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(resolveConfigPath(configFlag, contractDir), contractDir)
	if err != nil {
		return err
	}

	if err := driver.ApplySeedLengthFlags(cmd, &cfg.Fuzzing); err != nil {
		return err
	}

	if cores, _ := cmd.Flags().GetInt("cores"); cores > 0 {
		cfg.Fuzzing.Workers = cores
	}
	if env := driver.ReadEnv(); env.Cores > 0 {
		cfg.Fuzzing.Workers = env.Cores
	}

	if err := cfg.Validate(); err != nil {
		cmdLogger.Error("invalid project configuration", err)
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

	campaign, err := fuzzing.NewCampaign(cfg.Fuzzing, reader, factory, cfg.Fuzzing.MaxBeaconID)
	if err != nil {
		cmdLogger.Error("failed to construct fuzzing campaign", err)
		return err
	}

	campaign.OnInvariantViolated(func(event fuzzing.InvariantViolatedEvent) {
		msg := fmt.Sprintf("[FAILED] invariant violated (crash %s)", event.Digest)
		for _, finding := range event.Findings {
			if finding.Kind == bugs.KindTrap || finding.Kind == bugs.KindMessageTrap {
				msg += fmt.Sprintf("\n  [trap] %s: %s", finding.Label, finding.Message)
			} else {
				msg += fmt.Sprintf("\n  [revert (%s)] %s", finding.Label, finding.Message)
			}
		}
		cmdLogger.Error(logging.StructuredLogInfo{"format": logging.INVARIANT_RESULT}, msg)
	})

	corpus := payload.NewCorpus()
	if cfg.Fuzzing.CorpusDirectory != "" {
		if existing, loadErr := payload.ReadFromDirectory(cfg.Fuzzing.CorpusDirectory); loadErr == nil {
			corpus = existing
			cmdLogger.Info("loaded ", corpus.Len(), " seed(s) from corpus directory ", cfg.Fuzzing.CorpusDirectory)
		} else {
			cmdLogger.Warn("failed to load corpus directory: ", loadErr)
		}
	}
	campaign.OnCoverageUpdated(func(event fuzzing.CoverageUpdatedEvent) {
		cmdLogger.Info("coverage: +", event.NewEdges, " edges (", event.TotalCovered, " total)")
		if cfg.Fuzzing.CorpusDirectory != "" {
			corpus.Add(event.RawInput)
		}
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cmdLogger.Info("received interrupt, stopping campaign...")
		campaign.Stop()
	}()

	cmdLogger.Info("starting fuzzing campaign against ", colors.Bold, cfg.Fuzzing.ContractDirectory, colors.Reset,
		" with ", cfg.Fuzzing.Workers, " worker(s)")

	runErr := campaign.Run(ctx, time.Now().UnixNano())

	if flushErr := campaign.FlushTraces(cfg.Fuzzing.TraceDirectory); flushErr != nil {
		cmdLogger.Warn("failed to flush coverage traces: ", flushErr)
	}
	if flushErr := campaign.FlushCoverage(cfg.Fuzzing.CoverageIDsPath); flushErr != nil {
		cmdLogger.Warn("failed to flush observed beacon ids: ", flushErr)
	}
	if cfg.Fuzzing.CorpusDirectory != "" {
		if writeErr := corpus.WriteToDirectory(cfg.Fuzzing.CorpusDirectory); writeErr != nil {
			cmdLogger.Warn("failed to persist corpus: ", writeErr)
		} else {
			cmdLogger.Info("persisted ", corpus.Len(), " seed(s) to corpus directory ", cfg.Fuzzing.CorpusDirectory)
		}
	}

	metrics := campaign.Metrics()
	cmdLogger.Info("campaign stopped: ", metrics.SequencesTested(), " sequences tested, ",
		metrics.TransactionsTested(), " transactions dispatched")
	summary := fmt.Sprintf("invariant checks: %d passed and %d failed",
		metrics.InvariantsPassed(), metrics.InvariantsViolated())
	cmdLogger.Info(logging.StructuredLogInfo{"format": logging.FUZZING_SUMMARY}, summary)

	return runErr
}
