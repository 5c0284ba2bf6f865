package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/bugs"
	"github.com/kevin-valerio/phink/utils"
)

// cleanCmd represents the command provider for wiping a contract directory's fuzzing artifacts.
var cleanCmd = &cobra.Command{
	Use:           "clean <dir>",
	Short:         "Remove crashes, traces, coverage ids, and the selector dictionary",
	Long:          `Deletes the output artifacts a prior instrument/fuzz/run session left behind for <dir>: the crash directory, the trace and coverage id files, and the selector dictionary. Instrumentation forks under the system temp directory are not removed. Prompts for confirmation unless --force is set.`,
	Args:          cobra.ExactArgs(1),
	RunE:          cmdRunClean,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cleanCmd.Flags().String("config", "", "path to the project configuration file")
	cleanCmd.Flags().Bool("force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func cmdRunClean(cmd *cobra.Command, args []string) error {
	contractDir := args[0]

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if !force && !confirmClean() {
		cmdLogger.Info("aborted")
		return nil
	}

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadProjectConfig(resolveConfigPath(configFlag, contractDir), contractDir)
	if err != nil {
		return err
	}

	directories := []string{bugs.DefaultCrashDirectory}
	files := []string{
		cfg.Fuzzing.TraceDirectory,
		cfg.Fuzzing.CoverageIDsPath,
		cfg.Fuzzing.SelectorDictPath,
	}

	removed := 0
	for _, target := range directories {
		if target == "" {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := utils.DeleteDirectory(target); err != nil {
			cmdLogger.Warn("failed to remove ", target, ": ", err)
			continue
		}
		cmdLogger.Info("removed ", target)
		removed++
	}
	for _, target := range files {
		if target == "" {
			continue
		}
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := os.Remove(target); err != nil {
			cmdLogger.Warn("failed to remove ", target, ": ", err)
			continue
		}
		cmdLogger.Info("removed ", target)
		removed++
	}

	cmdLogger.Info(fmt.Sprintf("cleaned %d artifact(s)", removed))
	return nil
}

// confirmClean prompts the user on stdin/stdout for a yes/no confirmation before a destructive
// clean.
func confirmClean() bool {
	fmt.Print("This will permanently delete fuzzing artifacts (crashes, traces, coverage). Continue? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
