package cmd

import (
	"github.com/kevin-valerio/phink/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"io"
)

const version = "0.1.0"

// rootCmd represents the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:     "phink",
	Version: version,
	Short:   "A coverage-guided, property-based fuzzer for ink! smart contracts",
	Long:    "phink instruments, fuzzes, and replays call sequences against ink! smart contracts running on a WASM-based contracts runtime",
}

// cmdLogger is the logger that will be used for the cmd package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true, make([]io.Writer, 0)...)

// Execute provides an exportable function to invoke the CLI.
// Returns an error if one was encountered.
func Execute() error {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	return rootCmd.Execute()
}
