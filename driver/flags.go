package driver

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kevin-valerio/phink/config"
)

// BindSeedLengthFlags registers --minlength/--maxlength on cmd, the seed length bounds
// communicated to the external driver, defaulting to cfg's current values.
func BindSeedLengthFlags(cmd *cobra.Command, cfg *config.FuzzingConfig) {
	cmd.Flags().Int("minlength", 0,
		fmt.Sprintf("minimum length in bytes of a generated seed (unless a config file is provided, default is %d)", cfg.MinSeedLength))
	cmd.Flags().Int("maxlength", 0,
		fmt.Sprintf("maximum length in bytes of a generated seed (unless a config file is provided, default is %d)", cfg.MaxSeedLength))
}

// ApplySeedLengthFlags updates cfg with any --minlength/--maxlength values the user actually
// passed on cmd, leaving cfg's existing values (from its config file or defaults) untouched
// otherwise.
func ApplySeedLengthFlags(cmd *cobra.Command, cfg *config.FuzzingConfig) error {
	if cmd.Flags().Changed("minlength") {
		v, err := cmd.Flags().GetInt("minlength")
		if err != nil {
			return err
		}
		cfg.MinSeedLength = v
	}
	if cmd.Flags().Changed("maxlength") {
		v, err := cmd.Flags().GetInt("maxlength")
		if err != nil {
			return err
		}
		cfg.MaxSeedLength = v
	}
	return nil
}
