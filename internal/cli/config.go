package cli

import (
	"fmt"
	"strings"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/config"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write ` + branding.DisplayName() + ` configuration.

Keys: ` + strings.Join(config.Keys, ", ") + `

Each key can also be set through the environment as ` + branding.EnvPrefix() + `_<KEY>.`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := checkKey(key); err != nil {
			return err
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config.Describe(cmd.OutOrStdout())
		return nil
	},
}

func checkKey(key string) error {
	if !config.IsKnownKey(key) {
		return liberrors.New(liberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown config key %q (known: %s)", key, strings.Join(config.Keys, ", ")))
	}
	return nil
}
