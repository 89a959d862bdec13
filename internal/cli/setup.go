package cli

import (
	"fmt"
	"os"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up " + branding.CLIName() + " configuration",
	Long: `Create the configuration file interactively. Each prompt offers a default;
press ENTER to accept it. When a configuration file already exists its current
values are printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s Setup\n", branding.DisplayName())

		if config.Exists() {
			fmt.Fprintf(out, "%s found.\n", config.FilePath())
			config.Describe(out)
			return nil
		}
		fmt.Fprintf(out, "%s not found.\n", config.FilePath())

		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		values, err := config.Wizard(cmd.InOrStdin(), out, config.Defaults(home))
		if err != nil {
			return err
		}
		if err := config.SetAll(values); err != nil {
			return err
		}

		fmt.Fprintf(out, "%s Wrote %s\n", okMark(), config.FilePath())
		return nil
	},
}
