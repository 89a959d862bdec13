package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uninstallGlobal bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <library>",
	Short: "Remove an installed library",
	Long: `Remove an installed library: its cloned sources, its symbols/<library>/ and
footprints/<library>/ directories, and its KiCad library table rows.

Only the installed-state file decides whether a library can be removed, so a
library that has since been dropped from the registry can still be uninstalled.
Paths that are already gone are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallGlobal, "global", "g", false, "Remove from the global library directory")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, err := m.Uninstall(cmd.Context(), args[0], uninstallGlobal)
	if res != nil {
		for _, p := range res.Removed {
			fmt.Fprintf(out, "  %s removed %s\n", okMark(), p)
		}
		for _, p := range res.Missing {
			fmt.Fprintf(out, "  %s %s\n", dimStyle.Render("-"), dimStyle.Render(p+" (already absent)"))
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  %s %s\n", warnMark(), w)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Removed %s\n", okMark(), res.Library.Name)
	return nil
}
