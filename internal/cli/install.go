package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var installGlobal bool

var installCmd = &cobra.Command{
	Use:   "install <library>",
	Short: "Install a library from the registry",
	Long: `Install a library listed in the registry file.

The library is cloned into the source directory (extra_dir), then its .lib and
.dcm files are copied to symbols/<library>/ and its .pretty directories to
footprints/<library>/ under the project's library directory, or the global
library directory with --global. The library is recorded in the installed-state
file and registered in KiCad's sym-lib-table and fp-lib-table.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installGlobal, "global", "g", false, "Install into the global library directory")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Installing %s...\n", args[0])

	res, err := m.Install(cmd.Context(), args[0], installGlobal)
	if err != nil {
		return err
	}

	for _, name := range res.Symbols {
		fmt.Fprintf(out, "  %s symbols/%s/%s\n", okMark(), res.Library.Name, name)
	}
	for _, name := range res.Footprints {
		fmt.Fprintf(out, "  %s footprints/%s/%s\n", okMark(), res.Library.Name, name)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  %s %s\n", warnMark(), w)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s %s\n", okMark(), printer.Sprintf("Installed %s (%d symbol files, %d footprint libraries) into %s",
		res.Library.Name, len(res.Symbols), len(res.Footprints), filepath.Clean(res.Root)))
	return nil
}
