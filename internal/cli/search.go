package cli

import (
	"encoding/json"
	"fmt"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
	"github.com/spf13/cobra"
)

var (
	searchJSON      bool
	searchInstalled bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Look up a library in the registry",
	Long: `Look up a library by its exact, case-sensitive name in the registry file and
print its source URL and subpaths. Exits non-zero when nothing matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	searchCmd.Flags().BoolVar(&searchInstalled, "installed", false, "Also report whether the library is installed")
	rootCmd.AddCommand(searchCmd)
}

// searchResult is the JSON shape of a search hit.
type searchResult struct {
	registry.Library
	Installed *bool `json:"installed,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}
	reg, err := registry.LoadRegistry(paths.Registry)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	lib, ok := registry.Resolve(reg, args[0])
	if !ok {
		fmt.Fprintln(out, "No libraries found with given query.")
		return &reportedError{err: liberrors.NewWithContext(liberrors.ErrCodeLibraryNotFound,
			fmt.Sprintf("no library named %q", args[0]), map[string]any{"registry": paths.Registry})}
	}

	var installed *bool
	if searchInstalled {
		rec, err := registry.LoadInstalled(paths.Installed)
		if err != nil {
			return err
		}
		_, present := rec.Get(lib.Name)
		installed = &present
	}

	if searchJSON {
		data, err := json.MarshalIndent(searchResult{Library: lib, Installed: installed}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	line := lib.String()
	if installed != nil && *installed {
		line += "\t" + okMark() + " installed"
	}
	fmt.Fprintln(out, line)
	return nil
}
