package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/config"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
	"github.com/spf13/cobra"
)

var (
	listJSON      bool
	listAvailable bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed libraries",
	Long:  `List the libraries recorded in the installed-state file, or every registry entry with --available.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listAvailable, "available", false, "List registry libraries instead of installed ones")
	rootCmd.AddCommand(listCmd)
}

// listEntry represents a library for display.
type listEntry struct {
	registry.Library
	Installed bool `json:"installed"`
}

func runList(cmd *cobra.Command, args []string) error {
	paths, err := resolvePaths()
	if err != nil {
		return err
	}

	installed, err := registry.LoadInstalled(paths.Installed)
	if err != nil {
		return err
	}

	source := installed
	if listAvailable {
		source, err = registry.LoadRegistry(paths.Registry)
		if err != nil {
			return err
		}
	}

	entries := make([]listEntry, 0, len(source))
	for _, name := range source.Names() {
		_, ok := installed.Get(name)
		entries = append(entries, listEntry{Library: source[name], Installed: ok})
	}

	if listJSON {
		return printListJSON(cmd, entries)
	}
	if len(entries) == 0 {
		if listAvailable {
			fmt.Fprintln(cmd.OutOrStdout(), "The registry lists no libraries.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "No libraries installed yet.")
		}
		return nil
	}
	if err := printListTable(cmd, entries); err != nil {
		return err
	}
	warnStale(cmd, paths, installed)
	return nil
}

// warnStale points at update for installed libraries whose sources have not
// been fetched in a while.
func warnStale(cmd *cobra.Command, paths config.Paths, installed registry.Registry) {
	for _, name := range installed.Names() {
		if !isStaleCheckout(paths.FetchedDir(name)) {
			continue
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s Sources for %s are more than 7 days old. Run '%s update'.\n",
			warnMark(), name, branding.CLIName())
	}
}

func printListTable(cmd *cobra.Command, entries []listEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	if listAvailable {
		fmt.Fprintln(w, "NAME\tURL\tSYMBOLS\tFOOTPRINTS\tINSTALLED")
	} else {
		fmt.Fprintln(w, "NAME\tURL\tSYMBOLS\tFOOTPRINTS")
	}
	for _, e := range entries {
		if listAvailable {
			mark := "-"
			if e.Installed {
				mark = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.URL, e.SymbolsPath, e.FootprintsPath, mark)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.URL, e.SymbolsPath, e.FootprintsPath)
	}
	return w.Flush()
}

func printListJSON(cmd *cobra.Command, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
