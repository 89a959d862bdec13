package cli

import (
	"fmt"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/spf13/cobra"
)

var updateGlobal bool

func init() {
	updateCmd.Flags().BoolVarP(&updateGlobal, "global", "g", false, "Refresh files placed in the global library directory")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update installed library sources",
	Long: `Pull the latest sources of every installed library and refresh the symbol and
footprint files placed in the project library directory (or the global one with
--global). Libraries not placed in that directory only get their sources pulled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Updating library sources")

		results, err := m.Update(cmd.Context(), updateGlobal)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(out, "No libraries installed yet.")
			return nil
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "  %s %s: %v\n", failMark(), r.Library.Name, r.Err)
				continue
			}
			fmt.Fprintf(out, "  %s %s\n", okMark(), r.Library.Name)
		}

		fmt.Fprintln(out)
		if failed > 0 {
			return liberrors.New(liberrors.ErrCodeFetch,
				printer.Sprintf("%d of %d libraries failed to update", failed, len(results)))
		}
		fmt.Fprintf(out, "%s %s\n", okMark(), printer.Sprintf("Updated %d libraries.", len(results)))
		return nil
	},
}
