package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kibrarian-labs/kibrarian/internal/config"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/fetch"
	"github.com/kibrarian-labs/kibrarian/internal/libtable"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, registry, and installed libraries",
	Long: `Run diagnostic checks: git availability, the config file, the registry and
installed-state files, the placed files of every installed library, and the
KiCad library tables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		d := &doctor{out: out}

		d.section("Runtime check:")
		d.checkBinary("git")

		d.section("Config check:")
		if config.Exists() {
			d.ok("config file %s", config.FilePath())
		} else {
			d.warn("no config file at %s, using defaults", config.FilePath())
		}
		paths, err := resolvePaths()
		if err != nil {
			d.fail("resolving paths: %v", err)
			return d.result()
		}

		d.section("Registry check:")
		if reg, err := registry.LoadRegistry(paths.Registry); err != nil {
			d.fail("%v", err)
		} else {
			d.ok("%s", printer.Sprintf("%s lists %d libraries", paths.Registry, len(reg)))
		}

		d.section("Installed check:")
		installed, err := registry.LoadInstalled(paths.Installed)
		if err != nil {
			d.fail("%v", err)
		} else {
			d.checkInstalled(paths, installed)
		}

		d.section("Library table check:")
		d.checkTable(paths.SymLibTable, libtable.Symbol)
		d.checkTable(paths.FPLibTable, libtable.Footprint)

		return d.result()
	},
}

// doctor accumulates check output and failures.
type doctor struct {
	out      io.Writer
	failures int
}

func (d *doctor) section(title string) { fmt.Fprintln(d.out, title) }

func (d *doctor) ok(format string, args ...any) {
	fmt.Fprintf(d.out, "  [ OK ] "+format+"\n", args...)
}

func (d *doctor) warn(format string, args ...any) {
	fmt.Fprintf(d.out, "  [WARN] "+format+"\n", args...)
}

func (d *doctor) fail(format string, args ...any) {
	d.failures++
	fmt.Fprintf(d.out, "  [FAIL] "+format+"\n", args...)
}

func (d *doctor) result() error {
	if d.failures == 0 {
		return nil
	}
	return &reportedError{err: liberrors.New(liberrors.ErrCodeInvalidRequest,
		printer.Sprintf("%d check(s) failed", d.failures))}
}

func (d *doctor) checkBinary(name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		d.fail("%s not found on PATH", name)
		return
	}
	d.ok("%s found at %s", name, path)
}

func (d *doctor) checkInstalled(paths config.Paths, installed registry.Registry) {
	if len(installed) == 0 {
		fmt.Fprintln(d.out, "  [INFO] No libraries installed")
		return
	}
	for _, name := range installed.Names() {
		if _, err := os.Stat(paths.FetchedDir(name)); err != nil {
			d.warn("%s: sources missing at %s (run uninstall and install again)", name, paths.FetchedDir(name))
			continue
		}
		scopes := placedScopes(paths, installed[name])
		if len(scopes) == 0 {
			d.warn("%s: no placed files in the library directory it was installed into", name)
			continue
		}
		if isStaleCheckout(paths.FetchedDir(name)) {
			d.warn("%s (%s): sources not fetched in the last 7 days", name, strings.Join(scopes, ", "))
			continue
		}
		d.ok("%s (%s)", name, strings.Join(scopes, ", "))
	}
}

type scopeRoot struct {
	scope string
	root  string
}

// placedScopes names the scopes holding lib's placed symbols. A recorded
// root is checked alone; older records without one are looked up in both.
func placedScopes(paths config.Paths, lib registry.Library) []string {
	candidates := []scopeRoot{
		{"global", paths.GlobalLibraryDir},
		{"project", paths.ProjectLibraryDir},
	}
	if lib.Root != "" {
		recorded := scopeRoot{"project " + lib.Root, lib.Root}
		for _, c := range candidates {
			if filepath.Clean(c.root) == filepath.Clean(lib.Root) {
				recorded.scope = c.scope
			}
		}
		candidates = []scopeRoot{recorded}
	}

	var scopes []string
	for _, c := range candidates {
		if dirExists(filepath.Join(c.root, "symbols", lib.Name)) {
			scopes = append(scopes, c.scope)
		}
	}
	return scopes
}

func (d *doctor) checkTable(path string, kind libtable.Kind) {
	if path == "" {
		fmt.Fprintf(d.out, "  [INFO] %s registration disabled\n", kind)
		return
	}
	if _, err := os.Stat(path); err != nil {
		d.warn("%s not found at %s", kind, path)
		return
	}
	t, err := libtable.Load(path, kind)
	if err != nil {
		d.fail("%v", err)
		return
	}
	dangling := 0
	for _, e := range t.Entries {
		if strings.Contains(e.URI, "${") {
			continue
		}
		if _, err := os.Stat(e.URI); err != nil {
			dangling++
		}
	}
	if dangling > 0 {
		d.warn("%s", printer.Sprintf("%s has %d entries pointing at missing paths", path, dangling))
		return
	}
	d.ok("%s", printer.Sprintf("%s has %d entries", path, len(t.Entries)))
}

// isStaleCheckout reports whether dir is a git checkout last fetched more
// than fetch.DefaultMaxAge ago.
func isStaleCheckout(dir string) bool {
	return dirExists(filepath.Join(dir, ".git")) && fetch.IsStale(dir, fetch.DefaultMaxAge)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
