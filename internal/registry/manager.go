package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kibrarian-labs/kibrarian/internal/config"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/fetch"
)

// Manager runs the install, uninstall, and update workflows against one
// resolved set of paths.
type Manager struct {
	Paths   config.Paths
	Fetcher fetch.Fetcher
	// LockTimeout bounds the wait for the installed-state lock. Zero uses
	// DefaultLockTimeout; a negative value waits until the context is done.
	LockTimeout time.Duration
}

// NewManager returns a Manager using fetcher for version control.
func NewManager(paths config.Paths, fetcher fetch.Fetcher) *Manager {
	return &Manager{Paths: paths, Fetcher: fetcher}
}

func (m *Manager) lockTimeout() time.Duration {
	switch {
	case m.LockTimeout == 0:
		return DefaultLockTimeout
	case m.LockTimeout < 0:
		return 0
	default:
		return m.LockTimeout
	}
}

// rename is os.Rename, replaceable in tests.
var rename = os.Rename

// placedRoot returns the library root lib's files live under when acting in
// the given scope. A recorded root that differs from the scope's root is
// INVALID_REQUEST. Entries without a recorded root fall back to the scope's
// root.
func (m *Manager) placedRoot(lib Library, global bool) (string, error) {
	root := m.Paths.LibraryRoot(global)
	if lib.Root == "" || samePath(lib.Root, root) {
		return root, nil
	}
	hint := "rerun without --global from the project it was installed in"
	if samePath(lib.Root, m.Paths.GlobalLibraryDir) {
		hint = "rerun with --global"
	}
	return "", liberrors.NewWithContext(liberrors.ErrCodeInvalidRequest,
		fmt.Sprintf("library %q is installed under %s, %s", lib.Name, lib.Root, hint),
		map[string]any{"root": lib.Root, "requested": root})
}

// placedDirs returns <root>/symbols/<name> and <root>/footprints/<name>.
func placedDirs(root, name string) (symDst, fpDst string) {
	return filepath.Join(root, "symbols", name), filepath.Join(root, "footprints", name)
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// selection holds the classified entries chosen from a fetched tree.
type selection struct {
	symbols    []classifiedEntry // SymbolLib and SymbolDoc files
	footprints []classifiedEntry // FootprintDir directories
}

func (s selection) symbolNames() []string {
	names := make([]string, len(s.symbols))
	for i, e := range s.symbols {
		names[i] = e.Name
	}
	return names
}

func (s selection) footprintNames() []string {
	names := make([]string, len(s.footprints))
	for i, e := range s.footprints {
		names[i] = e.Name
	}
	return names
}

// selectEntries enumerates the library's symbol and footprint subpaths
// inside fetched and keeps the classified entries. Unclassified entries are
// skipped silently.
func selectEntries(fetched string, lib Library) (selection, error) {
	var sel selection

	symDir := filepath.Join(fetched, filepath.FromSlash(lib.SymbolsPath))
	syms, err := enumerate(symDir)
	if err != nil {
		return sel, liberrors.WrapWithContext(liberrors.ErrCodeIO, "reading symbols subpath", err,
			map[string]any{"library": lib.Name, "path": symDir})
	}
	fpDir := filepath.Join(fetched, filepath.FromSlash(lib.FootprintsPath))
	fps, err := enumerate(fpDir)
	if err != nil {
		return sel, liberrors.WrapWithContext(liberrors.ErrCodeIO, "reading footprints subpath", err,
			map[string]any{"library": lib.Name, "path": fpDir})
	}

	for _, e := range syms {
		if e.Kind == SymbolLib || e.Kind == SymbolDoc {
			sel.symbols = append(sel.symbols, e)
		}
	}
	for _, e := range fps {
		if e.Kind == FootprintDir {
			sel.footprints = append(sel.footprints, e)
		}
	}
	return sel, nil
}

// stage copies the selection into a fresh staging directory under root,
// laid out as <staging>/symbols/<file> and <staging>/footprints/<dir>/...
// On failure the staging directory is removed.
func stage(root string, sel selection) (string, error) {
	staging := filepath.Join(root, ".staging-"+uuid.NewString())

	err := func() error {
		for _, sub := range []string{"symbols", "footprints"} {
			if err := os.MkdirAll(filepath.Join(staging, sub), 0755); err != nil {
				return err
			}
		}
		for _, e := range sel.symbols {
			if err := copyFile(e.Path, filepath.Join(staging, "symbols", e.Name)); err != nil {
				return err
			}
		}
		for _, e := range sel.footprints {
			if err := copyDir(e.Path, filepath.Join(staging, "footprints", e.Name)); err != nil {
				return err
			}
		}
		return nil
	}()
	if err != nil {
		_ = os.RemoveAll(staging)
		return "", liberrors.WrapWithContext(liberrors.ErrCodeIO, "copying library files", err,
			map[string]any{"staging": staging})
	}
	return staging, nil
}

// promote moves the staged trees to symDst and fpDst. If the second move
// fails the first is undone.
func promote(staging, symDst, fpDst string) error {
	for _, dst := range []string{symDst, fpDst} {
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return liberrors.Wrap(liberrors.ErrCodeIO, "creating library directory", err)
		}
	}
	if err := rename(filepath.Join(staging, "symbols"), symDst); err != nil {
		return liberrors.WrapWithContext(liberrors.ErrCodeIO, "placing symbols", err,
			map[string]any{"path": symDst})
	}
	if err := rename(filepath.Join(staging, "footprints"), fpDst); err != nil {
		_ = os.RemoveAll(symDst)
		return liberrors.WrapWithContext(liberrors.ErrCodeIO, "placing footprints", err,
			map[string]any{"path": fpDst})
	}
	return nil
}

// replace swaps the placed trees at symDst and fpDst for the staged ones.
// The previous trees are moved under <staging>/previous first and moved
// back if promotion fails, so a failed replace leaves the old files placed.
func replace(staging, symDst, fpDst string) error {
	backup := filepath.Join(staging, "previous")
	if err := os.MkdirAll(backup, 0755); err != nil {
		return liberrors.Wrap(liberrors.ErrCodeIO, "preparing replacement", err)
	}

	moved := map[string]string{}
	restore := func() {
		for dst, old := range moved {
			_ = os.RemoveAll(dst)
			_ = rename(old, dst)
		}
	}
	for dst, old := range map[string]string{
		symDst: filepath.Join(backup, "symbols"),
		fpDst:  filepath.Join(backup, "footprints"),
	} {
		if !exists(dst) {
			continue
		}
		if err := rename(dst, old); err != nil {
			restore()
			return liberrors.WrapWithContext(liberrors.ErrCodeIO, "moving previous files aside", err,
				map[string]any{"path": dst})
		}
		moved[dst] = old
	}

	if err := promote(staging, symDst, fpDst); err != nil {
		restore()
		return err
	}
	return nil
}

// exists reports whether path is present, treating stat errors other than
// not-exist as present so callers refuse to overwrite.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !os.IsNotExist(err)
}
