package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// Install resolves query against the registry, fetches the library, places
// its classified files under the managed library root for the scope, and
// records it, together with the root it was placed under, in the
// installed-state file.
//
// A library already in the installed record fails with ALREADY_INSTALLED
// before anything on disk changes. Files are copied into a staging directory
// and moved into place only once every copy succeeded. If the record cannot
// be written the placed directories are removed again; the fetched tree is
// kept either way.
func (m *Manager) Install(ctx context.Context, query string, global bool) (*InstallResult, error) {
	log := slog.With("library", query, "global", global)

	reg, err := LoadRegistry(m.Paths.Registry)
	if err != nil {
		return nil, err
	}
	lib, ok := Resolve(reg, query)
	if !ok {
		return nil, liberrors.NewWithContext(liberrors.ErrCodeLibraryNotFound,
			fmt.Sprintf("no library named %q in the registry", query),
			map[string]any{"registry": m.Paths.Registry})
	}

	unlock, err := acquireLock(ctx, m.Paths.LockPath(), m.lockTimeout())
	if err != nil {
		return nil, err
	}
	defer unlock()

	installed, err := LoadInstalled(m.Paths.Installed)
	if err != nil {
		return nil, err
	}
	if _, ok := installed.Get(lib.Name); ok {
		return nil, liberrors.NewWithContext(liberrors.ErrCodeAlreadyInstalled,
			fmt.Sprintf("library %q is already installed", lib.Name),
			map[string]any{"installed": m.Paths.Installed})
	}

	root := m.Paths.LibraryRoot(global)
	symDst := m.Paths.SymbolsDir(global, lib.Name)
	fpDst := m.Paths.FootprintsDir(global, lib.Name)
	for _, dst := range []string{symDst, fpDst} {
		if exists(dst) {
			return nil, liberrors.NewWithContext(liberrors.ErrCodeIO,
				"library directory already exists, remove it or finish the earlier install",
				map[string]any{"path": dst})
		}
	}

	fetched := m.Paths.FetchedDir(lib.Name)
	log.Info("fetching library", "url", lib.URL, "dest", fetched)
	if err := m.Fetcher.Clone(ctx, lib.URL, fetched); err != nil {
		if liberrors.CodeOf(err) == "" {
			err = liberrors.WrapWithContext(liberrors.ErrCodeFetch, "cloning library", err,
				map[string]any{"url": lib.URL})
		}
		return nil, err
	}

	sel, err := selectEntries(fetched, lib)
	if err != nil {
		return nil, err
	}
	log.Debug("classified entries", "symbols", len(sel.symbols), "footprints", len(sel.footprints))

	staging, err := stage(root, sel)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(staging)

	if err := promote(staging, symDst, fpDst); err != nil {
		return nil, err
	}

	lib.Root = root
	installed.Insert(lib)
	if err := Persist(installed, m.Paths.Installed); err != nil {
		log.Error("recording install failed, removing placed files", "error", err)
		_ = os.RemoveAll(symDst)
		_ = os.RemoveAll(fpDst)
		return nil, err
	}

	result := &InstallResult{
		Library:    lib,
		Root:       root,
		Fetched:    fetched,
		Symbols:    sel.symbolNames(),
		Footprints: sel.footprintNames(),
	}
	result.Warnings = m.registerTables(lib, symDst, fpDst, sel)

	log.Info("library installed", "root", root,
		"symbols", len(result.Symbols), "footprints", len(result.Footprints))
	return result, nil
}
