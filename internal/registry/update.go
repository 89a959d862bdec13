package registry

import (
	"context"
	"log/slog"
	"os"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// Update pulls the fetched source tree of every installed library and, for
// libraries recorded under the scope's root, replaces the placed files with
// the refreshed ones. One library failing does not stop the others; each
// outcome is reported in the returned slice. The error return is reserved
// for failures that affect the whole run, such as the lock or a malformed
// installed record.
func (m *Manager) Update(ctx context.Context, global bool) ([]UpdateResult, error) {
	unlock, err := acquireLock(ctx, m.Paths.LockPath(), m.lockTimeout())
	if err != nil {
		return nil, err
	}
	defer unlock()

	installed, err := LoadInstalled(m.Paths.Installed)
	if err != nil {
		return nil, err
	}

	results := make([]UpdateResult, 0, len(installed))
	for _, name := range installed.Names() {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		lib := installed[name]
		err := m.refresh(ctx, lib, global)
		if err != nil {
			slog.Warn("library update failed", "library", name, "error", err)
		}
		results = append(results, UpdateResult{Library: lib, Err: err})
	}
	return results, nil
}

func (m *Manager) refresh(ctx context.Context, lib Library, global bool) error {
	fetched := m.Paths.FetchedDir(lib.Name)
	if err := m.Fetcher.Pull(ctx, fetched); err != nil {
		if liberrors.CodeOf(err) == "" {
			err = liberrors.WrapWithContext(liberrors.ErrCodeFetch, "pulling library", err,
				map[string]any{"path": fetched})
		}
		return err
	}

	root := m.Paths.LibraryRoot(global)
	symDst, fpDst := placedDirs(root, lib.Name)
	placed := samePath(lib.Root, root) || (lib.Root == "" && (exists(symDst) || exists(fpDst)))
	if !placed {
		slog.Debug("library not placed under this root, sources refreshed only",
			"library", lib.Name, "root", root, "recorded", lib.Root)
		return nil
	}

	sel, err := selectEntries(fetched, lib)
	if err != nil {
		return err
	}
	staging, err := stage(root, sel)
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	if err := replace(staging, symDst, fpDst); err != nil {
		return err
	}

	// Rows for entries dropped upstream must not outlive their files.
	m.unregisterTables(symDst, fpDst)
	m.registerTables(lib, symDst, fpDst, sel)
	slog.Info("library updated", "library", lib.Name,
		"symbols", len(sel.symbols), "footprints", len(sel.footprints))
	return nil
}
