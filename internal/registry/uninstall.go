package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// Uninstall removes an installed library: its fetched source tree, its
// symbols/<name> and footprints/<name> directories under the scope's root,
// its lib-table rows, and finally its installed-record entry.
//
// Eligibility depends only on the installed record, so a library dropped
// from the registry can still be uninstalled. A library recorded under
// another scope's root is INVALID_REQUEST and nothing is removed. Each path
// is removed independently and an already-absent path counts as removed. If
// any removal fails the record is left untouched so the command can be
// rerun.
func (m *Manager) Uninstall(ctx context.Context, query string, global bool) (*UninstallResult, error) {
	log := slog.With("library", query, "global", global)

	unlock, err := acquireLock(ctx, m.Paths.LockPath(), m.lockTimeout())
	if err != nil {
		return nil, err
	}
	defer unlock()

	installed, err := LoadInstalled(m.Paths.Installed)
	if err != nil {
		return nil, err
	}
	lib, ok := installed.Get(query)
	if !ok {
		return nil, liberrors.NewWithContext(liberrors.ErrCodeNotInstalled,
			fmt.Sprintf("library %q is not installed", query),
			map[string]any{"installed": m.Paths.Installed})
	}

	root, err := m.placedRoot(lib, global)
	if err != nil {
		return nil, err
	}
	symDst, fpDst := placedDirs(root, lib.Name)
	result := &UninstallResult{Library: lib}

	var errs []error
	for _, path := range []string{m.Paths.FetchedDir(lib.Name), symDst, fpDst} {
		existed, err := removePath(path)
		switch {
		case err != nil:
			log.Warn("removing path failed", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		case existed:
			result.Removed = append(result.Removed, path)
		default:
			log.Debug("path already absent", "path", path)
			result.Missing = append(result.Missing, path)
		}
	}
	if len(errs) > 0 {
		return result, liberrors.Wrap(liberrors.ErrCodeIO, "removing library files", errors.Join(errs...))
	}

	result.Warnings = m.unregisterTables(symDst, fpDst)

	installed.Delete(lib.Name)
	if err := Persist(installed, m.Paths.Installed); err != nil {
		return result, err
	}

	log.Info("library uninstalled", "removed", len(result.Removed), "missing", len(result.Missing))
	return result, nil
}
