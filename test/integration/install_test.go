//go:build integration

package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/fetch"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
)

func TestInstallFromGit(t *testing.T) {
	env := setupTestEnv(t)
	setupUpstream(t, env.UpstreamDir)
	writeRegistry(t, env.Paths.Registry, map[string]string{"acme": env.UpstreamDir})

	m := registry.NewManager(env.Paths, fetch.NewGitFetcher())
	res, err := m.Install(context.Background(), "acme", false)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}

	if len(res.Symbols) != 2 {
		t.Errorf("symbols = %v, want acme.dcm and acme.lib", res.Symbols)
	}
	if len(res.Footprints) != 2 {
		t.Errorf("footprints = %v, want two .pretty dirs", res.Footprints)
	}

	root := env.Paths.ProjectLibraryDir
	assertFileExists(t, filepath.Join(root, "symbols", "acme", "acme.lib"))
	assertFileExists(t, filepath.Join(root, "symbols", "acme", "acme.dcm"))
	assertFileNotExists(t, filepath.Join(root, "symbols", "acme", "README.txt"))
	assertFileExists(t, filepath.Join(root, "footprints", "acme", "Acme_Connectors.pretty", "J1.kicad_mod"))
	assertFileExists(t, filepath.Join(root, "footprints", "acme", "Acme_Passives.pretty", "R0402.kicad_mod"))
	assertFileNotExists(t, filepath.Join(root, "footprints", "acme", "LICENSE"))

	// The clone is kept for later updates and uninstall.
	assertDirExists(t, filepath.Join(env.Paths.ExtraDir, "acme", ".git"))

	assertFileContains(t, env.Paths.Installed, "acme")
	assertFileContains(t, env.Paths.SymLibTable, `(name "acme-acme")`)
	assertFileContains(t, env.Paths.FPLibTable, `(name "acme-Acme_Connectors")`)
	assertFileContains(t, env.Paths.FPLibTable, `(name "acme-Acme_Passives")`)
}

func TestInstallBadRemote(t *testing.T) {
	env := setupTestEnv(t)
	writeRegistry(t, env.Paths.Registry, map[string]string{"ghost": filepath.Join(env.HomeDir, "does-not-exist")})

	m := registry.NewManager(env.Paths, fetch.NewGitFetcher())
	_, err := m.Install(context.Background(), "ghost", true)
	if code := liberrors.CodeOf(err); code != liberrors.ErrCodeFetch {
		t.Fatalf("code = %q, want %q (err: %v)", code, liberrors.ErrCodeFetch, err)
	}
	assertFileNotExists(t, env.Paths.Installed)
	assertFileNotExists(t, filepath.Join(env.Paths.ExtraDir, "ghost"))
}

func TestUpdatePullsNewFiles(t *testing.T) {
	env := setupTestEnv(t)
	setupUpstream(t, env.UpstreamDir)
	writeRegistry(t, env.Paths.Registry, map[string]string{"acme": env.UpstreamDir})

	// Full clones so pull works against a local path without shallow
	// negotiation.
	m := registry.NewManager(env.Paths, &fetch.GitFetcher{})
	ctx := context.Background()
	if _, err := m.Install(ctx, "acme", true); err != nil {
		t.Fatalf("Install: %v", err)
	}

	writeFile(t, filepath.Join(env.UpstreamDir, "symbols", "acme_power.lib"), "EESchema-LIBRARY Version 2.4\n")
	commitAll(t, env.UpstreamDir, "add power symbols")

	results, err := m.Update(ctx, true)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("results = %+v", results)
	}

	assertFileExists(t, filepath.Join(env.Paths.GlobalLibraryDir, "symbols", "acme", "acme_power.lib"))
	assertFileContains(t, env.Paths.SymLibTable, `(name "acme-acme_power")`)
}
