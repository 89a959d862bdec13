//go:build integration

package integration_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/fetch"
	"github.com/kibrarian-labs/kibrarian/internal/libtable"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
)

// TestFullFlowInstallAndUninstall tests the complete flow:
// install from a git remote -> verify state -> uninstall -> verify the
// filesystem and tables are back to where they started.
func TestFullFlowInstallAndUninstall(t *testing.T) {
	env := setupTestEnv(t)
	setupUpstream(t, env.UpstreamDir)
	writeRegistry(t, env.Paths.Registry, map[string]string{"acme": env.UpstreamDir})

	// Existing user rows in the tables must survive.
	writeFile(t, env.Paths.FPLibTable, `(fp_lib_table
  (version 7)
  (lib (name "Resistor_SMD")(type "KiCad")(uri "${KICAD8_FOOTPRINT_DIR}/Resistor_SMD.pretty")(options "")(descr "Resistor SMD"))
)
`)

	m := registry.NewManager(env.Paths, fetch.NewGitFetcher())
	ctx := context.Background()

	// Step 1: Install.
	if _, err := m.Install(ctx, "acme", true); err != nil {
		t.Fatalf("Install: %v", err)
	}

	// Step 2: A second install is refused without touching anything.
	before, err := os.ReadFile(env.Paths.Installed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Install(ctx, "acme", true); liberrors.CodeOf(err) != liberrors.ErrCodeAlreadyInstalled {
		t.Fatalf("second Install err = %v, want ALREADY_INSTALLED", err)
	}
	after, err := os.ReadFile(env.Paths.Installed)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("installed record changed on refused install")
	}

	fp, err := libtable.Load(env.Paths.FPLibTable, libtable.Footprint)
	if err != nil {
		t.Fatalf("loading fp table: %v", err)
	}
	if len(fp.Entries) != 3 {
		t.Errorf("fp table has %d entries, want 3", len(fp.Entries))
	}
	if len(fp.Header) != 1 || fp.Header[0] != "(version 7)" {
		t.Errorf("fp table header = %v", fp.Header)
	}

	// Step 3: Uninstall.
	res, err := m.Uninstall(ctx, "acme", true)
	if err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if len(res.Removed) != 3 {
		t.Errorf("removed = %v, want 3 paths", res.Removed)
	}

	assertFileNotExists(t, filepath.Join(env.Paths.ExtraDir, "acme"))
	assertFileNotExists(t, filepath.Join(env.Paths.GlobalLibraryDir, "symbols", "acme"))
	assertFileNotExists(t, filepath.Join(env.Paths.GlobalLibraryDir, "footprints", "acme"))

	rec, err := registry.LoadInstalled(env.Paths.Installed)
	if err != nil {
		t.Fatalf("LoadInstalled: %v", err)
	}
	if len(rec) != 0 {
		t.Errorf("installed record = %v, want empty", rec)
	}

	fp, err = libtable.Load(env.Paths.FPLibTable, libtable.Footprint)
	if err != nil {
		t.Fatalf("loading fp table: %v", err)
	}
	if len(fp.Entries) != 1 || fp.Entries[0].Name != "Resistor_SMD" {
		t.Errorf("fp table entries = %+v, want only Resistor_SMD", fp.Entries)
	}

	// Step 4: Uninstalling again reports NOT_INSTALLED.
	if _, err := m.Uninstall(ctx, "acme", true); liberrors.CodeOf(err) != liberrors.ErrCodeNotInstalled {
		t.Fatalf("second Uninstall err = %v, want NOT_INSTALLED", err)
	}
}
