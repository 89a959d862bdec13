//go:build integration

package integration_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kibrarian-labs/kibrarian/internal/config"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir     string // HOME and the config directory
	UpstreamDir string // local git repository standing in for a remote
	ProjectDir  string // a mock KiCad project directory
	Paths       config.Paths
}

// setupTestEnv creates isolated temp directories and a Paths value pointing
// into them, and sets HOME so nothing leaks into the real user profile.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("KIBRARIAN_CONFIG", filepath.Join(home, "config.yaml"))

	env := &testEnv{
		HomeDir:     home,
		UpstreamDir: filepath.Join(t.TempDir(), "acme"),
		ProjectDir:  t.TempDir(),
	}
	env.Paths = config.Paths{
		Registry:          filepath.Join(home, "libraries.yaml"),
		Installed:         filepath.Join(home, "installed.yaml"),
		SymLibTable:       filepath.Join(home, "kicad", "sym-lib-table"),
		FPLibTable:        filepath.Join(home, "kicad", "fp-lib-table"),
		ExtraDir:          filepath.Join(home, "extra"),
		GlobalLibraryDir:  filepath.Join(home, "libraries"),
		ProjectLibraryDir: filepath.Join(env.ProjectDir, "libraries"),
	}
	return env
}

// setupUpstream creates a git repository with a typical KiCad library
// layout: symbol files under symbols/ and footprint libraries under
// footprints/.
func setupUpstream(t *testing.T, dir string) {
	t.Helper()

	writeFile(t, filepath.Join(dir, "symbols", "acme.lib"), "EESchema-LIBRARY Version 2.4\n#End Library\n")
	writeFile(t, filepath.Join(dir, "symbols", "acme.dcm"), "EESchema-DOCLIB  Version 2.0\n#End Doc Library\n")
	writeFile(t, filepath.Join(dir, "symbols", "README.txt"), "not a library\n")
	writeFile(t, filepath.Join(dir, "footprints", "Acme_Connectors.pretty", "J1.kicad_mod"), "(module J1)\n")
	writeFile(t, filepath.Join(dir, "footprints", "Acme_Passives.pretty", "R0402.kicad_mod"), "(module R0402)\n")
	writeFile(t, filepath.Join(dir, "footprints", "LICENSE"), "MIT\n")

	git(t, dir, "init", "-q")
	commitAll(t, dir, "initial library")
}

// commitAll stages everything in dir and commits it.
func commitAll(t *testing.T, dir, message string) {
	t.Helper()
	git(t, dir, "add", "-A")
	git(t, dir, "-c", "user.email=test@example.com", "-c", "user.name=test", "commit", "-q", "-m", message)
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
}

// writeRegistry writes a registry file listing one library per upstream.
func writeRegistry(t *testing.T, path string, upstreams map[string]string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("version: \"1.0.0\"\nlibraries:\n")
	id := 1
	for name, url := range upstreams {
		fmt.Fprintf(&b, "  %s:\n    name: %s\n    id: %d\n    url: %s\n    symbols_path: symbols\n    footprints_path: footprints\n",
			name, name, id, url)
		id++
	}
	writeFile(t, path, b.String())
}

// writeFile creates a file at the given path with the given content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating dir %s: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertDirExists fails the test if the directory does not exist.
func assertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory to exist: %s (error: %v)", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory, but it is a file", path)
	}
}

// assertFileContains fails if the file doesn't exist or doesn't contain substr.
func assertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if !strings.Contains(string(data), substr) {
		t.Errorf("file %s does not contain %q.\nContents:\n%s", path, substr, string(data))
	}
}
