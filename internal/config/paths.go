package config

import (
	"os"
	"path/filepath"
	"strings"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// Paths is the resolved set of filesystem locations a command operates on.
// It is built once per invocation and passed by value into the registry
// package; nothing below the command layer reads the environment.
type Paths struct {
	Registry          string // registry file (libraries.yaml)
	Installed         string // installed-state file (installed.yaml)
	FPLibTable        string // KiCad fp-lib-table; empty disables registration
	SymLibTable       string // KiCad sym-lib-table; empty disables registration
	ExtraDir          string // base for fetched source trees
	GlobalLibraryDir  string // managed library root for --global installs
	ProjectLibraryDir string // managed library root for project-local installs
}

// LibraryRoot returns the managed library root for the install scope.
func (p Paths) LibraryRoot(global bool) string {
	if global {
		return p.GlobalLibraryDir
	}
	return p.ProjectLibraryDir
}

// FetchedDir returns the fetched source tree location for a library.
func (p Paths) FetchedDir(name string) string {
	return filepath.Join(p.ExtraDir, name)
}

// SymbolsDir returns <root>/symbols/<name>.
func (p Paths) SymbolsDir(global bool, name string) string {
	return filepath.Join(p.LibraryRoot(global), "symbols", name)
}

// FootprintsDir returns <root>/footprints/<name>.
func (p Paths) FootprintsDir(global bool, name string) string {
	return filepath.Join(p.LibraryRoot(global), "footprints", name)
}

// LockPath returns the lock file guarding the installed-state file.
func (p Paths) LockPath() string {
	return p.Installed + ".lock"
}

// Resolve reads the loaded configuration into a Paths value. Relative
// project library directories are anchored at projectDir; a leading "~/"
// expands to the user's home directory.
func Resolve(projectDir string) (Paths, error) {
	home, _ := os.UserHomeDir()

	p := Paths{
		Registry:         expandHome(Get(KeyLibraries), home),
		Installed:        expandHome(Get(KeyInstalled), home),
		FPLibTable:       expandHome(Get(KeyFPLibTable), home),
		SymLibTable:      expandHome(Get(KeySymLibTable), home),
		ExtraDir:         expandHome(Get(KeyExtraDir), home),
		GlobalLibraryDir: expandHome(Get(KeyLibraryDir), home),
	}

	projectLib := expandHome(Get(KeyProjectLibraryDir), home)
	if projectLib != "" && !filepath.IsAbs(projectLib) {
		projectLib = filepath.Join(projectDir, projectLib)
	}
	p.ProjectLibraryDir = projectLib

	required := map[string]string{
		KeyLibraries:  p.Registry,
		KeyInstalled:  p.Installed,
		KeyExtraDir:   p.ExtraDir,
		KeyLibraryDir: p.GlobalLibraryDir,
	}
	for _, key := range Keys {
		if v, ok := required[key]; ok && v == "" {
			return Paths{}, liberrors.NewWithContext(liberrors.ErrCodeInvalidRequest,
				"config key "+key+" is empty", map[string]any{"file": FilePath()})
		}
	}
	if p.ProjectLibraryDir == "" {
		p.ProjectLibraryDir = filepath.Join(projectDir, "libraries")
	}

	return p, nil
}

func expandHome(path, home string) string {
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
