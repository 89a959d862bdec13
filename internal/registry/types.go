package registry

import (
	"fmt"
	"sort"
)

// FormatVersion is the registry file format written by Persist.
const FormatVersion = "1.0.0"

// Library is a registry entry. Values are immutable once loaded; the
// installed record stores copies.
type Library struct {
	Name           string `yaml:"name" json:"name"`
	ID             int64  `yaml:"id" json:"id"`
	URL            string `yaml:"url" json:"url"`
	SymbolsPath    string `yaml:"symbols_path" json:"symbols_path"`
	FootprintsPath string `yaml:"footprints_path" json:"footprints_path"`
	// Root is the managed library root the files were placed under. Only
	// installed-record entries carry it.
	Root string `yaml:"root,omitempty" json:"root,omitempty"`
}

func (l Library) String() string {
	return fmt.Sprintf("[%s]: %s\tsyms: %s\tfps: %s", l.Name, l.URL, l.SymbolsPath, l.FootprintsPath)
}

// Registry maps library names to libraries. Every key equals its
// Library.Name. The installed record uses the same type.
type Registry map[string]Library

// Get returns the library stored under name.
func (r Registry) Get(name string) (Library, bool) {
	lib, ok := r[name]
	return lib, ok
}

// Insert stores lib under its name, replacing any previous entry.
func (r Registry) Insert(lib Library) {
	r[lib.Name] = lib
}

// Delete removes name and reports whether it was present.
func (r Registry) Delete(name string) bool {
	if _, ok := r[name]; !ok {
		return false
	}
	delete(r, name)
	return true
}

// Names returns the library names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// document is the on-disk shape of a registry or installed-state file.
type document struct {
	Version   string             `yaml:"version,omitempty"`
	Libraries map[string]Library `yaml:"libraries"`
}

// InstallResult describes a completed install.
type InstallResult struct {
	Library    Library
	Root       string   // managed library root the files were placed under
	Fetched    string   // fetched source tree
	Symbols    []string // file names placed under symbols/<name>/
	Footprints []string // directory names placed under footprints/<name>/
	Warnings   []string
}

// UninstallResult describes a completed uninstall.
type UninstallResult struct {
	Library  Library
	Removed  []string // paths that existed and were removed
	Missing  []string // paths that were already absent
	Warnings []string
}

// UpdateResult describes the refresh of one installed library.
type UpdateResult struct {
	Library Library
	Err     error
}
