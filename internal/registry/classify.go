package registry

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileKind is the category of a fetched entry, derived from its extension.
type FileKind int

const (
	Unclassified FileKind = iota
	SymbolLib             // .lib symbol library file
	SymbolDoc             // .dcm symbol documentation file
	FootprintDir          // .pretty footprint library directory
)

func (k FileKind) String() string {
	switch k {
	case SymbolLib:
		return "symbol-lib"
	case SymbolDoc:
		return "symbol-doc"
	case FootprintDir:
		return "footprint-dir"
	default:
		return "unclassified"
	}
}

// Classify maps an entry name to its kind. Extensions match exactly
// (case-sensitive). Symbol kinds apply to files only and FootprintDir to
// directories only; anything else is Unclassified and gets skipped.
func Classify(name string, isDir bool) FileKind {
	switch filepath.Ext(name) {
	case ".lib":
		if !isDir {
			return SymbolLib
		}
	case ".dcm":
		if !isDir {
			return SymbolDoc
		}
	case ".pretty":
		if isDir {
			return FootprintDir
		}
	}
	return Unclassified
}

// classifiedEntry is one immediate child of a fetched subpath.
type classifiedEntry struct {
	Name string
	Path string
	Kind FileKind
}

// enumerate lists the immediate children of dir with their kinds. Symlinks
// are classified by what they point at; a dangling link is Unclassified.
func enumerate(dir string) ([]classifiedEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	out := make([]classifiedEntry, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		kind := Unclassified
		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			info, err := os.Stat(path)
			if err != nil {
				slog.Debug("skipping unreadable symlink", "path", path, "error", err)
				break
			}
			kind = Classify(entry.Name(), info.IsDir())
		default:
			kind = Classify(entry.Name(), entry.IsDir())
		}
		out = append(out, classifiedEntry{Name: entry.Name(), Path: path, Kind: kind})
	}
	return out, nil
}
