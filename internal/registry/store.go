package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"go.yaml.in/yaml/v3"
)

// supportedFormats is the range of file format versions this build reads.
var supportedFormats = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// LoadRegistry reads the registry file at path. A missing file is
// NOT_FOUND; content that does not match the schema is PARSE_ERROR.
func LoadRegistry(path string) (Registry, error) {
	return load(path, "registry file", Parse)
}

// LoadInstalled reads the installed-state file at path. An absent file is
// the first-run case and yields an empty record; a present but malformed
// file is PARSE_ERROR.
func LoadInstalled(path string) (Registry, error) {
	reg, err := load(path, "installed record", ParseInstalled)
	if errors.Is(err, liberrors.ErrNotFound) {
		return Registry{}, nil
	}
	return reg, err
}

func load(path, what string, parse func([]byte) (Registry, error)) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, liberrors.WrapWithContext(liberrors.ErrCodeNotFound, what+" not found", err,
				map[string]any{"path": path})
		}
		return nil, liberrors.WrapWithContext(liberrors.ErrCodeIO, "reading "+what, err,
			map[string]any{"path": path})
	}

	reg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// Parse decodes registry file content. It either returns a fully valid
// registry or a PARSE_ERROR, never a partial map. Registry entries may not
// carry a root.
func Parse(data []byte) (Registry, error) {
	return parse(data, false)
}

// ParseInstalled decodes installed-record content. It differs from Parse
// only in accepting an absolute root on each entry.
func ParseInstalled(data []byte) (Registry, error) {
	return parse(data, true)
}

func parse(data []byte, installed bool) (Registry, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeParse, "decoding YAML", err)
	}

	issues, err := validateSchema(raw)
	if err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeParse, "validating schema", err)
	}
	if len(issues) > 0 {
		return nil, liberrors.NewWithContext(liberrors.ErrCodeParse,
			printer.Sprintf("%d schema violation(s): %s", len(issues), joinIssues(issues)),
			map[string]any{"issues": issues})
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeParse, "decoding registry", err)
	}

	if err := checkFormat(doc.Version); err != nil {
		return nil, err
	}

	reg := make(Registry, len(doc.Libraries))
	for key, lib := range doc.Libraries {
		if err := checkEntry(key, lib, installed); err != nil {
			return nil, err
		}
		reg[key] = lib
	}
	return reg, nil
}

func checkFormat(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return liberrors.Wrap(liberrors.ErrCodeParse, fmt.Sprintf("invalid format version %q", version), err)
	}
	if !supportedFormats.Check(v) {
		return liberrors.New(liberrors.ErrCodeParse,
			fmt.Sprintf("unsupported format version %s (want %s)", v, supportedFormats))
	}
	return nil
}

// checkEntry enforces the invariants the schema cannot express.
func checkEntry(key string, lib Library, installed bool) error {
	if key != lib.Name {
		return liberrors.New(liberrors.ErrCodeParse,
			fmt.Sprintf("entry %q has mismatched name %q", key, lib.Name))
	}
	if key == "." || key == ".." {
		return liberrors.New(liberrors.ErrCodeParse, fmt.Sprintf("invalid library name %q", key))
	}
	switch {
	case lib.Root != "" && !installed:
		return liberrors.New(liberrors.ErrCodeParse,
			fmt.Sprintf("entry %q: root is only valid in the installed record", key))
	case lib.Root != "" && !filepath.IsAbs(lib.Root):
		return liberrors.New(liberrors.ErrCodeParse,
			fmt.Sprintf("entry %q: root %q is not absolute", key, lib.Root))
	}
	for field, sub := range map[string]string{
		"symbols_path":    lib.SymbolsPath,
		"footprints_path": lib.FootprintsPath,
	} {
		if sub != "" && !filepath.IsLocal(filepath.FromSlash(sub)) {
			return liberrors.New(liberrors.ErrCodeParse,
				fmt.Sprintf("entry %q: %s %q escapes the repository", key, field, sub))
		}
	}
	return nil
}

// Persist serializes the whole record and replaces the file at path. It
// writes a temp file in the same directory and renames it over path, so a
// crash leaves either the old or the new content.
func Persist(record Registry, path string) error {
	doc := document{Version: FormatVersion, Libraries: map[string]Library(record)}
	if doc.Libraries == nil {
		doc.Libraries = map[string]Library{}
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return liberrors.Wrap(liberrors.ErrCodeIO, "encoding installed record", err)
	}

	if err := writeFileAtomic(path, data, 0644); err != nil {
		return liberrors.WrapWithContext(liberrors.ErrCodeIO, "writing installed record", err,
			map[string]any{"path": path})
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
