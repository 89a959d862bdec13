// Package libtable edits KiCad library tables (sym-lib-table and
// fp-lib-table) so installed libraries show up in the editor.
//
// KiCad writes one (lib ...) form per line. Lines that are not lib entries,
// such as (version 7), are preserved verbatim.
package libtable

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies the table flavor by its root form name.
type Kind string

const (
	Symbol    Kind = "sym_lib_table"
	Footprint Kind = "fp_lib_table"
)

// Entry is one (lib ...) row.
type Entry struct {
	Name    string
	Type    string
	URI     string
	Options string
	Descr   string
}

// Table is a parsed library table.
type Table struct {
	Kind    Kind
	Header  []string // non-entry lines inside the root form, kept as-is
	Entries []Entry
}

var fieldRe = regexp.MustCompile(`\((name|type|uri|options|descr)\s+("(?:[^"\\]|\\.)*"|[^()\s]*)\)`)

// Load reads the table at path. A missing file yields an empty table.
func Load(path string, kind Kind) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{Kind: kind}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := Parse(data, kind)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes table content.
func Parse(data []byte, kind Kind) (*Table, error) {
	t := &Table{Kind: kind}
	opened := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case !opened:
			if line != "("+string(kind) && !strings.HasPrefix(line, "("+string(kind)+" ") {
				return nil, fmt.Errorf("expected (%s, got %q", kind, line)
			}
			opened = true
		case line == ")":
			return t, nil
		case strings.HasPrefix(line, "(lib "):
			e, err := parseEntry(line)
			if err != nil {
				return nil, err
			}
			t.Entries = append(t.Entries, e)
		default:
			t.Header = append(t.Header, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !opened {
		return t, nil
	}
	return nil, fmt.Errorf("unterminated (%s form", kind)
}

func parseEntry(line string) (Entry, error) {
	var e Entry
	for _, m := range fieldRe.FindAllStringSubmatch(line, -1) {
		value := m[2]
		if strings.HasPrefix(value, `"`) {
			unq, err := strconv.Unquote(value)
			if err != nil {
				return Entry{}, fmt.Errorf("bad string %s in %q", value, line)
			}
			value = unq
		}
		switch m[1] {
		case "name":
			e.Name = value
		case "type":
			e.Type = value
		case "uri":
			e.URI = value
		case "options":
			e.Options = value
		case "descr":
			e.Descr = value
		}
	}
	if e.Name == "" {
		return Entry{}, fmt.Errorf("lib entry without name: %q", line)
	}
	return e, nil
}

// Add inserts e, replacing an entry with the same name.
func (t *Table) Add(e Entry) {
	for i := range t.Entries {
		if t.Entries[i].Name == e.Name {
			t.Entries[i] = e
			return
		}
	}
	t.Entries = append(t.Entries, e)
}

// RemoveUnder drops every entry whose URI lies inside dir and returns how
// many were removed.
func (t *Table) RemoveUnder(dir string) int {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	kept := t.Entries[:0]
	removed := 0
	for _, e := range t.Entries {
		if strings.HasPrefix(filepath.Clean(e.URI)+string(filepath.Separator), prefix) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	t.Entries = kept
	return removed
}

// Find returns the entry named name.
func (t *Table) Find(name string) (Entry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Bytes encodes the table in KiCad's layout.
func (t *Table) Bytes() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "(%s\n", t.Kind)
	for _, h := range t.Header {
		fmt.Fprintf(&b, "  %s\n", h)
	}
	for _, e := range t.Entries {
		fmt.Fprintf(&b, "  (lib (name %s)(type %s)(uri %s)(options %s)(descr %s))\n",
			strconv.Quote(e.Name), strconv.Quote(e.Type), strconv.Quote(e.URI),
			strconv.Quote(e.Options), strconv.Quote(e.Descr))
	}
	b.WriteString(")\n")
	return b.Bytes()
}

// Save writes the table to path via a temp file and rename.
func (t *Table) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(t.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Update loads the table at path, applies fn, and saves it back.
func Update(path string, kind Kind, fn func(*Table)) error {
	t, err := Load(path, kind)
	if err != nil {
		return err
	}
	fn(t)
	return t.Save(path)
}
