package registry

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/libtable"
)

const (
	symbolTableType    = "Legacy"
	footprintTableType = "KiCad"
)

// tableEntryName names a lib-table row after the library and the file or
// directory it points at, e.g. "acme-Connectors".
func tableEntryName(library, entry string) string {
	return library + "-" + strings.TrimSuffix(entry, filepath.Ext(entry))
}

// registerTables adds the placed symbol libraries and footprint directories
// to the configured KiCad tables. Failures are returned as warnings.
func (m *Manager) registerTables(lib Library, symDst, fpDst string, sel selection) []string {
	descr := "Installed by " + branding.CLIName() + " (" + lib.Name + ")"
	var warnings []string

	var symEntries []libtable.Entry
	for _, e := range sel.symbols {
		if e.Kind != SymbolLib {
			continue
		}
		symEntries = append(symEntries, libtable.Entry{
			Name:  tableEntryName(lib.Name, e.Name),
			Type:  symbolTableType,
			URI:   filepath.Join(symDst, e.Name),
			Descr: descr,
		})
	}
	if w := updateTable(m.Paths.SymLibTable, libtable.Symbol, func(t *libtable.Table) {
		for _, e := range symEntries {
			t.Add(e)
		}
	}, len(symEntries) > 0); w != "" {
		warnings = append(warnings, w)
	}

	var fpEntries []libtable.Entry
	for _, e := range sel.footprints {
		fpEntries = append(fpEntries, libtable.Entry{
			Name:  tableEntryName(lib.Name, e.Name),
			Type:  footprintTableType,
			URI:   filepath.Join(fpDst, e.Name),
			Descr: descr,
		})
	}
	if w := updateTable(m.Paths.FPLibTable, libtable.Footprint, func(t *libtable.Table) {
		for _, e := range fpEntries {
			t.Add(e)
		}
	}, len(fpEntries) > 0); w != "" {
		warnings = append(warnings, w)
	}

	return warnings
}

// unregisterTables drops every row pointing inside the library's placed
// directories. Tables that do not exist are left alone.
func (m *Manager) unregisterTables(symDst, fpDst string) []string {
	var warnings []string
	if w := updateTable(m.Paths.SymLibTable, libtable.Symbol, func(t *libtable.Table) {
		t.RemoveUnder(symDst)
	}, exists(m.Paths.SymLibTable)); w != "" {
		warnings = append(warnings, w)
	}
	if w := updateTable(m.Paths.FPLibTable, libtable.Footprint, func(t *libtable.Table) {
		t.RemoveUnder(fpDst)
	}, exists(m.Paths.FPLibTable)); w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}

// updateTable applies fn to the table at path and returns a warning on
// failure. An empty path or a false want skips the table.
func updateTable(path string, kind libtable.Kind, fn func(*libtable.Table), want bool) string {
	if path == "" || !want {
		return ""
	}
	if err := libtable.Update(path, kind, fn); err != nil {
		slog.Warn("updating library table failed", "table", path, "error", err)
		return "could not update " + string(kind) + " " + path + ": " + err.Error()
	}
	return ""
}
