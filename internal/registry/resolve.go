package registry

import "log/slog"

// Resolve looks query up as an exact, case-sensitive registry key.
func Resolve(reg Registry, query string) (Library, bool) {
	lib, ok := reg.Get(query)
	if !ok {
		slog.Debug("no registry match", "query", query)
	}
	return lib, ok
}
