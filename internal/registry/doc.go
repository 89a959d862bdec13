// Package registry is the core of kibrarian: the library registry and the
// installed-state record, exact-name resolution, extension-based file
// classification, and the install, uninstall, and update workflows that move
// classified files between a fetched source tree and the managed library
// directories.
//
// Both workflows run Resolving → Verifying → Mutating → Persisting with no
// backward transitions. The Verify→Mutate→Persist span holds an exclusive
// lock on the installed-state file so concurrent invocations serialize.
package registry
