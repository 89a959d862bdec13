// Package config is the Config Surface: it loads user settings from
// ~/.config/kibrarian/config.yaml (overridable with KIBRARIAN_CONFIG or
// --config), layers KIBRARIAN_* environment variables on top, runs the
// first-time setup wizard, and resolves everything into an immutable Paths
// value that the registry package receives as an argument.
package config
