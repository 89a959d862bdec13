// Package branding provides compile-time identity values for the CLI.
//
// The values live in branding.yaml next to this file and are baked into the
// binary with //go:embed, so a fork only has to edit that file to rename the
// tool, its dot-directory, and its environment prefix.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	ConfigDir   string `yaml:"config_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:     "kibrarian",
			DisplayName: "Kibrarian",
			Description: "A library manager for KiCad",
			HomeDir:     ".kibrarian",
			ConfigDir:   "kibrarian",
			EnvPrefix:   "KIBRARIAN",
			GoModule:    "github.com/kibrarian-labs/kibrarian",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "kibrarian").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "Kibrarian").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".kibrarian").
func HomeDir() string { load(); return defaults.HomeDir }

// ConfigDir returns the directory name under the user config dir
// (e.g., "kibrarian" for ~/.config/kibrarian).
func ConfigDir() string { load(); return defaults.ConfigDir }

// EnvPrefix returns the environment variable prefix (e.g., "KIBRARIAN").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path, used as the logger module attribute.
func GoModule() string { load(); return defaults.GoModule }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("config") → "KIBRARIAN_CONFIG".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
