package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Config keys.
const (
	KeyLibraries         = "libraries"
	KeyInstalled         = "installed"
	KeyFPLibTable        = "fp_lib_table"
	KeySymLibTable       = "sym_lib_table"
	KeyExtraDir          = "extra_dir"
	KeyLibraryDir        = "library_dir"
	KeyProjectLibraryDir = "project_library_dir"
)

// Keys lists every recognized config key in display order.
var Keys = []string{
	KeyLibraries,
	KeyInstalled,
	KeyFPLibTable,
	KeySymLibTable,
	KeyExtraDir,
	KeyLibraryDir,
	KeyProjectLibraryDir,
}

var configFile string

// Dir returns the path to the config directory (~/.config/kibrarian/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", branding.ConfigDir())
	}
	return filepath.Join(home, ".config", branding.ConfigDir())
}

// SetFile overrides the config file location for this process.
func SetFile(path string) {
	configFile = path
}

// FilePath returns the full path to the config file. An explicit SetFile
// wins, then KIBRARIAN_CONFIG, then ~/.config/kibrarian/config.yaml.
func FilePath() string {
	if configFile != "" {
		return configFile
	}
	if v := os.Getenv(branding.EnvVar("CONFIG")); v != "" {
		return v
	}
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// Exists reports whether the config file is present.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}

// Defaults returns the default value of every key for the given home
// directory. The lib-table defaults point at KiCad's per-user tables.
func Defaults(home string) map[string]string {
	cfgDir := filepath.Join(home, ".config", branding.ConfigDir())
	kicadDir := filepath.Join(home, ".config", "kicad")
	base := filepath.Join(home, branding.HomeDir())
	return map[string]string{
		KeyLibraries:         filepath.Join(cfgDir, "libraries.yaml"),
		KeyInstalled:         filepath.Join(cfgDir, "installed.yaml"),
		KeyFPLibTable:        filepath.Join(kicadDir, "fp-lib-table"),
		KeySymLibTable:       filepath.Join(kicadDir, "sym-lib-table"),
		KeyExtraDir:          filepath.Join(base, "extra"),
		KeyLibraryDir:        filepath.Join(base, "libraries"),
		KeyProjectLibraryDir: "libraries",
	}
}

// EnsureDir creates the directory holding the config file.
func EnsureDir() error {
	dir := filepath.Dir(FilePath())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// A missing config file is not an error; a present but unreadable or
// malformed one is.
func Load() error {
	viper.Reset()

	home, _ := os.UserHomeDir()
	for key, value := range Defaults(home) {
		viper.SetDefault(key, value)
	}

	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	if !Exists() {
		return nil
	}
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", FilePath(), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	return SetAll(map[string]string{key: value})
}

// SetAll writes several key-value pairs and saves the config file once.
func SetAll(values map[string]string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	for key, value := range values {
		viper.Set(key, value)
	}

	path := FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", path, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// IsKnownKey reports whether key is a recognized config key.
func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
