package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/config"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
	"github.com/kibrarian-labs/kibrarian/internal/fetch"
	"github.com/kibrarian-labs/kibrarian/internal/logging"
	"github.com/kibrarian-labs/kibrarian/internal/registry"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	configPath  string
	logLevel    string
	debug       bool
	projectDir  string
	lockTimeout time.Duration
)

// newFetcher builds the version-control collaborator. Tests swap it out.
var newFetcher = func() fetch.Fetcher { return fetch.NewGitFetcher() }

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` installs KiCad symbol and footprint libraries listed in a registry file.

Libraries are cloned into a local source directory, their .lib/.dcm symbol files
and .pretty footprint directories are copied into a managed library directory
(project-local by default, or global with -g), and KiCad's library tables are
updated to point at them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logLevel
		if debug {
			level = "debug"
		}
		logging.SetDefaultStructuredLoggerWithLevel(branding.GoModule(), buildVersion, level)

		config.SetFile(configPath)
		return config.Load()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Config file (default ~/.config/"+branding.ConfigDir()+"/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging with source locations")
	pf.StringVar(&projectDir, "project", "", "Project directory for local installs (default: current directory)")
	pf.DurationVar(&lockTimeout, "lock-timeout", registry.DefaultLockTimeout, "How long to wait for another running command")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.Execute()
	var quiet *reportedError
	if err != nil && !errors.As(err, &quiet) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "%s %v\n", failMark(), err)
	}
	if errors.Is(err, liberrors.ErrNotFound) && !config.Exists() {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "No config file found. Run '%s setup' if you are a first time user.\n", branding.CLIName())
	}
	return err
}

// reportedError marks an error whose message the command already printed.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// resolvePaths reads the loaded config into concrete paths, anchoring
// project-local installs at --project or the working directory.
func resolvePaths() (config.Paths, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Paths{}, fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}
	return config.Resolve(dir)
}

// newManager wires a registry manager for the current invocation.
func newManager() (*registry.Manager, error) {
	paths, err := resolvePaths()
	if err != nil {
		return nil, err
	}
	m := registry.NewManager(paths, newFetcher())
	m.LockTimeout = lockTimeout
	return m, nil
}
