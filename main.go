package main

import (
	"os"

	"github.com/kibrarian-labs/kibrarian/internal/branding"
	"github.com/kibrarian-labs/kibrarian/internal/cli"
	"github.com/kibrarian-labs/kibrarian/internal/logging"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Replaced once flags are parsed; covers anything logged before that.
	logging.SetDefaultStructuredLogger(branding.GoModule(), version)

	if err := cli.Execute(version, commit, date); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
