// Package fetch is the version-control collaborator. It materializes a
// library's upstream repository at a local path and refreshes it later.
//
// GitFetcher shells out to the git binary. Clones are atomic from the
// caller's point of view: git writes into <dest>.tmp and the directory is
// renamed into place only once the clone succeeded.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// tmpSuffix is appended to the destination during an atomic clone.
const tmpSuffix = ".tmp"

// Fetcher materializes and refreshes remote repositories.
type Fetcher interface {
	// Clone creates dest and populates it with the repository at url.
	// Existing content at dest is replaced.
	Clone(ctx context.Context, url, dest string) error
	// Pull fast-forwards an existing clone at dir.
	Pull(ctx context.Context, dir string) error
}

// GitFetcher implements Fetcher with the git CLI.
type GitFetcher struct {
	// Depth limits clone history; zero means a full clone.
	Depth int
}

// NewGitFetcher returns a fetcher performing shallow clones.
func NewGitFetcher() *GitFetcher {
	return &GitFetcher{Depth: 1}
}

// Clone clones url into dest via a temporary sibling directory.
func (g *GitFetcher) Clone(ctx context.Context, url, dest string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	tmpDir := dest + tmpSuffix

	// Clean up any leftover tmp dir from a previous failed attempt.
	_ = os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Dir(tmpDir), 0755); err != nil {
		return liberrors.Wrap(liberrors.ErrCodeIO, "creating parent directory", err)
	}

	args := []string{"clone"}
	if g.Depth > 0 {
		args = append(args, fmt.Sprintf("--depth=%d", g.Depth))
	}
	args = append(args, "--", url, tmpDir)

	slog.Debug("cloning repository", "url", url, "dest", dest)
	if err := runGit(ctx, "", args...); err != nil {
		_ = os.RemoveAll(tmpDir)
		return liberrors.WrapWithContext(liberrors.ErrCodeFetch, "cloning repository", err,
			map[string]any{"url": url})
	}

	if err := os.RemoveAll(dest); err != nil {
		_ = os.RemoveAll(tmpDir)
		return liberrors.Wrap(liberrors.ErrCodeIO, "removing existing checkout", err)
	}
	if err := os.Rename(tmpDir, dest); err != nil {
		_ = os.RemoveAll(tmpDir)
		return liberrors.Wrap(liberrors.ErrCodeIO, "finalizing clone", err)
	}

	WriteFreshnessMarker(dest)
	return nil
}

// Pull runs git pull --rebase in dir.
func (g *GitFetcher) Pull(ctx context.Context, dir string) error {
	if err := ensureGit(); err != nil {
		return err
	}

	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return liberrors.WrapWithContext(liberrors.ErrCodeNotFound, "not a git checkout", err,
			map[string]any{"dir": dir})
	}

	args := []string{"pull", "--rebase"}
	if g.Depth > 0 {
		args = append(args, fmt.Sprintf("--depth=%d", g.Depth))
	}

	slog.Debug("pulling repository", "dir", dir)
	if err := runGit(ctx, dir, args...); err != nil {
		return liberrors.WrapWithContext(liberrors.ErrCodeFetch, "pulling updates", err,
			map[string]any{"dir": dir})
	}

	WriteFreshnessMarker(dir)
	return nil
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	// Never block on a credential prompt.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ensureGit checks that git is available on PATH.
func ensureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return liberrors.New(liberrors.ErrCodeFetch, "git is required but not found in PATH")
	}
	return nil
}
