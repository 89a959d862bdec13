package registry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	liberrors "github.com/kibrarian-labs/kibrarian/internal/errors"
)

// DefaultLockTimeout bounds how long a command waits for another process
// holding the installed-state lock.
const DefaultLockTimeout = 30 * time.Second

const lockRetryDelay = 100 * time.Millisecond

// acquireLock takes an exclusive lock on path, waiting up to timeout (zero
// means wait until ctx is done). The returned func releases it.
func acquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, liberrors.Wrap(liberrors.ErrCodeIO, "creating lock directory", err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, liberrors.WrapWithContext(liberrors.ErrCodeIO, "acquiring installed-state lock", err,
			map[string]any{"path": path})
	}
	if !locked {
		return nil, liberrors.NewWithContext(liberrors.ErrCodeIO, "installed-state lock is held by another process",
			map[string]any{"path": path})
	}

	return func() { _ = fl.Unlock() }, nil
}
