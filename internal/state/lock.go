package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/drft-io/drft/internal/errs"
)

const (
	lockRetries  = 10
	lockInterval = 100 * time.Millisecond
)

// acquireLock creates path+".lock" as an advisory marker containing the
// current pid and an ISO-8601 timestamp. If the lock file already
// exists it retries lockRetries times at lockInterval before giving up.
// The lock is not crash-safe; a process that dies while holding it
// leaves the file behind for a human to remove.
func acquireLock(ctx context.Context, path string) error {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return errs.State("lock", fmt.Errorf("create lock directory: %w", err))
	}

	content := []byte(fmt.Sprintf("pid: %d\ntimestamp: %s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339)))

	var lastErr error
	for attempt := 0; attempt <= lockRetries; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := f.Write(content)
			cerr := f.Close()
			if werr != nil {
				return errs.State("lock", fmt.Errorf("write lock file: %w", werr))
			}
			if cerr != nil {
				return errs.State("lock", fmt.Errorf("close lock file: %w", cerr))
			}
			return nil
		}
		if !os.IsExist(err) {
			return errs.State("lock", fmt.Errorf("create lock file: %w", err))
		}
		lastErr = err

		if attempt == lockRetries {
			break
		}
		select {
		case <-ctx.Done():
			return errs.State("lock", ctx.Err())
		case <-time.After(lockInterval):
		}
	}

	return errs.State("lock", fmt.Errorf("state is locked (lock file: %s), giving up after %d attempts: %w", lockPath, lockRetries+1, lastErr))
}

// releaseLock removes path+".lock", best-effort: a missing lock file is
// not an error.
func releaseLock(path string) error {
	if err := os.Remove(path + ".lock"); err != nil && !os.IsNotExist(err) {
		return errs.State("unlock", fmt.Errorf("remove lock file: %w", err))
	}
	return nil
}
