package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"github.com/hpungsan/hl/internal/errors"
)

// EditLock serializes editing of one entry across processes. The flock is
// the actual guarantee and is released by the kernel if the holder dies;
// the pid written into the file is only a label for the message shown to
// the losing process.
type EditLock struct {
	fl *flock.Flock
}

// AcquireEditLock takes the per-entry lock without blocking. A held lock
// yields a LOCKED error naming the holder's pid.
func AcquireEditLock(stateDir string, id int64) (*EditLock, error) {
	dir := filepath.Join(stateDir, "locks")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("create lock directory: %w", err))
	}
	path := filepath.Join(dir, fmt.Sprintf("entry-%d.lock", id))

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("acquire edit lock: %w", err))
	}
	if !locked {
		return nil, errors.NewLocked(id, readLockPID(path))
	}

	// Best effort; the lock does not depend on the label.
	_ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0600)

	return &EditLock{fl: fl}, nil
}

// Release drops the lock. The file stays behind: an unlocked lock file
// blocks nothing, and removing it would race a concurrent acquirer that
// already opened it.
func (l *EditLock) Release() {
	_ = l.fl.Unlock()
}

// readLockPID reads the holder's recorded pid, 0 when unknown.
func readLockPID(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}
