package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockName = ".quizreel.lock"

// RunLock guards an output directory against a second concurrent run.
type RunLock struct {
	fl *flock.Flock
}

// AcquireRunLock takes an exclusive, non-blocking lock on dir. It fails
// immediately when another process already holds it.
func AcquireRunLock(dir string) (*RunLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	fl := flock.New(filepath.Join(dir, lockName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("output dir %s is used by another quizreel run", dir)
	}
	return &RunLock{fl: fl}, nil
}

func (l *RunLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// LockName is the file the run lock lives in, so discovery can ignore it.
func LockName() string { return lockName }
