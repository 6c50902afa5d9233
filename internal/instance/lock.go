// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const (
	lockFileName = "logictree.lock"
	portFileName = "logictree.port"
)

// ErrAlreadyRunning is returned by Lock when another server owns dataDir.
var ErrAlreadyRunning = errors.New("another logictree instance is already running")

// Lock creates dataDir if needed and takes the single-instance lock in it.
// The caller must release it with Cleanup.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	return fl, nil
}

// WritePort records the server's listen address. The file is replaced
// atomically so Discover never reads a partial address.
func WritePort(dataDir, addr string) error {
	tmp, err := os.CreateTemp(dataDir, portFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to create port file: %w", err)
	}
	if _, err := tmp.WriteString(addr); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write port file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write port file: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(dataDir, portFileName))
}

// Cleanup removes the port file and releases the lock.
func Cleanup(dataDir string, fl *flock.Flock) {
	_ = os.Remove(filepath.Join(dataDir, portFileName))
	if fl != nil {
		_ = fl.Unlock()
	}
}
