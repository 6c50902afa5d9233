// pattern: Imperative Shell
package instance

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const healthTimeout = 2 * time.Second

// ErrNoInstance is returned by Discover when no server holds the lock.
var ErrNoInstance = errors.New("no running logictree instance found")

// Discover checks whether a running logictree server exists and returns
// its base URL (e.g. "http://127.0.0.1:8420"). It fails when no server
// holds the lock, the port file is missing, or the health check fails.
func Discover(dataDir string) (string, error) {
	// Acquiring the lock means nobody else holds it.
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return "", fmt.Errorf("failed to check lock: %w", err)
	}
	if locked {
		_ = fl.Unlock()
		return "", fmt.Errorf("%w (start logictree first)", ErrNoInstance)
	}

	data, err := os.ReadFile(filepath.Join(dataDir, portFileName))
	if err != nil {
		return "", fmt.Errorf("logictree instance detected but port file missing (try 'logictree cleanup'): %w", err)
	}

	addr := strings.TrimSpace(string(data))
	if addr == "" {
		return "", fmt.Errorf("logictree port file is empty (try 'logictree cleanup')")
	}

	baseURL := "http://" + addr

	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return "", fmt.Errorf("logictree instance not responding (try 'logictree cleanup'): %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logictree health check failed (status %d)", resp.StatusCode)
	}

	return baseURL, nil
}

// RemoveStale deletes a leftover port file when no server holds the lock.
// It reports whether a file was removed.
func RemoveStale(dataDir string) (bool, error) {
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to check lock: %w", err)
	}
	if !locked {
		return false, fmt.Errorf("a logictree instance is running; stop it before cleanup")
	}
	defer func() { _ = fl.Unlock() }()

	err = os.Remove(filepath.Join(dataDir, portFileName))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove port file: %w", err)
	}
	return true, nil
}
