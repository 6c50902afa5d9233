// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"logictree/internal/instance"
)

const defaultClientTimeout = 10 * time.Second

// Delegate coordinates discovering a running logictree server and
// delegating a CLI command to it via HTTP. It classifies errors (no
// server vs everything else) and picks the exit code.
type Delegate struct {
	// ConfigDir is the config directory for lock/port file discovery.
	ConfigDir string

	// ExitFunc is called to exit the process. Defaults to os.Exit.
	ExitFunc func(int)

	// Stderr is where error messages are written. Defaults to os.Stderr.
	Stderr io.Writer

	// ClientTimeout is the HTTP client timeout. Defaults to 10 seconds.
	ClientTimeout time.Duration
}

// discover fills defaults, finds the running server and returns a client
// for it. On failure it reports the error, calls ExitFunc and returns nil.
func (d *Delegate) discover() *instance.Client {
	if d.ExitFunc == nil {
		d.ExitFunc = os.Exit
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.ClientTimeout == 0 {
		d.ClientTimeout = defaultClientTimeout
	}

	baseURL, err := instance.Discover(ResolveDataDir(d.ConfigDir))
	if err != nil {
		fmt.Fprintf(d.Stderr, "error: %v\n", err)
		if errors.Is(err, instance.ErrNoInstance) {
			d.ExitFunc(2)
		} else {
			d.ExitFunc(1)
		}
		return nil
	}

	return instance.NewClientWithTimeout(baseURL, d.ClientTimeout)
}

// Run executes a delegated command by discovering the running server and
// invoking fn with a client targeting it.
//
// Exit codes:
// - 2: no running logictree instance found
// - 1: any other error (connection, rejected edit, etc.)
// - 0: success (fn returned nil)
func (d *Delegate) Run(fn func(*instance.Client) error) {
	client := d.discover()
	if client == nil {
		return
	}

	if err := fn(client); err != nil {
		var statusErr *instance.StatusError
		if errors.As(err, &statusErr) {
			fmt.Fprintf(d.Stderr, "error: %s\n", statusErr.Message)
		} else {
			fmt.Fprintf(d.Stderr, "error: %s\n", err)
		}
		d.ExitFunc(1)
	}
}

// Client discovers the running server and returns a client for it, or nil
// after ExitFunc has been called.
func (d *Delegate) Client() *instance.Client {
	return d.discover()
}

// PrintJSON writes JSON data to w, indented when w is a terminal.
func PrintJSON(w io.Writer, data []byte) error {
	if !isTerminal(w) {
		_, err := w.Write(data)
		return err
	}

	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		_, err := w.Write(data)
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(obj)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
