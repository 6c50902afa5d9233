// pattern: Imperative Shell
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"logictree/internal/config"
	"logictree/internal/instance"
	"logictree/internal/logging"
)

// ResolveDataDir returns the directory holding the lock, port and log
// files. It is the config directory.
func ResolveDataDir(configDir string) string {
	return config.Dir(configDir)
}

// BuildApp creates and configures the CLI application with all commands and groups.
func BuildApp(version string, configDir string) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:             "logs",
		Summary:          "Print recent server log entries",
		Usage:            "Usage: logictree logs [--scope PREFIX] [--limit N] [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs := flag.NewFlagSet("logs", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			scope := fs.String("scope", "", "only entries whose scope starts with PREFIX")
			limit := fs.Int("limit", 50, "maximum number of entries")
			asJSON := fs.Bool("json", false, "print the raw JSON response")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *limit < 1 {
				return fmt.Errorf("usage: logictree logs [--scope PREFIX] [--limit N] [--json]")
			}

			delegate := Delegate{ConfigDir: configDir}
			delegate.Run(func(client *instance.Client) error {
				return runLogs(client, *scope, *limit, *asJSON, os.Stdout)
			})
			return nil
		},
	})

	app.AddCommand(&Command{
		Name:    "cleanup",
		Summary: "Remove stale lock/port files from a crashed instance",
		Usage:   "Usage: logictree cleanup",
		Run: func(args []string) error {
			return runCleanupCommand(configDir, os.Stdout)
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: logictree version",
		Run: func(args []string) error {
			fmt.Println(version)
			return nil
		},
	})

	treeGroup := app.AddGroup("tree", "Build and inspect the logic tree")
	RegisterTreeCommands(treeGroup, configDir)

	return app
}

// runLogs prints recent log entries, oldest first.
func runLogs(client *instance.Client, scope string, limit int, asJSON bool, w io.Writer) error {
	data, err := client.Logs(scope, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return PrintJSON(w, data)
	}

	var entries []logging.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	for _, e := range entries {
		fmt.Fprintln(w, e.String())
	}
	return nil
}

// runCleanupCommand removes the port file left by a crashed server.
func runCleanupCommand(configDir string, w io.Writer) error {
	removed, err := instance.RemoveStale(ResolveDataDir(configDir))
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(w, "Cleaned up stale port file.")
	} else {
		fmt.Fprintln(w, "Nothing to clean up.")
	}
	return nil
}
