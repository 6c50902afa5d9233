// pattern: Imperative Shell
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"logictree/internal/config"
	"logictree/internal/instance"
	"logictree/internal/web"
)

const defaultMaxContent = 60

// treeOutput carries the shared output settings of the tree commands.
type treeOutput struct {
	w          io.Writer
	styles     *Styles
	maxContent int
	json       bool
}

// print writes a tree response as JSON or as an outline with a version line.
func (o treeOutput) print(data []byte) error {
	if o.json {
		return PrintJSON(o.w, data)
	}
	var resp web.TreeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	fmt.Fprint(o.w, RenderOutline(resp.Root, o.styles, o.maxContent))
	fmt.Fprintln(o.w, o.styles.placeholder(fmt.Sprintf("version %d", resp.Version)))
	return nil
}

// newTreeFlags returns a flag set with the options every tree command
// accepts. base is nil for commands that do not edit.
func newTreeFlags(name string, withBase bool) (*flag.FlagSet, *uint64, *bool, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var base *uint64
	if withBase {
		base = fs.Uint64("base", 0, "reject the edit unless the tree is at this version")
	}
	asJSON := fs.Bool("json", false, "print the raw JSON response")
	noColor := fs.Bool("no-color", false, "disable colored output")
	return fs, base, asJSON, noColor
}

// cliTheme reads the theme from the config file, falling back to the default.
func cliTheme(configDir string) string {
	cfg, err := config.LoadFrom(config.Path(configDir))
	if err != nil {
		return config.DefaultConfig().Theme
	}
	return cfg.Theme
}

func (o *treeOutput) configure(configDir string, asJSON, noColor bool) {
	o.json = asJSON
	if noColor || !isTerminal(o.w) {
		o.styles = PlainStyles()
	} else {
		o.styles = NewStyles(cliTheme(configDir))
	}
}

// RegisterTreeCommands registers the tree command group. Every command
// delegates to the running server found through configDir.
func RegisterTreeCommands(group *Group, configDir string) {
	run := func(fn func(*instance.Client) error) {
		delegate := Delegate{ConfigDir: configDir}
		delegate.Run(fn)
	}

	group.AddCommand(&Command{
		Name:             "start",
		Summary:          "Start a new tree whose root holds the question",
		Usage:            "Usage: logictree tree start <content...> [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, _, asJSON, noColor := newTreeFlags("tree start", false)
			if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
				return fmt.Errorf("usage: logictree tree start <content...> [--json]")
			}
			out := treeOutput{w: os.Stdout, maxContent: defaultMaxContent}
			out.configure(configDir, *asJSON, *noColor)
			run(func(client *instance.Client) error {
				return runStart(client, strings.Join(fs.Args(), " "), out)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "add",
		Summary:          "Append a blank child and print its id",
		Usage:            "Usage: logictree tree add <parent-id> [--base N] [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, base, asJSON, _ := newTreeFlags("tree add", true)
			if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
				return fmt.Errorf("usage: logictree tree add <parent-id> [--base N] [--json]")
			}
			run(func(client *instance.Client) error {
				return runAdd(client, fs.Arg(0), *base, *asJSON, os.Stdout)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "set",
		Summary:          "Replace the content of a node",
		Usage:            "Usage: logictree tree set <id> <content...> [--base N] [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, base, asJSON, noColor := newTreeFlags("tree set", true)
			if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
				return fmt.Errorf("usage: logictree tree set <id> <content...> [--base N] [--json]")
			}
			out := treeOutput{w: os.Stdout, maxContent: defaultMaxContent}
			out.configure(configDir, *asJSON, *noColor)
			content := strings.Join(fs.Args()[1:], " ")
			run(func(client *instance.Client) error {
				data, err := client.UpdateContent(fs.Arg(0), content, *base)
				if err != nil {
					return err
				}
				return out.print(data)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "delete",
		Summary:          "Remove a child and its whole subtree",
		Usage:            "Usage: logictree tree delete <parent-id> <id> [--base N] [--json]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, base, asJSON, noColor := newTreeFlags("tree delete", true)
			if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
				return fmt.Errorf("usage: logictree tree delete <parent-id> <id> [--base N] [--json]")
			}
			out := treeOutput{w: os.Stdout, maxContent: defaultMaxContent}
			out.configure(configDir, *asJSON, *noColor)
			run(func(client *instance.Client) error {
				data, err := client.DeleteChild(fs.Arg(0), fs.Arg(1), *base)
				if err != nil {
					return err
				}
				return out.print(data)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "show",
		Summary:          "Print the current tree as an outline",
		Usage:            "Usage: logictree tree show [--json] [--no-color] [--width N]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, _, asJSON, noColor := newTreeFlags("tree show", false)
			width := fs.Int("width", defaultMaxContent, "cut content to this many cells (0 disables)")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *width < 0 {
				return fmt.Errorf("usage: logictree tree show [--json] [--no-color] [--width N]")
			}
			out := treeOutput{w: os.Stdout, maxContent: *width}
			out.configure(configDir, *asJSON, *noColor)
			run(func(client *instance.Client) error {
				data, err := client.Tree()
				if err != nil {
					return err
				}
				return out.print(data)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "layout",
		Summary:          "Print the computed layout of every node",
		Usage:            "Usage: logictree tree layout [--json] [--no-color]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, _, asJSON, noColor := newTreeFlags("tree layout", false)
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
				return fmt.Errorf("usage: logictree tree layout [--json] [--no-color]")
			}
			out := treeOutput{w: os.Stdout}
			out.configure(configDir, *asJSON, *noColor)
			run(func(client *instance.Client) error {
				return runLayout(client, out)
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "reset",
		Summary:          "Discard the tree and return to the not-started state",
		Usage:            "Usage: logictree tree reset",
		RequiresInstance: true,
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: logictree tree reset")
			}
			run(func(client *instance.Client) error {
				if _, err := client.Reset(); err != nil {
					return err
				}
				fmt.Println("Tree reset.")
				return nil
			})
			return nil
		},
	})

	group.AddCommand(&Command{
		Name:             "watch",
		Summary:          "Print the tree again after every change",
		Usage:            "Usage: logictree tree watch [--no-color] [--width N]",
		RequiresInstance: true,
		Run: func(args []string) error {
			fs, _, _, noColor := newTreeFlags("tree watch", false)
			width := fs.Int("width", defaultMaxContent, "cut content to this many cells (0 disables)")
			if err := fs.Parse(args); err != nil || fs.NArg() != 0 || *width < 0 {
				return fmt.Errorf("usage: logictree tree watch [--no-color] [--width N]")
			}

			delegate := Delegate{ConfigDir: configDir}
			client := delegate.Client()
			if client == nil {
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := treeOutput{w: os.Stdout, maxContent: *width}
			out.configure(configDir, false, *noColor)
			if err := WatchTree(ctx, WatchConfig{
				BaseURL:    client.BaseURL(),
				Styles:     out.styles,
				MaxContent: out.maxContent,
				Writer:     os.Stdout,
				ErrWriter:  os.Stderr,
			}); err != nil {
				return fmt.Errorf("watch failed: %v", err)
			}
			return nil
		},
	})
}

// runStart starts a session and prints its tree.
func runStart(client *instance.Client, content string, out treeOutput) error {
	data, err := client.Start(content)
	if err != nil {
		return err
	}
	return out.print(data)
}

// runAdd appends a child under parentID and prints the new id, or a note
// when the server ignored the edit because the parent is unknown.
func runAdd(client *instance.Client, parentID string, base uint64, asJSON bool, w io.Writer) error {
	data, err := client.AddChild(parentID, base)
	if err != nil {
		return err
	}
	if asJSON {
		return PrintJSON(w, data)
	}

	var resp web.AddChildResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.ID == "" {
		return fmt.Errorf("parent %q not found, nothing added", parentID)
	}
	fmt.Fprintln(w, resp.ID)
	return nil
}

// runLayout fetches the layout and prints it as a table or raw JSON.
func runLayout(client *instance.Client, out treeOutput) error {
	data, err := client.Layout()
	if err != nil {
		return err
	}
	if out.json {
		return PrintJSON(out.w, data)
	}

	var resp web.LayoutResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	fmt.Fprint(out.w, RenderLayout(resp.Layout, out.styles))
	return nil
}
