// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// PrintAgentHelp prints a guide for driving a logic tree from scripts or
// agents. Static prose is followed by a reference built from the
// registered commands.
func (a *App) PrintAgentHelp(w io.Writer) {
	fmt.Fprintln(w, "LOGIC TREE SCRIPTING GUIDE")
	fmt.Fprintln(w, "==========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "OVERVIEW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "Logictree holds one logic tree: a question at the root broken down into")
	fmt.Fprintln(w, "sub-points. Running 'logictree' with no arguments starts the server; one")
	fmt.Fprintln(w, "server runs per config directory (enforced by file lock).")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every tree command talks to that server over HTTP. Each edit replaces the")
	fmt.Fprintln(w, "whole tree and bumps its version; edits that change nothing keep the version.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "WORKFLOW")
	fmt.Fprintln(w, "--------")
	fmt.Fprintln(w, "  1. Start a tree with the question at its root:")
	fmt.Fprintln(w, "     logictree tree start \"Why are sales down?\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  2. Add a blank child; the new node id is printed:")
	fmt.Fprintln(w, "     ID=$(logictree tree add root)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  3. Give it content:")
	fmt.Fprintln(w, "     logictree tree set \"$ID\" \"Too few leads\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  4. Inspect the result:")
	fmt.Fprintln(w, "     logictree tree show")
	fmt.Fprintln(w, "     logictree tree layout --json")
	fmt.Fprintln(w)

	a.printCommandReference(w)

	fmt.Fprintln(w, "CONCURRENT EDITING")
	fmt.Fprintln(w, "------------------")
	fmt.Fprintln(w, "Pass --base N to add, set or delete to apply the edit only if the tree is")
	fmt.Fprintln(w, "still at version N. A stale edit fails with exit code 1 and changes nothing.")
	fmt.Fprintln(w, "Read the current version from 'tree show --json'.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Unknown ids are ignored by default. Set 'id_policy: strict' in config.yaml")
	fmt.Fprintln(w, "to have them rejected instead.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EXIT CODES")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  0  Success")
	fmt.Fprintln(w, "  1  Error (invalid arguments, rejected edit, etc.)")
	fmt.Fprintln(w, "  2  No running logictree instance found")
}

// printCommandReference prints the command reference from the registered
// commands and groups.
func (a *App) printCommandReference(w io.Writer) {
	fmt.Fprintln(w, "COMMAND REFERENCE")
	fmt.Fprintln(w, "-----------------")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Top-level commands:")
	for _, name := range topLevelOrder {
		if cmd, ok := a.commands[name]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", cmd.Name, cmd.Summary)
			fmt.Fprintf(w, "               %s\n", cmd.Usage)
		}
	}
	fmt.Fprintln(w)

	for _, groupName := range groupOrder {
		group, ok := a.groups[groupName]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s commands (%s):\n", group.Name, group.Summary)
		for _, name := range slices.Sorted(maps.Keys(group.Commands)) {
			cmd := group.Commands[name]
			fmt.Fprintf(w, "  %-12s %s\n", groupName+" "+cmd.Name, cmd.Summary)
			fmt.Fprintf(w, "               %s\n", cmd.Usage)
		}
		fmt.Fprintln(w)
	}
}
