// pattern: Functional Core
package cli

import (
	"fmt"
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"logictree/internal/layout"
	"logictree/internal/tree"
)

const emptyContent = "(empty)"

// Styles colors CLI output from a catppuccin flavor.
type Styles struct {
	flavor catppuccin.Flavor
	plain  bool
}

// NewStyles returns styles for the named theme. Unknown names fall back
// to mocha.
func NewStyles(themeName string) *Styles {
	return &Styles{flavor: flavorFromName(themeName)}
}

// PlainStyles returns styles that emit no escape sequences.
func PlainStyles() *Styles {
	return &Styles{flavor: catppuccin.Mocha, plain: true}
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

func (s *Styles) render(style lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return style.Render(text)
}

func (s *Styles) id(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(s.flavor.Overlay1().Hex)), text)
}

func (s *Styles) root(text string) string {
	return s.render(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(s.flavor.Mauve().Hex)), text)
}

func (s *Styles) content(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(s.flavor.Text().Hex)), text)
}

func (s *Styles) placeholder(text string) string {
	return s.render(lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(s.flavor.Overlay0().Hex)), text)
}

func (s *Styles) branch(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(s.flavor.Surface2().Hex)), text)
}

func (s *Styles) accent(text string) string {
	return s.render(lipgloss.NewStyle().Foreground(lipgloss.Color(s.flavor.Teal().Hex)), text)
}

// RenderOutline draws root as an indented outline, one node per line in
// pre-order: the node id, then its content cut to maxContent cells.
func RenderOutline(root *tree.Node, styles *Styles, maxContent int) string {
	if root == nil {
		return styles.placeholder("(not started)") + "\n"
	}

	var b strings.Builder
	b.WriteString(styles.root(string(root.ID())))
	b.WriteString("  ")
	b.WriteString(renderContent(root.Content(), styles, maxContent))
	b.WriteString("\n")
	writeChildren(&b, root, "", styles, maxContent)
	return b.String()
}

func writeChildren(b *strings.Builder, n *tree.Node, prefix string, styles *Styles, maxContent int) {
	count := n.ChildCount()
	for i := range count {
		child := n.Child(i)
		connector, indent := "├── ", "│   "
		if i == count-1 {
			connector, indent = "└── ", "    "
		}

		b.WriteString(styles.branch(prefix + connector))
		b.WriteString(styles.id(string(child.ID())))
		b.WriteString("  ")
		b.WriteString(renderContent(child.Content(), styles, maxContent))
		b.WriteString("\n")
		writeChildren(b, child, prefix+indent, styles, maxContent)
	}
}

func renderContent(content string, styles *Styles, maxContent int) string {
	if content == "" {
		return styles.placeholder(emptyContent)
	}
	// Outline rows are single-line.
	content = strings.Join(strings.Fields(content), " ")
	return styles.content(truncate(content, maxContent))
}

// RenderLayout prints one row per node with the placement metrics in
// pre-order, indented by level.
func RenderLayout(res layout.Result, styles *Styles) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.accent(fmt.Sprintf("%-40s %5s %5s %7s %8s %4s %4s %7s %5s",
		"NODE", "LEVEL", "INDEX", "SHARE", "WIDTH", "ROW", "COL", "SUBTREE", "DEPTH")))

	for _, n := range res.Nodes {
		name := strings.Repeat("  ", n.Level) + string(n.ID)
		fmt.Fprintf(&b, "%-40s %5d %5d %6.1f%% %8.1f %4d %4d %7d %5d\n",
			truncate(name, 40), n.Level, n.Index, n.SharePercent, n.Width, n.Row, n.Column, n.SubtreeWidth, n.Depth)
	}

	fmt.Fprintf(&b, "%s\n", styles.placeholder(fmt.Sprintf("%d nodes, %d edges, width %d, depth %d",
		len(res.Nodes), len(res.Edges), res.Width, res.Depth)))
	return b.String()
}
