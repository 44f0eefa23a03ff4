package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/portgraph/portgraph/pkg/depgraph"
	"github.com/portgraph/portgraph/pkg/graphio"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command for interactive graph exploration.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [graph.json]",
		Short: "Browse a dependency graph interactively",
		Long: `Browse a dependency graph interactively.

Navigate the node list with the arrow keys, press enter to drill into a
node's dependencies, 'r' for its reverse dependencies, and backspace to
go back up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graphio.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			model := newBrowseModel(g)
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// browseFrame is one level of the navigation stack.
type browseFrame struct {
	title  string
	nodes  []*depgraph.PackageNode
	cursor int
	offset int
}

// browseModel is the bubbletea model for graph exploration.
type browseModel struct {
	graph  *depgraph.DependencyGraph
	stack  []browseFrame
	height int
}

func newBrowseModel(g *depgraph.DependencyGraph) browseModel {
	return browseModel{
		graph:  g,
		stack:  []browseFrame{{title: "All Packages", nodes: g.AllNodes()}},
		height: 15,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) frame() *browseFrame {
	return &m.stack[len(m.stack)-1]
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.frame()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if f.cursor > 0 {
				f.cursor--
				if f.cursor < f.offset {
					f.offset = f.cursor
				}
			}
		case "down", "j":
			if f.cursor < len(f.nodes)-1 {
				f.cursor++
				if f.cursor >= f.offset+m.height {
					f.offset = f.cursor - m.height + 1
				}
			}
		case "enter":
			if len(f.nodes) == 0 {
				return m, nil
			}
			n := f.nodes[f.cursor]
			deps := n.Dependencies()
			if len(deps) > 0 {
				m.stack = append(m.stack, browseFrame{
					title: "Dependencies of " + n.String(),
					nodes: deps,
				})
			}
		case "r":
			if len(f.nodes) == 0 {
				return m, nil
			}
			n := f.nodes[f.cursor]
			rdeps := n.ReverseDependencies()
			if len(rdeps) > 0 {
				m.stack = append(m.stack, browseFrame{
					title: "Reverse dependencies of " + n.String(),
					nodes: rdeps,
				})
			}
		case "backspace", "esc":
			if len(m.stack) > 1 {
				m.stack = m.stack[:len(m.stack)-1]
			} else {
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m browseModel) View() string {
	f := m.frame()

	var b strings.Builder
	b.WriteString(StyleTitle.Render(f.title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ deps  r rdeps  ⌫ back  q quit"))
	b.WriteString("\n\n")

	end := f.offset + m.height
	if end > len(f.nodes) {
		end = len(f.nodes)
	}

	rows := [][]string{}
	for i := f.offset; i < end; i++ {
		n := f.nodes[i]

		cursor := "  "
		if i == f.cursor {
			cursor = "▸ "
		}

		root := "sysroot"
		if n.Root == depgraph.SDKRoot {
			root = "sdk"
		}

		sources := "—"
		if len(n.SourcePaths) > 0 {
			sources = strings.Join(n.SourcePaths, ", ")
		}

		rows = append(rows, []string{
			cursor,
			n.Info.CPVR(),
			root,
			fmt.Sprintf("%d", len(n.Dependencies())),
			fmt.Sprintf("%d", len(n.ReverseDependencies())),
			sources,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Package", "Root", "Deps", "RDeps", "Sources").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if f.offset+row == f.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", f.cursor+1, len(f.nodes))))

	return b.String()
}
