package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/moose/Algorithm-C3/pkg/c3"
	apperrors "github.com/moose/Algorithm-C3/pkg/errors"
	"github.com/moose/Algorithm-C3/pkg/hierarchy"
)

// errNoTerminal is returned by explore when stdout is not a terminal.
var errNoTerminal = errors.New("explore needs an interactive terminal; use linearize or check instead")

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <file>",
		Short: "Browse a hierarchy and its linearizations interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return errNoTerminal
			}
			h, err := loadHierarchy(args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(newExploreModel(h), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// =============================================================================
// exploreModel - Interactive hierarchy browser
// =============================================================================

// exploreResult is a memoized linearization outcome.
type exploreResult struct {
	order []string
	err   error
}

// exploreModel is the bubbletea model for browsing a hierarchy. Each node's
// linearization is computed when it first becomes visible; all computations
// share one parent memo.
type exploreModel struct {
	h       *hierarchy.Hierarchy
	ids     []string
	src     *c3.SharedSource[string]
	results map[string]exploreResult
	cursor  int
	offset  int
	height  int
}

func newExploreModel(h *hierarchy.Hierarchy) exploreModel {
	m := exploreModel{
		h:       h,
		ids:     h.IDs(),
		src:     c3.NewSharedSource[string](h),
		results: make(map[string]exploreResult),
		height:  15,
	}
	m.computeVisible()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.height)
		case "pgdown":
			m.move(m.height)
		case "home", "g":
			m.move(-len(m.ids))
		case "end", "G":
			m.move(len(m.ids))
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 12
		if m.height < 5 {
			m.height = 5
		}
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta, clamped, and scrolls to keep it visible.
func (m *exploreModel) move(delta int) {
	if len(m.ids) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.ids)-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	m.computeVisible()
}

func (m *exploreModel) computeVisible() {
	end := min(m.offset+m.height, len(m.ids))
	for _, id := range m.ids[m.offset:end] {
		if _, ok := m.results[id]; !ok {
			order, err := c3.Merge[string](id, m.src)
			m.results[id] = exploreResult{order: order, err: err}
		}
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("C3 Linearizations"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  q quit"))
	b.WriteString("\n\n")

	if len(m.ids) == 0 {
		b.WriteString(listDimStyle.Render("  (empty hierarchy)"))
		return b.String()
	}

	end := min(m.offset+m.height, len(m.ids))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		id := m.ids[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		status := iconSuccess
		if m.results[id].err != nil {
			status = iconError
		}
		rows = append(rows, []string{cursor, id, fmt.Sprint(len(m.h.Parents(id))), status})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Parents", "MRO").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.ids) {
				return lipgloss.NewStyle()
			}
			failed := m.results[m.ids[idx]].err != nil
			switch {
			case idx == m.cursor && failed:
				return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
			case idx == m.cursor:
				return listSelectedStyle
			case failed:
				return lipgloss.NewStyle().Foreground(colorRed)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(m.detail(m.ids[m.cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.ids))))

	return b.String()
}

// detail renders the selected node's parents, children and linearization.
func (m exploreModel) detail(id string) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(label) + " " + StyleValue.Render(value) + "\n")
	}

	line("Parents", joinOrDash(m.h.Parents(id), ", "))
	line("Children", joinOrDash(m.h.Children(id), ", "))

	r := m.results[id]
	if r.err != nil {
		line("Error", apperrors.UserMessage(apperrors.Classify(r.err)))
		b.WriteString(listDimStyle.Render("  "+r.err.Error()) + "\n")
		return b.String()
	}
	line("MRO", joinOrDash(r.order, " "+iconArrow+" "))
	return b.String()
}

func joinOrDash(items []string, sep string) string {
	if len(items) == 0 {
		return "—"
	}
	return strings.Join(items, sep)
}
