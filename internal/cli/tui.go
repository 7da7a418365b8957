package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackcanvas/pkg/pagination"
	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// BrowseModel - container members, one page at a time
// =============================================================================

// BrowseModel is the bubbletea model for paging through container members.
// Pages follow the container's own height, so what you see matches the canvas.
type BrowseModel struct {
	Containers []stack.Container
	Cursor     int
}

// NewBrowseModel creates a browser over the containers of s.
func NewBrowseModel(s stack.State) BrowseModel {
	containers := make([]stack.Container, len(s.Containers))
	for i, c := range s.Containers {
		containers[i] = c.Clone()
	}
	return BrowseModel{Containers: containers}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "right", "l", "tab":
		if m.Cursor < len(m.Containers)-1 {
			m.Cursor++
		}
	case "down", "j", "n", "pgdown":
		m.turn(1)
	case "up", "k", "p", "pgup":
		m.turn(-1)
	case "home", "g":
		m.turn(-len(m.current().Members))
	}
	return m, nil
}

// turn moves the current container by delta pages, clamped. The slice is
// copied so earlier model values keep their pages.
func (m *BrowseModel) turn(delta int) {
	if len(m.Containers) == 0 {
		return
	}
	c := m.Containers[m.Cursor]
	m.Containers = slices.Clone(m.Containers)
	m.Containers[m.Cursor] = stack.SetPage(c, c.CurrentPage+delta)
}

func (m BrowseModel) current() stack.Container {
	if len(m.Containers) == 0 {
		return stack.Container{}
	}
	return m.Containers[m.Cursor]
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Containers"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ container  ↑/↓ page  q quit"))
	b.WriteString("\n\n")

	if len(m.Containers) == 0 {
		b.WriteString(listDimStyle.Render("  no containers"))
		b.WriteString("\n")
		return b.String()
	}

	tabs := make([]string, len(m.Containers))
	for i, c := range m.Containers {
		if i == m.Cursor {
			tabs[i] = listSelectedStyle.Render("[" + c.Name + "]")
		} else {
			tabs[i] = listNormalStyle.Render(" " + c.Name + " ")
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	c := m.current()
	b.WriteString(fmt.Sprintf("  %s  %s\n", kindBadge(c.Kind), listDimStyle.Render(formatProfile(stack.DisplayProfile(c)))))
	if len(c.Ports) > 0 {
		b.WriteString(listDimStyle.Render("  ports " + strings.Join(c.Ports, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	page := stack.Pagination(c)
	start, end := pagination.Window(page.Page, page.Total, page.PerPage)
	if start == end {
		b.WriteString(listDimStyle.Render("  drop components here"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		member := c.Members[i]
		line := fmt.Sprintf("  %2d. %-24s %s", i+1, member.Name, listDimStyle.Render(string(member.Category)))
		b.WriteString(listNormalStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  page %d/%d · %d members · %d per page",
		page.Page+1, page.Pages, page.Total, page.PerPage)))
	for _, msg := range stack.Violations(c).Messages {
		b.WriteString("\n  ")
		b.WriteString(StyleWarning.Render(msg))
	}
	b.WriteString("\n")
	return b.String()
}

// browseCommand opens the interactive member browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [file|id]",
		Short: "Page through container members interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(NewBrowseModel(doc.State), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}
