package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// MenuItem is one selectable row. Detail is rendered right-aligned and
// dimmed, Note on a second line beneath the label.
type MenuItem struct {
	Label    string
	Detail   string
	Note     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical selection list that scrolls when it has more rows
// than fit.
type Menu struct {
	Items    []MenuItem
	Selected int
	offset   int
}

// NewMenu creates a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Init returns nil.
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation. Enter runs the selected item's Action.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "home", "g":
		m.Selected = 0
		m.move(0)
	case "enter":
		if item, ok := m.Current(); ok && item.Action != nil && !item.Disabled {
			return m, item.Action()
		}
	}
	return m, nil
}

func (m *Menu) move(dir int) {
	if dir == 0 {
		if m.Selected < len(m.Items) && !m.Items[m.Selected].Disabled {
			return
		}
		dir = 1
	}
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

// Current returns the selected item.
func (m Menu) Current() (MenuItem, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[m.Selected], true
}

// View renders every item at width.
func (m Menu) View() string {
	return m.ViewWindow(0, 0)
}

// ViewWindow renders at most rows items around the selection. width 0
// leaves rows unpadded; rows 0 renders everything.
func (m *Menu) ViewWindow(width, rows int) string {
	start, end := 0, len(m.Items)
	if rows > 0 && rows < len(m.Items) {
		if m.Selected < m.offset {
			m.offset = m.Selected
		}
		if m.Selected >= m.offset+rows {
			m.offset = m.Selected - rows + 1
		}
		start, end = m.offset, m.offset+rows
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.renderItem(i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Menu) renderItem(i, width int) string {
	item := m.Items[i]

	prefix := "    "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case item.Disabled:
		style = style.Foreground(theme.TextDim)
	case i == m.Selected:
		prefix = "  ▸ "
		style = style.Foreground(theme.Primary).Bold(true)
	}

	line := style.Render(prefix + item.Label)
	if item.Detail != "" {
		detail := lipgloss.NewStyle().Foreground(theme.TextDim).Render(item.Detail)
		gap := width - lipgloss.Width(line) - lipgloss.Width(detail) - 2
		if gap < 2 {
			gap = 2
		}
		line += strings.Repeat(" ", gap) + detail
	}
	if item.Note != "" {
		line += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("      "+item.Note)
	}
	return line
}
