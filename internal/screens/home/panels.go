package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

const titleFull = ` ███████╗██████╗ ██╗   ██╗ ██████╗ ███████╗███╗   ██╗
 ██╔════╝██╔══██╗██║   ██║██╔════╝ ██╔════╝████╗  ██║
 █████╗  ██║  ██║██║   ██║██║  ███╗█████╗  ██╔██╗ ██║
 ██╔══╝  ██║  ██║██║   ██║██║   ██║██╔══╝  ██║╚██╗██║
 ███████╗██████╔╝╚██████╔╝╚██████╔╝███████╗██║ ╚████║
 ╚══════╝╚═════╝  ╚═════╝  ╚═════╝ ╚══════╝╚═╝  ╚═══╝`

const titleCompact = "E · D · U · G · E · N"

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 24

// Stats summarises the local attempt log for the dashboard.
type Stats struct {
	Attempts  int
	Average   float64
	LastScore float64
	LastTopic string
}

// panelWidth returns the shared inner width so every section lines up.
func panelWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(art))
}

// renderGreeting greets the learner or nudges them to sign in.
func renderGreeting(user string, cw int) string {
	text := "Sign in to start an assessment"
	style := lipgloss.NewStyle().Foreground(theme.Accent)
	if user != "" {
		text = fmt.Sprintf("Welcome back, %s!", user)
		style = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(text))
}

// renderStatsBar renders attempt statistics in a bordered box.
func renderStatsBar(st Stats, cw int, compact bool) string {
	count := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	avg := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	switch {
	case st.Attempts == 0:
		stats = dim.Render("No assessments taken yet")
	case compact:
		stats = fmt.Sprintf("%s %s",
			count.Render(fmt.Sprintf("✎%d", st.Attempts)),
			avg.Render(fmt.Sprintf("⌀%.0f%%", st.Average)))
	default:
		stats = fmt.Sprintf("%s  %s  %s",
			count.Render(fmt.Sprintf("✎ %d TAKEN", st.Attempts)),
			avg.Render(fmt.Sprintf("⌀ %.0f%% AVERAGE", st.Average)),
			dim.Render(fmt.Sprintf("LAST %.0f%%", st.LastScore)))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderButtons renders each menu item as a fixed-width button, or as
// plain lines when compact.
func renderButtons(labels []string, selected int, disabled map[int]bool, cw int, compact bool) string {
	base := lipgloss.NewStyle().Width(buttonWidth).Align(lipgloss.Center).Padding(0, 1)
	if !compact {
		base = base.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}
	selectedBtn := base.Bold(true).Foreground(theme.BgDark).Background(theme.Primary)
	if !compact {
		selectedBtn = selectedBtn.BorderForeground(theme.Primary)
	}

	buttons := make([]string, 0, len(labels))
	for i, label := range labels {
		switch {
		case disabled[i]:
			buttons = append(buttons, base.Foreground(theme.TextDim).Render(label))
		case i == selected:
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		default:
			buttons = append(buttons, base.Foreground(theme.Text).Render(label))
		}
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

func renderMascotBox(v MascotVariant, cw int) string {
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(RenderMascot(v))
}

// renderCabinet wraps content in a double-border frame centred in the
// given area.
func renderCabinet(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
