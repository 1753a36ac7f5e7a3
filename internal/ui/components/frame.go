package components

import (
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// ContentWidth returns the column width screens lay their cards out in.
func ContentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 20 {
		w = 20
	}
	return w
}

// Card wraps content in a rounded border at content width cw.
func Card(content string, cw int) string {
	return theme.Card.Width(cw).Render(content)
}

// Center places content in the middle of a width x height area.
func Center(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// Loading renders a dimmed status line centred in the area.
func Loading(msg string, width, height int) string {
	return Center(lipgloss.NewStyle().Foreground(theme.TextDim).Render(msg), width, height)
}

// ErrorPage renders a full-page failure with a single action hint.
func ErrorPage(title, detail, action string, width, height int) string {
	cw := ContentWidth(width)
	body := theme.Incorrect.Render(title)
	if detail != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Width(cw-6).Render(detail)
	}
	if action != "" {
		body += "\n\n" + theme.ButtonActive.Render("▸ "+action)
	}
	return Center(theme.Card.BorderForeground(theme.Error).Width(cw).Render(body), width, height)
}

// ErrorBanner renders an inline error; empty msg renders nothing.
func ErrorBanner(msg string, cw int) string {
	if msg == "" {
		return ""
	}
	return theme.Banner.Width(cw).Render(msg)
}
