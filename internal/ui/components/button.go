package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// Button is a labelled action.
type Button struct {
	Label   string
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{Label: label, OnPress: onPress}
}

// ButtonRow is a horizontal group of buttons; left/right (or tab) move the
// focus and enter presses the focused one.
type ButtonRow struct {
	Buttons []Button
	Focused int
}

// NewButtonRow creates a row focused on the first button.
func NewButtonRow(buttons ...Button) ButtonRow {
	return ButtonRow{Buttons: buttons}
}

// Update handles key events.
func (r ButtonRow) Update(msg tea.Msg) (ButtonRow, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(r.Buttons) == 0 {
		return r, nil
	}

	switch kmsg.String() {
	case "left", "h", "shift+tab":
		if r.Focused > 0 {
			r.Focused--
		}
	case "right", "l", "tab":
		if r.Focused < len(r.Buttons)-1 {
			r.Focused++
		}
	case "enter":
		if b := r.Buttons[r.Focused]; b.OnPress != nil {
			return r, b.OnPress()
		}
	}
	return r, nil
}

// View renders the row.
func (r ButtonRow) View() string {
	parts := make([]string, 0, len(r.Buttons))
	for i, b := range r.Buttons {
		if i == r.Focused {
			parts = append(parts, theme.ButtonActive.Render("▸ "+b.Label))
		} else {
			parts = append(parts, theme.ButtonInactive.Render("  "+b.Label))
		}
	}
	return strings.Join(parts, "  ")
}
