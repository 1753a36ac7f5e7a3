package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with edugen styling. A locked input
// ignores keystrokes but keeps its value on screen.
type TextInput struct {
	Model  textinput.Model
	locked bool
}

// NewTextInput creates a focused text input. limit 0 means unlimited.
func NewTextInput(placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return TextInput{Model: ti}
}

// NewPasswordInput creates an input that masks what is typed.
func NewPasswordInput(placeholder string) TextInput {
	t := NewTextInput(placeholder, 128)
	t.Model.EchoMode = textinput.EchoPassword
	t.Model.EchoCharacter = '•'
	return t
}

// Init returns the cursor blink command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards msg to the underlying model unless locked.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.locked {
		if _, ok := msg.(tea.KeyPressMsg); ok {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the input at width columns.
func (t TextInput) View(width int) string {
	if width > 8 {
		t.Model.SetWidth(width - 4)
	}
	view := t.Model.View()
	if t.locked {
		view = lipgloss.NewStyle().Foreground(theme.TextDim).Render(view)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// Blank reports whether the value is empty after trimming.
func (t TextInput) Blank() bool {
	return strings.TrimSpace(t.Model.Value()) == ""
}

// Reset clears the value and unlocks the input.
func (t *TextInput) Reset() tea.Cmd {
	t.Model.Reset()
	t.locked = false
	return t.Model.Focus()
}

// Lock freezes the input.
func (t *TextInput) Lock() {
	t.locked = true
	t.Model.Blur()
}

// Unlock re-enables typing.
func (t *TextInput) Unlock() tea.Cmd {
	t.locked = false
	return t.Model.Focus()
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Locked reports whether the input is frozen.
func (t TextInput) Locked() bool {
	return t.locked
}
