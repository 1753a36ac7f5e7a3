package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/edugen/edugen/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Unmounter is implemented by screens that hold resources (timers,
// in-flight work) which must be released when they leave the stack.
type Unmounter interface {
	Unmount()
}

// Resumer is implemented by screens that refresh when they become active
// again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// InputCapturer is implemented by screens with a focused text input, so
// global single-letter shortcuts are not stolen from typing.
type InputCapturer interface {
	CapturingInput() bool
}
