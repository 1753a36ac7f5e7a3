package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

type pressedMsg string

func TestMenu_SkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "a", Disabled: true},
		{Label: "b"},
		{Label: "c", Disabled: true},
		{Label: "d"},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Selected)

	m, _ = m.Update(key("down"))
	assert.Equal(t, 3, m.Selected, "stays on last enabled item")

	m, _ = m.Update(key("up"))
	assert.Equal(t, 1, m.Selected)
}

func TestMenu_EnterRunsAction(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "go", Action: func() tea.Cmd {
			return func() tea.Msg { return pressedMsg("go") }
		}},
	})
	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, pressedMsg("go"), cmd())
}

func TestMenu_WindowFollowsSelection(t *testing.T) {
	items := make([]MenuItem, 10)
	for i := range items {
		items[i] = MenuItem{Label: string(rune('a' + i))}
	}
	m := NewMenu(items)
	for i := 0; i < 7; i++ {
		m, _ = m.Update(key("down"))
	}
	view := m.ViewWindow(40, 3)
	assert.Contains(t, view, "h")
	assert.NotContains(t, view, "  a")
	assert.Equal(t, 3, strings.Count(view, "\n"))
}

func TestButtonRow_Navigation(t *testing.T) {
	var pressed string
	row := NewButtonRow(
		NewButton("Review", func() tea.Cmd { pressed = "review"; return nil }),
		NewButton("Back", func() tea.Cmd { pressed = "back"; return nil }),
	)
	row, _ = row.Update(key("right"))
	row, _ = row.Update(key("right"))
	assert.Equal(t, 1, row.Focused)
	row, _ = row.Update(key("enter"))
	assert.Equal(t, "back", pressed)

	row, _ = row.Update(key("left"))
	_, _ = row.Update(key("enter"))
	assert.Equal(t, "review", pressed)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		score float64
		stars int
	}{
		{100, 5},
		{99.9, 4},
		{80, 4},
		{79.9, 3},
		{60, 3},
		{59, 2},
		{40, 2},
		{20, 1},
		{19.9, 0},
		{0, 0},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.stars, BandFor(tt.score).Stars, "score %v", tt.score)
	}
}

func TestStars_AlwaysFive(t *testing.T) {
	for _, score := range []float64{0, 45, 100} {
		s := Stars(score)
		assert.Equal(t, MaxStars, strings.Count(s, "★")+strings.Count(s, "☆"))
	}
}

func TestPlainStars(t *testing.T) {
	assert.Equal(t, "★★★★☆", PlainStars(85))
	assert.Equal(t, "☆☆☆☆☆", PlainStars(10))
}

func TestQuestionProgress(t *testing.T) {
	p := QuestionProgress(1, 4, 60)
	assert.Equal(t, "Question 2 of 4", p.Label)
	assert.InDelta(t, 0.5, p.Percent, 1e-9)
	assert.Contains(t, p.View(), "50%")
}

func TestTextInput_Lock(t *testing.T) {
	ti := NewTextInput("answer", 0)
	ti, _ = ti.Update(key("a"))
	assert.Equal(t, "a", ti.Value())

	ti.Lock()
	ti, _ = ti.Update(key("b"))
	assert.Equal(t, "a", ti.Value(), "locked input keeps its value")
	assert.True(t, ti.Locked())

	ti.Unlock()
	ti, _ = ti.Update(key("b"))
	assert.Equal(t, "ab", ti.Value())

	ti.Reset()
	assert.True(t, ti.Blank())
}
