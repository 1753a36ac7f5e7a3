package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar. percent is in [0,1].
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// QuestionProgress is the bar shown above a question: "Question i of n",
// filled to the position of the current question.
func QuestionProgress(index, count, width int) ProgressBar {
	if count <= 0 {
		return NewProgressBar("", 0, false, width)
	}
	label := fmt.Sprintf("Question %d of %d", index+1, count)
	return NewProgressBar(label, float64(index+1)/float64(count), true, width)
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // "  100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	pct := p.Percent
	switch {
	case pct < 0:
		pct = 0
	case pct > 1:
		pct = 1
	}
	filled := int(float64(barWidth) * pct)
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled))
	result += theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(pct*100)))
	}

	return result
}
