// Package layout draws the chrome around the active screen: a title bar,
// a key-hint bar and the notice shown when the terminal is too small.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// Smallest terminal the assessment screens render legibly in.
const (
	MinWidth  = 80
	MinHeight = 24
)

const (
	brand     = "edugen"
	hintGap   = "   "
	ellipsis  = "…"
	signedOut = "○ signed out"
)

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
		" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

// Frame is everything the chrome needs for one render.
type Frame struct {
	Width  int
	Height int
	Title  string
	// User is the signed-in learner's display name, empty when signed out.
	User  string
	Hints []KeyHint
}

// Fits reports whether the terminal meets MinWidth x MinHeight.
func (f Frame) Fits() bool {
	return f.Width >= MinWidth && f.Height >= MinHeight
}

// ContentHeight is the number of rows left for the screen body.
func (f Frame) ContentHeight() int {
	h := f.Height - lipgloss.Height(f.header()) - lipgloss.Height(f.footer())
	return max(h, 0)
}

// Render draws the chrome around body, which is asked to fill exactly
// the rows between header and footer. A terminal below the minimum size
// gets the resize notice instead.
func (f Frame) Render(body func(width, height int) string) string {
	if !f.Fits() {
		return f.tooSmall()
	}
	h := f.ContentHeight()
	content := lipgloss.NewStyle().
		Width(f.Width).
		Height(h).
		MaxHeight(h).
		Render(body(f.Width, h))
	return lipgloss.JoinVertical(lipgloss.Left, f.header(), content, f.footer())
}

func (f Frame) header() string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(brand)

	right := lipgloss.NewStyle().Foreground(theme.TextDim).Render(signedOut)
	if f.User != "" {
		right = lipgloss.NewStyle().Foreground(theme.Accent).Render("● " + f.User)
	}

	inner := max(f.Width-4, 0)
	room := inner - lipgloss.Width(left) - lipgloss.Width(right) - 2
	title := lipgloss.NewStyle().Foreground(theme.Text).Render(truncate(f.Title, room))

	// Centre the title on the bar, not on the gap between brand and badge.
	leftGap := max((inner-lipgloss.Width(title))/2-lipgloss.Width(left), 1)
	rightGap := max(inner-lipgloss.Width(left)-leftGap-lipgloss.Width(title)-lipgloss.Width(right), 1)

	return bar(left+strings.Repeat(" ", leftGap)+title+strings.Repeat(" ", rightGap)+right, f.Width)
}

func (f Frame) footer() string {
	return bar(strings.Join(FitHints(f.Hints, max(f.Width-4, 0)), hintGap), f.Width)
}

func bar(content string, width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(content)
}

// FitHints renders as many hints as fit in width, in order. The last hint
// (usually quit or back) always survives by displacing earlier ones.
func FitHints(hints []KeyHint, width int) []string {
	if len(hints) == 0 {
		return nil
	}
	rendered := make([]string, len(hints))
	for i, h := range hints {
		rendered[i] = h.render()
	}
	last := rendered[len(rendered)-1]
	used := lipgloss.Width(last)

	var out []string
	for _, r := range rendered[:len(rendered)-1] {
		w := lipgloss.Width(r) + len(hintGap)
		if used+w > width {
			break
		}
		out = append(out, r)
		used += w
	}
	return append(out, last)
}

func (f Frame) tooSmall() string {
	var need []string
	if f.Width < MinWidth {
		need = append(need, fmt.Sprintf("wider (%d/%d columns)", f.Width, MinWidth))
	}
	if f.Height < MinHeight {
		need = append(need, fmt.Sprintf("taller (%d/%d rows)", f.Height, MinHeight))
	}
	msg := lipgloss.NewStyle().Foreground(theme.Warning).Bold(true).Render("Terminal too small") +
		"\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Render("Make the window "+strings.Join(need, " and "))
	return lipgloss.Place(max(f.Width, 1), max(f.Height, 1), lipgloss.Center, lipgloss.Center, msg)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + ellipsis
}
