package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// MaxStars is the length of a star rating.
const MaxStars = 5

// Band is a labelled score range. Bands are checked in order and the
// first whose Min is at or below the score wins.
type Band struct {
	Min   float64
	Stars int
	Label string
}

// Bands is the single score-to-rating table used by every screen. A star
// is earned per full 20 points.
var Bands = []Band{
	{Min: 100, Stars: 5, Label: "Perfect"},
	{Min: 80, Stars: 4, Label: "Excellent"},
	{Min: 60, Stars: 3, Label: "Good"},
	{Min: 40, Stars: 2, Label: "Fair"},
	{Min: 20, Stars: 1, Label: "Needs practice"},
	{Min: 0, Stars: 0, Label: "Keep going"},
}

// BandFor returns the band for a 0..100 score.
func BandFor(score float64) Band {
	for _, b := range Bands {
		if score >= b.Min {
			return b
		}
	}
	return Bands[len(Bands)-1]
}

// Stars renders the star rating for score.
func Stars(score float64) string {
	n := BandFor(score).Stars
	on := lipgloss.NewStyle().Foreground(theme.Accent).Render(strings.Repeat("★", n))
	off := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("☆", MaxStars-n))
	return on + off
}

// ScoreStyle colours a score by band: green from Good up, amber for
// Fair, red below.
func ScoreStyle(score float64) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch n := BandFor(score).Stars; {
	case n >= 3:
		return s.Foreground(theme.Success)
	case n == 2:
		return s.Foreground(theme.Warning)
	default:
		return s.Foreground(theme.Error)
	}
}

// PlainStars is Stars without colour, for non-terminal output.
func PlainStars(score float64) string {
	n := BandFor(score).Stars
	return strings.Repeat("★", n) + strings.Repeat("☆", MaxStars-n)
}
