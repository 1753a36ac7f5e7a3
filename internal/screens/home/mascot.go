package home

import (
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default indigo
	MascotCelebrating                      // Amber, star eyes: last score was excellent
	MascotSleepy                           // Dim, closed eyes: signed out
)

const mascotIdle = `  ,___,
  (o,o)
  /)_)
 ══"═"══`

const mascotCelebrating = `  ,___,
  (★,★)
 \/)_)/
 ══"═"══`

const mascotSleepy = `  ,___,
  (-,-) z
  /)_)
 ══"═"══`

// mascotFor picks the owl for the learner's state.
func mascotFor(signedIn bool, lastScore float64, attempts int) MascotVariant {
	switch {
	case !signedIn:
		return MascotSleepy
	case attempts > 0 && lastScore >= 80:
		return MascotCelebrating
	default:
		return MascotIdle
	}
}

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(v MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	switch v {
	case MascotCelebrating:
		art, fg = mascotCelebrating, theme.Accent
	case MascotSleepy:
		art, fg = mascotSleepy, theme.TextDim
	}
	return lipgloss.NewStyle().Foreground(fg).Render(art)
}
