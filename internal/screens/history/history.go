package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

// recentLimit caps how many attempts are listed.
const recentLimit = 50

type historyLoadedMsg struct {
	owner    int64
	attempts []store.AttemptEvent
	err      error
}

// HistoryScreen lists attempts finished on this machine.
type HistoryScreen struct {
	owner     int64
	eventRepo store.EventRepo
	attempts  []store.AttemptEvent
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.Resumer = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		owner:     nav.NextOwner(),
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo, owner := s.eventRepo, s.owner
	return func() tea.Msg {
		attempts, err := repo.RecentAttempts(context.Background(), store.QueryOpts{Limit: recentLimit})
		return historyLoadedMsg{owner: owner, attempts: attempts, err: err}
	}
}

// Resume reloads the list after a review or retake.
func (s *HistoryScreen) Resume() tea.Cmd {
	return s.Init()
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "R", Description: "Review"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			s.errMsg = "Failed to load history"
			return s, nil
		}
		s.errMsg = ""
		s.attempts = msg.attempts
		if s.selected >= len(s.attempts) {
			s.selected = 0
		}
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			if s.errMsg != "" {
				return s, router.Pop
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
		case "r":
			if s.selected < len(s.attempts) {
				a := s.attempts[s.selected]
				return s, nav.Go(nav.OpenReviewMsg{AssessmentID: a.AssessmentID, TopicID: a.TopicID, TopicName: a.TopicName})
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return components.Loading("Loading history...", width, height)
	}
	if s.errMsg != "" {
		return components.ErrorPage(s.errMsg, "", "Back", width, height)
	}
	if len(s.attempts) == 0 {
		return components.Center(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("No assessments yet. Pick a topic to get started!"), width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString("\n")
	for i, a := range s.attempts {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == s.selected {
			prefix = "> "
			style = style.Foreground(theme.Primary).Bold(true)
		}
		line := fmt.Sprintf("%s%s  %-24s %s %s",
			prefix, a.Timestamp.Local().Format("Jan 02, 2006"), truncate(topicLabel(a), 24),
			components.Stars(a.Score), components.ScoreStyle(a.Score).Render(fmt.Sprintf("%.1f%%", a.Score)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, details(a, cw)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func details(a store.AttemptEvent, cw int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := []string{
		fmt.Sprintf("Answered %d of %d questions, %d correct", a.Answered, a.Questions, a.Correct),
		fmt.Sprintf("Time taken %d:%02d", a.DurationSecs/60, a.DurationSecs%60),
		fmt.Sprintf("%s · press R to review", components.BandFor(a.Score).Label),
	}
	return dim.Width(cw).Render("    " + strings.Join(lines, "\n    "))
}

func topicLabel(a store.AttemptEvent) string {
	if a.TopicName != "" {
		return a.TopicName
	}
	return fmt.Sprintf("Topic %d", a.TopicID)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
