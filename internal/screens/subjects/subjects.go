package subjects

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/tutor"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

// Lister lists the subject catalogue.
type Lister interface {
	Subjects(ctx context.Context) ([]tutor.Subject, error)
}

type subjectsLoadedMsg struct {
	owner    int64
	subjects []tutor.Subject
	err      error
}

// SubjectsScreen is the assessment entry point: pick a subject, then a
// topic.
type SubjectsScreen struct {
	owner  int64
	lister Lister

	subjects []tutor.Subject
	menu     components.Menu
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*SubjectsScreen)(nil)
var _ screen.KeyHintProvider = (*SubjectsScreen)(nil)

// New creates a SubjectsScreen.
func New(lister Lister) *SubjectsScreen {
	return &SubjectsScreen{owner: nav.NextOwner(), lister: lister}
}

func (s *SubjectsScreen) Init() tea.Cmd {
	lister, owner := s.lister, s.owner
	return func() tea.Msg {
		subjects, err := lister.Subjects(context.Background())
		return subjectsLoadedMsg{owner: owner, subjects: subjects, err: err}
	}
}

func (s *SubjectsScreen) Title() string {
	return "Assessments"
}

func (s *SubjectsScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SubjectsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			s.errMsg = "Failed to fetch subjects"
			return s, nil
		}
		s.errMsg = ""
		s.subjects = msg.subjects
		s.menu = components.NewMenu(s.menuItems())
		return s, nil

	case tea.KeyPressMsg:
		if s.errMsg != "" {
			switch msg.String() {
			case "r":
				s.loaded, s.errMsg = false, ""
				return s, s.Init()
			case "enter":
				return s, router.Pop
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SubjectsScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.subjects))
	for _, sub := range s.subjects {
		detail := ""
		if sub.TopicCount > 0 {
			detail = fmt.Sprintf("%d topic%s", sub.TopicCount, plural(sub.TopicCount))
		}
		items = append(items, components.MenuItem{
			Label:  sub.Name,
			Detail: detail,
			Note:   sub.Description,
			Action: func() tea.Cmd {
				return nav.Go(nav.OpenTopicsMsg{SubjectID: sub.ID, SubjectName: sub.Name})
			},
		})
	}
	return items
}

func (s *SubjectsScreen) View(width, height int) string {
	if !s.loaded {
		return components.Loading("Loading subjects...", width, height)
	}
	if s.errMsg != "" {
		return components.ErrorPage(s.errMsg, "Press R to try again.", "Back", width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder
	b.WriteString(theme.Label.Render("Choose a subject"))
	b.WriteString("\n\n")
	if len(s.subjects) == 0 {
		b.WriteString(theme.Hint.Render("No subjects available yet."))
	} else {
		b.WriteString(s.menu.ViewWindow(cw, (height-4)/2))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
