package topics

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/tutor"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

// summaryConcurrency bounds parallel summary requests.
const summaryConcurrency = 4

// Source is what the screen reads from the backend.
type Source interface {
	asmt.Service
	Topics(ctx context.Context, subjectID int) (*tutor.TopicList, error)
}

type topicsLoadedMsg struct {
	owner     int64
	list      *tutor.TopicList
	summaries map[int]asmt.Summary
	err       error
}

// TopicsScreen lists the topics of a subject with the learner's best score
// on each, and confirms before an assessment starts.
type TopicsScreen struct {
	owner       int64
	src         Source
	log         *logger.Logger
	subjectID   int
	subjectName string
	timeLimit   time.Duration

	list      *tutor.TopicList
	summaries map[int]asmt.Summary
	menu      components.Menu
	loaded    bool
	errMsg    string
	confirm   *tutor.Topic
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)
var _ screen.Resumer = (*TopicsScreen)(nil)
var _ screen.InputCapturer = (*TopicsScreen)(nil)

// New creates a topics screen for subjectID.
func New(src Source, log *logger.Logger, subjectID int, subjectName string, timeLimit time.Duration) *TopicsScreen {
	if log == nil {
		log = logger.Nop()
	}
	if timeLimit <= 0 {
		timeLimit = asmt.DefaultDuration
	}
	return &TopicsScreen{
		owner:       nav.NextOwner(),
		src:         src,
		log:         log,
		subjectID:   subjectID,
		subjectName: subjectName,
		timeLimit:   timeLimit,
		summaries:   map[int]asmt.Summary{},
	}
}

func (s *TopicsScreen) Init() tea.Cmd {
	return s.fetch()
}

// Resume reloads summaries so a just-finished attempt shows up.
func (s *TopicsScreen) Resume() tea.Cmd {
	return s.fetch()
}

func (s *TopicsScreen) fetch() tea.Cmd {
	src, log, owner, subjectID := s.src, s.log, s.owner, s.subjectID
	return func() tea.Msg {
		ctx := context.Background()
		list, err := src.Topics(ctx, subjectID)
		if err != nil {
			return topicsLoadedMsg{owner: owner, err: err}
		}
		return topicsLoadedMsg{owner: owner, list: list, summaries: loadSummaries(ctx, src, log, list.Topics)}
	}
}

// loadSummaries fetches every topic's summary in parallel through a Store,
// which folds them into its TopicSummaries map. A failed or absent summary
// leaves the topic unattempted.
func loadSummaries(ctx context.Context, svc asmt.Service, log *logger.Logger, topics []tutor.Topic) map[int]asmt.Summary {
	store := asmt.NewStore(svc, log)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for _, t := range topics {
		g.Go(func() error {
			if _, err := store.FetchSummary(gctx, t.ID); err != nil {
				log.Debug("no topic summary", "topic_id", t.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return store.Snapshot().TopicSummaries
}

func (s *TopicsScreen) Title() string {
	if s.subjectName != "" {
		return s.subjectName
	}
	return "Topics"
}

func (s *TopicsScreen) CapturingInput() bool {
	return s.confirm != nil
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	if s.confirm != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start Assessment"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back to Subjects"},
	}
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			s.errMsg = "Failed to fetch topics"
			return s, nil
		}
		s.errMsg = ""
		s.list = msg.list
		if s.subjectName == "" {
			s.subjectName = msg.list.Subject.Name
		}
		if msg.summaries != nil {
			s.summaries = msg.summaries
		}
		selected := s.menu.Selected
		s.menu = components.NewMenu(s.menuItems())
		if selected < len(s.menu.Items) {
			s.menu.Selected = selected
		}
		return s, nil

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *TopicsScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if s.confirm != nil {
		switch msg.String() {
		case "enter", "y":
			t := *s.confirm
			s.confirm = nil
			return nav.Go(nav.OpenAssessmentMsg{TopicID: t.ID, TopicName: t.Name})
		case "esc", "n":
			s.confirm = nil
		}
		return nil
	}
	if s.errMsg != "" {
		switch msg.String() {
		case "r":
			s.loaded = false
			s.errMsg = ""
			return s.fetch()
		case "enter":
			return router.Pop
		}
		return nil
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return cmd
}

func (s *TopicsScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(s.list.Topics))
	for _, t := range s.list.Topics {
		item := components.MenuItem{
			Label:  t.Name,
			Detail: fmt.Sprintf("~%d mins", int(s.timeLimit.Minutes())),
			Note:   t.Description,
			Action: func() tea.Cmd {
				s.confirm = &t
				return nil
			},
		}
		if sum, ok := s.summaries[t.ID]; ok && sum.Attempted() {
			item.Detail = components.Stars(sum.BestScore) + fmt.Sprintf("  Best %.0f%%", sum.BestScore)
			item.Note = fmt.Sprintf("Completed %d attempt%s · Latest Score: %.0f%%",
				sum.TotalAttempts, plural(sum.TotalAttempts), sum.LastScore)
		}
		items = append(items, item)
	}
	return items
}

// Completed counts topics with at least one attempt.
func (s *TopicsScreen) Completed() int {
	n := 0
	if s.list == nil {
		return 0
	}
	for _, t := range s.list.Topics {
		if sum, ok := s.summaries[t.ID]; ok && sum.Attempted() {
			n++
		}
	}
	return n
}

func (s *TopicsScreen) View(width, height int) string {
	if !s.loaded {
		return components.Loading("Loading topics...", width, height)
	}
	if s.errMsg != "" {
		return components.ErrorPage(s.errMsg, "Press R to try again.", "Back to Subjects", width, height)
	}
	if s.confirm != nil {
		return s.renderConfirm(width, height)
	}

	cw := components.ContentWidth(width)
	var b strings.Builder

	progress := theme.Hint.Render(fmt.Sprintf("%d/%d Topics Completed", s.Completed(), len(s.list.Topics)))
	title := theme.Label.Render(s.Title())
	gap := cw - lipgloss.Width(title) - lipgloss.Width(progress)
	if gap < 2 {
		gap = 2
	}
	b.WriteString(title + strings.Repeat(" ", gap) + progress)
	b.WriteString("\n\n")

	if len(s.list.Topics) == 0 {
		b.WriteString(theme.Hint.Render("No topics in this subject yet."))
	} else {
		rows := (height - 4) / 2
		b.WriteString(s.menu.ViewWindow(cw, rows))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *TopicsScreen) renderConfirm(width, height int) string {
	mins := int(s.timeLimit.Minutes())
	bullets := []string{
		fmt.Sprintf("You have %d minutes to answer every question", mins),
		"Take your time - you can't pause once the assessment begins",
		"Find a quiet space where you can focus without interruptions",
		"Answer in your own words; each answer is graded as you go",
	}
	var b strings.Builder
	b.WriteString(theme.Title.Render("Ready to Begin?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(s.confirm.Name))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("Before you start:"))
	b.WriteString("\n")
	for _, line := range bullets {
		b.WriteString(theme.Body.Render("  • " + line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(theme.ButtonActive.Render("▸ Start Assessment") + "  " + theme.ButtonInactive.Render("Esc Cancel"))
	return components.Center(theme.Dialog.Render(b.String()), width, height)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
