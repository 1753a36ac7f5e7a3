package review

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

// ResultFetcher loads a finalized result set.
type ResultFetcher interface {
	GetAssessmentResults(ctx context.Context, assessmentID int) (*asmt.Result, error)
}

type resultLoadedMsg struct {
	owner  int64
	result *asmt.Result
	err    error
}

// ReviewScreen shows every graded answer of a completed assessment. All
// questions start expanded; Enter toggles the selected one.
type ReviewScreen struct {
	owner        int64
	fetcher      ResultFetcher
	assessmentID int
	topicID      int
	topicName    string

	ctx    context.Context
	cancel context.CancelFunc

	result   *asmt.Result
	loaded   bool
	failed   bool
	selected int
	expanded map[int]bool
	offset   int
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)
var _ screen.Unmounter = (*ReviewScreen)(nil)

// New creates a review screen for assessmentID. topicID and topicName are
// fallbacks used until the result names its topic.
func New(fetcher ResultFetcher, assessmentID, topicID int, topicName string) *ReviewScreen {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReviewScreen{
		owner:        nav.NextOwner(),
		fetcher:      fetcher,
		assessmentID: assessmentID,
		topicID:      topicID,
		topicName:    topicName,
		ctx:          ctx,
		cancel:       cancel,
		expanded:     make(map[int]bool),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	fetcher, ctx, owner, id := s.fetcher, s.ctx, s.owner, s.assessmentID
	return func() tea.Msg {
		r, err := fetcher.GetAssessmentResults(ctx, id)
		return resultLoadedMsg{owner: owner, result: r, err: err}
	}
}

func (s *ReviewScreen) Unmount() {
	s.cancel()
}

func (s *ReviewScreen) Title() string {
	if s.topicName != "" {
		return "Review: " + s.topicName
	}
	return "Assessment Review"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	if s.failed {
		return []layout.KeyHint{{Key: "Enter", Description: "Back to Assessments"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "Enter", Description: "Expand"},
		{Key: "S", Description: "Study with AI Tutor"},
		{Key: "R", Description: "Try Again"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resultLoadedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil || msg.result == nil || msg.result.Score == nil {
			s.failed = true
			return s, nil
		}
		s.result = msg.result
		if s.result.TopicID != 0 {
			s.topicID = s.result.TopicID
		}
		for i := range s.result.QuestionResults {
			s.expanded[i] = true
		}
		return s, nil

	case tea.KeyPressMsg:
		return s, s.handleKey(msg.String())
	}
	return s, nil
}

func (s *ReviewScreen) handleKey(key string) tea.Cmd {
	if s.failed {
		if key == "enter" || key == "b" {
			return router.Pop
		}
		return nil
	}
	if s.result == nil {
		return nil
	}

	n := len(s.result.QuestionResults)
	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < n-1 {
			s.selected++
		}
	case "enter", "space":
		if n > 0 {
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	case "a":
		open := !s.allExpanded()
		for i := 0; i < n; i++ {
			s.expanded[i] = open
		}
	case "r":
		return nav.Go(nav.OpenAssessmentMsg{TopicID: s.topicID, TopicName: s.topicName, Replace: true})
	case "s":
		return nav.Go(nav.OpenStudyMsg{TopicID: s.topicID, TopicName: s.topicName})
	case "b":
		return router.Pop
	}
	return nil
}

func (s *ReviewScreen) allExpanded() bool {
	for i := range s.result.QuestionResults {
		if !s.expanded[i] {
			return false
		}
	}
	return true
}

// Expanded reports whether question i is expanded.
func (s *ReviewScreen) Expanded(i int) bool {
	return s.expanded[i]
}

func (s *ReviewScreen) View(width, height int) string {
	if !s.loaded {
		return components.Loading("Loading assessment results...", width, height)
	}
	if s.failed {
		return components.ErrorPage("Failed to load assessment results", "", "Back to Assessments", width, height)
	}

	cw := components.ContentWidth(width)
	header := s.renderHeader(cw)

	var body []string
	selectedLine := 0
	for i, q := range s.result.QuestionResults {
		if i == s.selected {
			selectedLine = len(body)
		}
		body = append(body, strings.Split(s.renderQuestion(i, q, cw), "\n")...)
		body = append(body, "")
	}
	if len(s.result.QuestionResults) == 0 {
		body = append(body, theme.Hint.Render("No answers were recorded for this assessment."))
	}

	rows := height - lipgloss.Height(header) - 2
	if rows < 3 {
		rows = 3
	}
	visible := s.window(body, selectedLine, rows)

	content := header + "\n\n" + strings.Join(visible, "\n")
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

// window returns at most rows lines, scrolled so the selected question's
// first line stays visible.
func (s *ReviewScreen) window(lines []string, selectedLine, rows int) []string {
	if len(lines) <= rows {
		s.offset = 0
		return lines
	}
	if selectedLine < s.offset {
		s.offset = selectedLine
	}
	if selectedLine >= s.offset+rows {
		s.offset = selectedLine - rows + 1
	}
	if last := len(lines) - rows; s.offset > last {
		s.offset = last
	}
	return lines[s.offset : s.offset+rows]
}

func (s *ReviewScreen) renderHeader(cw int) string {
	score := s.result.ScoreValue()
	left := theme.Label.Render("Overall Score") + "  " +
		components.ScoreStyle(score).Render(fmt.Sprintf("%.1f%%", score)) + "  " +
		components.Stars(score)

	right := ""
	if t := s.result.CompletedTime(); !t.IsZero() {
		right = theme.Hint.Render("Completed " + t.Local().Format("Jan 2, 2006 15:04"))
	}
	gap := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		gap = 2
	}
	return left + strings.Repeat(" ", gap) + right
}

func (s *ReviewScreen) renderQuestion(i int, q asmt.QuestionResult, cw int) string {
	mark := theme.Incorrect.Render("✗")
	if q.IsCorrect {
		mark = theme.Correct.Render("✓")
	}
	arrow := "▸"
	if s.expanded[i] {
		arrow = "▾"
	}

	titleStyle := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		titleStyle = theme.Selected
	}
	line := fmt.Sprintf("%s %s %s", arrow, mark, titleStyle.Render(fmt.Sprintf("Question %d", i+1)))
	score := components.ScoreStyle(q.Score).Render(fmt.Sprintf("Score: %.1f%%", q.Score))
	gap := cw - lipgloss.Width(line) - lipgloss.Width(score)
	if gap < 2 {
		gap = 2
	}
	line += strings.Repeat(" ", gap) + score

	if !s.expanded[i] {
		return line
	}

	text := lipgloss.NewStyle().Foreground(theme.Text).Width(cw - 4)
	fbBorder := theme.Warning
	if q.IsCorrect {
		fbBorder = theme.Success
	}
	answer := q.UserAnswer
	if strings.TrimSpace(answer) == "" {
		answer = "(no answer)"
	}

	var b strings.Builder
	b.WriteString(line)
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("  Question"))
	b.WriteString("\n")
	b.WriteString(text.PaddingLeft(2).Render(q.QuestionText))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render("  Your Answer"))
	b.WriteString("\n")
	b.WriteString(text.PaddingLeft(2).Render(answer))
	if q.Feedback != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Card.BorderForeground(fbBorder).Padding(0, 1).Width(cw - 2).Render(q.Feedback))
	}
	return b.String()
}
