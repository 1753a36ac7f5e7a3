package assessment

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/theme"
)

func (s *AssessmentScreen) View(width, height int) string {
	if s.confirmQuit {
		return renderQuitConfirm(width, height)
	}
	switch s.ctrl.Phase() {
	case asmt.PhaseInitializing:
		return components.Loading("Starting assessment...", width, height)
	case asmt.PhaseFailed:
		return components.ErrorPage("Unable to start assessment", s.ctrl.ErrorBanner(), "Back to list", width, height)
	case asmt.PhaseComplete:
		return s.renderComplete(width, height)
	}
	return s.renderQuestion(width, height)
}

func (s *AssessmentScreen) renderQuestion(width, height int) string {
	st := s.ctrl.State()
	q := st.CurrentQuestion()
	if q == nil {
		return components.Loading("Loading question...", width, height)
	}
	cw := components.ContentWidth(width)

	var b strings.Builder

	left := theme.Label.Render(s.Title())
	right := s.renderTimer()
	gap := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(left + strings.Repeat(" ", gap) + right)
	b.WriteString("\n\n")

	b.WriteString(components.QuestionProgress(st.CurrentQuestionIndex, st.QuestionCount(), cw).View())
	b.WriteString("\n\n")

	body := difficultyBadge(q.Difficulty) + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(cw-6).Render(q.Text)
	b.WriteString(components.Card(body, cw))
	b.WriteString("\n\n")

	b.WriteString(s.input.View(cw))
	b.WriteString("\n")

	if fb, ok := st.CurrentFeedback(); ok && s.ctrl.ShowingFeedback() {
		b.WriteString("\n")
		b.WriteString(renderFeedback(fb, cw))
		b.WriteString("\n")
	}

	if banner := s.ctrl.ErrorBanner(); banner != "" {
		b.WriteString("\n")
		b.WriteString(components.ErrorBanner(banner, cw))
		b.WriteString("\n")
	}

	if status := s.statusLine(st); status != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(status))
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func (s *AssessmentScreen) statusLine(st asmt.State) string {
	switch {
	case s.ctrl.IsFinalizing() && s.ctrl.TimeUp():
		return "Time's up! Finishing assessment..."
	case s.ctrl.IsFinalizing():
		return "Finishing assessment..."
	case st.SubmitLoading:
		return "Checking your answer..."
	case s.ctrl.TimeUp():
		return "Time's up! Press Enter to finish."
	case s.ctrl.ShowingFeedback() && st.IsLastQuestion():
		return "Press Enter to Finish Assessment"
	case s.ctrl.ShowingFeedback():
		return "Press Enter for the Next Question"
	}
	return ""
}

func (s *AssessmentScreen) renderTimer() string {
	cd := s.ctrl.Countdown()
	text := "⏱ " + formatClock(cd.Remaining())
	if cd.Urgent() {
		return theme.TimerUrgent.Render(text)
	}
	return theme.TimerNormal.Render(text)
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func difficultyBadge(d asmt.Difficulty) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch d {
	case asmt.DifficultyEasy:
		return style.Foreground(theme.BgDark).Background(theme.Success).Render("EASY")
	case asmt.DifficultyMedium:
		return style.Foreground(theme.BgDark).Background(theme.Warning).Render("MEDIUM")
	case asmt.DifficultyHard:
		return style.Foreground(theme.Text).Background(theme.Error).Render("HARD")
	}
	return style.Foreground(theme.TextDim).Render("QUESTION")
}

func renderFeedback(fb asmt.Feedback, cw int) string {
	verdict := theme.Incorrect.Render("✗ Not quite")
	border := theme.Error
	if fb.IsCorrect {
		verdict = theme.Correct.Render("✓ Correct")
		border = theme.Success
	}
	score := components.ScoreStyle(fb.Score).Render(fmt.Sprintf("%.0f/100", fb.Score))
	body := verdict + "   " + score
	if fb.Feedback != "" {
		body += "\n\n" + lipgloss.NewStyle().Foreground(theme.Text).Width(cw-6).Render(fb.Feedback)
	}
	return theme.Card.BorderForeground(border).Width(cw).Render(body)
}

func (s *AssessmentScreen) renderComplete(width, height int) string {
	cw := components.ContentWidth(width)
	st := s.ctrl.State()

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw - 6).Render("Assessment Complete!"))
	b.WriteString("\n\n")

	if score, ok := s.ctrl.FinalScore(); ok {
		band := components.BandFor(score)
		b.WriteString(components.ScoreStyle(score).Render(fmt.Sprintf("%.1f%%", score)))
		b.WriteString("\n")
		b.WriteString(components.Stars(score) + "  " + theme.Hint.Render(band.Label))
		b.WriteString("\n\n")
	}

	if n := st.QuestionCount(); n > 0 {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Answered %d of %d questions", len(st.Answers), n)))
		b.WriteString("\n\n")
	}

	b.WriteString(s.actions.View())

	card := theme.Card.Width(cw).Align(lipgloss.Center).Render(b.String())
	return components.Center(card, width, height)
}

func renderQuitConfirm(width, height int) string {
	body := theme.Incorrect.Render("Leave this assessment?") + "\n\n" +
		theme.Body.Render("Your answers so far will not be finalized.") + "\n\n" +
		theme.Hint.Render("Y to leave, N to keep going")
	return components.Center(theme.Dialog.Render(body), width, height)
}
