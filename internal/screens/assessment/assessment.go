package assessment

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
)

// AssessmentScreen runs one timed assessment for a topic. It owns a fresh
// Store for its lifetime; leaving the screen resets it.
type AssessmentScreen struct {
	owner     int64
	topicID   int
	topicName string

	ctrl   *asmt.Controller
	ctx    context.Context
	cancel context.CancelFunc

	input       components.TextInput
	actions     components.ButtonRow
	confirmQuit bool
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)
var _ screen.Unmounter = (*AssessmentScreen)(nil)
var _ screen.InputCapturer = (*AssessmentScreen)(nil)

// New creates an assessment screen for topicID. limit is the countdown;
// zero uses the default 20 minutes.
func New(svc asmt.Service, log *logger.Logger, topicID int, topicName string, limit time.Duration) *AssessmentScreen {
	ctx, cancel := context.WithCancel(context.Background())
	store := asmt.NewStore(svc, log)
	return &AssessmentScreen{
		owner:     nav.NextOwner(),
		topicID:   topicID,
		topicName: topicName,
		ctrl:      asmt.NewController(store, limit),
		ctx:       ctx,
		cancel:    cancel,
		input:     components.NewTextInput("Type your answer...", 4000),
	}
}

func (s *AssessmentScreen) Init() tea.Cmd {
	if !s.ctrl.Mount(s.topicID) {
		return nil
	}
	store, ctx, owner, topicID := s.ctrl.Store(), s.ctx, s.owner, s.topicID
	return tea.Batch(
		func() tea.Msg {
			_, err := store.Start(ctx, topicID)
			return startedMsg{owner: owner, err: err}
		},
		s.input.Init(),
	)
}

func (s *AssessmentScreen) Title() string {
	if s.topicName != "" {
		return s.topicName
	}
	if st := s.ctrl.State(); st.Current != nil && st.Current.TopicName != "" {
		return st.Current.TopicName
	}
	return "Assessment"
}

// Unmount cancels in-flight calls, stops the timer and resets the store.
func (s *AssessmentScreen) Unmount() {
	s.cancel()
	s.ctrl.Unmount()
}

// CapturingInput keeps Esc and letter keys with the screen while a session
// is running.
func (s *AssessmentScreen) CapturingInput() bool {
	switch s.ctrl.Phase() {
	case asmt.PhaseComplete, asmt.PhaseFailed:
		return false
	}
	return true
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.ctrl.Phase() {
	case asmt.PhaseFailed:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to list"}}
	case asmt.PhaseComplete:
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Select"},
			{Key: "Esc", Description: "Back"},
		}
	case asmt.PhaseReviewing:
		label := "Next Question"
		if s.ctrl.State().IsLastQuestion() {
			label = "Finish Assessment"
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: label},
			{Key: "Esc", Description: "Leave"},
		}
	case asmt.PhaseAnswering:
		if s.ctrl.TimeUp() {
			return []layout.KeyHint{{Key: "Enter", Description: "Finish Assessment"}}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return nil
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		return s, s.handleStarted(msg.err)

	case submittedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		return s, s.handleSubmitted(msg.err)

	case finalizedMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		return s, s.handleFinalized(msg.err)

	case tickMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		return s, s.handleTick(msg.id)

	case tea.KeyPressMsg:
		return s, s.handleKey(msg)
	}

	if s.ctrl.Phase() == asmt.PhaseAnswering {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *AssessmentScreen) handleStarted(err error) tea.Cmd {
	id := s.ctrl.Started(err)
	if s.ctrl.IsComplete() {
		s.actions = s.completionActions()
	}
	if id == 0 {
		return nil
	}
	return tick(s.owner, id)
}

func (s *AssessmentScreen) handleSubmitted(err error) tea.Cmd {
	s.ctrl.Submitted(err)
	if err != nil && s.ctrl.Phase() == asmt.PhaseAnswering && !s.ctrl.TimeUp() {
		return s.input.Unlock()
	}
	return nil
}

func (s *AssessmentScreen) handleFinalized(err error) tea.Cmd {
	s.ctrl.Finalized(err)
	if s.ctrl.IsComplete() {
		s.actions = s.completionActions()
		return nil
	}
	if s.ctrl.Phase() == asmt.PhaseAnswering && !s.ctrl.TimeUp() {
		return s.input.Unlock()
	}
	return nil
}

func (s *AssessmentScreen) handleTick(id int) tea.Cmd {
	if s.ctrl.Tick(id) {
		return s.finalize()
	}
	cd := s.ctrl.Countdown()
	if cd.Running() && cd.ID() == id {
		return tick(s.owner, id)
	}
	return nil
}

func (s *AssessmentScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return router.Pop
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return nil
	}

	switch s.ctrl.Phase() {
	case asmt.PhaseFailed:
		switch key {
		case "enter", "esc":
			return router.Pop
		}
		return nil
	case asmt.PhaseComplete:
		if key == "esc" {
			return router.Pop
		}
		var cmd tea.Cmd
		s.actions, cmd = s.actions.Update(msg)
		return cmd
	}

	if key == "esc" {
		s.confirmQuit = true
		return nil
	}

	switch s.ctrl.Phase() {
	case asmt.PhaseAnswering:
		if key == "enter" {
			return s.submit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd
	case asmt.PhaseReviewing:
		if key == "enter" {
			return s.next()
		}
	}
	return nil
}

func (s *AssessmentScreen) submit() tea.Cmd {
	if s.ctrl.TimeUp() {
		// A finalize after time ran out failed; Enter retries it.
		return s.finalize()
	}
	if s.input.Locked() {
		return nil
	}
	st := s.ctrl.State()
	q := st.CurrentQuestion()
	if st.Current == nil || q == nil {
		return nil
	}

	answer := s.input.Value()
	if strings.TrimSpace(answer) == "" {
		if !st.SubmitLoading {
			// Rejected locally; records the inline error without a request.
			_, _ = s.ctrl.Store().SubmitAnswer(s.ctx, st.Current.ID, q.ID, answer)
		}
		return nil
	}
	if !s.ctrl.CanSubmit(answer) {
		return nil
	}

	s.input.Lock()
	store, ctx, owner := s.ctrl.Store(), s.ctx, s.owner
	assessmentID, questionID := st.Current.ID, q.ID
	return func() tea.Msg {
		_, err := store.SubmitAnswer(ctx, assessmentID, questionID, answer)
		return submittedMsg{owner: owner, err: err}
	}
}

func (s *AssessmentScreen) next() tea.Cmd {
	switch s.ctrl.Next() {
	case asmt.ActionAdvance:
		return s.input.Reset()
	case asmt.ActionFinalize:
		return s.finalize()
	}
	return nil
}

// finalize requests completion once; repeated calls while one is in
// flight are ignored by the controller.
func (s *AssessmentScreen) finalize() tea.Cmd {
	if !s.ctrl.BeginFinalize() {
		return nil
	}
	s.input.Lock()
	st := s.ctrl.State()
	store, ctx, owner := s.ctrl.Store(), s.ctx, s.owner
	assessmentID := st.Current.ID
	return func() tea.Msg {
		_, err := store.Complete(ctx, assessmentID)
		return finalizedMsg{owner: owner, err: err}
	}
}

func (s *AssessmentScreen) completionActions() components.ButtonRow {
	t, _ := s.ctrl.Targets()
	topicID, topicName := s.topicID, s.topicName
	return components.NewButtonRow(
		components.NewButton("Review Answers", func() tea.Cmd {
			return nav.Go(nav.OpenReviewMsg{
				AssessmentID: t.ReviewAssessmentID,
				TopicID:      topicID,
				TopicName:    topicName,
				Replace:      true,
			})
		}),
		components.NewButton("Back to Assessments", func() tea.Cmd {
			return router.Pop
		}),
		components.NewButton("Study with Tutor", func() tea.Cmd {
			return nav.Go(nav.OpenStudyMsg{TopicID: t.StudyTopicID, TopicName: topicName, Replace: true})
		}),
	)
}
