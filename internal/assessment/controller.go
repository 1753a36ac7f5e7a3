package assessment

import (
	"net/http"
	"strings"
	"time"
)

// Phase is a step of the assessment session lifecycle.
type Phase int

const (
	PhaseInitializing Phase = iota // Waiting for Start to resolve
	PhaseAnswering                 // Learner is typing an answer
	PhaseReviewing                 // Feedback for the current question is shown
	PhaseFinalizing                // Complete is in flight
	PhaseComplete                  // Final score available
	PhaseFailed                    // Start failed; only "back to list" remains
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseAnswering:
		return "answering"
	case PhaseReviewing:
		return "reviewing"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseComplete:
		return "complete"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Action is what the caller must do after Next.
type Action int

const (
	ActionNone     Action = iota
	ActionAdvance         // The store moved to the next question
	ActionFinalize        // Last question done; call BeginFinalize
)

// Targets are the navigation destinations offered once complete.
type Targets struct {
	ReviewAssessmentID int // review answers
	RetryTopicID       int // take the assessment again
	StudyTopicID       int // continue studying with the tutor
}

// Controller sequences one assessment session for a single topic mount.
// It holds no goroutines: the caller runs Store effects and reports their
// outcome through Started, Submitted and Finalized. It is not safe for
// concurrent use.
type Controller struct {
	store     *Store
	countdown *Countdown

	topicID int
	mounted bool
	phase   Phase

	// resume is the phase restored when a finalize attempt fails.
	resume Phase
}

// NewController creates a controller for store with a countdown of limit.
func NewController(store *Store, limit time.Duration) *Controller {
	if limit <= 0 {
		limit = DefaultDuration
	}
	return &Controller{
		store:     store,
		countdown: NewCountdown(limit),
		phase:     PhaseInitializing,
	}
}

func (c *Controller) Store() *Store         { return c.store }
func (c *Controller) Countdown() *Countdown { return c.countdown }
func (c *Controller) Phase() Phase          { return c.phase }
func (c *Controller) TopicID() int          { return c.topicID }
func (c *Controller) TimeUp() bool          { return c.countdown.Expired() }
func (c *Controller) State() State          { return c.store.Snapshot() }
func (c *Controller) Mounted() bool         { return c.mounted }
func (c *Controller) IsFinalizing() bool    { return c.phase == PhaseFinalizing }
func (c *Controller) IsComplete() bool      { return c.phase == PhaseComplete }
func (c *Controller) ShowingFeedback() bool { return c.phase == PhaseReviewing }
func (c *Controller) AnswerLocked() bool    { return c.phase != PhaseAnswering }

// Mount records the topic and reports whether Start should be issued. It
// returns true only on the first call.
func (c *Controller) Mount(topicID int) bool {
	if c.mounted {
		return false
	}
	c.mounted = true
	c.topicID = topicID
	c.phase = PhaseInitializing
	return true
}

// Started reports the outcome of Store.Start. On success the countdown
// begins and its tick ID is returned; 0 means no tick should be scheduled.
func (c *Controller) Started(err error) int {
	if !c.mounted || c.phase != PhaseInitializing {
		return 0
	}
	st := c.store.Snapshot()
	if err != nil || st.Current == nil {
		c.phase = PhaseFailed
		return 0
	}
	if st.Current.Completed() {
		c.phase = PhaseComplete
		return 0
	}
	c.phase = PhaseAnswering
	return c.countdown.Start()
}

// CanSubmit reports whether answer may be submitted now.
func (c *Controller) CanSubmit(answer string) bool {
	if c.phase != PhaseAnswering || c.countdown.Expired() {
		return false
	}
	st := c.store.Snapshot()
	if st.SubmitLoading || st.Current == nil || st.Current.Completed() {
		return false
	}
	return strings.TrimSpace(answer) != ""
}

// Submitted reports the outcome of Store.SubmitAnswer. Success moves to
// Reviewing; failure keeps Answering so the typed answer is preserved.
func (c *Controller) Submitted(err error) {
	if c.phase != PhaseAnswering {
		return
	}
	if err != nil {
		return
	}
	if _, ok := c.store.Snapshot().CurrentFeedback(); ok {
		c.phase = PhaseReviewing
	}
}

// Next leaves Reviewing. It advances the store to the next question or
// asks the caller to finalize on the last one.
func (c *Controller) Next() Action {
	if c.phase != PhaseReviewing {
		return ActionNone
	}
	st := c.store.Snapshot()
	if st.IsLastQuestion() {
		return ActionFinalize
	}
	c.store.SetCurrentQuestionIndex(st.CurrentQuestionIndex + 1)
	c.phase = PhaseAnswering
	return ActionAdvance
}

// BeginFinalize enters Finalizing. It returns false when a finalize is
// already in flight or the session cannot be finalized, which keeps
// Complete from being requested twice.
func (c *Controller) BeginFinalize() bool {
	switch c.phase {
	case PhaseAnswering, PhaseReviewing:
	default:
		return false
	}
	if c.store.Snapshot().Current == nil {
		return false
	}
	c.resume = c.phase
	c.phase = PhaseFinalizing
	return true
}

// Finalized reports the outcome of Store.Complete. On failure the previous
// phase is restored so the learner can retry.
func (c *Controller) Finalized(err error) {
	if c.phase != PhaseFinalizing {
		return
	}
	if err != nil {
		c.phase = c.resume
		return
	}
	c.phase = PhaseComplete
	c.countdown.Stop()
}

// Tick consumes one countdown second for tick id and reports whether time
// just ran out and a finalize should begin.
func (c *Controller) Tick(id int) bool {
	if c.phase == PhaseComplete || c.phase == PhaseFailed {
		c.countdown.Stop()
		return false
	}
	return c.countdown.Tick(id)
}

// Unmount stops the countdown and resets the store so no state leaks into
// the next topic.
func (c *Controller) Unmount() {
	c.countdown.Stop()
	c.store.Reset()
	c.mounted = false
}

// FinalScore returns the total score once complete.
func (c *Controller) FinalScore() (float64, bool) {
	st := c.store.Snapshot()
	if st.Current == nil || st.Current.TotalScore == nil {
		return 0, false
	}
	return *st.Current.TotalScore, true
}

// Targets returns the post-completion navigation targets.
func (c *Controller) Targets() (Targets, bool) {
	if c.phase != PhaseComplete {
		return Targets{}, false
	}
	st := c.store.Snapshot()
	if st.Current == nil {
		return Targets{}, false
	}
	return Targets{
		ReviewAssessmentID: st.Current.ID,
		RetryTopicID:       c.topicID,
		StudyTopicID:       c.topicID,
	}, true
}

// ErrorBanner returns the message to show inline, if any.
func (c *Controller) ErrorBanner() string {
	st := c.store.Snapshot()
	if st.Err == nil {
		return ""
	}
	if st.Err.StatusCode == http.StatusUnauthorized {
		return st.Err.Message + " Please sign in again."
	}
	return st.Err.Message
}
