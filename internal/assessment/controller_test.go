package assessment

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedController(t *testing.T, svc *fakeService) (*Controller, int) {
	t.Helper()
	c := NewController(NewStore(svc, nil), 0)
	require.True(t, c.Mount(3))
	_, err := c.Store().Start(context.Background(), 3)
	tick := c.Started(err)
	require.NoError(t, err)
	require.NotZero(t, tick)
	return c, tick
}

func answer(t *testing.T, c *Controller, text string) {
	t.Helper()
	st := c.State()
	q := st.CurrentQuestion()
	require.NotNil(t, q)
	require.True(t, c.CanSubmit(text))
	_, err := c.Store().SubmitAnswer(context.Background(), st.Current.ID, q.ID, text)
	c.Submitted(err)
}

func TestController_MountOnce(t *testing.T) {
	c := NewController(NewStore(&fakeService{}, nil), time.Minute)
	assert.True(t, c.Mount(3))
	assert.False(t, c.Mount(3))
	assert.Equal(t, 3, c.TopicID())
}

func TestController_FullSession(t *testing.T) {
	svc := &fakeService{
		assessment: threeQuestions(),
		feedback: map[int]*Feedback{
			1: {IsCorrect: true, Score: 100},
			2: {IsCorrect: false, Score: 40},
			3: {IsCorrect: true, Score: 80},
		},
		result: &Result{AssessmentID: 7, Score: ptr(73.3)},
	}
	c, _ := startedController(t, svc)
	assert.Equal(t, PhaseAnswering, c.Phase())

	answer(t, c, "first")
	assert.True(t, c.ShowingFeedback())
	assert.True(t, c.AnswerLocked())
	assert.Equal(t, ActionAdvance, c.Next())
	assert.Equal(t, 1, c.State().CurrentQuestionIndex)

	answer(t, c, "second")
	fb, ok := c.State().CurrentFeedback()
	require.True(t, ok)
	assert.False(t, fb.IsCorrect)
	assert.Equal(t, ActionAdvance, c.Next())

	answer(t, c, "third")
	require.Equal(t, ActionFinalize, c.Next())
	require.True(t, c.BeginFinalize())
	_, err := c.Store().Complete(context.Background(), 7)
	c.Finalized(err)

	assert.True(t, c.IsComplete())
	assert.False(t, c.Countdown().Running())
	score, ok := c.FinalScore()
	require.True(t, ok)
	assert.InDelta(t, 73.3, score, 0.001)

	targets, ok := c.Targets()
	require.True(t, ok)
	assert.Equal(t, Targets{ReviewAssessmentID: 7, RetryTopicID: 3, StudyTopicID: 3}, targets)
	assert.Equal(t, 1, svc.completeCalls)
}

func TestController_StartFailureFails(t *testing.T) {
	c := NewController(NewStore(&fakeService{startErr: errors.New("boom")}, nil), 0)
	c.Mount(3)
	_, err := c.Store().Start(context.Background(), 3)

	assert.Zero(t, c.Started(err))
	assert.Equal(t, PhaseFailed, c.Phase())
	assert.False(t, c.Countdown().Running())
	assert.False(t, c.CanSubmit("anything"))
	_, ok := c.Targets()
	assert.False(t, ok)
}

func TestController_CanSubmit(t *testing.T) {
	c, _ := startedController(t, &fakeService{assessment: threeQuestions()})

	assert.False(t, c.CanSubmit(""))
	assert.False(t, c.CanSubmit("   "))
	assert.True(t, c.CanSubmit("x"))
}

func TestController_SubmitFailureStaysAnswering(t *testing.T) {
	svc := &fakeService{assessment: threeQuestions(), submitErr: &statusErr{status: 500}}
	c, _ := startedController(t, svc)

	_, err := c.Store().SubmitAnswer(context.Background(), 7, 1, "answer")
	c.Submitted(err)

	assert.Equal(t, PhaseAnswering, c.Phase())
	assert.Equal(t, "Failed to submit answer", c.ErrorBanner())
}

func TestController_TimerFinalizesExactlyOnce(t *testing.T) {
	svc := &fakeService{assessment: threeQuestions(), result: &Result{Score: ptr(0)}}
	c, tick := startedController(t, svc)

	finalizes := 0
	for i := 0; i < 1200; i++ {
		if c.Tick(tick) && c.BeginFinalize() {
			finalizes++
			_, err := c.Store().Complete(context.Background(), 7)
			c.Finalized(err)
		}
	}
	// Extra ticks after expiry, including from a stale schedule.
	for i := 0; i < 10; i++ {
		if c.Tick(tick) && c.BeginFinalize() {
			finalizes++
		}
	}

	assert.Equal(t, 1, finalizes)
	assert.Equal(t, 1, svc.completeCalls)
	assert.True(t, c.TimeUp())
	assert.True(t, c.IsComplete())
}

func TestController_TimeUpBlocksSubmit(t *testing.T) {
	svc := &fakeService{assessment: threeQuestions(), completeErr: errors.New("offline")}
	c := NewController(NewStore(svc, nil), 2*time.Second)
	c.Mount(3)
	_, err := c.Store().Start(context.Background(), 3)
	tick := c.Started(err)

	assert.False(t, c.Tick(tick))
	require.True(t, c.Tick(tick))
	require.True(t, c.BeginFinalize())
	_, err = c.Store().Complete(context.Background(), 7)
	c.Finalized(err)

	// Failed finalize restores the prior phase, but time is up.
	assert.Equal(t, PhaseAnswering, c.Phase())
	assert.False(t, c.CanSubmit("late answer"))
	assert.True(t, c.BeginFinalize(), "retry is allowed after a failed finalize")
}

func TestController_BeginFinalizeGuard(t *testing.T) {
	c, _ := startedController(t, &fakeService{assessment: threeQuestions()})

	require.True(t, c.BeginFinalize())
	assert.True(t, c.IsFinalizing())
	assert.False(t, c.BeginFinalize())
}

func TestController_SubmitResolvingDuringFinalizeIgnored(t *testing.T) {
	svc := &fakeService{assessment: threeQuestions(), feedback: map[int]*Feedback{1: {Score: 50}}}
	c, _ := startedController(t, svc)

	require.True(t, c.BeginFinalize())
	_, err := c.Store().SubmitAnswer(context.Background(), 7, 1, "answer")
	c.Submitted(err)

	assert.Equal(t, PhaseFinalizing, c.Phase())
}

func TestController_UnmountResetsStore(t *testing.T) {
	c, tick := startedController(t, &fakeService{assessment: threeQuestions()})

	c.Unmount()

	assert.False(t, c.Mounted())
	assert.False(t, c.Countdown().Running())
	assert.False(t, c.Tick(tick))
	assert.Nil(t, c.State().Current)
}

func TestController_ErrorBannerUnauthorized(t *testing.T) {
	svc := &fakeService{startErr: &statusErr{status: http.StatusUnauthorized, msg: "Token expired."}}
	c := NewController(NewStore(svc, nil), 0)
	c.Mount(1)
	_, err := c.Store().Start(context.Background(), 1)
	c.Started(err)

	assert.Equal(t, "Token expired. Please sign in again.", c.ErrorBanner())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "answering", PhaseAnswering.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
