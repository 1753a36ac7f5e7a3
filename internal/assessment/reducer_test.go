package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_DoesNotMutateInput(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})
	next := Reduce(s, SubmitSucceeded{QuestionID: 1, Answer: "a", Feedback: Feedback{Score: 10}})

	assert.Empty(t, s.Answers)
	assert.Len(t, next.Answers, 1)
}

func TestReduce_SetQuestionIndexClamps(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})

	tests := []struct {
		in   int
		want int
	}{
		{-5, 0},
		{-1, 0},
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{100, 2},
	}
	for _, tt := range tests {
		got := Reduce(s, SetQuestionIndex{Index: tt.in}).CurrentQuestionIndex
		assert.Equal(t, tt.want, got, "index %d", tt.in)
	}
}

func TestReduce_SetQuestionIndexWithoutAssessment(t *testing.T) {
	got := Reduce(InitialState(), SetQuestionIndex{Index: 4})
	assert.Equal(t, 0, got.CurrentQuestionIndex)
	assert.Nil(t, got.CurrentQuestion())
}

func TestReduce_StartSucceededClearsPriorAttempt(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})
	s = Reduce(s, SubmitSucceeded{QuestionID: 1, Answer: "a", Feedback: Feedback{Score: 10}})
	s = Reduce(s, SetQuestionIndex{Index: 2})
	s = Reduce(s, CompleteSucceeded{AssessmentID: 7, Result: &Result{Score: ptr(10)}})

	s = Reduce(s, StartSucceeded{Assessment: threeQuestions()})
	assert.Empty(t, s.Answers)
	assert.Empty(t, s.Feedback)
	assert.Nil(t, s.Results)
	assert.Equal(t, 0, s.CurrentQuestionIndex)
}

func TestReduce_CompleteSucceededWithoutScoreKeepsStatus(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})
	s = Reduce(s, CompleteSucceeded{AssessmentID: 7, Result: &Result{}})

	assert.Equal(t, StatusInProgress, s.Current.Status)
	assert.Nil(t, s.Current.TotalScore)
}

func TestReduce_FailuresDefaultMessage(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{StartFailed{}, "Failed to start assessment"},
		{SubmitFailed{}, "Failed to submit answer"},
		{CompleteFailed{}, "Failed to complete assessment"},
	}
	for _, tt := range tests {
		s := Reduce(InitialState(), tt.ev)
		require.NotNil(t, s.Err)
		assert.Equal(t, tt.want, s.Err.Message)
	}
}

func TestReduce_RequestsClearError(t *testing.T) {
	failed := Reduce(InitialState(), StartFailed{})
	for _, ev := range []Event{StartRequested{}, SubmitRequested{}, CompleteRequested{}, ClearError{}} {
		assert.Nil(t, Reduce(failed, ev).Err)
	}
}

func TestReduce_ResetReturnsInitialState(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})
	s = Reduce(s, SummaryLoaded{TopicID: 3, Summary: Summary{TotalAttempts: 1}})
	s = Reduce(s, Reset{})

	assert.Equal(t, InitialState(), s)
}

func TestReduce_CompleteForOtherAssessmentIgnored(t *testing.T) {
	s := Reduce(InitialState(), StartSucceeded{Assessment: threeQuestions()})
	s = Reduce(s, CompleteRequested{})
	s = Reduce(s, CompleteSucceeded{AssessmentID: 99, Result: &Result{Score: ptr(100)}})

	assert.Equal(t, StatusInProgress, s.Current.Status)
	assert.Nil(t, s.Results)
	assert.False(t, s.CompletionLoading)
}

func TestReduce_AnswerRejectedLeavesSubmitLoading(t *testing.T) {
	s := Reduce(InitialState(), SubmitRequested{})
	s = Reduce(s, AnswerRejected{Err: &Error{Kind: KindEmptyAnswer, Message: "Answer cannot be empty"}})

	assert.True(t, s.SubmitLoading)
	assert.Equal(t, "Answer cannot be empty", s.Err.Message)
}
