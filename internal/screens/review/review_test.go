package review

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	asmt "github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screens/nav"
)

type stubFetcher struct {
	result *asmt.Result
	err    error
	calls  []int
}

func (f *stubFetcher) GetAssessmentResults(_ context.Context, id int) (*asmt.Result, error) {
	f.calls = append(f.calls, id)
	return f.result, f.err
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func sampleResult() *asmt.Result {
	score := 66.666
	return &asmt.Result{
		AssessmentID: 9,
		TopicID:      3,
		Score:        &score,
		CompletedAt:  "2026-03-01T10:00:00Z",
		QuestionResults: []asmt.QuestionResult{
			{QuestionID: 1, QuestionText: "Define recursion.", Score: 100, IsCorrect: true, UserAnswer: "self call", Feedback: "Spot on."},
			{QuestionID: 2, QuestionText: "Base case?", Score: 50, IsCorrect: false, UserAnswer: "", Feedback: "Incomplete."},
			{QuestionID: 3, QuestionText: "Stack?", Score: 50, IsCorrect: true, UserAnswer: "frames", Feedback: ""},
		},
	}
}

func load(t *testing.T, s *ReviewScreen) {
	t.Helper()
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
}

func TestReviewScreen_LoadsAllExpanded(t *testing.T) {
	f := &stubFetcher{result: sampleResult()}
	s := New(f, 9, 0, "Recursion")
	assert.Contains(t, s.View(100, 40), "Loading assessment results")

	load(t, s)
	assert.Equal(t, []int{9}, f.calls)
	for i := range 3 {
		assert.True(t, s.Expanded(i), "question %d expanded", i)
	}

	view := s.View(100, 60)
	assert.Contains(t, view, "66.7%")
	assert.Contains(t, view, "Define recursion.")
	assert.Contains(t, view, "self call")
	assert.Contains(t, view, "(no answer)")
	assert.Contains(t, view, "Score: 50.0%")
	assert.Contains(t, view, "Completed")
}

func TestReviewScreen_Toggle(t *testing.T) {
	s := New(&stubFetcher{result: sampleResult()}, 9, 0, "")
	load(t, s)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))
	assert.True(t, s.Expanded(0))
	assert.False(t, s.Expanded(1))
	assert.NotContains(t, s.View(100, 60), "Incomplete.")

	s.Update(specialKey(tea.KeyEnter))
	assert.True(t, s.Expanded(1))

	s.Update(keyPress('a'))
	for i := range 3 {
		assert.False(t, s.Expanded(i))
	}
	s.Update(keyPress('a'))
	for i := range 3 {
		assert.True(t, s.Expanded(i))
	}
}

func TestReviewScreen_FailurePage(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *stubFetcher
	}{
		{"error", &stubFetcher{err: errors.New("boom")}},
		{"nil result", &stubFetcher{}},
		{"missing score", &stubFetcher{result: &asmt.Result{AssessmentID: 9}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.fetcher, 9, 3, "Recursion")
			load(t, s)

			view := s.View(100, 30)
			assert.Contains(t, view, "Failed to load assessment results")
			assert.Contains(t, view, "Back to Assessments")

			_, cmd := s.Update(specialKey(tea.KeyEnter))
			require.NotNil(t, cmd)
			assert.Equal(t, router.PopScreenMsg{}, cmd())

			_, cmd = s.Update(keyPress('r'))
			assert.Nil(t, cmd, "only back is offered")
		})
	}
}

func TestReviewScreen_Actions(t *testing.T) {
	s := New(&stubFetcher{result: sampleResult()}, 9, 0, "Recursion")
	load(t, s)

	_, cmd := s.Update(keyPress('r'))
	require.NotNil(t, cmd)
	retry, ok := cmd().(nav.OpenAssessmentMsg)
	require.True(t, ok)
	assert.Equal(t, 3, retry.TopicID, "topic taken from the result")
	assert.True(t, retry.Replace)

	_, cmd = s.Update(keyPress('s'))
	require.NotNil(t, cmd)
	study, ok := cmd().(nav.OpenStudyMsg)
	require.True(t, ok)
	assert.Equal(t, 3, study.TopicID)
}

func TestReviewScreen_StaleResultIgnored(t *testing.T) {
	s := New(&stubFetcher{result: sampleResult()}, 9, 0, "")
	s.Update(resultLoadedMsg{owner: s.owner + 1, result: sampleResult()})
	assert.Contains(t, s.View(100, 30), "Loading")
}

func TestReviewScreen_ScrollsToSelection(t *testing.T) {
	s := New(&stubFetcher{result: sampleResult()}, 9, 0, "")
	load(t, s)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	view := s.View(100, 12)
	assert.Contains(t, view, "Question 3")
	assert.NotContains(t, view, "Define recursion.")
}

func TestReviewScreen_UnmountCancels(t *testing.T) {
	s := New(&stubFetcher{}, 9, 0, "")
	s.Unmount()
	assert.Error(t, s.ctx.Err())
}
