package assessment

import (
	"context"
	"sync"
)

type fakeService struct {
	mu sync.Mutex

	assessment *Assessment
	startErr   error

	feedback  map[int]*Feedback
	submitErr error

	result      *Result
	completeErr error

	summaries  map[int]*Summary
	summaryErr error

	// gate, when set, blocks SubmitAnswer until closed.
	gate chan struct{}

	startCalls    int
	submitCalls   int
	completeCalls int
}

func (f *fakeService) StartAssessment(ctx context.Context, topicID int) (*Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return nil, f.startErr
	}
	if f.assessment == nil {
		return nil, nil
	}
	a := *f.assessment
	a.Questions = append([]Question(nil), f.assessment.Questions...)
	return &a, nil
}

func (f *fakeService) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*Feedback, error) {
	f.mu.Lock()
	f.submitCalls++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.feedback[questionID], nil
}

func (f *fakeService) CompleteAssessment(ctx context.Context, assessmentID int) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.result, nil
}

func (f *fakeService) GetAssessmentResults(ctx context.Context, assessmentID int) (*Result, error) {
	return f.result, nil
}

func (f *fakeService) GetAssessmentSummary(ctx context.Context, topicID int) (*Summary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	return f.summaries[topicID], nil
}

type statusErr struct {
	status int
	msg    string
}

func (e *statusErr) Error() string         { return e.msg }
func (e *statusErr) HTTPStatus() int       { return e.status }
func (e *statusErr) ServerMessage() string { return e.msg }

type payloadErr struct{}

func (payloadErr) Error() string        { return "bad payload" }
func (payloadErr) InvalidPayload() bool { return true }

func ptr(f float64) *float64 { return &f }

func threeQuestions() *Assessment {
	return &Assessment{
		ID:      7,
		TopicID: 3,
		Questions: []Question{
			{ID: 1, Text: "What is a closure?"},
			{ID: 2, Text: "Define recursion."},
			{ID: 3, Text: "What does a mutex guard?"},
		},
		Status: StatusInProgress,
	}
}
