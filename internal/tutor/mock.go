package tutor

import (
	"context"
	"sync"

	"github.com/edugen/edugen/internal/assessment"
)

// MockCall records one call made against a MockService.
type MockCall struct {
	Method       string
	TopicID      int
	AssessmentID int
	QuestionID   int
	Answer       string
}

// MockService is a deterministic Service for tests. Assessment, results,
// summaries and catalogue are fixed; feedback is served in FIFO order and
// falls back to DefaultFeedback when the queue is empty.
type MockService struct {
	mu sync.Mutex

	Assessment      *assessment.Assessment
	Feedback        []assessment.Feedback
	DefaultFeedback assessment.Feedback
	Result          *assessment.Result
	Summaries       map[int]*assessment.Summary
	SubjectList     []Subject
	TopicLists      map[int]*TopicList

	// ChatLog holds the conversation per topic; SendMessage appends to it.
	ChatLog map[int][]ChatMessage
	// Replies are served in FIFO order, then DefaultReply.
	Replies      []string
	DefaultReply string

	// Errors by method name force a failure.
	Errors map[string]error

	Calls []MockCall
}

var _ Service = (*MockService)(nil)

func (m *MockService) record(c MockCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, c)
	return m.Errors[c.Method]
}

// CallCount returns how many times method was called.
func (m *MockService) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (m *MockService) StartAssessment(_ context.Context, topicID int) (*assessment.Assessment, error) {
	if err := m.record(MockCall{Method: "StartAssessment", TopicID: topicID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Assessment == nil {
		return nil, nil
	}
	a := *m.Assessment
	a.Questions = append([]assessment.Question(nil), m.Assessment.Questions...)
	if a.TopicID == 0 {
		a.TopicID = topicID
	}
	return &a, nil
}

func (m *MockService) SubmitAnswer(_ context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	err := m.record(MockCall{Method: "SubmitAnswer", AssessmentID: assessmentID, QuestionID: questionID, Answer: answer})
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fb := m.DefaultFeedback
	if len(m.Feedback) > 0 {
		fb = m.Feedback[0]
		m.Feedback = m.Feedback[1:]
	}
	return &fb, nil
}

func (m *MockService) CompleteAssessment(_ context.Context, assessmentID int) (*assessment.Result, error) {
	if err := m.record(MockCall{Method: "CompleteAssessment", AssessmentID: assessmentID}); err != nil {
		return nil, err
	}
	return m.result(), nil
}

func (m *MockService) GetAssessmentResults(_ context.Context, assessmentID int) (*assessment.Result, error) {
	if err := m.record(MockCall{Method: "GetAssessmentResults", AssessmentID: assessmentID}); err != nil {
		return nil, err
	}
	return m.result(), nil
}

func (m *MockService) GetAssessmentSummary(_ context.Context, topicID int) (*assessment.Summary, error) {
	if err := m.record(MockCall{Method: "GetAssessmentSummary", TopicID: topicID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Summaries[topicID]
	if !ok || s == nil {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockService) Subjects(_ context.Context) ([]Subject, error) {
	if err := m.record(MockCall{Method: "Subjects"}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Subject(nil), m.SubjectList...), nil
}

func (m *MockService) Topics(_ context.Context, subjectID int) (*TopicList, error) {
	if err := m.record(MockCall{Method: "Topics", TopicID: subjectID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	tl, ok := m.TopicLists[subjectID]
	if !ok {
		return &TopicList{}, nil
	}
	cp := *tl
	cp.Topics = append([]Topic(nil), tl.Topics...)
	return &cp, nil
}

func (m *MockService) ChatHistory(_ context.Context, topicID int) ([]ChatMessage, error) {
	if err := m.record(MockCall{Method: "ChatHistory", TopicID: topicID}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChatMessage(nil), m.ChatLog[topicID]...), nil
}

// OverviewPrompt is the prompt echoed back for an initial overview.
const OverviewPrompt = "Give me an overview of this topic."

func (m *MockService) SendMessage(_ context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	if err := m.record(MockCall{Method: "SendMessage", TopicID: topicID, Answer: prompt}); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	reply := m.DefaultReply
	if len(m.Replies) > 0 {
		reply = m.Replies[0]
		m.Replies = m.Replies[1:]
	}
	if overview && prompt == "" {
		prompt = OverviewPrompt
	}
	if m.ChatLog == nil {
		m.ChatLog = map[int][]ChatMessage{}
	}
	log := m.ChatLog[topicID]
	m.ChatLog[topicID] = append(log, ChatMessage{ID: len(log) + 1, Prompt: prompt, Response: reply})
	return &ChatReply{Prompt: prompt, Response: reply}, nil
}

func (m *MockService) result() *assessment.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Result == nil {
		return nil
	}
	r := *m.Result
	r.QuestionResults = append([]assessment.QuestionResult(nil), m.Result.QuestionResults...)
	return &r
}
