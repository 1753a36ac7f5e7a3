package tutor

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/cache"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/store"
)

func score(f float64) *float64 { return &f }

func sampleMock() *MockService {
	return &MockService{
		Assessment: &assessment.Assessment{
			ID:        7,
			TopicName: "Recursion",
			Questions: []assessment.Question{{ID: 1, Text: "Q1"}, {ID: 2, Text: "Q2"}},
		},
		Feedback: []assessment.Feedback{
			{IsCorrect: true, Score: 100},
			{IsCorrect: false, Score: 20},
		},
		Result: &assessment.Result{
			AssessmentID:    7,
			TopicID:         3,
			Score:           score(60),
			QuestionResults: []assessment.QuestionResult{{QuestionID: 1}, {QuestionID: 2}},
		},
		Summaries: map[int]*assessment.Summary{3: {TopicID: 3, TotalAttempts: 1, BestScore: 60}},
	}
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	svc := WithLogging(sampleMock(), logger.FromZap(zap.New(core)))
	ctx := context.Background()

	_, err := svc.StartAssessment(ctx, 3)
	require.NoError(t, err)
	_, err = svc.SubmitAnswer(ctx, 7, 1, "secret answer")
	require.NoError(t, err)

	entries := logs.FilterMessage("tutor call").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "submit_answer", fields["op"])
	assert.EqualValues(t, len("secret answer"), fields["answer_len"])
	assert.NotContains(t, fields, "answer", "answer text is never logged")
}

func TestWithLogging_Failure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	mock := sampleMock()
	mock.Errors = map[string]error{"Subjects": errors.New("down")}
	svc := WithLogging(mock, logger.FromZap(zap.New(core)))

	_, err := svc.Subjects(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("tutor call failed").Len())
}

func TestWithRetry_ReadsRetryTransient(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{"GetAssessmentResults": &APIError{Status: http.StatusBadGateway}}
	svc := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := svc.GetAssessmentResults(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount("GetAssessmentResults"))
}

func TestWithRetry_NoRetryOnClientError(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{"GetAssessmentSummary": &APIError{Status: http.StatusNotFound}}
	svc := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := svc.GetAssessmentSummary(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount("GetAssessmentSummary"))
}

func TestWithRetry_WritesNeverRetried(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{"CompleteAssessment": &ErrUnavailable{Err: errors.New("reset")}}
	svc := WithRetry(mock, RetryConfig{MaxAttempts: 5, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := svc.CompleteAssessment(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount("CompleteAssessment"))
}

func TestWithRetry_ChatHistoryRetriedSendMessageNot(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{
		"ChatHistory": &APIError{Status: http.StatusServiceUnavailable},
		"SendMessage": &APIError{Status: http.StatusServiceUnavailable},
	}
	svc := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1})

	_, err := svc.ChatHistory(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, 3, mock.CallCount("ChatHistory"))

	_, err = svc.SendMessage(context.Background(), 3, "why?", false)
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount("SendMessage"))
}

func TestMockService_ChatAppendsToHistory(t *testing.T) {
	mock := &MockService{Replies: []string{"first"}, DefaultReply: "later"}
	ctx := context.Background()

	r, err := mock.SendMessage(ctx, 3, "", true)
	require.NoError(t, err)
	assert.Equal(t, OverviewPrompt, r.Prompt)
	assert.Equal(t, "first", r.Response)

	r, err = mock.SendMessage(ctx, 3, "and then?", false)
	require.NoError(t, err)
	assert.Equal(t, "later", r.Response)

	history, err := mock.ChatHistory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "and then?", history[1].Prompt)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{"Subjects": &ErrUnavailable{Err: errors.New("refused")}}
	svc := WithRetry(mock, RetryConfig{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Subjects(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount("Subjects"))
}

func TestWithCache_Results(t *testing.T) {
	mock := sampleMock()
	svc := WithCache(mock, cache.NewMemory(), CacheConfig{Scope: "u1"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r, err := svc.GetAssessmentResults(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 60.0, r.ScoreValue())
	}
	assert.Equal(t, 1, mock.CallCount("GetAssessmentResults"))
}

func TestWithCache_CompleteInvalidatesSummary(t *testing.T) {
	mock := sampleMock()
	svc := WithCache(mock, cache.NewMemory(), CacheConfig{Scope: "u1"})
	ctx := context.Background()

	_, err := svc.GetAssessmentSummary(ctx, 3)
	require.NoError(t, err)
	_, err = svc.GetAssessmentSummary(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount("GetAssessmentSummary"))

	_, err = svc.CompleteAssessment(ctx, 7)
	require.NoError(t, err)

	_, err = svc.GetAssessmentSummary(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount("GetAssessmentSummary"))

	// Completion seeded the result.
	_, err = svc.GetAssessmentResults(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, mock.CallCount("GetAssessmentResults"))
}

func TestWithCache_ScopeFuncSeparatesUsers(t *testing.T) {
	mock := sampleMock()
	user := "u1"
	svc := WithCache(mock, cache.NewMemory(), CacheConfig{ScopeFunc: func() string { return user }})
	ctx := context.Background()

	_, err := svc.GetAssessmentSummary(ctx, 3)
	require.NoError(t, err)
	user = "u2"
	_, err = svc.GetAssessmentSummary(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CallCount("GetAssessmentSummary"))
}

func TestWithCache_AbsentSummaryNotCached(t *testing.T) {
	mock := sampleMock()
	svc := WithCache(mock, cache.NewMemory(), CacheConfig{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		s, err := svc.GetAssessmentSummary(ctx, 99)
		require.NoError(t, err)
		assert.Nil(t, s)
	}
	assert.Equal(t, 2, mock.CallCount("GetAssessmentSummary"))
}

func TestWithCache_ErrorsNotCached(t *testing.T) {
	mock := sampleMock()
	mock.Errors = map[string]error{"Subjects": errors.New("down")}
	svc := WithCache(mock, cache.NewMemory(), CacheConfig{})
	ctx := context.Background()

	_, err := svc.Subjects(ctx)
	require.Error(t, err)
	delete(mock.Errors, "Subjects")
	mock.SubjectList = []Subject{{ID: 1, Name: "Math"}}

	subjects, err := svc.Subjects(ctx)
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
}

// gatedResults blocks GetAssessmentResults until gate closes, then fails.
type gatedResults struct {
	*MockService
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedResults) GetAssessmentResults(ctx context.Context, id int) (*assessment.Result, error) {
	g.record(MockCall{Method: "GetAssessmentResults", AssessmentID: id})
	g.entered <- struct{}{}
	<-g.gate
	return nil, errors.New("backend down")
}

func newRedisCache(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	c := cache.NewRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestWithCache_CoalescedFailureCallsBackendOnce(t *testing.T) {
	rc, _ := newRedisCache(t)
	inner := &gatedResults{MockService: sampleMock(), gate: make(chan struct{}), entered: make(chan struct{}, 2)}
	svc := WithCache(inner, rc, CacheConfig{Scope: "u1"})

	errs := make(chan error, 2)
	get := func() {
		_, err := svc.GetAssessmentResults(context.Background(), 7)
		errs <- err
	}
	go get()
	<-inner.entered
	go get()
	// Let the second caller join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(inner.gate)

	for i := 0; i < 2; i++ {
		err := <-errs
		require.Error(t, err)
		assert.EqualError(t, err, "backend down")
	}
	assert.Equal(t, 1, inner.CallCount("GetAssessmentResults"))
}

func TestWithCache_CacheOutageFallsBackToBackend(t *testing.T) {
	rc, mr := newRedisCache(t)
	mock := sampleMock()
	svc := WithCache(mock, rc, CacheConfig{Scope: "u1"})
	mr.Close()

	r, err := svc.GetAssessmentResults(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 60.0, r.ScoreValue())
	assert.Equal(t, 1, mock.CallCount("GetAssessmentResults"))
}

func TestWithHistory_RecordsCompletedAttempt(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close()

	svc := WithHistory(sampleMock(), st.EventRepo(), nil)
	ctx := context.Background()

	a, err := svc.StartAssessment(ctx, 3)
	require.NoError(t, err)
	for _, q := range a.Questions {
		_, err := svc.SubmitAnswer(ctx, a.ID, q.ID, "answer")
		require.NoError(t, err)
	}
	_, err = svc.CompleteAssessment(ctx, a.ID)
	require.NoError(t, err)

	events, err := st.EventRepo().RecentAttempts(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, 7, e.AssessmentID)
	assert.Equal(t, 3, e.TopicID)
	assert.Equal(t, "Recursion", e.TopicName)
	assert.Equal(t, 60.0, e.Score)
	assert.Equal(t, 2, e.Questions)
	assert.Equal(t, 2, e.Answered)
	assert.Equal(t, 1, e.Correct)
	assert.NotEmpty(t, e.SessionID)
}

func TestWithHistory_FailedCompletionNotRecorded(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close()

	mock := sampleMock()
	mock.Errors = map[string]error{"CompleteAssessment": errors.New("boom")}
	svc := WithHistory(mock, st.EventRepo(), nil)
	ctx := context.Background()

	_, err = svc.StartAssessment(ctx, 3)
	require.NoError(t, err)
	_, err = svc.CompleteAssessment(ctx, 7)
	require.Error(t, err)

	events, err := st.EventRepo().RecentAttempts(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDemoService_FullSession(t *testing.T) {
	s := assessment.NewStore(NewDemoService(), nil)
	ctx := context.Background()

	a, err := s.Start(ctx, 1)
	require.NoError(t, err)
	for _, q := range a.Questions {
		_, err := s.SubmitAnswer(ctx, a.ID, q.ID, "anything")
		require.NoError(t, err)
	}
	r, err := s.Complete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, r.ScoreValue())
}
