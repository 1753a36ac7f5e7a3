package tutor

import (
	"context"
	"time"

	"github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/logger"
)

// LoggingService is a decorator that logs every backend call with its
// latency and outcome.
type LoggingService struct {
	inner Service
	log   *logger.Logger
}

// WithLogging wraps a Service with structured call logging.
func WithLogging(s Service, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingService{inner: s, log: log.With("component", "tutor")}
}

func (l *LoggingService) observe(op string, start time.Time, err error, kv ...any) {
	kv = append(kv, "op", op, "latency_ms", time.Since(start).Milliseconds())
	if err != nil {
		l.log.Warn("tutor call failed", append(kv, "error", err)...)
		return
	}
	l.log.Debug("tutor call", kv...)
}

func (l *LoggingService) StartAssessment(ctx context.Context, topicID int) (*assessment.Assessment, error) {
	start := time.Now()
	a, err := l.inner.StartAssessment(ctx, topicID)
	kv := []any{"topic_id", topicID}
	if a != nil {
		kv = append(kv, "assessment_id", a.ID, "questions", len(a.Questions))
	}
	l.observe("start_assessment", start, err, kv...)
	return a, err
}

func (l *LoggingService) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	start := time.Now()
	fb, err := l.inner.SubmitAnswer(ctx, assessmentID, questionID, answer)
	kv := []any{"assessment_id", assessmentID, "question_id", questionID, "answer_len", len(answer)}
	if fb != nil {
		kv = append(kv, "score", fb.Score, "correct", fb.IsCorrect)
	}
	l.observe("submit_answer", start, err, kv...)
	return fb, err
}

func (l *LoggingService) CompleteAssessment(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	start := time.Now()
	r, err := l.inner.CompleteAssessment(ctx, assessmentID)
	kv := []any{"assessment_id", assessmentID}
	if r != nil && r.Score != nil {
		kv = append(kv, "score", *r.Score)
	}
	l.observe("complete_assessment", start, err, kv...)
	return r, err
}

func (l *LoggingService) GetAssessmentResults(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	start := time.Now()
	r, err := l.inner.GetAssessmentResults(ctx, assessmentID)
	l.observe("get_results", start, err, "assessment_id", assessmentID)
	return r, err
}

func (l *LoggingService) GetAssessmentSummary(ctx context.Context, topicID int) (*assessment.Summary, error) {
	start := time.Now()
	s, err := l.inner.GetAssessmentSummary(ctx, topicID)
	l.observe("get_summary", start, err, "topic_id", topicID, "found", s != nil)
	return s, err
}

func (l *LoggingService) Subjects(ctx context.Context) ([]Subject, error) {
	start := time.Now()
	s, err := l.inner.Subjects(ctx)
	l.observe("subjects", start, err, "count", len(s))
	return s, err
}

func (l *LoggingService) Topics(ctx context.Context, subjectID int) (*TopicList, error) {
	start := time.Now()
	t, err := l.inner.Topics(ctx, subjectID)
	kv := []any{"subject_id", subjectID}
	if t != nil {
		kv = append(kv, "count", len(t.Topics))
	}
	l.observe("topics", start, err, kv...)
	return t, err
}

func (l *LoggingService) ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error) {
	start := time.Now()
	h, err := l.inner.ChatHistory(ctx, topicID)
	l.observe("chat_history", start, err, "topic_id", topicID, "count", len(h))
	return h, err
}

func (l *LoggingService) SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	start := time.Now()
	r, err := l.inner.SendMessage(ctx, topicID, prompt, overview)
	kv := []any{"topic_id", topicID, "prompt_len", len(prompt), "overview", overview}
	if r != nil {
		kv = append(kv, "response_len", len(r.Response))
	}
	l.observe("send_message", start, err, kv...)
	return r, err
}
