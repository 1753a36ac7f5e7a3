package tutor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/store"
)

// attemptTally accumulates what the client saw of one attempt.
type attemptTally struct {
	sessionID string
	topicID   int
	topicName string
	questions int
	answered  int
	correct   int
	started   time.Time
}

// HistoryService is a decorator that appends an attempt event to the
// local log whenever an assessment is completed. Only finalized attempts
// are recorded; in-progress state is never written.
type HistoryService struct {
	inner     Service
	eventRepo store.EventRepo
	log       *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	attempts map[int]*attemptTally
}

// WithHistory wraps a Service with attempt recording.
func WithHistory(s Service, repo store.EventRepo, log *logger.Logger) Service {
	if log == nil {
		log = logger.Nop()
	}
	return &HistoryService{
		inner:     s,
		eventRepo: repo,
		log:       log.With("component", "history"),
		now:       time.Now,
		attempts:  make(map[int]*attemptTally),
	}
}

func (h *HistoryService) StartAssessment(ctx context.Context, topicID int) (*assessment.Assessment, error) {
	a, err := h.inner.StartAssessment(ctx, topicID)
	if err != nil || a == nil {
		return a, err
	}
	h.mu.Lock()
	h.attempts[a.ID] = &attemptTally{
		sessionID: uuid.NewString(),
		topicID:   topicID,
		topicName: a.TopicName,
		questions: len(a.Questions),
		started:   h.now(),
	}
	h.mu.Unlock()
	return a, nil
}

func (h *HistoryService) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	fb, err := h.inner.SubmitAnswer(ctx, assessmentID, questionID, answer)
	if err != nil || fb == nil {
		return fb, err
	}
	h.mu.Lock()
	if t, ok := h.attempts[assessmentID]; ok {
		t.answered++
		if fb.IsCorrect {
			t.correct++
		}
	}
	h.mu.Unlock()
	return fb, nil
}

func (h *HistoryService) CompleteAssessment(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	r, err := h.inner.CompleteAssessment(ctx, assessmentID)
	if err != nil || r == nil || r.Score == nil {
		return r, err
	}

	h.mu.Lock()
	t, ok := h.attempts[assessmentID]
	delete(h.attempts, assessmentID)
	h.mu.Unlock()

	data := store.AttemptEventData{
		AssessmentID: assessmentID,
		TopicID:      r.TopicID,
		Score:        *r.Score,
	}
	if ok {
		data.SessionID = t.sessionID
		data.TopicName = t.topicName
		data.Questions = t.questions
		data.Answered = t.answered
		data.Correct = t.correct
		data.DurationSecs = int(h.now().Sub(t.started).Seconds())
		if data.TopicID == 0 {
			data.TopicID = t.topicID
		}
	} else {
		data.SessionID = uuid.NewString()
	}

	// Recording is best effort; the completion already succeeded.
	if logErr := h.eventRepo.AppendAttemptEvent(ctx, data); logErr != nil {
		h.log.Warn("failed to record attempt", "assessment_id", assessmentID, "error", logErr)
	}
	return r, nil
}

func (h *HistoryService) GetAssessmentResults(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	return h.inner.GetAssessmentResults(ctx, assessmentID)
}

func (h *HistoryService) GetAssessmentSummary(ctx context.Context, topicID int) (*assessment.Summary, error) {
	return h.inner.GetAssessmentSummary(ctx, topicID)
}

func (h *HistoryService) Subjects(ctx context.Context) ([]Subject, error) {
	return h.inner.Subjects(ctx)
}

func (h *HistoryService) Topics(ctx context.Context, subjectID int) (*TopicList, error) {
	return h.inner.Topics(ctx, subjectID)
}

func (h *HistoryService) ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error) {
	return h.inner.ChatHistory(ctx, topicID)
}

func (h *HistoryService) SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	return h.inner.SendMessage(ctx, topicID, prompt, overview)
}
