package assessment

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/edugen/edugen/internal/logger"
)

// Service is the tutoring backend as seen by the store.
type Service interface {
	StartAssessment(ctx context.Context, topicID int) (*Assessment, error)
	SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*Feedback, error)
	CompleteAssessment(ctx context.Context, assessmentID int) (*Result, error)
	GetAssessmentResults(ctx context.Context, assessmentID int) (*Result, error)
	GetAssessmentSummary(ctx context.Context, topicID int) (*Summary, error)
}

// Store owns the assessment State and funnels every mutation through
// Reduce. Effects (Start, SubmitAnswer, Complete, FetchSummary) call the
// Service and fold the outcome back in.
//
// Reset bumps a generation counter; an effect that resolves after a Reset
// is dropped instead of being applied to the fresh state.
type Store struct {
	svc Service
	log *logger.Logger

	mu    sync.Mutex
	state State
	gen   uint64
}

// NewStore creates a Store backed by svc. A nil log discards output.
func NewStore(svc Service, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		svc:   svc,
		log:   log.With("component", "assessment_store"),
		state: InitialState(),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Generation returns the current reset generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Dispatch applies ev synchronously and returns the generation it was
// applied under.
func (s *Store) Dispatch(ev Event) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(ev)
	return s.gen
}

// dispatchIf applies ev only if no Reset happened since gen was observed.
func (s *Store) dispatchIf(gen uint64, ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.log.Debug("dropping stale effect resolution", "event", eventName(ev), "generation", gen)
		return false
	}
	s.apply(ev)
	return true
}

func (s *Store) apply(ev Event) {
	if _, ok := ev.(Reset); ok {
		s.gen++
	}
	s.state = Reduce(s.state, ev)
}

// Start begins an assessment for topicID. The store must not hold an
// assessment; callers Reset first.
func (s *Store) Start(ctx context.Context, topicID int) (*Assessment, error) {
	s.mu.Lock()
	if s.state.Current != nil {
		s.mu.Unlock()
		return nil, &Error{Kind: KindState, Message: "An assessment is already active; reset before starting another"}
	}
	s.apply(StartRequested{})
	gen := s.gen
	s.mu.Unlock()

	s.log.Info("starting assessment", "topic_id", topicID)

	a, err := s.svc.StartAssessment(ctx, topicID)
	if err == nil && (a == nil || len(a.Questions) == 0) {
		err = invalidPayload(msgInvalidAssessment, nil)
	}
	if err != nil {
		e := normalize(err, msgStartFailed, msgInvalidAssessment)
		s.log.Warn("start assessment failed", "topic_id", topicID, "kind", string(e.Kind), "status", e.StatusCode, "error", err)
		s.dispatchIf(gen, StartFailed{Err: e})
		return nil, e
	}

	if a.Status == "" {
		a.Status = StatusInProgress
	}
	s.dispatchIf(gen, StartSucceeded{Assessment: a})
	s.log.Info("assessment started", "assessment_id", a.ID, "questions", len(a.Questions))
	return a.Clone(), nil
}

// SubmitAnswer grades answer for questionID. Blank answers are rejected
// locally with KindEmptyAnswer and never reach the Service.
func (s *Store) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*Feedback, error) {
	trimmed := strings.TrimSpace(answer)

	s.mu.Lock()
	if trimmed == "" {
		e := &Error{Kind: KindEmptyAnswer, Message: msgEmptyAnswer, StatusCode: http.StatusBadRequest}
		s.apply(AnswerRejected{Err: e})
		s.mu.Unlock()
		return nil, e
	}
	if e := s.checkActive(assessmentID); e != nil {
		s.apply(AnswerRejected{Err: e})
		s.mu.Unlock()
		return nil, e
	}
	s.apply(SubmitRequested{})
	gen := s.gen
	s.mu.Unlock()

	fb, err := s.svc.SubmitAnswer(ctx, assessmentID, questionID, trimmed)
	if err == nil && fb == nil {
		err = invalidPayload(msgInvalidFeedback, nil)
	}
	if err != nil {
		e := normalize(err, msgSubmitFailed, msgInvalidFeedback)
		s.log.Warn("submit answer failed", "assessment_id", assessmentID, "question_id", questionID, "kind", string(e.Kind), "error", err)
		s.dispatchIf(gen, SubmitFailed{Err: e})
		return nil, e
	}

	s.dispatchIf(gen, SubmitSucceeded{QuestionID: questionID, Answer: trimmed, Feedback: *fb})
	s.log.Debug("answer graded", "assessment_id", assessmentID, "question_id", questionID, "correct", fb.IsCorrect, "score", fb.Score)
	return fb, nil
}

// Complete finalizes the assessment. It is the only transition that sets
// Status to completed, and only for the active assessment.
func (s *Store) Complete(ctx context.Context, assessmentID int) (*Result, error) {
	s.mu.Lock()
	if e := s.checkActive(assessmentID); e != nil {
		s.mu.Unlock()
		return nil, e
	}
	s.apply(CompleteRequested{})
	gen := s.gen
	s.mu.Unlock()

	r, err := s.svc.CompleteAssessment(ctx, assessmentID)
	if err == nil && (r == nil || r.Score == nil) {
		err = invalidPayload(msgInvalidCompletion, nil)
	}
	if err != nil {
		e := normalize(err, msgCompleteFailed, msgInvalidCompletion)
		s.log.Warn("complete assessment failed", "assessment_id", assessmentID, "kind", string(e.Kind), "error", err)
		s.dispatchIf(gen, CompleteFailed{Err: e})
		return nil, e
	}

	s.dispatchIf(gen, CompleteSucceeded{AssessmentID: assessmentID, Result: r})
	s.log.Info("assessment completed", "assessment_id", assessmentID, "score", *r.Score)
	return r.Clone(), nil
}

// FetchSummary loads the topic summary into TopicSummaries. Failures are
// returned but not recorded as the session error.
func (s *Store) FetchSummary(ctx context.Context, topicID int) (*Summary, error) {
	gen := s.Generation()

	sum, err := s.svc.GetAssessmentSummary(ctx, topicID)
	if err != nil {
		return nil, normalize(err, msgSummaryFailed, msgInvalidSummary)
	}
	if sum == nil {
		return nil, &Error{Kind: KindNetworkOrServer, Message: msgNoSummary, StatusCode: http.StatusNotFound}
	}
	s.dispatchIf(gen, SummaryLoaded{TopicID: topicID, Summary: *sum})
	return sum, nil
}

// SetCurrentQuestionIndex moves to question i, clamped to the valid range.
func (s *Store) SetCurrentQuestionIndex(i int) {
	s.Dispatch(SetQuestionIndex{Index: i})
}

// Reset returns the store to its initial state and invalidates in-flight
// effects.
func (s *Store) Reset() {
	s.Dispatch(Reset{})
}

// ClearError clears only the error field.
func (s *Store) ClearError() {
	s.Dispatch(ClearError{})
}

// checkActive must be called with mu held.
func (s *Store) checkActive(assessmentID int) *Error {
	cur := s.state.Current
	switch {
	case cur == nil || cur.ID != assessmentID:
		return &Error{Kind: KindState, Message: msgNoActiveAssessment}
	case cur.Completed():
		return &Error{Kind: KindState, Message: msgAlreadyCompleted}
	}
	return nil
}

func eventName(ev Event) string {
	switch ev.(type) {
	case StartSucceeded:
		return "start_succeeded"
	case StartFailed:
		return "start_failed"
	case SubmitSucceeded:
		return "submit_succeeded"
	case SubmitFailed:
		return "submit_failed"
	case AnswerRejected:
		return "answer_rejected"
	case CompleteSucceeded:
		return "complete_succeeded"
	case CompleteFailed:
		return "complete_failed"
	case SummaryLoaded:
		return "summary_loaded"
	}
	return "other"
}
