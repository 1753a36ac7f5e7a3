package assessment

import "maps"

// State is the single source of truth for an in-progress assessment.
type State struct {
	// Current is the active assessment, nil before start and after reset.
	Current *Assessment

	// CurrentQuestionIndex always lies in [0, len(Current.Questions)-1].
	CurrentQuestionIndex int

	// Answers maps question ID to the submitted, trimmed answer text.
	Answers map[int]string

	// Feedback maps question ID to grading feedback. An entry implies an
	// entry in Answers for the same question.
	Feedback map[int]Feedback

	// Results holds the completion payload once Complete succeeds.
	Results *Result

	// TopicSummaries caches fetched per-topic summaries.
	TopicSummaries map[int]Summary

	Loading           bool
	SubmitLoading     bool
	CompletionLoading bool

	// Err is the most recent failure, nil when cleared.
	Err *Error
}

// InitialState returns the empty store state.
func InitialState() State {
	return State{
		Answers:        map[int]string{},
		Feedback:       map[int]Feedback{},
		TopicSummaries: map[int]Summary{},
	}
}

// CurrentQuestion returns the question at CurrentQuestionIndex, or nil.
func (s State) CurrentQuestion() *Question {
	if s.Current == nil || len(s.Current.Questions) == 0 {
		return nil
	}
	q := s.Current.Questions[s.CurrentQuestionIndex]
	return &q
}

// CurrentFeedback returns feedback for the current question, if any.
func (s State) CurrentFeedback() (Feedback, bool) {
	q := s.CurrentQuestion()
	if q == nil {
		return Feedback{}, false
	}
	fb, ok := s.Feedback[q.ID]
	return fb, ok
}

// IsLastQuestion reports whether the current question is the final one.
func (s State) IsLastQuestion() bool {
	if s.Current == nil {
		return false
	}
	return s.CurrentQuestionIndex >= len(s.Current.Questions)-1
}

// QuestionCount returns the number of questions in the current assessment.
func (s State) QuestionCount() int {
	if s.Current == nil {
		return 0
	}
	return len(s.Current.Questions)
}

// clone returns a deep-enough copy so callers can't mutate store internals.
func (s State) clone() State {
	out := s
	out.Answers = maps.Clone(s.Answers)
	out.Feedback = maps.Clone(s.Feedback)
	out.TopicSummaries = maps.Clone(s.TopicSummaries)
	if out.Answers == nil {
		out.Answers = map[int]string{}
	}
	if out.Feedback == nil {
		out.Feedback = map[int]Feedback{}
	}
	if out.TopicSummaries == nil {
		out.TopicSummaries = map[int]Summary{}
	}
	out.Current = s.Current.Clone()
	out.Results = s.Results.Clone()
	return out
}

func clampIndex(i, count int) int {
	maxIndex := count - 1
	if maxIndex < 0 {
		maxIndex = 0
	}
	return min(max(0, i), maxIndex)
}
