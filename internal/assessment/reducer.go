package assessment

// Event is a state transition input for Reduce.
type Event interface {
	isEvent()
}

type (
	StartRequested struct{}
	StartSucceeded struct{ Assessment *Assessment }
	StartFailed    struct{ Err *Error }

	SubmitRequested struct{}
	SubmitSucceeded struct {
		QuestionID int
		Answer     string
		Feedback   Feedback
	}
	SubmitFailed struct{ Err *Error }
	// AnswerRejected records a locally refused submission without touching
	// an in-flight request.
	AnswerRejected struct{ Err *Error }

	CompleteRequested struct{}
	CompleteSucceeded struct {
		AssessmentID int
		Result       *Result
	}
	CompleteFailed    struct{ Err *Error }

	SummaryLoaded struct {
		TopicID int
		Summary Summary
	}

	SetQuestionIndex struct{ Index int }
	Reset            struct{}
	ClearError       struct{}
)

func (StartRequested) isEvent()    {}
func (StartSucceeded) isEvent()    {}
func (StartFailed) isEvent()       {}
func (SubmitRequested) isEvent()   {}
func (SubmitSucceeded) isEvent()   {}
func (SubmitFailed) isEvent()      {}
func (AnswerRejected) isEvent()    {}
func (CompleteRequested) isEvent() {}
func (CompleteSucceeded) isEvent() {}
func (CompleteFailed) isEvent()    {}
func (SummaryLoaded) isEvent()     {}
func (SetQuestionIndex) isEvent()  {}
func (Reset) isEvent()             {}
func (ClearError) isEvent()        {}

// Reduce applies ev to s and returns the next state. The input state is
// never mutated.
func Reduce(s State, ev Event) State {
	next := s.clone()

	switch ev := ev.(type) {
	case StartRequested:
		next.Loading = true
		next.Err = nil

	case StartSucceeded:
		next.Loading = false
		next.Current = ev.Assessment.Clone()
		next.CurrentQuestionIndex = 0
		next.Answers = map[int]string{}
		next.Feedback = map[int]Feedback{}
		next.Results = nil

	case StartFailed:
		next.Loading = false
		next.Current = nil
		next.Err = orDefault(ev.Err, msgStartFailed)

	case SubmitRequested:
		next.SubmitLoading = true
		next.Err = nil

	case SubmitSucceeded:
		next.SubmitLoading = false
		next.Answers[ev.QuestionID] = ev.Answer
		next.Feedback[ev.QuestionID] = ev.Feedback

	case SubmitFailed:
		next.SubmitLoading = false
		next.Err = orDefault(ev.Err, msgSubmitFailed)

	case AnswerRejected:
		next.Err = orDefault(ev.Err, msgSubmitFailed)

	case CompleteRequested:
		next.CompletionLoading = true
		next.Err = nil

	case CompleteSucceeded:
		next.CompletionLoading = false
		if next.Current == nil || next.Current.ID != ev.AssessmentID {
			break
		}
		next.Results = ev.Result.Clone()
		if ev.Result != nil && ev.Result.Score != nil {
			score := *ev.Result.Score
			next.Current.Status = StatusCompleted
			next.Current.TotalScore = &score
		}

	case CompleteFailed:
		next.CompletionLoading = false
		next.Err = orDefault(ev.Err, msgCompleteFailed)

	case SummaryLoaded:
		next.TopicSummaries[ev.TopicID] = ev.Summary

	case SetQuestionIndex:
		next.CurrentQuestionIndex = clampIndex(ev.Index, next.QuestionCount())

	case Reset:
		next = InitialState()

	case ClearError:
		next.Err = nil
	}

	return next
}

func orDefault(err *Error, msg string) *Error {
	if err != nil {
		return err
	}
	return &Error{Kind: KindNetworkOrServer, Message: msg}
}
