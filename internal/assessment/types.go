package assessment

import "time"

// Status is the lifecycle status of an assessment attempt.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Difficulty is the tier a question belongs to.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a single question within an assessment. Its position in
// Assessment.Questions is authoritative and never re-sorted.
type Question struct {
	ID         int        `json:"id" validate:"required"`
	Text       string     `json:"question_text" validate:"required"`
	Difficulty Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Active     bool       `json:"is_active"`
}

// Assessment identifies one active attempt at a topic's question set.
type Assessment struct {
	ID         int        `json:"id" validate:"required"`
	TopicID    int        `json:"topic_id"`
	TopicName  string     `json:"topic_name"`
	Questions  []Question `json:"questions" validate:"required,min=1,dive"`
	StartTime  string     `json:"start_time,omitempty"`
	Status     Status     `json:"status"`
	TotalScore *float64   `json:"total_score"`
}

// Clone returns a deep copy of a.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Questions = append([]Question(nil), a.Questions...)
	out.TotalScore = cloneScore(a.TotalScore)
	return &out
}

// Completed reports whether the assessment has been finalized.
func (a *Assessment) Completed() bool {
	return a != nil && a.Status == StatusCompleted
}

// Feedback is the grading outcome for one submitted answer.
type Feedback struct {
	IsCorrect bool    `json:"isCorrect"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
	Feedback  string  `json:"feedback"`
}

// QuestionResult is the server-confirmed outcome for one question.
type QuestionResult struct {
	QuestionID   int     `json:"questionId"`
	QuestionText string  `json:"questionText"`
	Score        float64 `json:"score"`
	IsCorrect    bool    `json:"isCorrect"`
	UserAnswer   string  `json:"userAnswer"`
	Feedback     string  `json:"feedback"`
}

// Result is the finalized result set of an assessment.
type Result struct {
	AssessmentID    int              `json:"assessmentId"`
	TopicID         int              `json:"topicId"`
	Score           *float64         `json:"score" validate:"required"`
	CompletedAt     string           `json:"completedAt"`
	QuestionResults []QuestionResult `json:"questionResults"`
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Score = cloneScore(r.Score)
	out.QuestionResults = append([]QuestionResult(nil), r.QuestionResults...)
	return &out
}

func cloneScore(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ScoreValue returns the overall score, or 0 when absent.
func (r *Result) ScoreValue() float64 {
	if r == nil || r.Score == nil {
		return 0
	}
	return *r.Score
}

// CompletedTime parses CompletedAt. The zero time is returned when the
// timestamp is missing or malformed.
func (r *Result) CompletedTime() time.Time {
	if r == nil || r.CompletedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, r.CompletedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Summary aggregates historical attempts for a topic.
type Summary struct {
	ID              int     `json:"id"`
	TopicID         int     `json:"topic_id"`
	TopicName       string  `json:"topic_name"`
	TotalAttempts   int     `json:"total_attempts" validate:"gte=0"`
	BestScore       float64 `json:"best_score"`
	LastScore       float64 `json:"last_score"`
	LastAttemptDate string  `json:"last_attempt_date"`
	AverageScore    float64 `json:"average_score"`
}

// Attempted reports whether the learner has attempted the topic at least once.
func (s *Summary) Attempted() bool {
	return s != nil && s.TotalAttempts > 0
}
