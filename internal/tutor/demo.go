package tutor

import "github.com/edugen/edugen/internal/assessment"

// NewDemoService returns a MockService with a small offline catalogue for
// trying the interface without a backend. Every answer is accepted.
func NewDemoService() *MockService {
	score := 100.0
	return &MockService{
		SubjectList: []Subject{
			{ID: 1, Name: "Computer Science", Description: "Programming fundamentals", TopicCount: 2},
		},
		TopicLists: map[int]*TopicList{
			1: {
				Subject: Subject{ID: 1, Name: "Computer Science"},
				Topics: []Topic{
					{ID: 1, Name: "Recursion", Description: "Functions that call themselves", SubjectID: 1},
					{ID: 2, Name: "Concurrency", Description: "Doing many things at once", SubjectID: 1},
				},
			},
		},
		Assessment: &assessment.Assessment{
			ID:        1,
			TopicName: "Recursion",
			Questions: []assessment.Question{
				{ID: 1, Text: "What is a base case and why does a recursive function need one?", Difficulty: assessment.DifficultyEasy},
				{ID: 2, Text: "Explain how the call stack grows during recursion.", Difficulty: assessment.DifficultyMedium},
				{ID: 3, Text: "When would you convert a recursive algorithm to an iterative one?", Difficulty: assessment.DifficultyHard},
			},
			Status: assessment.StatusInProgress,
		},
		DefaultFeedback: assessment.Feedback{
			IsCorrect: true,
			Score:     100,
			Feedback:  "Demo mode accepts every answer.",
		},
		Result: &assessment.Result{
			AssessmentID: 1,
			TopicID:      1,
			Score:        &score,
		},
		Summaries: map[int]*assessment.Summary{},
		Replies:   []string{
			"Recursion solves a problem by reducing it to a smaller instance of itself until a base case answers directly.",
		},
		DefaultReply: "The demo tutor is offline. Sign in to a real server to chat about this topic.",
	}
}
