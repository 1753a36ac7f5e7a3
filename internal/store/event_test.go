package store

import (
	"context"
	"testing"
)

func TestAppendAndQueryAttempts(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	attempts := []AttemptEventData{
		{SessionID: "s1", AssessmentID: 10, TopicID: 1, TopicName: "Fractions", Score: 80, Questions: 3, Answered: 3, Correct: 2},
		{SessionID: "s2", AssessmentID: 11, TopicID: 2, TopicName: "Decimals", Score: 55.5, Questions: 4, Answered: 2, Correct: 1},
		{SessionID: "s3", AssessmentID: 12, TopicID: 1, TopicName: "Fractions", Score: 100, Questions: 3, Answered: 3, Correct: 3},
	}
	for _, a := range attempts {
		if err := repo.AppendAttemptEvent(ctx, a); err != nil {
			t.Fatalf("append %s: %v", a.SessionID, err)
		}
	}

	all, err := repo.RecentAttempts(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Newest first.
	if all[0].AssessmentID != 12 || all[2].AssessmentID != 10 {
		t.Errorf("order = %d,%d,%d", all[0].AssessmentID, all[1].AssessmentID, all[2].AssessmentID)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Sequence >= all[i-1].Sequence {
			t.Errorf("sequence not descending at %d", i)
		}
	}
	if all[1].Score != 55.5 || all[1].TopicName != "Decimals" {
		t.Errorf("row = %+v", all[1])
	}
	if all[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}

	byTopic, err := repo.RecentAttempts(ctx, QueryOpts{TopicID: 1, Limit: 1})
	if err != nil {
		t.Fatalf("query topic: %v", err)
	}
	if len(byTopic) != 1 || byTopic[0].AssessmentID != 12 {
		t.Errorf("topic query = %+v", byTopic)
	}

	after, err := repo.RecentAttempts(ctx, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("after len = %d, want 1", len(after))
	}
}
