package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// sequenceRow is the single-row counter behind the global event sequence.
type sequenceRow struct {
	bun.BaseModel `bun:"table:global_sequence"`

	ID      int   `bun:"id,pk"`
	NextVal int64 `bun:"next_val,notnull"`
}

// sequenceCounter hands out the global monotonic sequence number stamped
// on every event row. The mutex serializes within the process; the
// RETURNING clause makes the increment atomic at the database level.
type sequenceCounter struct {
	mu sync.Mutex
	db *bun.DB
}

func newSequenceCounter(db *bun.DB) *sequenceCounter {
	return &sequenceCounter{db: db}
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	row := &sequenceRow{ID: 1}
	_, err := sc.db.NewUpdate().
		Model(row).
		Set("next_val = next_val + 1").
		Where("id = ?", 1).
		Returning("next_val").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return row.NextVal - 1, nil
}

// attemptEventRow maps one attempt_events row.
type attemptEventRow struct {
	bun.BaseModel `bun:"table:attempt_events"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Sequence     int64     `bun:"sequence,notnull"`
	Timestamp    time.Time `bun:"timestamp,notnull"`
	SessionID    string    `bun:"session_id,notnull"`
	AssessmentID int       `bun:"assessment_id,notnull"`
	TopicID      int       `bun:"topic_id,notnull"`
	TopicName    string    `bun:"topic_name,notnull"`
	Score        float64   `bun:"score,notnull"`
	Questions    int       `bun:"questions,notnull"`
	Answered     int       `bun:"answered,notnull"`
	Correct      int       `bun:"correct,notnull"`
	DurationSecs int       `bun:"duration_secs,notnull"`
}

func (r attemptEventRow) event() AttemptEvent {
	return AttemptEvent{
		AttemptEventData: AttemptEventData{
			SessionID:    r.SessionID,
			AssessmentID: r.AssessmentID,
			TopicID:      r.TopicID,
			TopicName:    r.TopicName,
			Score:        r.Score,
			Questions:    r.Questions,
			Answered:     r.Answered,
			Correct:      r.Correct,
			DurationSecs: r.DurationSecs,
		},
		Sequence:  r.Sequence,
		Timestamp: r.Timestamp,
	}
}

// eventRepo implements EventRepo on the attempt_events table.
type eventRepo struct {
	db  *bun.DB
	seq *sequenceCounter
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	row := &attemptEventRow{
		Sequence:     seqNum,
		Timestamp:    time.Now().UTC(),
		SessionID:    data.SessionID,
		AssessmentID: data.AssessmentID,
		TopicID:      data.TopicID,
		TopicName:    data.TopicName,
		Score:        data.Score,
		Questions:    data.Questions,
		Answered:     data.Answered,
		Correct:      data.Correct,
		DurationSecs: data.DurationSecs,
	}
	if _, err := r.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error) {
	var rows []attemptEventRow
	q := r.db.NewSelect().Model(&rows).Order("sequence DESC")
	if opts.After > 0 {
		q = q.Where("sequence > ?", opts.After)
	}
	if opts.TopicID > 0 {
		q = q.Where("topic_id = ?", opts.TopicID)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}

	out := make([]AttemptEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.event())
	}
	return out, nil
}
