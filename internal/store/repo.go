package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int   // max results (0 = unlimited)
	After   int64 // sequence > After
	TopicID int   // 0 = all topics
}

// Credentials is the persisted sign-in state. Assessment progress is never
// stored here.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Email        string
	FirstName    string
	LastName     string
	Grade        string
	UpdatedAt    time.Time
}

// CredentialRepo persists the single signed-in identity.
type CredentialRepo interface {
	// Save replaces the stored credentials.
	Save(ctx context.Context, c Credentials) error

	// Load returns the stored credentials, or nil if signed out.
	Load(ctx context.Context) (*Credentials, error)

	// UpdateAccess replaces only the access token. It is a no-op when
	// signed out.
	UpdateAccess(ctx context.Context, access string) error

	// Clear removes the stored credentials.
	Clear(ctx context.Context) error
}

// AttemptEventData captures one finalized assessment attempt.
type AttemptEventData struct {
	SessionID    string
	AssessmentID int
	TopicID      int
	TopicName    string
	Score        float64
	Questions    int
	Answered     int
	Correct      int
	DurationSecs int
}

// AttemptEvent is a stored AttemptEventData with its ordering metadata.
type AttemptEvent struct {
	AttemptEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to the local attempt log.
type EventRepo interface {
	// AppendAttemptEvent records a finalized attempt.
	AppendAttemptEvent(ctx context.Context, data AttemptEventData) error

	// RecentAttempts returns attempts newest first.
	RecentAttempts(ctx context.Context, opts QueryOpts) ([]AttemptEvent, error)
}
