package tutor

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/edugen/edugen/internal/assessment"
)

// RetryConfig configures retry behavior for transient read failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry policy used by the CLI.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 500 * time.Millisecond,
		MaxWait:     5 * time.Second,
		Multiplier:  2.0,
	}
}

// RetryService is a decorator that retries idempotent reads with
// exponential backoff and jitter. Start, submit and complete change server
// state and are passed through untouched.
type RetryService struct {
	inner  Service
	config RetryConfig
}

// WithRetry wraps a Service with retry logic for read endpoints.
func WithRetry(s Service, cfg RetryConfig) Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryService{inner: s, config: cfg}
}

func (r *RetryService) StartAssessment(ctx context.Context, topicID int) (*assessment.Assessment, error) {
	return r.inner.StartAssessment(ctx, topicID)
}

func (r *RetryService) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	return r.inner.SubmitAnswer(ctx, assessmentID, questionID, answer)
}

func (r *RetryService) CompleteAssessment(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	return r.inner.CompleteAssessment(ctx, assessmentID)
}

func (r *RetryService) GetAssessmentResults(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	return retry(ctx, r, func() (*assessment.Result, error) {
		return r.inner.GetAssessmentResults(ctx, assessmentID)
	})
}

func (r *RetryService) GetAssessmentSummary(ctx context.Context, topicID int) (*assessment.Summary, error) {
	return retry(ctx, r, func() (*assessment.Summary, error) {
		return r.inner.GetAssessmentSummary(ctx, topicID)
	})
}

func (r *RetryService) Subjects(ctx context.Context) ([]Subject, error) {
	return retry(ctx, r, func() ([]Subject, error) {
		return r.inner.Subjects(ctx)
	})
}

func (r *RetryService) Topics(ctx context.Context, subjectID int) (*TopicList, error) {
	return retry(ctx, r, func() (*TopicList, error) {
		return r.inner.Topics(ctx, subjectID)
	})
}

func (r *RetryService) ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error) {
	return retry(ctx, r, func() ([]ChatMessage, error) {
		return r.inner.ChatHistory(ctx, topicID)
	})
}

// SendMessage is never retried; the tutor may already have answered.
func (r *RetryService) SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	return r.inner.SendMessage(ctx, topicID, prompt, overview)
}

func retry[T any](ctx context.Context, r *RetryService, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := range r.config.MaxAttempts {
		v, err := call()
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return zero, err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
	return zero, lastErr
}

// shouldRetry retries transport failures, 429 and 5xx responses.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var unavail *ErrUnavailable
	if errors.As(err, &unavail) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

func (r *RetryService) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}
