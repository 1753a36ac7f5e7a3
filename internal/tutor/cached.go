package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/cache"
)

// CacheConfig controls WithCache.
type CacheConfig struct {
	// Scope namespaces keys, typically per signed-in user.
	Scope string

	// ScopeFunc, when set, overrides Scope on every call so keys follow
	// the learner across sign-in and sign-out.
	ScopeFunc func() string

	// ResultTTL applies to finalized results, which never change.
	ResultTTL time.Duration

	// SummaryTTL applies to topic summaries and the catalogue.
	SummaryTTL time.Duration
}

// CachedService is a decorator that caches read endpoints. Completing an
// assessment invalidates the summary of its topic and seeds the result.
type CachedService struct {
	inner Service
	cache cache.Cache
	cfg   CacheConfig
}

// WithCache wraps a Service with a read-through cache.
func WithCache(s Service, c cache.Cache, cfg CacheConfig) Service {
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 5 * time.Minute
	}
	return &CachedService{inner: s, cache: c, cfg: cfg}
}

func (c *CachedService) key(parts ...any) string {
	k := c.cfg.Scope
	if c.cfg.ScopeFunc != nil {
		k = c.cfg.ScopeFunc()
	}
	for _, p := range parts {
		k += fmt.Sprintf(":%v", p)
	}
	return k
}

func (c *CachedService) StartAssessment(ctx context.Context, topicID int) (*assessment.Assessment, error) {
	return c.inner.StartAssessment(ctx, topicID)
}

func (c *CachedService) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	return c.inner.SubmitAnswer(ctx, assessmentID, questionID, answer)
}

func (c *CachedService) CompleteAssessment(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	r, err := c.inner.CompleteAssessment(ctx, assessmentID)
	if err != nil || r == nil {
		return r, err
	}
	if r.TopicID != 0 {
		_ = c.cache.Delete(ctx, c.key("summary", r.TopicID))
	}
	if r.Score != nil && len(r.QuestionResults) > 0 {
		_ = c.cache.Set(ctx, c.key("result", assessmentID), r, c.cfg.ResultTTL)
	}
	return r, nil
}

func (c *CachedService) GetAssessmentResults(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	return readThrough(ctx, c, c.key("result", assessmentID), c.cfg.ResultTTL,
		func(ctx context.Context) (*assessment.Result, error) {
			return c.inner.GetAssessmentResults(ctx, assessmentID)
		})
}

// GetAssessmentSummary does not cache absent summaries.
func (c *CachedService) GetAssessmentSummary(ctx context.Context, topicID int) (*assessment.Summary, error) {
	key := c.key("summary", topicID)
	var out assessment.Summary
	if err := c.cache.Get(ctx, key, &out); err == nil {
		return &out, nil
	}
	s, err := c.inner.GetAssessmentSummary(ctx, topicID)
	if err != nil || s == nil {
		return s, err
	}
	_ = c.cache.Set(ctx, key, s, c.cfg.SummaryTTL)
	return s, nil
}

func (c *CachedService) Subjects(ctx context.Context) ([]Subject, error) {
	return readThrough(ctx, c, c.key("subjects"), c.cfg.SummaryTTL, c.inner.Subjects)
}

func (c *CachedService) Topics(ctx context.Context, subjectID int) (*TopicList, error) {
	return readThrough(ctx, c, c.key("topics", subjectID), c.cfg.SummaryTTL,
		func(ctx context.Context) (*TopicList, error) {
			return c.inner.Topics(ctx, subjectID)
		})
}

// ChatHistory is not cached; it grows with every message.
func (c *CachedService) ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error) {
	return c.inner.ChatHistory(ctx, topicID)
}

func (c *CachedService) SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	return c.inner.SendMessage(ctx, topicID, prompt, overview)
}

// readThrough serves key from the cache, loading on a miss. Backend errors,
// including ones shared by coalesced callers, are returned as is; only a
// failing cache falls back to calling the backend directly.
func readThrough[T any](ctx context.Context, c *CachedService, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var out T
	err := cache.GetOrLoad(ctx, c.cache, key, &out, ttl, func(ctx context.Context) (any, error) {
		return load(ctx)
	})
	switch {
	case err == nil:
		return out, nil
	case !errors.Is(err, cache.ErrUnavailable):
		var zero T
		return zero, err
	}
	return load(ctx)
}
