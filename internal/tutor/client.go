package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/edugen/edugen/internal/assessment"
	"github.com/edugen/edugen/internal/logger"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// publicPaths never carry a bearer token.
var publicPaths = []string{
	"/auth/register/",
	"/auth/login/",
	"/auth/verify-code/",
	"/auth/resend-code/",
	"/auth/refresh/",
}

// ClientConfig configures the HTTP client.
type ClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api".
	BaseURL string

	// Timeout bounds each HTTP round trip. Default: 30s.
	Timeout time.Duration

	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// Client talks to the tutoring backend over JSON/HTTP. On a 401 it
// refreshes the access token once and replays the request; if the refresh
// fails the stored credentials are cleared.
type Client struct {
	baseURL string
	http    *http.Client
	creds   Credentials
	log     *logger.Logger

	refreshes singleflight.Group
}

var _ Service = (*Client)(nil)

// NewClient creates a Client. creds may be nil for a signed-out client.
func NewClient(cfg ClientConfig, creds Credentials, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		creds:   creds,
		log:     log.With("component", "tutor_client"),
	}
}

func (c *Client) StartAssessment(ctx context.Context, topicID int) (*assessment.Assessment, error) {
	var out assessment.Assessment
	path := fmt.Sprintf("/tutor/assessment/start/%d/", topicID)
	if err := c.do(ctx, http.MethodPost, path, nil, assessmentSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, assessmentID, questionID int, answer string) (*assessment.Feedback, error) {
	body := map[string]any{
		"question_id": questionID,
		"answer":      answer,
	}
	var out assessment.Feedback
	path := fmt.Sprintf("/tutor/assessment/%d/submit/", assessmentID)
	if err := c.do(ctx, http.MethodPost, path, body, feedbackSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CompleteAssessment(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	var out assessment.Result
	path := fmt.Sprintf("/tutor/assessment/%d/complete/", assessmentID)
	if err := c.do(ctx, http.MethodPost, path, nil, resultSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAssessmentResults(ctx context.Context, assessmentID int) (*assessment.Result, error) {
	var out assessment.Result
	path := fmt.Sprintf("/tutor/assessment/%d/results/", assessmentID)
	if err := c.do(ctx, http.MethodGet, path, nil, resultSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAssessmentSummary returns nil without error when the backend has no
// summary for the topic.
func (c *Client) GetAssessmentSummary(ctx context.Context, topicID int) (*assessment.Summary, error) {
	var out *assessment.Summary
	path := fmt.Sprintf("/tutor/assessment/summary/%d/", topicID)
	if err := c.do(ctx, http.MethodGet, path, nil, summarySchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	if err := c.do(ctx, http.MethodGet, "/tutor/subjects/", nil, subjectsSchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Topics(ctx context.Context, subjectID int) (*TopicList, error) {
	var out TopicList
	path := fmt.Sprintf("/tutor/topics/%d/", subjectID)
	if err := c.do(ctx, http.MethodGet, path, nil, topicsSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error) {
	var out []ChatMessage
	path := fmt.Sprintf("/tutor/chat/%d/", topicID)
	if err := c.do(ctx, http.MethodGet, path, nil, chatHistorySchema, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error) {
	body := map[string]any{
		"prompt":            prompt,
		"isInitialOverview": overview,
	}
	var out ChatReply
	path := fmt.Sprintf("/tutor/chat/%d/post/", topicID)
	if err := c.do(ctx, http.MethodPost, path, body, chatReplySchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges email and password for a token pair. The caller persists
// the result.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body := map[string]string{"email": email, "password": password}
	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, loginSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the refresh token server-side and always clears local
// credentials. A server failure is returned after the local clear.
func (c *Client) Logout(ctx context.Context) error {
	if c.creds == nil {
		return nil
	}
	_, refresh, err := c.creds.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("read credentials: %w", err)
	}

	var remoteErr error
	if refresh != "" {
		_, remoteErr = c.send(ctx, http.MethodPost, "/auth/logout/", map[string]string{"refresh": refresh}, true)
	}
	if err := c.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return remoteErr
}

// Refresh obtains a new access token with the stored refresh token.
// Concurrent callers share one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		if c.creds == nil {
			return nil, ErrNoRefreshToken
		}
		_, refresh, err := c.creds.Tokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credentials: %w", err)
		}
		if refresh == "" {
			return nil, ErrNoRefreshToken
		}

		raw, err := c.send(ctx, http.MethodPost, "/auth/refresh/", map[string]string{"refresh": refresh}, true)
		if err != nil {
			return nil, err
		}
		var out struct {
			Access string `json:"access" validate:"required"`
		}
		if err := decode("/auth/refresh/", raw, refreshSchema, &out); err != nil {
			return nil, err
		}
		if err := c.creds.UpdateAccess(ctx, out.Access); err != nil {
			return nil, fmt.Errorf("store access token: %w", err)
		}
		return nil, nil
	})
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any, schema *Schema, out any) error {
	raw, err := c.send(ctx, method, path, body, false)
	if err != nil {
		return err
	}
	return decode(path, raw, schema, out)
}

// send performs one request. When replayed is false a 401 triggers a
// single refresh-and-replay.
func (c *Client) send(ctx context.Context, method, path string, body any, replayed bool) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	start := time.Now()
	status, data, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, &ErrUnavailable{Path: path, Err: err}
	}
	c.log.Debug("request", "method", method, "path", path, "status", status, "latency_ms", time.Since(start).Milliseconds())

	if status == http.StatusUnauthorized && !replayed && !isPublic(path) && c.creds != nil {
		if rerr := c.Refresh(ctx); rerr != nil {
			c.log.Warn("token refresh failed, clearing credentials", "error", rerr)
			if cerr := c.creds.Clear(ctx); cerr != nil {
				c.log.Error("clear credentials", "error", cerr)
			}
			return nil, newAPIError(path, status, data)
		}
		return c.send(ctx, method, path, body, true)
	}

	if status < 200 || status >= 300 {
		return nil, newAPIError(path, status, data)
	}
	return data, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("ngrok-skip-browser-warning", "true")

	if !isPublic(path) && c.creds != nil {
		access, _, err := c.creds.Tokens(ctx)
		if err != nil {
			return 0, nil, fmt.Errorf("read credentials: %w", err)
		}
		if access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func isPublic(path string) bool {
	for _, p := range publicPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}
