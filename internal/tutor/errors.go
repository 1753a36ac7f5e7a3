package tutor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoRefreshToken is returned when a refresh is needed but no refresh
// token is stored.
var ErrNoRefreshToken = errors.New("no refresh token available")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string // from the body's "error" or "detail" field, may be empty
	Path    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Path, e.Status, http.StatusText(e.Status))
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.Status }

// ServerMessage returns the backend's human-readable message.
func (e *APIError) ServerMessage() string { return e.Message }

// Unauthorized reports whether the request was rejected for credentials.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

// Temporary reports whether retrying the same request might succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// ErrInvalidPayload means a 2xx response did not match the expected shape.
type ErrInvalidPayload struct {
	Path string
	Err  error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Path, e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// InvalidPayload marks this error as a contract violation.
func (e *ErrInvalidPayload) InvalidPayload() bool { return true }

// ErrUnavailable wraps transport failures: DNS, refused connections,
// timeouts.
type ErrUnavailable struct {
	Path string
	Err  error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("tutoring service unavailable (%s): %v", e.Path, e.Err)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// newAPIError builds an APIError from a failed response body.
func newAPIError(path string, status int, body []byte) *APIError {
	e := &APIError{Status: status, Path: path}
	var payload struct {
		Error  any `json:"error"`
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = firstMessage(payload.Error, payload.Detail)
	}
	return e
}

func firstMessage(vals ...any) string {
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case []any:
			if len(t) > 0 {
				if s, ok := t[0].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}
