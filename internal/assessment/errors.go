package assessment

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced by the store.
type ErrorKind string

const (
	// KindInvalidPayload means the backend answered with a malformed payload.
	KindInvalidPayload ErrorKind = "invalid_payload"
	// KindNetworkOrServer carries a transport failure or an HTTP error status.
	KindNetworkOrServer ErrorKind = "network_or_server"
	// KindEmptyAnswer is local validation of a blank answer.
	KindEmptyAnswer ErrorKind = "empty_answer"
	// KindState is an operation attempted in a state that forbids it.
	KindState ErrorKind = "state"
)

// Error is the normalized form of every failure the store records.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int // 0 when unknown
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so callers can use errors.Is(err, ErrEmptyAnswer).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidPayload  = &Error{Kind: KindInvalidPayload}
	ErrNetworkOrServer = &Error{Kind: KindNetworkOrServer}
	ErrEmptyAnswer     = &Error{Kind: KindEmptyAnswer}
	ErrState           = &Error{Kind: KindState}
)

// StatusError is implemented by collaborator errors that carry an HTTP status.
type StatusError interface {
	error
	HTTPStatus() int
	ServerMessage() string
}

// InvalidPayloadError is implemented by collaborator errors that mean the
// backend violated its response contract.
type InvalidPayloadError interface {
	error
	InvalidPayload() bool
}

const (
	msgStartFailed        = "Failed to start assessment"
	msgSubmitFailed       = "Failed to submit answer"
	msgCompleteFailed     = "Failed to complete assessment"
	msgSummaryFailed      = "Failed to fetch summary"
	msgInvalidAssessment  = "Invalid assessment data received"
	msgInvalidCompletion  = "Invalid completion data received"
	msgInvalidFeedback    = "Invalid feedback data received"
	msgInvalidSummary     = "Invalid summary data received"
	msgEmptyAnswer        = "Answer cannot be empty"
	msgNoSummary          = "No summary available"
	msgAlreadyCompleted   = "Assessment is already completed"
	msgNoActiveAssessment = "No assessment in progress"
)

func invalidPayload(msg string, err error) *Error {
	return &Error{Kind: KindInvalidPayload, Message: msg, StatusCode: http.StatusBadRequest, Err: err}
}

// normalize maps any collaborator error onto *Error. fallback is used when
// the error carries no server-provided message; invalidMsg when the
// collaborator reports a contract violation.
func normalize(err error, fallback, invalidMsg string) *Error {
	if err == nil {
		return nil
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}

	var ip InvalidPayloadError
	if errors.As(err, &ip) && ip.InvalidPayload() {
		return invalidPayload(invalidMsg, err)
	}

	out := &Error{Kind: KindNetworkOrServer, Message: fallback, Err: err}
	var se StatusError
	if errors.As(err, &se) {
		out.StatusCode = se.HTTPStatus()
		if m := se.ServerMessage(); m != "" {
			out.Message = m
		}
	}
	return out
}
