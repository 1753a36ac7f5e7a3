package tutor

import (
	"context"

	"github.com/edugen/edugen/internal/assessment"
)

// Service is the tutoring backend: assessment endpoints plus the content
// catalogue the learner browses to pick a topic.
type Service interface {
	assessment.Service

	// Subjects lists every subject available to the learner.
	Subjects(ctx context.Context) ([]Subject, error)

	// Topics lists the topics of one subject.
	Topics(ctx context.Context, subjectID int) (*TopicList, error)

	// ChatHistory returns the tutor conversation for a topic, oldest first.
	ChatHistory(ctx context.Context, topicID int) ([]ChatMessage, error)

	// SendMessage asks the tutor a question about a topic. With overview
	// set the prompt may be empty and the tutor introduces the topic.
	SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*ChatReply, error)
}

// Subject is a top-level area of study.
type Subject struct {
	ID          int    `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	TopicCount  int    `json:"topicCount"`
}

// Topic is an assessable unit within a subject.
type Topic struct {
	ID          int    `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	SubjectID   int    `json:"subjectId"`
}

// TopicList is the topics endpoint payload.
type TopicList struct {
	Subject Subject `json:"subject"`
	Topics  []Topic `json:"topics" validate:"dive"`
}

// ChatMessage is one prompt and tutor response pair.
type ChatMessage struct {
	ID        int    `json:"id"`
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// ChatReply is the tutor's answer to SendMessage.
type ChatReply struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response" validate:"required"`
}

// User is the profile returned on sign-in.
type User struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Grade     string `json:"grade"`
}

// LoginResult carries the token pair issued on sign-in.
type LoginResult struct {
	Access  string `json:"access" validate:"required"`
	Refresh string `json:"refresh" validate:"required"`
	User    *User  `json:"user"`
}

// Credentials is where the client reads and rotates its tokens.
type Credentials interface {
	// Tokens returns the stored access and refresh tokens. Empty strings
	// mean signed out.
	Tokens(ctx context.Context) (access, refresh string, err error)

	// UpdateAccess replaces the access token after a refresh.
	UpdateAccess(ctx context.Context, access string) error

	// Clear removes all stored credentials.
	Clear(ctx context.Context) error
}
