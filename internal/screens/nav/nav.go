// Package nav holds the navigation requests screens send to the app root.
// Screens never construct each other; the root maps each request onto a
// router push or replace.
package nav

import (
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
)

// OpenSubjectsMsg shows the subject catalogue.
type OpenSubjectsMsg struct{}

// OpenTopicsMsg shows the topics of one subject.
type OpenTopicsMsg struct {
	SubjectID   int
	SubjectName string
}

// OpenAssessmentMsg starts a fresh assessment for a topic.
type OpenAssessmentMsg struct {
	TopicID   int
	TopicName string
	// Replace swaps out the current screen instead of stacking on it.
	Replace bool
}

// OpenReviewMsg shows the finalized answers of an assessment.
type OpenReviewMsg struct {
	AssessmentID int
	TopicID      int
	TopicName    string
	Replace      bool
}

// OpenStudyMsg continues studying a topic with the tutor.
type OpenStudyMsg struct {
	TopicID   int
	TopicName string
	Replace   bool
}

// OpenHistoryMsg shows locally recorded attempts.
type OpenHistoryMsg struct{}

// OpenLoginMsg shows the sign-in form.
type OpenLoginMsg struct{}

// SignedInMsg is broadcast after a successful sign-in.
type SignedInMsg struct {
	DisplayName string
}

// SignOutMsg asks the root to revoke the session.
type SignOutMsg struct{}

// SignedOutMsg is broadcast after sign-out or when the session is lost.
type SignedOutMsg struct{}

// Go wraps msg in a command.
func Go(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

var owners atomic.Int64

// NextOwner returns a process-unique screen instance id. Screens stamp it
// on the messages their commands produce and drop messages carrying any
// other id, so late results never land on a newer screen.
func NextOwner() int64 {
	return owners.Add(1)
}
