package subjects

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/tutor"
)

func TestSubjectsScreen_OpenTopics(t *testing.T) {
	svc := &tutor.MockService{SubjectList: []tutor.Subject{
		{ID: 1, Name: "Maths", TopicCount: 1},
		{ID: 2, Name: "Physics", Description: "Forces", TopicCount: 4},
	}}
	s := New(svc)
	s.Update(s.Init()())

	view := s.View(100, 30)
	assert.Contains(t, view, "Physics")
	assert.Contains(t, view, "4 topics")
	assert.Contains(t, view, "1 topic")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, nav.OpenTopicsMsg{SubjectID: 2, SubjectName: "Physics"}, cmd())
}

func TestSubjectsScreen_ErrorAndRetry(t *testing.T) {
	svc := &tutor.MockService{
		SubjectList: []tutor.Subject{{ID: 1, Name: "Maths"}},
		Errors:      map[string]error{"Subjects": errors.New("offline")},
	}
	s := New(svc)
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "Failed to fetch subjects")

	delete(svc.Errors, "Subjects")
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	assert.Contains(t, s.View(100, 30), "Loading subjects")
	s.Update(cmd())
	assert.Contains(t, s.View(100, 30), "Maths")
}

func TestSubjectsScreen_Empty(t *testing.T) {
	s := New(&tutor.MockService{})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No subjects available yet.")
}
