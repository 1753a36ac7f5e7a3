package home

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/store"
)

func openRepo(t *testing.T) store.EventRepo {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "home.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st.EventRepo()
}

func enter(h *HomeScreen) tea.Msg {
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestHomeScreen_SignedOutSkipsAssessments(t *testing.T) {
	h := New(Options{Accounts: true})
	assert.False(t, h.SignedIn())
	assert.Equal(t, []string{"ASSESSMENTS", "SIGN IN", "EXIT"}, h.labels)
	assert.Equal(t, 1, h.menu.Selected, "disabled item skipped")
	assert.Equal(t, nav.OpenLoginMsg{}, enter(h))
	assert.Contains(t, h.View(120, 40), "Sign in to start an assessment")
}

func TestHomeScreen_SetUser(t *testing.T) {
	h := New(Options{Accounts: true})
	h.SetUser("Ada Lovelace")

	assert.True(t, h.SignedIn())
	assert.Equal(t, []string{"ASSESSMENTS", "SIGN OUT", "EXIT"}, h.labels)
	assert.Equal(t, nav.OpenSubjectsMsg{}, enter(h))
	assert.Contains(t, h.View(120, 40), "Welcome back, Ada Lovelace!")

	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, nav.SignOutMsg{}, enter(h))
}

func TestHomeScreen_DemoNeedsNoAccount(t *testing.T) {
	h := New(Options{})
	assert.True(t, h.SignedIn())
	assert.Equal(t, []string{"ASSESSMENTS", "EXIT"}, h.labels)
	assert.Nil(t, h.Init(), "no stats without an event log")
}

func TestHomeScreen_StatsFromAttemptLog(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.AppendAttemptEvent(ctx, store.AttemptEventData{SessionID: "a", TopicName: "Sorting", Score: 60}))
	require.NoError(t, repo.AppendAttemptEvent(ctx, store.AttemptEventData{SessionID: "b", TopicName: "Graphs", Score: 90}))

	h := New(Options{Events: repo, User: "Ada", Accounts: true})
	assert.Equal(t, []string{"ASSESSMENTS", "HISTORY", "SIGN OUT", "EXIT"}, h.labels)
	h.Update(h.Init()())

	assert.Equal(t, Stats{Attempts: 2, Average: 75, LastScore: 90, LastTopic: "Graphs"}, h.stats)
	view := h.View(120, 40)
	assert.Contains(t, view, "2 TAKEN")
	assert.Contains(t, view, "75% AVERAGE")
}

func TestMascotFor(t *testing.T) {
	assert.Equal(t, MascotSleepy, mascotFor(false, 100, 3))
	assert.Equal(t, MascotCelebrating, mascotFor(true, 85, 1))
	assert.Equal(t, MascotIdle, mascotFor(true, 85, 0))
	assert.Equal(t, MascotIdle, mascotFor(true, 50, 4))
}
