package chat

import (
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/tutor"
)

func typeText(s *ChatScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func loaded(t *testing.T, svc *tutor.MockService) (*ChatScreen, tea.Cmd) {
	t.Helper()
	s := New(svc, 3, "Fractions")
	_, cmd := s.Update(s.Init()())
	return s, cmd
}

func TestChatScreen_EmptyHistoryAsksForOverview(t *testing.T) {
	svc := &tutor.MockService{DefaultReply: "Fractions are parts of a whole."}
	s, cmd := loaded(t, svc)
	require.NotNil(t, cmd)
	assert.True(t, s.Typing())
	assert.Contains(t, s.View(100, 30), "Tutor is typing...")

	s.Update(cmd())
	require.Len(t, s.Messages(), 1)
	assert.Equal(t, tutor.OverviewPrompt, s.Messages()[0].Prompt)
	assert.Equal(t, "Fractions are parts of a whole.", s.Messages()[0].Response)
	assert.False(t, s.Typing())
	assert.Contains(t, s.View(100, 30), "Fractions are parts of a whole.")
	require.Len(t, svc.Calls, 2)
	assert.Equal(t, tutor.MockCall{Method: "SendMessage", TopicID: 3}, svc.Calls[1])
}

func TestChatScreen_ExistingHistorySkipsOverview(t *testing.T) {
	svc := &tutor.MockService{ChatLog: map[int][]tutor.ChatMessage{
		3: {{ID: 1, Prompt: "What is a numerator?", Response: "The top number."}},
	}}
	s, cmd := loaded(t, svc)
	assert.Nil(t, cmd)
	assert.Zero(t, svc.CallCount("SendMessage"))
	view := s.View(100, 30)
	assert.Contains(t, view, "What is a numerator?")
	assert.Contains(t, view, "The top number.")
}

func TestChatScreen_SendsPrompt(t *testing.T) {
	svc := &tutor.MockService{
		ChatLog: map[int][]tutor.ChatMessage{3: {{ID: 1, Response: "Overview."}}},
		Replies: []string{"Half of four is two."},
	}
	s, _ := loaded(t, svc)

	typeText(s, "  what is half of 4  ")
	_, cmd := s.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.True(t, s.Typing())
	assert.Contains(t, s.View(100, 30), "what is half of 4")

	s.Update(cmd())
	require.Len(t, s.Messages(), 2)
	assert.Equal(t, "what is half of 4", s.Messages()[1].Prompt)
	assert.Equal(t, "Half of four is two.", s.Messages()[1].Response)
	assert.Equal(t, tutor.MockCall{Method: "SendMessage", TopicID: 3, Answer: "what is half of 4"}, svc.Calls[1])
}

func TestChatScreen_BlankPromptIgnored(t *testing.T) {
	svc := &tutor.MockService{ChatLog: map[int][]tutor.ChatMessage{3: {{ID: 1, Response: "Overview."}}}}
	s, _ := loaded(t, svc)

	typeText(s, "   ")
	_, cmd := s.Update(key(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Zero(t, svc.CallCount("SendMessage"))
}

func TestChatScreen_EnterIgnoredWhileTyping(t *testing.T) {
	svc := &tutor.MockService{}
	s, cmd := loaded(t, svc)
	require.NotNil(t, cmd)

	typeText(s, "another")
	_, second := s.Update(key(tea.KeyEnter))
	assert.Nil(t, second)
}

func TestChatScreen_FailedSendRestoresPrompt(t *testing.T) {
	svc := &tutor.MockService{
		ChatLog: map[int][]tutor.ChatMessage{3: {{ID: 1, Response: "Overview."}}},
		Errors:  map[string]error{"SendMessage": errors.New("boom")},
	}
	s, _ := loaded(t, svc)

	typeText(s, "why")
	_, cmd := s.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.False(t, s.Typing())
	assert.Len(t, s.Messages(), 1)
	assert.Equal(t, "why", s.input.Value())
	assert.Contains(t, s.View(100, 30), msgSendFailed)
}

func TestChatScreen_LoadFailureShowsErrorPage(t *testing.T) {
	svc := &tutor.MockService{Errors: map[string]error{"ChatHistory": &tutor.APIError{Status: 500}}}
	s, cmd := loaded(t, svc)
	assert.Nil(t, cmd)
	assert.False(t, s.CapturingInput())
	assert.Contains(t, s.View(100, 30), msgLoadFailed)

	_, cmd = s.Update(key(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestChatScreen_EscPops(t *testing.T) {
	s, _ := loaded(t, &tutor.MockService{ChatLog: map[int][]tutor.ChatMessage{3: {{ID: 1, Response: "x"}}}})
	assert.True(t, s.CapturingInput())
	_, cmd := s.Update(key(tea.KeyEscape))
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestChatScreen_StaleReplyDropped(t *testing.T) {
	svc := &tutor.MockService{DefaultReply: "late"}
	_, cmd := loaded(t, svc)
	require.NotNil(t, cmd)
	msg := cmd()

	other := New(svc, 3, "Fractions")
	other.Update(msg)
	assert.Empty(t, other.Messages())
	assert.True(t, other.loading)
}

func TestChatScreen_UnmountCancelsRequests(t *testing.T) {
	s := New(&tutor.MockService{}, 3, "Fractions")
	s.Unmount()
	assert.Error(t, s.ctx.Err())
}
