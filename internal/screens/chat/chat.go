// Package chat is the "Study with Tutor" conversation about one topic.
package chat

import (
	"context"
	"strings"
	"time"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/tutor"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

const (
	chatTimeout = 60 * time.Second
	promptLimit = 2000

	msgLoadFailed     = "Failed to load chat"
	msgSendFailed     = "The tutor could not answer. Please try again."
	msgOverviewFailed = "The tutor could not prepare an overview. Ask a question to begin."
)

// Tutor is the part of the tutoring service the chat needs.
type Tutor interface {
	ChatHistory(ctx context.Context, topicID int) ([]tutor.ChatMessage, error)
	SendMessage(ctx context.Context, topicID int, prompt string, overview bool) (*tutor.ChatReply, error)
}

type historyMsg struct {
	owner    int64
	messages []tutor.ChatMessage
	err      error
}

type replyMsg struct {
	owner    int64
	prompt   string
	overview bool
	reply    *tutor.ChatReply
	err      error
}

// ChatScreen shows the conversation and a prompt line. An empty history
// asks the tutor for an overview of the topic first.
type ChatScreen struct {
	owner     int64
	tutor     Tutor
	ctx       context.Context
	stop      context.CancelFunc
	topicID   int
	topicName string

	messages []tutor.ChatMessage
	pending  string
	loading  bool
	typing   bool
	loadErr  bool
	errMsg   string

	input  components.TextInput
	vp     viewport.Model
	follow bool
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)
var _ screen.InputCapturer = (*ChatScreen)(nil)
var _ screen.Unmounter = (*ChatScreen)(nil)

// New creates a ChatScreen for topicID.
func New(t Tutor, topicID int, topicName string) *ChatScreen {
	ctx, stop := context.WithCancel(context.Background())
	return &ChatScreen{
		owner:     nav.NextOwner(),
		tutor:     t,
		ctx:       ctx,
		stop:      stop,
		topicID:   topicID,
		topicName: topicName,
		loading:   true,
		input:     components.NewTextInput("Type your message...", promptLimit),
		vp:        viewport.New(),
		follow:    true,
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	t, ctx, owner, topicID := s.tutor, s.ctx, s.owner, s.topicID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, chatTimeout)
		defer cancel()
		msgs, err := t.ChatHistory(ctx, topicID)
		return historyMsg{owner: owner, messages: msgs, err: err}
	}
}

func (s *ChatScreen) Title() string {
	if s.topicName == "" {
		return "Study with Tutor"
	}
	return "Study · " + s.topicName
}

// CapturingInput is false on the error page so esc leaves normally.
func (s *ChatScreen) CapturingInput() bool {
	return !s.loadErr
}

func (s *ChatScreen) Unmount() {
	s.stop()
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	if s.loadErr {
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

// Messages returns the conversation shown so far.
func (s *ChatScreen) Messages() []tutor.ChatMessage {
	return s.messages
}

// Typing reports whether a reply is awaited.
func (s *ChatScreen) Typing() bool {
	return s.typing
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.loadErr = true
			return s, nil
		}
		s.messages = msg.messages
		s.follow = true
		if len(s.messages) == 0 {
			return s, s.send("", true)
		}
		return s, nil

	case replyMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.typing = false
		s.pending = ""
		if msg.err != nil || msg.reply == nil {
			if msg.overview {
				s.errMsg = msgOverviewFailed
			} else {
				s.errMsg = msgSendFailed
				s.input.Model.SetValue(msg.prompt)
			}
			return s, nil
		}
		prompt := msg.reply.Prompt
		if prompt == "" {
			prompt = msg.prompt
		}
		s.messages = append(s.messages, tutor.ChatMessage{
			ID:        len(s.messages) + 1,
			Prompt:    prompt,
			Response:  msg.reply.Response,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		s.follow = true
		return s, nil

	case tea.KeyPressMsg:
		if s.loadErr {
			switch msg.String() {
			case "enter", "esc":
				return s, router.Pop
			}
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "pgup":
			s.vp.PageUp()
			s.follow = false
			return s, nil
		case "pgdown":
			s.vp.PageDown()
			s.follow = s.vp.AtBottom()
			return s, nil
		case "enter":
			if s.loading || s.typing || s.input.Blank() {
				return s, nil
			}
			prompt := strings.TrimSpace(s.input.Value())
			s.input.Model.SetValue("")
			return s, s.send(prompt, false)
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) send(prompt string, overview bool) tea.Cmd {
	s.typing = true
	s.pending = prompt
	s.errMsg = ""
	s.follow = true
	t, ctx, owner, topicID := s.tutor, s.ctx, s.owner, s.topicID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, chatTimeout)
		defer cancel()
		reply, err := t.SendMessage(ctx, topicID, prompt, overview)
		return replyMsg{owner: owner, prompt: prompt, overview: overview, reply: reply, err: err}
	}
}

func (s *ChatScreen) View(width, height int) string {
	if s.loading {
		return components.Loading("Loading chat...", width, height)
	}
	if s.loadErr {
		return components.ErrorPage(msgLoadFailed, "Check your connection and try again.", "Back", width, height)
	}

	cw := components.ContentWidth(width)
	header := theme.Title.Render(s.topicName) + "\n" + theme.Hint.Render("Ask questions about this topic")
	footer := s.input.View(cw)
	if s.errMsg != "" {
		footer = components.ErrorBanner(s.errMsg, cw) + "\n" + footer
	}

	vh := height - lipgloss.Height(header) - lipgloss.Height(footer) - 2
	if vh < 3 {
		vh = 3
	}
	s.vp.SetWidth(cw)
	s.vp.SetHeight(vh)
	s.vp.SetContent(s.transcript(cw))
	if s.follow {
		s.vp.GotoBottom()
	}

	body := lipgloss.JoinVertical(lipgloss.Left, header, "", s.vp.View(), "", footer)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, body)
}

func (s *ChatScreen) transcript(cw int) string {
	wrap := lipgloss.NewStyle().Width(cw - 2).Foreground(theme.Text)
	var b strings.Builder
	for _, m := range s.messages {
		if m.Prompt != "" {
			b.WriteString(theme.Label.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(m.Prompt))
			b.WriteString("\n\n")
		}
		b.WriteString(theme.Selected.Render("Tutor"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(m.Response))
		b.WriteString("\n\n")
	}
	if s.typing {
		if s.pending != "" {
			b.WriteString(theme.Label.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(s.pending))
			b.WriteString("\n\n")
		}
		b.WriteString(theme.Hint.Render("Tutor is typing..."))
	}
	if len(s.messages) == 0 && !s.typing {
		b.WriteString(theme.Hint.Render("No messages yet."))
	}
	return strings.TrimRight(b.String(), "\n")
}
