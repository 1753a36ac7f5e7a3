package login

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/edugen/edugen/internal/auth"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
	"github.com/edugen/edugen/internal/ui/theme"
)

const loginTimeout = 30 * time.Second

// Authenticator signs the learner in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.Identity, error)
}

type loginDoneMsg struct {
	owner int64
	id    *auth.Identity
	err   error
}

const (
	fieldEmail = iota
	fieldPassword
)

// LoginScreen is the email and password form.
type LoginScreen struct {
	owner int64
	auth  Authenticator
	ctx   context.Context
	stop  context.CancelFunc

	email    components.TextInput
	password components.TextInput
	focus    int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)
var _ screen.InputCapturer = (*LoginScreen)(nil)
var _ screen.Unmounter = (*LoginScreen)(nil)

// New creates a LoginScreen.
func New(a Authenticator) *LoginScreen {
	ctx, stop := context.WithCancel(context.Background())
	s := &LoginScreen{
		owner:    nav.NextOwner(),
		auth:     a,
		ctx:      ctx,
		stop:     stop,
		email:    components.NewTextInput("you@example.com", 254),
		password: components.NewPasswordInput("password"),
	}
	s.password.Blur()
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.email.Init()
}

func (s *LoginScreen) Title() string {
	return "Sign In"
}

func (s *LoginScreen) CapturingInput() bool {
	return true
}

func (s *LoginScreen) Unmount() {
	s.stop()
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Esc", Description: "Back"},
	}
}

// Busy reports whether a sign-in request is in flight.
func (s *LoginScreen) Busy() bool {
	return s.busy
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		if msg.owner != s.owner {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			s.errMsg = auth.LoginMessage(msg.err)
			return s, s.setFocus(fieldPassword)
		}
		return s, nav.Go(nav.SignedInMsg{DisplayName: msg.id.DisplayName()})

	case tea.KeyPressMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "tab", "shift+tab", "up", "down":
			return s, s.setFocus(1 - s.focus)
		case "enter":
			if s.focus == fieldEmail {
				return s, s.setFocus(fieldPassword)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldEmail {
		s.email, cmd = s.email.Update(msg)
	} else {
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *LoginScreen) setFocus(field int) tea.Cmd {
	s.focus = field
	if field == fieldEmail {
		s.password.Blur()
		return s.email.Focus()
	}
	s.email.Blur()
	return s.password.Focus()
}

func (s *LoginScreen) submit() tea.Cmd {
	email, password := strings.TrimSpace(s.email.Value()), s.password.Value()
	if email == "" || password == "" {
		s.errMsg = auth.LoginMessage(auth.ErrMissingCredentials)
		return nil
	}
	s.busy = true
	s.errMsg = ""
	a, ctx, owner := s.auth, s.ctx, s.owner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, loginTimeout)
		defer cancel()
		id, err := a.Login(ctx, email, password)
		return loginDoneMsg{owner: owner, id: id, err: err}
	}
}

func (s *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	if cw > 50 {
		cw = 50
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Welcome back"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Sign in to take assessments and track your progress."))
	b.WriteString("\n\n")
	b.WriteString(fieldLabel("Email", s.focus == fieldEmail))
	b.WriteString("\n")
	b.WriteString(s.email.View(cw))
	b.WriteString("\n\n")
	b.WriteString(fieldLabel("Password", s.focus == fieldPassword))
	b.WriteString("\n")
	b.WriteString(s.password.View(cw))
	b.WriteString("\n\n")

	switch {
	case s.busy:
		b.WriteString(theme.Hint.Render("Signing in..."))
	case s.errMsg != "":
		b.WriteString(components.ErrorBanner(s.errMsg, cw))
	default:
		b.WriteString(theme.ButtonActive.Render("▸ Sign In"))
	}
	return components.Center(theme.Dialog.Render(b.String()), width, height)
}

func fieldLabel(name string, focused bool) string {
	if focused {
		return theme.Selected.Render(name)
	}
	return theme.Label.Render(name)
}
