package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/edugen/edugen/internal/auth"
	"github.com/edugen/edugen/internal/logger"
	"github.com/edugen/edugen/internal/router"
	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/assessment"
	"github.com/edugen/edugen/internal/screens/chat"
	"github.com/edugen/edugen/internal/screens/history"
	"github.com/edugen/edugen/internal/screens/home"
	"github.com/edugen/edugen/internal/screens/login"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/screens/review"
	"github.com/edugen/edugen/internal/screens/subjects"
	"github.com/edugen/edugen/internal/screens/topics"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/tutor"
	"github.com/edugen/edugen/internal/ui/layout"
)

const signOutTimeout = 10 * time.Second

// Accounts signs the learner in and out.
type Accounts interface {
	login.Authenticator
	Logout(ctx context.Context) error
	Current(ctx context.Context) *auth.Identity
}

// Deps is what the screens are built from.
type Deps struct {
	Service   tutor.Service
	Accounts  Accounts // nil in demo mode
	Events    store.EventRepo
	Log       *logger.Logger
	TimeLimit time.Duration
}

// StartKind selects the first screen.
type StartKind int

const (
	StartHome StartKind = iota
	StartAssessment
	StartReview
	StartHistory
	StartLogin
)

// Start describes the first screen. Anything other than StartHome runs in
// direct mode: popping the first screen exits the program.
type Start struct {
	Kind         StartKind
	TopicID      int
	TopicName    string
	AssessmentID int
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	deps   Deps
	router *router.Router
	home   *home.HomeScreen
	direct bool
	user   string
	width  int
	height int
}

// newAppModel creates an AppModel showing start.
func newAppModel(deps Deps, start Start) AppModel {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	m := AppModel{deps: deps, user: currentUser(deps.Accounts)}

	var first screen.Screen
	switch start.Kind {
	case StartAssessment:
		first = m.assessmentScreen(start.TopicID, start.TopicName)
	case StartReview:
		first = review.New(deps.Service, start.AssessmentID, start.TopicID, start.TopicName)
	case StartHistory:
		first = history.New(deps.Events)
	case StartLogin:
		first = login.New(deps.Accounts)
	default:
		m.home = home.New(home.Options{Events: deps.Events, User: m.user, Accounts: deps.Accounts != nil})
		first = m.home
	}
	m.direct = m.home == nil
	m.router = router.New(first)
	return m
}

func currentUser(a Accounts) string {
	if a == nil {
		return ""
	}
	if id := a.Current(context.Background()); id != nil {
		return id.DisplayName()
	}
	return ""
}

func (m AppModel) assessmentScreen(topicID int, topicName string) screen.Screen {
	return assessment.New(m.deps.Service, m.deps.Log, topicID, topicName, m.deps.TimeLimit)
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.router.UnmountAll()
			return m, tea.Quit
		case "esc":
			if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
				break
			}
			if m.router.Depth() > 1 || m.direct {
				return m, router.Pop
			}
			return m, nil
		}

	case router.PopScreenMsg:
		if m.router.Depth() <= 1 {
			m.router.UnmountAll()
			return m, tea.Quit
		}
		cmd := m.router.Update(msg)
		m.user = currentUser(m.deps.Accounts)
		if m.home != nil && m.router.Depth() == 1 {
			m.home.SetUser(m.user)
		}
		return m, cmd

	case nav.OpenSubjectsMsg:
		return m, m.router.Push(subjects.New(m.deps.Service))
	case nav.OpenTopicsMsg:
		return m, m.router.Push(topics.New(m.deps.Service, m.deps.Log, msg.SubjectID, msg.SubjectName, m.deps.TimeLimit))
	case nav.OpenAssessmentMsg:
		return m, m.open(m.assessmentScreen(msg.TopicID, msg.TopicName), msg.Replace)
	case nav.OpenReviewMsg:
		return m, m.open(review.New(m.deps.Service, msg.AssessmentID, msg.TopicID, msg.TopicName), msg.Replace)
	case nav.OpenStudyMsg:
		return m, m.open(chat.New(m.deps.Service, msg.TopicID, msg.TopicName), msg.Replace)
	case nav.OpenHistoryMsg:
		if m.deps.Events == nil {
			return m, nil
		}
		return m, m.router.Push(history.New(m.deps.Events))
	case nav.OpenLoginMsg:
		if m.deps.Accounts == nil {
			return m, nil
		}
		return m, m.router.Push(login.New(m.deps.Accounts))

	case nav.SignedInMsg:
		m.user = msg.DisplayName
		if m.home != nil {
			m.home.SetUser(m.user)
		}
		if _, ok := m.router.Active().(*login.LoginScreen); ok {
			if m.direct && m.router.Depth() == 1 {
				m.router.UnmountAll()
				return m, tea.Quit
			}
			return m, m.router.Pop()
		}
		return m, nil

	case nav.SignOutMsg:
		if m.deps.Accounts == nil {
			return m, nil
		}
		accounts, log := m.deps.Accounts, m.deps.Log
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), signOutTimeout)
			defer cancel()
			if err := accounts.Logout(ctx); err != nil {
				log.Warn("sign out", "error", err)
			}
			return nav.SignedOutMsg{}
		}

	case nav.SignedOutMsg:
		m.user = ""
		if m.home != nil {
			m.home.SetUser("")
		}
		return m, nil
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// open pushes s, or swaps it in for the active screen.
func (m AppModel) open(s screen.Screen, replace bool) tea.Cmd {
	if replace {
		return m.router.Replace(s)
	}
	return m.router.Push(s)
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the header, active screen and footer.
func (m AppModel) render() string {
	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	f := layout.Frame{
		Width:  m.width,
		Height: m.height,
		Title:  title,
		User:   m.user,
		Hints:  m.footerHints(active),
	}
	return f.Render(m.router.View)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 || m.direct {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program on start and unmounts every screen
// on exit.
func Run(deps Deps, start Start) error {
	p := tea.NewProgram(newAppModel(deps, start))
	final, err := p.Run()
	if m, ok := final.(AppModel); ok {
		m.router.UnmountAll()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
