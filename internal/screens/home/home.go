package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/edugen/edugen/internal/screen"
	"github.com/edugen/edugen/internal/screens/nav"
	"github.com/edugen/edugen/internal/store"
	"github.com/edugen/edugen/internal/ui/components"
	"github.com/edugen/edugen/internal/ui/layout"
)

// Options configures the home screen.
type Options struct {
	// Events feeds the stats bar. Nil hides history.
	Events store.EventRepo
	// User is the signed-in display name, empty when signed out.
	User string
	// Accounts enables the sign-in item. Demo mode runs without one.
	Accounts bool
}

type statsLoadedMsg struct {
	owner int64
	stats Stats
}

// HomeScreen is the main menu.
type HomeScreen struct {
	owner  int64
	opts   Options
	menu   components.Menu
	labels []string
	stats  Stats
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{owner: nav.NextOwner(), opts: opts}
	h.buildMenu()
	return h
}

func (h *HomeScreen) buildMenu() {
	signedIn := h.SignedIn()
	var items []components.MenuItem

	items = append(items, components.MenuItem{
		Label:    "ASSESSMENTS",
		Disabled: !signedIn,
		Action:   func() tea.Cmd { return nav.Go(nav.OpenSubjectsMsg{}) },
	})
	if h.opts.Events != nil {
		items = append(items, components.MenuItem{
			Label:  "HISTORY",
			Action: func() tea.Cmd { return nav.Go(nav.OpenHistoryMsg{}) },
		})
	}
	if h.opts.Accounts {
		if signedIn {
			items = append(items, components.MenuItem{
				Label:  "SIGN OUT",
				Action: func() tea.Cmd { return nav.Go(nav.SignOutMsg{}) },
			})
		} else {
			items = append(items, components.MenuItem{
				Label:  "SIGN IN",
				Action: func() tea.Cmd { return nav.Go(nav.OpenLoginMsg{}) },
			})
		}
	}
	items = append(items, components.MenuItem{
		Label:  "EXIT",
		Action: func() tea.Cmd { return tea.Quit },
	})

	h.labels = make([]string, len(items))
	for i, it := range items {
		h.labels[i] = it.Label
	}
	h.menu = components.NewMenu(items)
}

// SignedIn reports whether assessments can be started.
func (h *HomeScreen) SignedIn() bool {
	return h.opts.User != "" || !h.opts.Accounts
}

// SetUser updates the greeting and sign-in item.
func (h *HomeScreen) SetUser(name string) {
	h.opts.User = name
	h.buildMenu()
}

func (h *HomeScreen) Init() tea.Cmd {
	if h.opts.Events == nil {
		return nil
	}
	repo, owner := h.opts.Events, h.owner
	return func() tea.Msg {
		attempts, err := repo.RecentAttempts(context.Background(), store.QueryOpts{})
		if err != nil {
			return statsLoadedMsg{owner: owner}
		}
		return statsLoadedMsg{owner: owner, stats: summarize(attempts)}
	}
}

// Resume refreshes the stats after an assessment.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.Init()
}

// summarize folds newest-first attempts into Stats.
func summarize(attempts []store.AttemptEvent) Stats {
	st := Stats{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return st
	}
	var total float64
	for _, a := range attempts {
		total += a.Score
	}
	st.Average = total / float64(len(attempts))
	st.LastScore = attempts[0].Score
	st.LastTopic = attempts[0].TopicName
	return st
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(statsLoadedMsg); ok {
		if m.owner == h.owner {
			h.stats = m.stats
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	// height excludes header and footer; add them back to judge the terminal
	compact := height+8 < 30 || width < 100
	cw := panelWidth(width)

	disabled := make(map[int]bool)
	for i, it := range h.menu.Items {
		disabled[i] = it.Disabled
	}

	sections := []string{renderTitle(cw, compact), renderGreeting(h.opts.User, cw)}
	if !compact {
		sections = append(sections, renderMascotBox(mascotFor(h.SignedIn(), h.stats.LastScore, h.stats.Attempts), cw))
	}
	if h.opts.Events != nil {
		sections = append(sections, renderStatsBar(h.stats, cw, compact))
	}
	sections = append(sections, renderButtons(h.labels, h.menu.Selected, disabled, cw, compact))

	return renderCabinet(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
