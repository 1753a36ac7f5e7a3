package assessment

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// startedMsg is sent when Store.Start resolves.
type startedMsg struct {
	owner int64
	err   error
}

// submittedMsg is sent when Store.SubmitAnswer resolves.
type submittedMsg struct {
	owner int64
	err   error
}

// finalizedMsg is sent when Store.Complete resolves.
type finalizedMsg struct {
	owner int64
	err   error
}

// tickMsg is one countdown second for the tick generation id.
type tickMsg struct {
	owner int64
	id    int
}

func tick(owner int64, id int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{owner: owner, id: id}
	})
}
