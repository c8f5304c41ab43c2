package term

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/cellgrid/internal/input"
)

type frameMsg string

// model only relays: input goes to the backend's queue, frames come back
// as frameMsg.
type model struct {
	b     *Backend
	frame string
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.frame = string(msg)
	case tea.WindowSizeMsg:
		m.b.resized(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.b.mouse(msg)
	case tea.KeyMsg:
		switch s := msg.String(); s {
		case "q", "ctrl+c":
			m.b.push(input.Event{Kind: input.Close})
		default:
			k := keyName(s)
			// terminals report no key releases
			m.b.push(input.Press(k), input.Release(k))
		}
	}
	return m, nil
}

func (m model) View() string { return m.frame }

func keyName(s string) input.Key {
	switch s {
	case " ":
		return "space"
	case "esc":
		return "escape"
	}
	return input.Key(s)
}
