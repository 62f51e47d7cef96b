// Package tui provides the terminal interface for DB Switch: the
// same single toggle control as the GUI, rendered in the terminal.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/steve-ongera/dbswitch/common"
	"github.com/steve-ongera/dbswitch/conn"
)

// activator is the slice of the toggle the model drives.
// Tests substitute a fake.
type activator interface {
	Activate(ctx context.Context) (conn.State, error)
	State() conn.State
	Target() *conn.Target
}

var (
	appStyle          = lipgloss.NewStyle().Padding(1, 2)
	titleStyle        = lipgloss.NewStyle().Bold(true)
	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	workingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	buttonStyle       = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
)

type keyMap struct {
	Toggle key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Quit}}
}

var defaultKeys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle connection"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// activateResult carries the outcome of an Activate call back into Update.
type activateResult struct {
	state conn.State
	err   error
}

// Model drives the terminal interface: one status line, one action.
//
// The model never reads the toggle outside a command: labels are
// cached on the model and refreshed from each activateResult, so the
// render loop cannot race an in-flight activation.
type Model struct {
	toggle   activator
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	state    conn.State
	target   string
	busy     bool
	errText  string
	quitting bool
}

// NewModel creates the model for the given toggle.
func NewModel(toggle activator) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = workingStyle

	return Model{
		toggle:  toggle,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys,
		state:   toggle.State(),
		target:  toggle.Target().Redacted(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			// An in-flight activation owns the toggle; wait it out.
			if m.busy {
				return m, nil
			}
			m.quitting = true
			if m.state == conn.StateConnected {
				// Close the session on the way out. busy blocks any
				// further toggle presses until the program exits.
				m.busy = true
				return m, tea.Sequence(m.activateCmd(), tea.Quit)
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.errText = ""
			return m, tea.Batch(m.spinner.Tick, m.activateCmd())
		}

	case activateResult:
		m.busy = false
		m.state = msg.state
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// activateCmd runs one Activate call off the update loop.
func (m Model) activateCmd() tea.Cmd {
	toggle := m.toggle
	return func() tea.Msg {
		state, err := toggle.Activate(context.Background())
		return activateResult{state: state, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName) + "\n\n")
	b.WriteString(fmt.Sprintf("Target: %s\n", m.target))

	if m.busy {
		b.WriteString(fmt.Sprintf("Status: %s %s\n\n", m.spinner.View(), workingStyle.Render("Working...")))
	} else {
		style := disconnectedStyle
		if m.state == conn.StateConnected {
			style = connectedStyle
		}
		b.WriteString(fmt.Sprintf("Status: %s\n\n", style.Render(m.state.StatusLabel())))
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render("Error: "+m.errText) + "\n\n")
	}

	b.WriteString(buttonStyle.Render(m.state.ActionLabel()) + "\n\n")
	b.WriteString(m.help.View(m.keys))

	return appStyle.Render(b.String())
}

// Run starts the terminal interface and blocks until it exits.
// If the toggle is still connected when the user quits, the session
// is closed before the program returns.
func Run(toggle *conn.Toggle) error {
	p := tea.NewProgram(NewModel(toggle))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal interface failed: %w", err)
	}
	return nil
}
