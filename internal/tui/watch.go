// Package tui provides the BubbleTea-based live watch view for
// overlayctl.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/overlayd/internal/dbus"
)

// maxEvents bounds the on-screen event log.
const maxEvents = 256

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	shownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	closedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6"))
)

type eventMsg dbus.Event

type watchClosedMsg struct{}

type statusMsg dbus.Status

type tickMsg time.Time

// Model is the watch view model. It shows the daemon's current overlay
// and a scrolling log of shown/closed events.
type Model struct {
	client *dbus.Client
	events <-chan dbus.Event

	status dbus.Status
	log    []dbus.Event
	closed bool

	width  int
	height int

	keys KeyMap
	help help.Model
}

// newModel creates the watch model around an already-subscribed event
// channel.
func newModel(client *dbus.Client, events <-chan dbus.Event) Model {
	return Model{
		client: client,
		events: events,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.fetchStatus(), tick())
}

// waitForEvent blocks on the signal channel.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return watchClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// fetchStatus asks the daemon for its current overlay.
func (m Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.client.Status()
		if err != nil {
			return statusMsg(dbus.Status{})
		}
		return statusMsg(st)
	}
}

// tick redraws once a second so relative times stay fresh.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.log = nil
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m, nil

	case eventMsg:
		m.log = append(m.log, dbus.Event(msg))
		if len(m.log) > maxEvents {
			m.log = m.log[len(m.log)-maxEvents:]
		}
		// The signal already tells us the new state; refresh the
		// status line from it instead of another round-trip.
		switch msg.Type {
		case dbus.EventShown:
			m.status = dbus.Status{Active: true, ID: msg.ID, App: msg.App, ShownAt: msg.At}
		case dbus.EventClosed:
			m.status = dbus.Status{}
		}
		return m, m.waitForEvent()

	case statusMsg:
		m.status = dbus.Status(msg)
		return m, nil

	case watchClosedMsg:
		m.closed = true
		return m, tea.Quit

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	header := headerStyle.Render("overlayd watch")

	var status string
	if m.status.Active {
		status = activeStyle.Render(fmt.Sprintf("● %s", m.status.App)) +
			idleStyle.Render(fmt.Sprintf("  shown %s  [%s]",
				humanize.Time(m.status.ShownAt), m.status.ID))
	} else {
		status = idleStyle.Render("○ idle")
	}

	lines := visibleLog(m.log, m.logHeight())
	body := ""
	for _, ev := range lines {
		body += renderEvent(ev) + "\n"
	}
	if len(lines) == 0 {
		body = idleStyle.Render("waiting for overlay events...") + "\n"
	}

	footer := m.help.View(m.keys)
	if m.closed {
		footer = idleStyle.Render("signal stream closed")
	}
	return fmt.Sprintf("%s\n%s\n\n%s\n%s", header, status, body, footer)
}

// logHeight returns how many log lines fit the terminal.
func (m Model) logHeight() int {
	// Header, status, blank line, footer.
	h := m.height - 5
	if h < 1 {
		h = maxEvents
	}
	return h
}

// visibleLog returns the newest events that fit on screen, oldest
// first.
func visibleLog(log []dbus.Event, max int) []dbus.Event {
	if len(log) <= max {
		return log
	}
	return log[len(log)-max:]
}

// renderEvent formats one log line.
func renderEvent(ev dbus.Event) string {
	ts := timeStyle.Render(ev.At.Format("15:04:05"))
	switch ev.Type {
	case dbus.EventShown:
		return fmt.Sprintf("%s %s %s", ts, shownStyle.Render("SHOWN "), ev.App)
	case dbus.EventClosed:
		return fmt.Sprintf("%s %s %s", ts, closedStyle.Render("CLOSED"), ev.Reason)
	default:
		return fmt.Sprintf("%s ?", ts)
	}
}

// Run subscribes to the daemon's signals and runs the watch view until
// the user quits or ctx is cancelled.
func Run(ctx context.Context, client *dbus.Client) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := client.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch overlay signals: %w", err)
	}

	p := tea.NewProgram(newModel(client, events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch view failed: %w", err)
	}
	return nil
}
