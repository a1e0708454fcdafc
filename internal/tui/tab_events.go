package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/wm"
)

const maxEvents = 200

// eventMsg carries one line published on the event node.
type eventMsg struct {
	at   time.Time
	line string
}

// watchEndedMsg is sent when the event stream stops.
type watchEndedMsg struct {
	err error
}

type eventLine struct {
	at   time.Time
	line string
}

// EventsTab shows the event stream of the running daemon.
type EventsTab struct {
	events <-chan eventMsg
	done   <-chan error

	lines []eventLine
	ended string

	width  int
	height int
}

// NewEventsTab starts watching the event node. The watch ends with ctx.
func NewEventsTab(ctx context.Context, client Client) EventsTab {
	events := make(chan eventMsg, 64)
	done := make(chan error, 1)
	go func() {
		first := true
		done <- client.Watch(ctx, wm.PathEvent, func(c ctl.Change) error {
			// The first change replays the last event.
			if first {
				first = false
				return nil
			}
			select {
			case events <- eventMsg{at: time.Now(), line: c.Content}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return EventsTab{events: events, done: done}
}

// Init implements tea.Model.
func (e EventsTab) Init() tea.Cmd {
	return e.wait()
}

func (e EventsTab) wait() tea.Cmd {
	events, done := e.events, e.done
	return func() tea.Msg {
		select {
		case ev := <-events:
			return ev
		case err := <-done:
			return watchEndedMsg{err: err}
		}
	}
}

// Update handles messages for the events tab.
func (e EventsTab) Update(msg tea.Msg) (EventsTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		e.height = msg.Height
		return e, nil

	case eventMsg:
		e.lines = append(e.lines, eventLine{at: msg.at, line: msg.line})
		if len(e.lines) > maxEvents {
			e.lines = e.lines[len(e.lines)-maxEvents:]
		}
		return e, e.wait()

	case watchEndedMsg:
		if msg.err != nil {
			e.ended = fmt.Sprintf("event stream closed: %v", msg.err)
		} else {
			e.ended = "event stream closed"
		}
		return e, nil
	}
	return e, nil
}

// View implements tea.Model.
func (e EventsTab) View() string {
	if e.width == 0 || e.height == 0 {
		return ""
	}

	timeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	rows := e.height
	if e.ended != "" {
		rows--
	}
	start := 0
	if len(e.lines) > rows && rows > 0 {
		start = len(e.lines) - rows
	}

	var b strings.Builder
	for _, l := range e.lines[start:] {
		b.WriteString(timeStyle.Render(l.at.Format("15:04:05")))
		b.WriteString(" ")
		b.WriteString(lineStyle.Render(l.line))
		b.WriteString("\n")
	}
	if len(e.lines) == 0 {
		b.WriteString(timeStyle.Render("waiting for events..."))
		b.WriteString("\n")
	}
	if e.ended != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(e.ended))
	}

	return lipgloss.NewStyle().
		Width(e.width).
		Height(e.height).
		Padding(0, 1).
		Render(b.String())
}
