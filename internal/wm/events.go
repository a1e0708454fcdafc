package wm

import "fmt"

// EventKind is the type of a notification published on /event.
type EventKind int

const (
	EventPageUpdate EventKind = iota
	EventClientUpdate
	EventButtonPress
)

func (k EventKind) String() string {
	switch k {
	case EventPageUpdate:
		return "PageUpdate"
	case EventClientUpdate:
		return "ClientUpdate"
	case EventButtonPress:
		return "ButtonPress"
	default:
		return fmt.Sprintf("Event%d", int(k))
	}
}

// Event is a state change notification. ID is the page or client id, 0
// when a client update reports that nothing holds the focus.
type Event struct {
	Kind   EventKind
	ID     int
	Button int
}

// String renders the event line written to /event, e.g. "ClientUpdate 4" or
// "Button1Press 4".
func (e Event) String() string {
	if e.Kind == EventButtonPress {
		return fmt.Sprintf("Button%dPress %d", e.Button, e.ID)
	}
	if e.ID == 0 {
		return e.Kind.String() + " none"
	}
	return fmt.Sprintf("%s %d", e.Kind, e.ID)
}

// OnEvent registers a listener called synchronously for every event.
func (m *WM) OnEvent(fn func(Event)) {
	m.listeners = append(m.listeners, fn)
}

func (m *WM) emit(e Event) {
	if err := m.nodes.Publish(PathEvent, e.String()); err != nil {
		m.log.Warn("event publish failed", "event", e.String(), "error", err)
	}
	for _, fn := range m.listeners {
		fn(e)
	}
}

// TabClicked handles a button press on the tab at index of frame: the
// clicked client is selected and the press is published.
func (m *WM) TabClicked(id FrameID, index, button int) {
	f, ok := m.frames[id]
	if !ok || index < 0 || index >= len(f.Clients) {
		return
	}
	c := m.clients[f.Clients[index]]
	if button == 1 {
		if err := m.SelectClient(c, true); err != nil {
			m.log.Warn("tab select failed", "frame", id, "error", err)
		}
	}
	m.emit(Event{Kind: EventButtonPress, ID: int(c.ID), Button: button})
}

// ClientClicked handles a grabbed button press on the window of an attached
// client: the client is selected and the press is published.
func (m *WM) ClientClicked(w Window, button int) {
	c, ok := m.ClientByWindow(w)
	if !ok || !c.Attached {
		return
	}
	if err := m.SelectClient(c, true); err != nil {
		m.log.Warn("click select failed", "client", c.ID, "error", err)
	}
	m.emit(Event{Kind: EventButtonPress, ID: int(c.ID), Button: button})
}
