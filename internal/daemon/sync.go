package daemon

import (
	"log/slog"
	"slices"

	"github.com/1broseidon/tabwm/internal/wm"
)

// Publisher exports manager state to other X clients, normally as EWMH root
// window properties.
type Publisher interface {
	SetClientList(windows []wm.Window) error
	SetDesktops(names []string, current int) error
	SetActiveWindow(w wm.Window) error
}

// StateSynchronizer keeps published state in step with the manager and
// cleans up after windows that vanish.
type StateSynchronizer struct {
	wm     *wm.WM
	pub    Publisher
	logger *slog.Logger

	clients []wm.Window
	pages   []string
	current int
	active  wm.Window
}

// NewStateSynchronizer creates a synchronizer and subscribes it to the
// manager's events. Call it from the queue goroutine.
func NewStateSynchronizer(m *wm.WM, pub Publisher, logger *slog.Logger) *StateSynchronizer {
	s := &StateSynchronizer{
		wm:      m,
		pub:     pub,
		logger:  logger,
		current: -1,
	}
	m.OnEvent(func(wm.Event) { s.Sync() })
	return s
}

// Sync publishes whatever changed since the last call.
func (s *StateSynchronizer) Sync() {
	clients := s.wm.Windows()
	if !slices.Equal(clients, s.clients) {
		if err := s.pub.SetClientList(clients); err != nil {
			s.logger.Warn("failed to publish client list", "error", err)
		} else {
			s.clients = clients
		}
	}

	pages := s.wm.Pages()
	names := make([]string, len(pages))
	current := -1
	active := s.wm.ActivePage()
	for i, p := range pages {
		names[i] = p.Name
		if p == active {
			current = i
		}
	}
	if !slices.Equal(names, s.pages) || current != s.current {
		if err := s.pub.SetDesktops(names, current); err != nil {
			s.logger.Warn("failed to publish desktops", "error", err)
		} else {
			s.pages = names
			s.current = current
		}
	}

	var focused wm.Window
	if c := s.wm.Focused(); c != nil {
		focused = c.Window
	}
	if focused != s.active {
		if err := s.pub.SetActiveWindow(focused); err != nil {
			s.logger.Warn("failed to publish active window", "error", err)
		} else {
			s.active = focused
		}
	}
}

// HandleWindowClosed is called when a managed window is gone without the
// manager having seen its destroy notification.
func (s *StateSynchronizer) HandleWindowClosed(w wm.Window) {
	c, ok := s.wm.ClientByWindow(w)
	if !ok {
		return
	}

	s.logger.Info("window closed, cleaning up",
		"window_id", uint32(w),
		"client", c.ID,
		"name", c.Name)

	s.wm.Destroy(w)
	s.Sync()
}
