package platform

import (
	"github.com/1broseidon/tabwm/internal/daemon"
	"github.com/1broseidon/tabwm/internal/wm"
)

// Poster schedules fn on the goroutine that owns the window manager.
type Poster func(fn func() error)

// Backend abstracts the display the daemon manages windows on.
type Backend interface {
	wm.WindowSystem
	wm.Renderer
	daemon.Publisher

	// ListWindows returns every top-level window that currently exists.
	ListWindows() ([]wm.Window, error)
	// Adopt manages windows that were mapped before the daemon started.
	Adopt(m *wm.WM) error
	// Listen routes display events into m through post.
	Listen(m *wm.WM, post Poster)
	// RefreshScreen re-reads the usable screen area.
	RefreshScreen() error

	EventLoop()
	Quit()
	Disconnect()
}
