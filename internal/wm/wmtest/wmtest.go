// Package wmtest provides in-memory window system and renderer fakes for
// tests of packages built on the window manager core.
package wmtest

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/tiling"
	"github.com/1broseidon/tabwm/internal/wm"
)

// ErrGone is returned for windows marked with Gone.
var ErrGone = errors.New("window gone")

// WindowSystem records every call the core makes.
type WindowSystem struct {
	mu     sync.Mutex
	screen tiling.Rect
	names  map[wm.Window]string
	protos map[wm.Window]wm.Protocol
	gone   map[wm.Window]bool
	mapped map[wm.Window]bool
	rects  map[wm.Window]tiling.Rect
	focus  wm.Window
	closed []wm.Window
}

// NewWindowSystem returns a fake display of the given size.
func NewWindowSystem(width, height int) *WindowSystem {
	return &WindowSystem{
		screen: tiling.Rect{Width: width, Height: height},
		names:  make(map[wm.Window]string),
		protos: make(map[wm.Window]wm.Protocol),
		gone:   make(map[wm.Window]bool),
		mapped: make(map[wm.Window]bool),
		rects:  make(map[wm.Window]tiling.Rect),
	}
}

// SetName sets the title reported for w.
func (f *WindowSystem) SetName(w wm.Window, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[w] = name
}

// SetProtocols sets the WM_PROTOCOLS reported for w.
func (f *WindowSystem) SetProtocols(w wm.Window, p wm.Protocol) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.protos[w] = p
}

// Gone makes every later call on w fail.
func (f *WindowSystem) Gone(w wm.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gone[w] = true
}

// Mapped reports whether w is currently mapped.
func (f *WindowSystem) Mapped(w wm.Window) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mapped[w]
}

// Rect returns the last geometry given to w.
func (f *WindowSystem) Rect(w wm.Window) tiling.Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rects[w]
}

// Focused returns the window that last received the focus.
func (f *WindowSystem) Focused() wm.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focus
}

// Closed lists windows that were sent WM_DELETE_WINDOW or killed.
func (f *WindowSystem) Closed() []wm.Window {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wm.Window(nil), f.closed...)
}

func (f *WindowSystem) check(w wm.Window) error {
	if f.gone[w] {
		return ErrGone
	}
	return nil
}

func (f *WindowSystem) SelectInput(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check(w)
}

func (f *WindowSystem) Name(w wm.Window) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.names[w], f.check(w)
}

func (f *WindowSystem) TransientFor(w wm.Window) (wm.Window, error) { return 0, nil }

func (f *WindowSystem) NormalHints(w wm.Window) (wm.SizeHints, error) {
	return wm.SizeHints{}, errors.New("no hints")
}

func (f *WindowSystem) Protocols(w wm.Window) (wm.Protocol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.protos[w], f.check(w)
}

func (f *WindowSystem) Map(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mapped[w] = true
	return f.check(w)
}

func (f *WindowSystem) Unmap(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(w); err != nil {
		return err
	}
	f.mapped[w] = false
	return nil
}

func (f *WindowSystem) Raise(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.check(w)
}

func (f *WindowSystem) Focus(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focus = w
	return nil
}

func (f *WindowSystem) MoveResize(w wm.Window, r tiling.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check(w); err != nil {
		return err
	}
	f.rects[w] = r
	return nil
}

func (f *WindowSystem) SendDelete(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, w)
	return f.check(w)
}

func (f *WindowSystem) Kill(w wm.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, w)
	return f.check(w)
}

func (f *WindowSystem) ScreenRect() tiling.Rect { return f.screen }

// Renderer draws nothing and reserves a fixed tab strip height.
type Renderer struct {
	Height int
}

func (r Renderer) TabHeight(n int) int {
	if n == 0 {
		return 0
	}
	return r.Height
}

func (Renderer) PlaceFrame(wm.FrameID, tiling.Rect)            {}
func (Renderer) DrawTab(wm.FrameID, string, tiling.Rect, bool) {}
func (Renderer) ReleaseFrame(wm.FrameID)                       {}
func (Renderer) SetStyle(wm.Style) error                       { return nil }

// New returns a manager over a fake display of the given size, with its
// control-node tree.
func New(t testing.TB, width, height int) (*wm.WM, *WindowSystem, *ctl.Tree) {
	t.Helper()
	ws := NewWindowSystem(width, height)
	nodes := ctl.NewTree()
	m, err := wm.New(ws, Renderer{Height: 16}, nodes, wm.DefaultSettings(), Logger())
	if err != nil {
		t.Fatalf("wm.New: %v", err)
	}
	return m, ws, nodes
}

// Manage adopts window w with the given title and fails the test on error.
func Manage(t testing.TB, m *wm.WM, ws *WindowSystem, w wm.Window, name string) *wm.Client {
	t.Helper()
	ws.SetName(w, name)
	c, err := m.Manage(w, wm.WindowAttributes{Rect: tiling.Rect{Width: 100, Height: 100}})
	if err != nil {
		t.Fatalf("Manage(%d): %v", w, err)
	}
	return c
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
