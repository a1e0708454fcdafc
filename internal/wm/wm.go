// Package wm is the window management core: the client registry, the
// page/column/frame layout tree, the selection path through it, and the
// control nodes that mirror all of it.
//
// A WM is not safe for concurrent use. Every call must come from the single
// goroutine that drains the daemon's event queue.
package wm

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/1broseidon/tabwm/internal/ctl"
)

// Settings are the tunables the core reads on every arrange.
type Settings struct {
	Border      int
	MinWidth    int
	MinHeight   int
	PagePadding int
	Attach      AttachMode
	// Style is left to the renderer when zero.
	Style Style
}

// DefaultSettings matches the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Border:    3,
		MinWidth:  64,
		MinHeight: 48,
		Attach:    AttachTab,
		Style:     DefaultStyle(),
	}
}

// Validate checks that settings can drive a layout.
func (s Settings) Validate() error {
	if s.Border < 0 {
		return fmt.Errorf("border must be >= 0, got %d", s.Border)
	}
	if s.MinWidth < 1 || s.MinHeight < 1 {
		return fmt.Errorf("minimum size must be >= 1, got %dx%d", s.MinWidth, s.MinHeight)
	}
	if s.PagePadding < 0 {
		return fmt.Errorf("page padding must be >= 0, got %d", s.PagePadding)
	}
	if s.Style != (Style{}) {
		return s.Style.Validate()
	}
	return nil
}

// WM owns every page, column, frame and client.
type WM struct {
	ws     WindowSystem
	render Renderer
	nodes  *ctl.Tree
	log    *slog.Logger

	settings Settings

	clients  map[ClientID]*Client
	byWindow map[Window]ClientID
	frames   map[FrameID]*Frame
	columns  map[ColumnID]*Column
	pages    []*Page
	active   int
	detached []ClientID
	focused  ClientID

	nextClient ClientID
	nextFrame  FrameID
	nextColumn ColumnID
	nextPage   PageID

	listeners []func(Event)
	global    nodeRecord
}

// New builds an empty manager and creates the global control nodes.
func New(ws WindowSystem, render Renderer, nodes *ctl.Tree, settings Settings, logger *slog.Logger) (*WM, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &WM{
		ws:       ws,
		render:   render,
		nodes:    nodes,
		log:      logger,
		settings: settings,
		clients:  make(map[ClientID]*Client),
		byWindow: make(map[Window]ClientID),
		frames:   make(map[FrameID]*Frame),
		columns:  make(map[ColumnID]*Column),
		active:   -1,
	}
	if err := m.createGlobalNodes(); err != nil {
		return nil, err
	}
	return m, nil
}

// Settings returns the current settings.
func (m *WM) Settings() Settings { return m.settings }

// ApplySettings replaces the settings and re-arranges every page.
func (m *WM) ApplySettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return &ValidationError{Op: "settings", Msg: err.Error()}
	}
	if s.Style != (Style{}) {
		if err := m.restyle(s.Style); err != nil {
			return err
		}
	}
	m.settings = s
	for _, p := range m.pages {
		m.arrangePage(p)
	}
	m.syncGlobal()
	return nil
}

// Client looks up a client by id.
func (m *WM) Client(id ClientID) (*Client, bool) {
	c, ok := m.clients[id]
	return c, ok
}

// ClientByWindow looks up the client managing w.
func (m *WM) ClientByWindow(w Window) (*Client, bool) {
	id, ok := m.byWindow[w]
	if !ok {
		return nil, false
	}
	return m.Client(id)
}

// Windows lists the windows of every managed client.
func (m *WM) Windows() []Window {
	out := make([]Window, 0, len(m.byWindow))
	for w := range m.byWindow {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Frame looks up a frame by id.
func (m *WM) Frame(id FrameID) (*Frame, bool) {
	f, ok := m.frames[id]
	return f, ok
}

// Column looks up a column by id.
func (m *WM) Column(id ColumnID) (*Column, bool) {
	c, ok := m.columns[id]
	return c, ok
}

// Page looks up a page by id.
func (m *WM) Page(id PageID) (*Page, bool) {
	i := m.pageIndex(id)
	if i < 0 {
		return nil, false
	}
	return m.pages[i], true
}

// Pages returns the pages in display order.
func (m *WM) Pages() []*Page { return m.pages }

// ActivePage returns the active page, or nil before the first page exists.
func (m *WM) ActivePage() *Page {
	if m.active < 0 || m.active >= len(m.pages) {
		return nil
	}
	return m.pages[m.active]
}

// Detached returns the ids in the detached pool, oldest first.
func (m *WM) Detached() []ClientID { return slices.Clone(m.detached) }

// Focused returns the client holding the input focus, or nil.
func (m *WM) Focused() *Client {
	if m.focused == 0 {
		return nil
	}
	c, _ := m.Client(m.focused)
	return c
}

func (m *WM) pageIndex(id PageID) int {
	return slices.IndexFunc(m.pages, func(p *Page) bool { return p.ID == id })
}

// pageOf returns the page holding c, or nil when c is detached.
func (m *WM) pageOf(c *Client) *Page {
	if c.page != 0 {
		p, _ := m.Page(c.page)
		return p
	}
	if c.frame == 0 {
		return nil
	}
	f, ok := m.frames[c.frame]
	if !ok {
		return nil
	}
	return m.pageOfFrame(f)
}

func (m *WM) pageOfFrame(f *Frame) *Page {
	col, ok := m.columns[f.column]
	if !ok {
		return nil
	}
	p, _ := m.Page(col.page)
	return p
}

func (m *WM) transientTarget(c *Client) *Client {
	if c.Transient == 0 || c.Transient == c.Window {
		return nil
	}
	t, ok := m.ClientByWindow(c.Transient)
	if !ok {
		return nil
	}
	return t
}

// clampSel repairs a selection index for a container of n elements. An
// out-of-range index is an invariant violation: it is logged and clamped.
func (m *WM) clampSel(container string, id int, sel *int, n int) {
	switch {
	case n == 0:
		*sel = -1
	case *sel >= 0 && *sel < n:
	default:
		err := &InvariantViolation{
			Container: container,
			ID:        id,
			Detail:    fmt.Sprintf("selection %d out of range [0,%d)", *sel, n),
		}
		m.log.Error("selection clamped", "container", container, "id", id, "error", err)
		if *sel >= n {
			*sel = n - 1
		} else {
			*sel = 0
		}
	}
}

// removeSel adjusts a selection index after the element at idx was removed
// from a container that now holds n elements.
func removeSel(sel, idx, n int) int {
	if n == 0 {
		return -1
	}
	if idx < sel {
		sel--
	}
	if sel >= n {
		sel = n - 1
	}
	if sel < 0 {
		sel = 0
	}
	return sel
}

func (m *WM) collaboratorFailed(op string, w Window, err error) {
	m.log.Warn("window system call failed", "error", &CollaboratorFailure{Op: op, Window: w, Err: err})
}
