package wm

import (
	"slices"

	"github.com/1broseidon/tabwm/internal/tiling"
)

// Create registers a newly observed window. The client starts in the
// detached pool. Creating a client for a window that is already managed
// returns the existing client.
func (m *WM) Create(w Window, attrs WindowAttributes) (*Client, error) {
	if w == 0 {
		return nil, invalid("create", "window 0 cannot be managed")
	}
	if c, ok := m.ClientByWindow(w); ok {
		return c, nil
	}
	if err := m.ws.SelectInput(w); err != nil {
		return nil, &CollaboratorFailure{Op: "select input", Window: w, Err: err}
	}

	m.nextClient++
	c := &Client{
		ID:     m.nextClient,
		Window: w,
		Border: attrs.Border,
		Rect:   attrs.Rect,
		mapped: attrs.Mapped,
	}
	if name, err := m.ws.Name(w); err == nil {
		c.Name = truncateName(name)
	}
	m.refreshProtocols(c)
	m.refreshHints(c)
	m.refreshTransient(c)

	m.clients[c.ID] = c
	m.byWindow[w] = c.ID
	m.detached = append(m.detached, c.ID)

	m.placeClientNodes(c)
	m.log.Debug("client created", "client", c.ID, "window", uint32(w), "name", c.Name)
	return c, nil
}

// Manage creates a client for w and attaches it.
func (m *WM) Manage(w Window, attrs WindowAttributes) (*Client, error) {
	c, err := m.Create(w, attrs)
	if err != nil {
		return nil, err
	}
	if c.Attached {
		return c, nil
	}
	if err := m.Attach(c); err != nil {
		return nil, err
	}
	return c, nil
}

// RefreshProperty re-reads one property of the client managing w. Deleted
// properties and unmanaged windows are ignored.
func (m *WM) RefreshProperty(w Window, kind PropertyKind, deleted bool) {
	c, ok := m.ClientByWindow(w)
	if !ok || deleted {
		return
	}

	switch kind {
	case PropProtocols:
		m.refreshProtocols(c)
	case PropTransient:
		m.refreshTransient(c)
	case PropNormalHints:
		m.refreshHints(c)
	case PropName:
		name, err := m.ws.Name(w)
		if err != nil {
			m.collaboratorFailed("read name", w, err)
			return
		}
		if name != "" {
			c.Name = truncateName(name)
			m.syncClient(c)
			if f, ok := m.frames[c.frame]; ok {
				m.drawFrame(f)
			}
		}
		m.emit(Event{Kind: EventClientUpdate, ID: int(c.ID)})
	}
}

func (m *WM) refreshProtocols(c *Client) {
	proto, err := m.ws.Protocols(c.Window)
	if err != nil {
		c.Proto = 0
		return
	}
	c.Proto = proto
}

func (m *WM) refreshTransient(c *Client) {
	t, err := m.ws.TransientFor(c.Window)
	if err != nil || t == c.Window {
		t = 0
	}
	c.Transient = t
}

func (m *WM) refreshHints(c *Client) {
	hints, err := m.ws.NormalHints(c.Window)
	if err != nil || hints.Flags == 0 {
		hints = SizeHints{
			Flags:      HintPSize,
			BaseWidth:  c.Rect.Width,
			BaseHeight: c.Rect.Height,
		}
	}
	c.Hints = hints
}

// Destroy forgets the client managing w after its window disappeared.
func (m *WM) Destroy(w Window) {
	c, ok := m.ClientByWindow(w)
	if !ok {
		return
	}

	var page *Page
	if i := slices.Index(m.detached, c.ID); i >= 0 {
		m.detached = slices.Delete(m.detached, i, i+1)
	} else {
		page = m.unlink(c)
	}

	m.removeClientNodes(c)
	delete(m.byWindow, c.Window)
	delete(m.clients, c.ID)
	for _, other := range m.clients {
		if other.Transient == c.Window {
			other.Transient = 0
		}
	}

	wasFocused := m.focused == c.ID
	if wasFocused {
		m.focused = 0
	}
	if page != nil {
		m.arrangePage(page)
		m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
		if wasFocused && page == m.ActivePage() {
			m.focusClient(m.selectedClient(page), false)
		}
	}
	m.log.Debug("client destroyed", "client", c.ID, "window", uint32(w))
}

// Withdrawn handles a client unmapping its own window. Unmaps the manager
// caused itself are skipped; otherwise the client goes back to the pool.
func (m *WM) Withdrawn(w Window) {
	c, ok := m.ClientByWindow(w)
	if !ok {
		return
	}
	c.mapped = false
	if c.ignoreUnmap > 0 {
		c.ignoreUnmap--
		return
	}
	if c.Attached {
		if err := m.detach(c, false); err != nil {
			m.log.Warn("detach on withdraw failed", "client", c.ID, "error", err)
		}
	}
}

// Close asks the client to go away: politely when it supports
// WM_DELETE_WINDOW, by killing its connection otherwise.
func (m *WM) Close(c *Client) error {
	if c.Proto&ProtoDelete != 0 {
		if err := m.ws.SendDelete(c.Window); err != nil {
			return &CollaboratorFailure{Op: "send delete", Window: c.Window, Err: err}
		}
		return nil
	}
	if err := m.ws.Kill(c.Window); err != nil {
		return &CollaboratorFailure{Op: "kill", Window: c.Window, Err: err}
	}
	return nil
}

// RequestGeometry handles a configure request. Floating and detached clients
// get what they ask for, tiled clients are pinned to their frame.
func (m *WM) RequestGeometry(w Window, r tiling.Rect) {
	c, ok := m.ClientByWindow(w)
	if !ok {
		return
	}
	if !c.Floating() && c.Attached {
		m.moveResize(c)
		return
	}
	if r.Empty() {
		return
	}
	c.Rect = r
	m.moveResize(c)
	m.syncClient(c)
}

func (m *WM) moveResize(c *Client) {
	if err := m.ws.MoveResize(c.Window, c.Rect); err != nil {
		m.collaboratorFailed("move resize", c.Window, err)
	}
}

func (m *WM) mapClient(c *Client) {
	if err := m.ws.Map(c.Window); err != nil {
		m.collaboratorFailed("map", c.Window, err)
		return
	}
	c.mapped = true
}

// unmapClient hides c. Only windows that are shown produce an UnmapNotify,
// so only those are counted.
func (m *WM) unmapClient(c *Client) {
	if !c.mapped {
		return
	}
	if err := m.ws.Unmap(c.Window); err != nil {
		m.collaboratorFailed("unmap", c.Window, err)
		return
	}
	c.mapped = false
	c.ignoreUnmap++
}
