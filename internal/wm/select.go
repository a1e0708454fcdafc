package wm

import "slices"

// SelectClient makes c the shown client of its frame and selects every
// container above it, so the selection path runs from the active page down
// to c. A nil client reverts focus to the root window. Selecting a client
// that is not attached is a ValidationError.
func (m *WM) SelectClient(c *Client, raise bool) error {
	if c == nil {
		m.focusClient(nil, false)
		return nil
	}
	page := m.pageOf(c)
	if page == nil {
		return invalid("select", "client %d is not attached", c.ID)
	}

	if c.Floating() {
		page.FloatSel = slices.Index(page.Floating, c.ID)
		page.Mode = ModeFloating
	} else {
		f := m.frames[c.frame]
		col := m.columns[f.column]
		f.Sel = slices.Index(f.Clients, c.ID)
		col.Sel = slices.Index(col.Frames, f.ID)
		page.Sel = slices.Index(page.Columns, col.ID)
		page.Mode = ModeColumn
		m.arrangeFrame(f)
		m.syncColumn(col)
	}

	m.showPage(m.pageIndex(page.ID))
	m.focusClient(c, raise)
	m.syncPage(page)
	return nil
}

// SelectFrame selects f and everything above it, then focuses the frame's
// shown client.
func (m *WM) SelectFrame(f *Frame) error {
	col, ok := m.columns[f.column]
	if !ok {
		return invalid("select", "frame %d has no column", f.ID)
	}
	col.Sel = slices.Index(col.Frames, f.ID)
	m.syncColumn(col)
	return m.SelectColumn(col)
}

// SelectColumn selects col within its page and the page itself.
func (m *WM) SelectColumn(col *Column) error {
	p, ok := m.Page(col.page)
	if !ok {
		return invalid("select", "column %d has no page", col.ID)
	}
	p.Sel = slices.Index(p.Columns, col.ID)
	p.Mode = ModeColumn
	return m.SelectPage(p)
}

// SelectPage makes p the active page and focuses the end of its selection
// path. Descendant selections keep their previous index when it is still
// valid and fall back to the first element otherwise.
func (m *WM) SelectPage(p *Page) error {
	idx := m.pageIndex(p.ID)
	if idx < 0 {
		return invalid("select", "page %d does not exist", p.ID)
	}
	m.showPage(idx)
	m.focusClient(m.selectedClient(p), true)
	m.syncPage(p)
	m.emit(Event{Kind: EventPageUpdate, ID: int(p.ID)})
	return nil
}

// SetMode switches which client set of p holds the focus path. Selections
// inside columns and frames are untouched.
func (m *WM) SetMode(p *Page, mode Mode) error {
	if mode == ModeFloating && len(p.Floating) == 0 {
		return invalid("select", "page %d has no floating clients", p.ID)
	}
	p.Mode = mode
	m.syncPage(p)
	if p == m.ActivePage() {
		m.focusClient(m.selectedClient(p), true)
	}
	return nil
}

// focusClient transfers input focus and emits a client update. It does not
// change any selection index.
func (m *WM) focusClient(c *Client, raise bool) {
	prev := m.focused
	var w Window
	if c != nil {
		w = c.Window
		if raise {
			if err := m.ws.Raise(w); err != nil {
				m.collaboratorFailed("raise", w, err)
			}
		}
		m.focused = c.ID
	} else {
		m.focused = 0
	}
	if err := m.ws.Focus(w); err != nil {
		m.collaboratorFailed("focus", w, err)
	}

	if p, ok := m.Client(prev); ok && prev != m.focused {
		m.syncClient(p)
	}
	id := 0
	if c != nil {
		m.syncClient(c)
		id = int(c.ID)
	}
	m.syncGlobal()
	m.emit(Event{Kind: EventClientUpdate, ID: id})
}

func (m *WM) selectedColumn(p *Page) *Column {
	if p == nil || len(p.Columns) == 0 {
		return nil
	}
	m.clampSel("page", int(p.ID), &p.Sel, len(p.Columns))
	return m.columns[p.Columns[p.Sel]]
}

func (m *WM) selectedFrame(col *Column) *Frame {
	if col == nil || len(col.Frames) == 0 {
		return nil
	}
	m.clampSel("column", int(col.ID), &col.Sel, len(col.Frames))
	return m.frames[col.Frames[col.Sel]]
}

func (m *WM) shownClient(f *Frame) *Client {
	if f == nil || len(f.Clients) == 0 {
		return nil
	}
	m.clampSel("frame", int(f.ID), &f.Sel, len(f.Clients))
	return m.clients[f.Clients[f.Sel]]
}

// selectedClient follows the selection path of p down to a client. It
// returns nil when the path ends at an empty container.
func (m *WM) selectedClient(p *Page) *Client {
	if p == nil {
		return nil
	}
	if p.Mode == ModeFloating && len(p.Floating) > 0 {
		m.clampSel("page floating set", int(p.ID), &p.FloatSel, len(p.Floating))
		return m.clients[p.Floating[p.FloatSel]]
	}
	return m.shownClient(m.selectedFrame(m.selectedColumn(p)))
}

// SelectedClient returns the end of the active page's selection path.
func (m *WM) SelectedClient() *Client { return m.selectedClient(m.ActivePage()) }

// SelectedFrame returns the selected frame of the active page.
func (m *WM) SelectedFrame() *Frame { return m.selectedFrame(m.SelectedColumn()) }

// SelectedColumn returns the selected column of the active page.
func (m *WM) SelectedColumn() *Column { return m.selectedColumn(m.ActivePage()) }

// cycle resolves prev/next/index targets within a container of n elements.
func cycle(t Target, cur, n int) (int, bool) {
	if n == 0 {
		return 0, false
	}
	switch t.Kind {
	case TargetPrev:
		return (max(cur, 0) - 1 + n) % n, true
	case TargetNext:
		return (max(cur, 0) + 1) % n, true
	case TargetIndex:
		if t.Index < 0 || t.Index >= n {
			return 0, false
		}
		return t.Index, true
	}
	return 0, false
}
