package wm

import (
	"github.com/1broseidon/tabwm/internal/tiling"
)

// Arrange recomputes every rectangle on the page.
func (m *WM) Arrange(p *Page) {
	m.arrangePage(p)
}

// ArrangeColumn recomputes the frames of one column inside its current
// rectangle.
func (m *WM) ArrangeColumn(col *Column) {
	m.arrangeColumn(col)
}

func (m *WM) pageRect() tiling.Rect {
	pad := m.settings.PagePadding
	return tiling.Inset(m.ws.ScreenRect(), pad, pad, pad, pad)
}

// arrangePage splits the page width across its columns by weight and then
// arranges each column. Weights are rewritten to the resulting widths, so a
// second call yields identical rectangles.
func (m *WM) arrangePage(p *Page) {
	p.Rect = m.pageRect()
	m.clampSel("page", int(p.ID), &p.Sel, len(p.Columns))
	m.clampSel("page floating set", int(p.ID), &p.FloatSel, len(p.Floating))

	weights := make([]int, len(p.Columns))
	for i, id := range p.Columns {
		weights[i] = m.columns[id].weight
	}
	for i, r := range tiling.SplitColumns(p.Rect, weights) {
		col := m.columns[p.Columns[i]]
		col.Rect = r
		col.weight = r.Width
		m.arrangeColumn(col)
	}

	visible := m.pageIndex(p.ID) == m.active
	for _, id := range p.Floating {
		c := m.clients[id]
		if visible {
			m.moveResize(c)
		}
		m.syncClient(c)
	}
	m.syncPage(p)
}

func (m *WM) arrangeColumn(col *Column) {
	m.clampSel("column", int(col.ID), &col.Sel, len(col.Frames))

	weights := make([]int, len(col.Frames))
	for i, id := range col.Frames {
		weights[i] = m.frames[id].weight
	}
	for i, r := range tiling.SplitRows(col.Rect, weights) {
		f := m.frames[col.Frames[i]]
		f.Rect = r
		f.weight = r.Height
		m.arrangeFrame(f)
	}
	m.syncColumn(col)
}

// arrangeFrame sets every member to the frame interior and raises the shown
// one.
func (m *WM) arrangeFrame(f *Frame) {
	m.clampSel("frame", int(f.ID), &f.Sel, len(f.Clients))

	b := m.settings.Border
	interior := tiling.Inset(f.Rect, b, m.render.TabHeight(len(f.Clients)), b, b)
	for _, id := range f.Clients {
		c := m.clients[id]
		c.Rect = interior
		m.syncClient(c)
	}

	if m.frameVisible(f) {
		for _, id := range f.Clients {
			m.moveResize(m.clients[id])
		}
		if shown := m.shownClient(f); shown != nil {
			if err := m.ws.Raise(shown.Window); err != nil {
				m.collaboratorFailed("raise", shown.Window, err)
			}
		}
		m.drawFrame(f)
	}
	m.syncFrame(f)
}

func (m *WM) frameVisible(f *Frame) bool {
	p := m.pageOfFrame(f)
	return p != nil && p == m.ActivePage()
}

// drawFrame renders the tab strip. Each tab gets width/n of the frame, the
// last one takes the remainder.
func (m *WM) drawFrame(f *Frame) {
	n := len(f.Clients)
	if n == 0 || !m.frameVisible(f) {
		return
	}
	strip := f.Rect
	strip.Height = m.render.TabHeight(n)
	m.render.PlaceFrame(f.ID, strip)

	tabs := tiling.SplitColumns(strip, make([]int, n))
	for i, id := range f.Clients {
		m.render.DrawTab(f.ID, m.clients[id].Name, tabs[i], i == f.Sel)
	}
}

// showPage maps the clients of the page at index next and unmaps those of
// the previously active page.
func (m *WM) showPage(next int) {
	if next == m.active {
		return
	}
	if old := m.ActivePage(); old != nil {
		m.eachClient(old, m.unmapClient)
		for _, id := range old.Columns {
			for _, fid := range m.columns[id].Frames {
				m.render.ReleaseFrame(fid)
			}
		}
	}
	m.active = next
	if p := m.ActivePage(); p != nil {
		m.eachClient(p, m.mapClient)
		m.arrangePage(p)
	}
	m.syncGlobal()
}

func (m *WM) eachClient(p *Page, fn func(*Client)) {
	for _, id := range p.Columns {
		for _, fid := range m.columns[id].Frames {
			for _, cid := range m.frames[fid].Clients {
				fn(m.clients[cid])
			}
		}
	}
	for _, cid := range p.Floating {
		fn(m.clients[cid])
	}
}

// ResizeColumn sets the width of col by trading space with its neighbor.
func (m *WM) ResizeColumn(col *Column, width int) error {
	p, ok := m.Page(col.page)
	if !ok {
		return invalid("resize", "column %d has no page", col.ID)
	}
	idx := -1
	sizes := make([]int, len(p.Columns))
	for i, id := range p.Columns {
		sizes[i] = m.columns[id].Rect.Width
		if id == col.ID {
			idx = i
		}
	}
	out, _, ok := tiling.ResizePair(sizes, idx, width, m.settings.MinWidth)
	if !ok {
		return invalid("resize", "column %d has no neighbor to resize against", col.ID)
	}
	for i, id := range p.Columns {
		m.columns[id].weight = out[i]
	}
	m.arrangePage(p)
	m.emit(Event{Kind: EventPageUpdate, ID: int(p.ID)})
	return nil
}

// ResizeFrame sets the height of f by trading space with its neighbor.
func (m *WM) ResizeFrame(f *Frame, height int) error {
	col, ok := m.columns[f.column]
	if !ok {
		return invalid("resize", "frame %d has no column", f.ID)
	}
	idx := -1
	sizes := make([]int, len(col.Frames))
	for i, id := range col.Frames {
		sizes[i] = m.frames[id].Rect.Height
		if id == f.ID {
			idx = i
		}
	}
	out, _, ok := tiling.ResizePair(sizes, idx, height, m.settings.MinHeight)
	if !ok {
		return invalid("resize", "frame %d has no neighbor to resize against", f.ID)
	}
	for i, id := range col.Frames {
		m.frames[id].weight = out[i]
	}
	m.arrangeColumn(col)
	if p, ok := m.Page(col.page); ok {
		m.syncPage(p)
		m.emit(Event{Kind: EventPageUpdate, ID: int(p.ID)})
	}
	return nil
}

// ResizeClient applies a geometry to a client. Floating and detached clients
// take it as is (clamped to the minimum size). A tiled client resizes its
// column to the width and its frame to the height; an axis without a
// neighbor is left alone, but at least one axis must change.
func (m *WM) ResizeClient(c *Client, r tiling.Rect) error {
	if !c.Attached || c.Floating() {
		r.Width = max(r.Width, m.settings.MinWidth)
		r.Height = max(r.Height, m.settings.MinHeight)
		c.Rect = r
		m.moveResize(c)
		m.syncClient(c)
		m.emit(Event{Kind: EventClientUpdate, ID: int(c.ID)})
		return nil
	}

	f := m.frames[c.frame]
	col := m.columns[f.column]
	errCol := m.ResizeColumn(col, r.Width)
	errFrame := m.ResizeFrame(f, r.Height)
	if errCol != nil && errFrame != nil {
		return invalid("resize", "client %d has no neighbor on either axis", c.ID)
	}
	return nil
}
