package wm

import (
	"fmt"
	"slices"

	"github.com/1broseidon/tabwm/internal/tiling"
)

// Attach moves a detached client onto a page.
//
// A transient whose target is attached joins the target's frame as another
// tab (or the target's floating set). Anything else goes to the active page:
// its floating set in floating mode, otherwise the selected column, either as
// a tab of the selected frame or in a new frame depending on the attach mode.
// The client ends up selected.
func (m *WM) Attach(c *Client) error {
	i := slices.Index(m.detached, c.ID)
	if i < 0 {
		return invalid("attach", "client %d is already attached", c.ID)
	}

	var page *Page
	if t := m.transientTarget(c); t != nil && t.Attached {
		page = m.pageOf(t)
		if t.Floating() {
			m.addFloating(page, c)
		} else {
			f := m.frames[t.frame]
			m.addToFrame(f, c, slices.Index(f.Clients, t.ID)+1)
		}
	} else {
		page = m.ActivePage()
		if page == nil {
			page = m.newPage()
			m.active = 0
		}
		if page.Mode == ModeFloating {
			m.addFloating(page, c)
		} else {
			col := m.selectedColumn(page)
			f := m.selectedFrame(col)
			if f == nil || m.settings.Attach == AttachStack {
				f = m.newFrame(col, col.Sel+1)
			}
			m.addToFrame(f, c, len(f.Clients))
		}
	}

	m.detached = slices.Delete(m.detached, i, i+1)
	c.Attached = true
	m.placeClientNodes(c)

	if m.pageIndex(page.ID) == m.active {
		m.mapClient(c)
	}
	m.arrangePage(page)
	if err := m.SelectClient(c, true); err != nil {
		return err
	}
	m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
	return nil
}

// Detach moves an attached client back to the detached pool. With hide the
// window is unmapped, otherwise it stays visible for re-attachment.
func (m *WM) Detach(c *Client, hide bool) error {
	if !c.Attached {
		return invalid("detach", "client %d is not attached", c.ID)
	}
	return m.detach(c, hide)
}

func (m *WM) detach(c *Client, hide bool) error {
	page := m.unlink(c)
	if hide {
		m.unmapClient(c)
	}

	m.detached = append(m.detached, c.ID)
	m.placeClientNodes(c)

	if page != nil {
		m.arrangePage(page)
		if m.focused == c.ID {
			m.focused = 0
			if page == m.ActivePage() {
				m.focusClient(m.selectedClient(page), false)
			}
		}
		m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
	}
	return nil
}

// unlink removes c from its frame or floating set, dropping containers that
// become empty, and returns the page it was on. The client is left outside
// every container.
func (m *WM) unlink(c *Client) *Page {
	page := m.pageOf(c)
	switch {
	case c.frame != 0:
		f, ok := m.frames[c.frame]
		if !ok {
			m.log.Error("client references missing frame", "error",
				&InvariantViolation{Container: "client", ID: int(c.ID), Detail: fmt.Sprintf("frame %d missing", c.frame)})
			break
		}
		idx := slices.Index(f.Clients, c.ID)
		if idx >= 0 {
			f.Clients = slices.Delete(f.Clients, idx, idx+1)
			f.Sel = removeSel(f.Sel, idx, len(f.Clients))
		}
		if len(f.Clients) == 0 {
			m.removeFrame(f)
		} else {
			m.syncFrame(f)
		}
	case c.page != 0 && page != nil:
		idx := slices.Index(page.Floating, c.ID)
		if idx >= 0 {
			page.Floating = slices.Delete(page.Floating, idx, idx+1)
			page.FloatSel = removeSel(page.FloatSel, idx, len(page.Floating))
		}
		c.Rect = tiling.Gravitate(c.Rect, c.Hints.EffectiveGravity(), c.floatTab, c.floatBorder, true)
		if len(page.Floating) == 0 && page.Mode == ModeFloating {
			page.Mode = ModeColumn
		}
	}

	c.frame = 0
	c.page = 0
	c.Attached = false
	return page
}

func (m *WM) addToFrame(f *Frame, c *Client, at int) {
	at = max(0, min(at, len(f.Clients)))
	f.Clients = slices.Insert(f.Clients, at, c.ID)
	if f.Sel < 0 {
		f.Sel = at
	} else if f.Sel >= at {
		f.Sel++
	}
	c.frame = f.ID
	c.page = 0
}

func (m *WM) addFloating(p *Page, c *Client) {
	p.Floating = append(p.Floating, c.ID)
	if p.FloatSel < 0 {
		p.FloatSel = 0
	}
	c.frame = 0
	c.page = p.ID
	c.floatTab, c.floatBorder = m.render.TabHeight(1), m.settings.Border
	c.Rect = tiling.Gravitate(c.Rect, c.Hints.EffectiveGravity(), c.floatTab, c.floatBorder, false)
}

// NewPage appends an empty page with one empty column.
func (m *WM) NewPage() *Page {
	p := m.newPage()
	m.emit(Event{Kind: EventPageUpdate, ID: int(p.ID)})
	return p
}

func (m *WM) newPage() *Page {
	m.nextPage++
	p := &Page{
		ID:       m.nextPage,
		Name:     fmt.Sprintf("%d", len(m.pages)+1),
		Sel:      -1,
		FloatSel: -1,
	}
	m.pages = append(m.pages, p)
	m.createPageNodes(p)
	m.newColumn(p, 0)
	m.arrangePage(p)
	return p
}

func (m *WM) newColumn(p *Page, at int) *Column {
	m.nextColumn++
	col := &Column{ID: m.nextColumn, Sel: -1, page: p.ID}
	m.columns[col.ID] = col

	at = max(0, min(at, len(p.Columns)))
	p.Columns = slices.Insert(p.Columns, at, col.ID)
	if p.Sel >= at {
		p.Sel++
	}
	if p.Sel < 0 {
		p.Sel = at
	}
	m.createColumnNodes(col)
	return col
}

func (m *WM) newFrame(col *Column, at int) *Frame {
	m.nextFrame++
	f := &Frame{ID: m.nextFrame, Sel: -1, column: col.ID}
	m.frames[f.ID] = f

	at = max(0, min(at, len(col.Frames)))
	col.Frames = slices.Insert(col.Frames, at, f.ID)
	col.Sel = at
	m.createFrameNodes(f)
	return f
}

// removeFrame drops an empty frame. Its height goes to the surviving
// siblings, and an emptied column is dropped unless it is the last one.
func (m *WM) removeFrame(f *Frame) {
	col, ok := m.columns[f.column]
	if ok {
		idx := slices.Index(col.Frames, f.ID)
		if idx >= 0 {
			col.Frames = slices.Delete(col.Frames, idx, idx+1)
			col.Sel = removeSel(col.Sel, idx, len(col.Frames))
			m.spreadFrames(col, f.weight)
		}
	}
	delete(m.frames, f.ID)
	m.removeFrameNodes(f)
	m.render.ReleaseFrame(f.ID)

	if !ok || len(col.Frames) > 0 {
		return
	}
	if p, ok := m.Page(col.page); ok && len(p.Columns) > 1 {
		m.removeColumn(p, col)
	} else {
		m.syncColumn(col)
	}
}

func (m *WM) removeColumn(p *Page, col *Column) {
	idx := slices.Index(p.Columns, col.ID)
	if idx >= 0 {
		p.Columns = slices.Delete(p.Columns, idx, idx+1)
		p.Sel = removeSel(p.Sel, idx, len(p.Columns))
		m.spreadColumns(p, col.weight)
	}
	delete(m.columns, col.ID)
	m.removeColumnNodes(col)
}

func (m *WM) spreadFrames(col *Column, freed int) {
	weights := make([]int, len(col.Frames))
	for i, id := range col.Frames {
		weights[i] = m.frames[id].weight
	}
	for i, w := range tiling.Spread(weights, freed) {
		m.frames[col.Frames[i]].weight = w
	}
}

func (m *WM) spreadColumns(p *Page, freed int) {
	weights := make([]int, len(p.Columns))
	for i, id := range p.Columns {
		weights[i] = m.columns[id].weight
	}
	for i, w := range tiling.Spread(weights, freed) {
		m.columns[p.Columns[i]].weight = w
	}
}

// Move puts c into a new frame of column idx on its page. An index equal to
// the column count opens a new column on the right.
func (m *WM) Move(c *Client, idx int) error {
	page := m.pageOf(c)
	if page == nil {
		return invalid("move", "client %d is not attached", c.ID)
	}
	if idx < 0 || idx > len(page.Columns) {
		return invalid("move", "column index %d out of range [0,%d]", idx, len(page.Columns))
	}
	if f, ok := m.frames[c.frame]; ok && idx < len(page.Columns) && page.Columns[idx] == f.column {
		if len(f.Clients) == 1 && len(m.columns[f.column].Frames) == 1 {
			return nil
		}
	}

	var target *Column
	if idx == len(page.Columns) {
		target = m.newColumn(page, idx)
	} else {
		target = m.columns[page.Columns[idx]]
	}

	m.unlink(c)
	c.Attached = true
	f := m.newFrame(target, target.Sel+1)
	m.addToFrame(f, c, 0)
	m.arrangePage(page)
	if err := m.SelectClient(c, true); err != nil {
		return err
	}
	m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
	return nil
}

// SetFloating moves an attached client between the floating set and the
// column layout of its page.
func (m *WM) SetFloating(c *Client, floating bool) error {
	page := m.pageOf(c)
	if page == nil {
		return invalid("move", "client %d is not attached", c.ID)
	}
	if c.Floating() == floating {
		return nil
	}

	m.unlink(c)
	c.Attached = true
	if floating {
		m.addFloating(page, c)
		page.FloatSel = len(page.Floating) - 1
	} else {
		col := m.selectedColumn(page)
		f := m.newFrame(col, col.Sel+1)
		m.addToFrame(f, c, 0)
	}
	m.arrangePage(page)
	if err := m.SelectClient(c, true); err != nil {
		return err
	}
	m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
	return nil
}

// MoveFrame relocates a whole frame into column idx of its page.
func (m *WM) MoveFrame(f *Frame, idx int) error {
	src, ok := m.columns[f.column]
	if !ok {
		return invalid("move", "frame %d has no column", f.ID)
	}
	page, _ := m.Page(src.page)
	if idx < 0 || idx > len(page.Columns) {
		return invalid("move", "column index %d out of range [0,%d]", idx, len(page.Columns))
	}
	if idx < len(page.Columns) && page.Columns[idx] == src.ID {
		return nil
	}

	var target *Column
	if idx == len(page.Columns) {
		if len(src.Frames) == 1 {
			return nil
		}
		target = m.newColumn(page, idx)
	} else {
		target = m.columns[page.Columns[idx]]
	}

	pos := slices.Index(src.Frames, f.ID)
	src.Frames = slices.Delete(src.Frames, pos, pos+1)
	src.Sel = removeSel(src.Sel, pos, len(src.Frames))
	m.spreadFrames(src, f.weight)
	f.weight = 0

	at := target.Sel + 1
	target.Frames = slices.Insert(target.Frames, max(0, min(at, len(target.Frames))), f.ID)
	target.Sel = slices.Index(target.Frames, f.ID)
	f.column = target.ID

	if len(src.Frames) == 0 && len(page.Columns) > 1 {
		m.removeColumn(page, src)
	}
	m.arrangePage(page)
	if err := m.SelectFrame(f); err != nil {
		return err
	}
	m.emit(Event{Kind: EventPageUpdate, ID: int(page.ID)})
	return nil
}

// ClosePage removes an empty page. The last page cannot be removed.
func (m *WM) ClosePage(p *Page) error {
	if len(m.pages) <= 1 {
		return invalid("close", "page %d is the last page", p.ID)
	}
	if len(p.Floating) > 0 {
		return invalid("close", "page %d still has floating clients", p.ID)
	}
	for _, id := range p.Columns {
		if len(m.columns[id].Frames) > 0 {
			return invalid("close", "page %d still has clients", p.ID)
		}
	}

	idx := m.pageIndex(p.ID)
	wasActive := idx == m.active
	for _, id := range p.Columns {
		m.removeColumnNodes(m.columns[id])
		delete(m.columns, id)
	}
	m.pages = slices.Delete(m.pages, idx, idx+1)
	m.removePageNodes(p)
	m.renamePages()
	if wasActive {
		// Nothing is shown until the neighbor is selected.
		m.active = -1
		return m.SelectPage(m.pages[min(idx, len(m.pages)-1)])
	}
	if idx < m.active {
		m.active--
	}
	m.syncGlobal()
	m.emit(Event{Kind: EventPageUpdate, ID: int(p.ID)})
	return nil
}

func (m *WM) renamePages() {
	for i, p := range m.pages {
		p.Name = fmt.Sprintf("%d", i+1)
		m.syncPage(p)
	}
}
