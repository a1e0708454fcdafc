package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tabwm/internal/ctl"
)

// nodeTag names one node of an entity.
type nodeTag int

const (
	tagName nodeTag = iota
	tagWindow
	tagFrame
	tagColumn
	tagPage
	tagSel
	tagMode
	tagClients
	tagFrames
	tagColumns
	tagFloating
	tagGeometry
	tagCtl
)

var tagNames = [...]string{
	tagName:     "name",
	tagWindow:   "window",
	tagFrame:    "frame",
	tagColumn:   "column",
	tagPage:     "page",
	tagSel:      "sel",
	tagMode:     "mode",
	tagClients:  "clients",
	tagFrames:   "frames",
	tagColumns:  "columns",
	tagFloating: "floating",
	tagGeometry: "geometry",
	tagCtl:      "ctl",
}

// Node sets per entity kind. The ctl node is always a command node, every
// other tag is a mirror.
var (
	clientTags   = []nodeTag{tagName, tagWindow, tagFrame, tagSel, tagGeometry, tagCtl}
	detachedTags = []nodeTag{tagName, tagWindow, tagGeometry, tagCtl}
	frameTags    = []nodeTag{tagColumn, tagSel, tagClients, tagGeometry, tagCtl}
	columnTags   = []nodeTag{tagPage, tagSel, tagFrames, tagGeometry, tagCtl}
	pageTags     = []nodeTag{tagName, tagSel, tagMode, tagColumns, tagFloating, tagGeometry, tagCtl}
)

// nodeRecord lists the nodes one entity exposes under its prefix.
type nodeRecord struct {
	prefix string
	tags   []nodeTag
}

func (r nodeRecord) path(t nodeTag) string {
	return r.prefix + "/" + tagNames[t]
}

func (r nodeRecord) has(t nodeTag) bool {
	for _, x := range r.tags {
		if x == t {
			return true
		}
	}
	return false
}

// Global node paths.
const (
	PathCtl       = "/ctl"
	PathEvent     = "/event"
	PathSel       = "/sel"
	PathBorder    = "/def/border"
	PathAttach    = "/def/attach"
	PathMinWidth  = "/def/min-width"
	PathMinHeight = "/def/min-height"
	PathPadding   = "/def/padding"

	PathFont           = "/def/font"
	PathFocusColor     = "/def/focuscolor"
	PathNormalColor    = "/def/normcolor"
	PathTextColor      = "/def/textcolor"
	PathFocusTextColor = "/def/focustextcolor"
)

// Entity references used in node content and command targets.
func clientRef(id ClientID) string { return fmt.Sprintf("client:%d", id) }
func frameRef(id FrameID) string   { return fmt.Sprintf("frame:%d", id) }
func columnRef(id ColumnID) string { return fmt.Sprintf("column:%d", id) }
func pageRef(id PageID) string     { return fmt.Sprintf("page:%d", id) }

// ClientPath returns the node directory of an attached client.
func ClientPath(id ClientID) string { return fmt.Sprintf("/client/%d", id) }

// DetachedPath returns the node directory of a client in the detached pool.
func DetachedPath(id ClientID) string { return fmt.Sprintf("/detached/%d", id) }

// FramePath returns the node directory of a frame.
func FramePath(id FrameID) string { return fmt.Sprintf("/frame/%d", id) }

// ColumnPath returns the node directory of a column.
func ColumnPath(id ColumnID) string { return fmt.Sprintf("/column/%d", id) }

// PagePath returns the node directory of a page.
func PagePath(id PageID) string { return fmt.Sprintf("/page/%d", id) }

func (m *WM) createNodes(rec nodeRecord, write ctl.WriteFunc) {
	for _, t := range rec.tags {
		kind, fn := ctl.KindMirror, ctl.WriteFunc(nil)
		if t == tagCtl {
			kind, fn = ctl.KindCommand, write
		}
		if err := m.nodes.Create(rec.path(t), kind, "", fn); err != nil {
			m.log.Warn("node create failed", "path", rec.path(t), "error", err)
		}
	}
}

// removeNodes drops an entity's nodes. Failures are logged and the entity
// goes away regardless.
func (m *WM) removeNodes(rec nodeRecord) {
	for _, t := range rec.tags {
		m.removeNode(rec.path(t))
	}
}

func (m *WM) removeNode(p string) {
	if err := m.nodes.Remove(p); err != nil {
		m.log.Warn("node remove failed", "path", p, "error", err)
	}
}

func (m *WM) setNode(p, content string) {
	if err := m.nodes.Set(p, content); err != nil {
		m.log.Warn("node update failed", "path", p, "error", err)
	}
}

func (m *WM) set(rec nodeRecord, t nodeTag, content string) {
	if rec.has(t) {
		m.setNode(rec.path(t), content)
	}
}

// placeClientNodes gives c the node set of its current placement: the
// detached set while in the pool, the client set once attached. Nodes of the
// previous placement are removed.
func (m *WM) placeClientNodes(c *Client) {
	rec := nodeRecord{prefix: DetachedPath(c.ID), tags: detachedTags}
	if c.Attached {
		rec = nodeRecord{prefix: ClientPath(c.ID), tags: clientTags}
	}
	if rec.prefix == c.nodes.prefix {
		m.syncClient(c)
		return
	}
	m.removeClientNodes(c)
	c.nodes = rec
	id := c.ID
	m.createNodes(c.nodes, func(data string) error { return m.clientCommand(id, data) })
	m.syncClient(c)
}

func (m *WM) removeClientNodes(c *Client) {
	m.removeNodes(c.nodes)
	c.nodes = nodeRecord{}
}

func (m *WM) createFrameNodes(f *Frame) {
	f.nodes = nodeRecord{prefix: FramePath(f.ID), tags: frameTags}
	id := f.ID
	m.createNodes(f.nodes, func(data string) error { return m.frameCommand(id, data) })
}

func (m *WM) removeFrameNodes(f *Frame) { m.removeNodes(f.nodes) }

func (m *WM) createColumnNodes(col *Column) {
	col.nodes = nodeRecord{prefix: ColumnPath(col.ID), tags: columnTags}
	id := col.ID
	m.createNodes(col.nodes, func(data string) error { return m.columnCommand(id, data) })
}

func (m *WM) removeColumnNodes(col *Column) { m.removeNodes(col.nodes) }

func (m *WM) createPageNodes(p *Page) {
	p.nodes = nodeRecord{prefix: PagePath(p.ID), tags: pageTags}
	id := p.ID
	m.createNodes(p.nodes, func(data string) error { return m.pageCommand(id, data) })
}

func (m *WM) removePageNodes(p *Page) { m.removeNodes(p.nodes) }

func (m *WM) syncClient(c *Client) {
	sel := "0"
	if f, ok := m.frames[c.frame]; ok && f.Sel >= 0 && f.Sel < len(f.Clients) && f.Clients[f.Sel] == c.ID {
		sel = "1"
	} else if p := m.pageOf(c); p != nil && c.Floating() && p.FloatSel >= 0 && p.FloatSel < len(p.Floating) && p.Floating[p.FloatSel] == c.ID {
		sel = "1"
	}
	frame := ""
	if c.frame != 0 {
		frame = frameRef(c.frame)
	} else if c.page != 0 {
		frame = "floating"
	}

	m.set(c.nodes, tagName, c.Name)
	m.set(c.nodes, tagWindow, fmt.Sprintf("0x%x", uint32(c.Window)))
	m.set(c.nodes, tagFrame, frame)
	m.set(c.nodes, tagSel, sel)
	m.set(c.nodes, tagGeometry, c.Rect.String())
}

func (m *WM) syncFrame(f *Frame) {
	sel := ""
	if f.Sel >= 0 && f.Sel < len(f.Clients) {
		sel = clientRef(f.Clients[f.Sel])
	}
	refs := make([]string, len(f.Clients))
	for i, id := range f.Clients {
		refs[i] = clientRef(id)
	}
	m.set(f.nodes, tagColumn, columnRef(f.column))
	m.set(f.nodes, tagSel, sel)
	m.set(f.nodes, tagClients, strings.Join(refs, "\n"))
	m.set(f.nodes, tagGeometry, f.Rect.String())
}

func (m *WM) syncColumn(col *Column) {
	sel := ""
	if col.Sel >= 0 && col.Sel < len(col.Frames) {
		sel = frameRef(col.Frames[col.Sel])
	}
	refs := make([]string, len(col.Frames))
	for i, id := range col.Frames {
		refs[i] = frameRef(id)
	}
	m.set(col.nodes, tagPage, pageRef(col.page))
	m.set(col.nodes, tagSel, sel)
	m.set(col.nodes, tagFrames, strings.Join(refs, "\n"))
	m.set(col.nodes, tagGeometry, col.Rect.String())
}

// syncPage refreshes the page mirrors. The sel node names the column (or
// floating client) the focus path runs through.
func (m *WM) syncPage(p *Page) {
	sel := ""
	switch {
	case p.Mode == ModeFloating && p.FloatSel >= 0 && p.FloatSel < len(p.Floating):
		sel = clientRef(p.Floating[p.FloatSel])
	case p.Mode == ModeColumn && p.Sel >= 0 && p.Sel < len(p.Columns):
		sel = columnRef(p.Columns[p.Sel])
	}
	cols := make([]string, len(p.Columns))
	for i, id := range p.Columns {
		cols[i] = columnRef(id)
	}
	floating := make([]string, len(p.Floating))
	for i, id := range p.Floating {
		floating[i] = clientRef(id)
	}
	m.set(p.nodes, tagName, p.Name)
	m.set(p.nodes, tagSel, sel)
	m.set(p.nodes, tagMode, p.Mode.String())
	m.set(p.nodes, tagColumns, strings.Join(cols, "\n"))
	m.set(p.nodes, tagFloating, strings.Join(floating, "\n"))
	m.set(p.nodes, tagGeometry, p.Rect.String())
}

func (m *WM) createGlobalNodes() error {
	type globalNode struct {
		path  string
		kind  ctl.Kind
		write ctl.WriteFunc
	}
	globals := []globalNode{
		{PathCtl, ctl.KindCommand, m.globalCommand},
		{PathEvent, ctl.KindMirror, nil},
		{PathSel, ctl.KindMirror, nil},
		{PathBorder, ctl.KindSetting, m.intSetting("border", 0, func(s *Settings, v int) { s.Border = v })},
		{PathMinWidth, ctl.KindSetting, m.intSetting("min-width", 1, func(s *Settings, v int) { s.MinWidth = v })},
		{PathMinHeight, ctl.KindSetting, m.intSetting("min-height", 1, func(s *Settings, v int) { s.MinHeight = v })},
		{PathPadding, ctl.KindSetting, m.intSetting("padding", 0, func(s *Settings, v int) { s.PagePadding = v })},
		{PathAttach, ctl.KindSetting, m.writeAttachMode},
		{PathFont, ctl.KindSetting, m.writeFont},
		{PathFocusColor, ctl.KindSetting, m.colorSetting("focuscolor", func(s *Style, v string) { s.Focus = v })},
		{PathNormalColor, ctl.KindSetting, m.colorSetting("normcolor", func(s *Style, v string) { s.Normal = v })},
		{PathTextColor, ctl.KindSetting, m.colorSetting("textcolor", func(s *Style, v string) { s.Text = v })},
		{PathFocusTextColor, ctl.KindSetting, m.colorSetting("focustextcolor", func(s *Style, v string) { s.FocusText = v })},
	}
	for _, g := range globals {
		if err := m.nodes.Create(g.path, g.kind, "", g.write); err != nil {
			return fmt.Errorf("create %s: %w", g.path, err)
		}
	}
	m.syncGlobal()
	return nil
}

func (m *WM) syncGlobal() {
	sel := ""
	if p := m.ActivePage(); p != nil {
		sel = pageRef(p.ID)
	}
	m.setNode(PathSel, sel)
	m.setNode(PathBorder, strconv.Itoa(m.settings.Border))
	m.setNode(PathMinWidth, strconv.Itoa(m.settings.MinWidth))
	m.setNode(PathMinHeight, strconv.Itoa(m.settings.MinHeight))
	m.setNode(PathPadding, strconv.Itoa(m.settings.PagePadding))
	m.setNode(PathAttach, m.settings.Attach.String())
	m.setNode(PathFont, m.settings.Style.Font)
	m.setNode(PathFocusColor, m.settings.Style.Focus)
	m.setNode(PathNormalColor, m.settings.Style.Normal)
	m.setNode(PathTextColor, m.settings.Style.Text)
	m.setNode(PathFocusTextColor, m.settings.Style.FocusText)
}

func (m *WM) intSetting(name string, floor int, apply func(*Settings, int)) ctl.WriteFunc {
	return func(data string) error {
		v, err := strconv.Atoi(strings.TrimSpace(data))
		if err != nil {
			return invalid(name, "%q is not an integer", data)
		}
		if v < floor {
			return invalid(name, "must be >= %d, got %d", floor, v)
		}
		s := m.settings
		apply(&s, v)
		return m.ApplySettings(s)
	}
}

func (m *WM) writeAttachMode(data string) error {
	mode, err := ParseAttachMode(data)
	if err != nil {
		return invalid("attach", "%v", err)
	}
	s := m.settings
	s.Attach = mode
	return m.ApplySettings(s)
}
