package wm

// Snapshot is a read-only copy of the layout tree, shaped for JSON.
type Snapshot struct {
	ActivePage PageID           `json:"active_page"`
	Focused    ClientID         `json:"focused"`
	Pages      []PageSnapshot   `json:"pages"`
	Detached   []ClientSnapshot `json:"detached"`
}

type PageSnapshot struct {
	ID       PageID           `json:"id"`
	Name     string           `json:"name"`
	Mode     string           `json:"mode"`
	Sel      int              `json:"sel"`
	Geometry string           `json:"geometry"`
	Columns  []ColumnSnapshot `json:"columns"`
	Floating []ClientSnapshot `json:"floating,omitempty"`
}

type ColumnSnapshot struct {
	ID       ColumnID        `json:"id"`
	Sel      int             `json:"sel"`
	Geometry string          `json:"geometry"`
	Frames   []FrameSnapshot `json:"frames"`
}

type FrameSnapshot struct {
	ID       FrameID          `json:"id"`
	Sel      int              `json:"sel"`
	Geometry string           `json:"geometry"`
	Clients  []ClientSnapshot `json:"clients"`
}

type ClientSnapshot struct {
	ID       ClientID `json:"id"`
	Window   uint32   `json:"window"`
	Name     string   `json:"name"`
	Geometry string   `json:"geometry"`
}

// Snapshot copies the current tree.
func (m *WM) Snapshot() Snapshot {
	s := Snapshot{Focused: m.focused, Pages: []PageSnapshot{}, Detached: []ClientSnapshot{}}
	if p := m.ActivePage(); p != nil {
		s.ActivePage = p.ID
	}
	for _, p := range m.pages {
		ps := PageSnapshot{
			ID:       p.ID,
			Name:     p.Name,
			Mode:     p.Mode.String(),
			Sel:      p.Sel,
			Geometry: p.Rect.String(),
			Columns:  []ColumnSnapshot{},
		}
		for _, cid := range p.Columns {
			col := m.columns[cid]
			cs := ColumnSnapshot{ID: col.ID, Sel: col.Sel, Geometry: col.Rect.String(), Frames: []FrameSnapshot{}}
			for _, fid := range col.Frames {
				f := m.frames[fid]
				fs := FrameSnapshot{ID: f.ID, Sel: f.Sel, Geometry: f.Rect.String()}
				for _, id := range f.Clients {
					fs.Clients = append(fs.Clients, m.clientSnapshot(id))
				}
				cs.Frames = append(cs.Frames, fs)
			}
			ps.Columns = append(ps.Columns, cs)
		}
		for _, id := range p.Floating {
			ps.Floating = append(ps.Floating, m.clientSnapshot(id))
		}
		s.Pages = append(s.Pages, ps)
	}
	for _, id := range m.detached {
		s.Detached = append(s.Detached, m.clientSnapshot(id))
	}
	return s
}

func (m *WM) clientSnapshot(id ClientID) ClientSnapshot {
	c := m.clients[id]
	return ClientSnapshot{ID: c.ID, Window: uint32(c.Window), Name: c.Name, Geometry: c.Rect.String()}
}
