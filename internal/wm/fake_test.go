package wm

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/tiling"
)

var errGone = errors.New("window gone")

type fakeWS struct {
	screen    tiling.Rect
	names     map[Window]string
	transient map[Window]Window
	hints     map[Window]SizeHints
	protos    map[Window]Protocol
	gone      map[Window]bool

	mapped  map[Window]bool
	rects   map[Window]tiling.Rect
	focus   Window
	raised  []Window
	deleted []Window
	killed  []Window
}

func newFakeWS(w, h int) *fakeWS {
	return &fakeWS{
		screen:    tiling.Rect{Width: w, Height: h},
		names:     make(map[Window]string),
		transient: make(map[Window]Window),
		hints:     make(map[Window]SizeHints),
		protos:    make(map[Window]Protocol),
		gone:      make(map[Window]bool),
		mapped:    make(map[Window]bool),
		rects:     make(map[Window]tiling.Rect),
	}
}

func (f *fakeWS) check(w Window) error {
	if f.gone[w] {
		return errGone
	}
	return nil
}

func (f *fakeWS) SelectInput(w Window) error { return f.check(w) }

func (f *fakeWS) Name(w Window) (string, error) {
	if err := f.check(w); err != nil {
		return "", err
	}
	return f.names[w], nil
}

func (f *fakeWS) TransientFor(w Window) (Window, error) { return f.transient[w], f.check(w) }

func (f *fakeWS) NormalHints(w Window) (SizeHints, error) {
	h, ok := f.hints[w]
	if !ok {
		return SizeHints{}, errors.New("no hints")
	}
	return h, nil
}

func (f *fakeWS) Protocols(w Window) (Protocol, error) { return f.protos[w], f.check(w) }

func (f *fakeWS) Map(w Window) error {
	f.mapped[w] = true
	return f.check(w)
}

func (f *fakeWS) Unmap(w Window) error {
	if err := f.check(w); err != nil {
		return err
	}
	f.mapped[w] = false
	return nil
}

func (f *fakeWS) Raise(w Window) error {
	f.raised = append(f.raised, w)
	return f.check(w)
}

func (f *fakeWS) Focus(w Window) error {
	f.focus = w
	return nil
}

func (f *fakeWS) MoveResize(w Window, r tiling.Rect) error {
	if err := f.check(w); err != nil {
		return err
	}
	f.rects[w] = r
	return nil
}

func (f *fakeWS) SendDelete(w Window) error {
	f.deleted = append(f.deleted, w)
	return f.check(w)
}

func (f *fakeWS) Kill(w Window) error {
	f.killed = append(f.killed, w)
	return f.check(w)
}

func (f *fakeWS) ScreenRect() tiling.Rect { return f.screen }

type tabDraw struct {
	frame    FrameID
	label    string
	rect     tiling.Rect
	selected bool
}

type fakeRenderer struct {
	tabHeight int
	draws     []tabDraw
	released  []FrameID
	style     Style
	styleErr  error
}

func (r *fakeRenderer) TabHeight(n int) int {
	if n == 0 {
		return 0
	}
	return r.tabHeight
}

func (r *fakeRenderer) PlaceFrame(FrameID, tiling.Rect) {}

func (r *fakeRenderer) DrawTab(frame FrameID, label string, rect tiling.Rect, selected bool) {
	r.draws = append(r.draws, tabDraw{frame, label, rect, selected})
}

func (r *fakeRenderer) ReleaseFrame(frame FrameID) { r.released = append(r.released, frame) }

// SetStyle grows the tab strip by one pixel per font name byte over "fixed".
func (r *fakeRenderer) SetStyle(s Style) error {
	if r.styleErr != nil {
		return r.styleErr
	}
	r.style = s
	r.tabHeight = 16 + len(s.Font) - len(DefaultFont)
	return nil
}

type harness struct {
	t      *testing.T
	m      *WM
	ws     *fakeWS
	render *fakeRenderer
	nodes  *ctl.Tree
}

func newHarness(t *testing.T, width, height int) *harness {
	t.Helper()
	ws := newFakeWS(width, height)
	render := &fakeRenderer{tabHeight: 16}
	nodes := ctl.NewTree()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := New(ws, render, nodes, DefaultSettings(), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{t: t, m: m, ws: ws, render: render, nodes: nodes}
}

// create registers window w with the given title.
func (h *harness) create(w Window, name string) *Client {
	h.t.Helper()
	h.ws.names[w] = name
	c, err := h.m.Create(w, WindowAttributes{Rect: tiling.Rect{X: 10, Y: 10, Width: 200, Height: 100}, Border: 1})
	if err != nil {
		h.t.Fatalf("Create(%d): %v", w, err)
	}
	return c
}

func (h *harness) attach(c *Client) {
	h.t.Helper()
	if err := h.m.Attach(c); err != nil {
		h.t.Fatalf("Attach(%d): %v", c.ID, err)
	}
}

func (h *harness) read(path string) string {
	h.t.Helper()
	v, err := h.nodes.Read(path)
	if err != nil {
		h.t.Fatalf("Read(%s): %v", path, err)
	}
	return v
}

func (h *harness) write(path, data string) error {
	return h.nodes.Write(path, data)
}

// checkReachability asserts every live client sits in exactly one place.
func (h *harness) checkReachability() {
	h.t.Helper()
	seen := make(map[ClientID]int)
	for _, p := range h.m.pages {
		for _, cid := range p.Columns {
			for _, fid := range h.m.columns[cid].Frames {
				for _, id := range h.m.frames[fid].Clients {
					seen[id]++
				}
			}
		}
		for _, id := range p.Floating {
			seen[id]++
		}
	}
	for _, id := range h.m.detached {
		seen[id]++
	}
	for id := range h.m.clients {
		if seen[id] != 1 {
			h.t.Fatalf("client %d reachable %d times", id, seen[id])
		}
	}
	if len(seen) != len(h.m.clients) {
		h.t.Fatalf("containers reference %d clients, registry holds %d", len(seen), len(h.m.clients))
	}
}
