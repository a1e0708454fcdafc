package wm

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/tiling"
)

func TestAttach_FreshPage(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "term")
	if got := h.read("/detached/1/name"); got != "term" {
		t.Fatalf("detached name = %q", got)
	}
	h.attach(a)

	pages := h.m.Pages()
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	p := pages[0]
	if len(p.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(p.Columns))
	}
	col, _ := h.m.Column(p.Columns[0])
	if len(col.Frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(col.Frames))
	}
	f, _ := h.m.Frame(col.Frames[0])
	if !reflect.DeepEqual(f.Clients, []ClientID{a.ID}) {
		t.Fatalf("frame members = %v", f.Clients)
	}
	if p.Sel != 0 || col.Sel != 0 || f.Sel != 0 || h.m.ActivePage() != p {
		t.Fatalf("selection path not set: page=%d column=%d frame=%d", p.Sel, col.Sel, f.Sel)
	}
	if h.m.Focused() != a || h.ws.focus != 10 {
		t.Fatalf("expected focus on window 10, got %d", h.ws.focus)
	}

	if got := h.read(PathSel); got != "page:1" {
		t.Fatalf("/sel = %q", got)
	}
	if got := h.read("/page/1/sel"); got != "column:1" {
		t.Fatalf("page sel = %q", got)
	}
	if got := h.read("/column/1/sel"); got != "frame:1" {
		t.Fatalf("column sel = %q", got)
	}
	if got := h.read("/frame/1/sel"); got != "client:1" {
		t.Fatalf("frame sel = %q", got)
	}
	if got := h.read("/client/1/name"); got != "term" {
		t.Fatalf("client name = %q", got)
	}
	if _, err := h.nodes.Read("/detached/1/name"); !errors.Is(err, ctl.ErrNotFound) {
		t.Fatalf("detached nodes should be gone after attach, got %v", err)
	}
	if !h.ws.mapped[10] {
		t.Fatalf("attached window should be mapped")
	}
}

func TestDetach_ClampsSelectionAndRemovesNodes(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)

	f, _ := h.m.Frame(1)
	if !reflect.DeepEqual(f.Clients, []ClientID{a.ID, b.ID}) || f.Sel != 1 {
		t.Fatalf("expected [A B] with B selected, got %v sel=%d", f.Clients, f.Sel)
	}

	if err := h.m.Detach(a, true); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	if !reflect.DeepEqual(f.Clients, []ClientID{b.ID}) {
		t.Fatalf("frame members = %v", f.Clients)
	}
	if f.Sel != 0 {
		t.Fatalf("expected selection clamped to 0, got %d", f.Sel)
	}
	if h.ws.mapped[10] {
		t.Fatalf("hidden detach should unmap the window")
	}
	for _, tag := range clientTags {
		p := ClientPath(a.ID) + "/" + tagNames[tag]
		if _, err := h.nodes.Read(p); !errors.Is(err, ctl.ErrNotFound) {
			t.Fatalf("%s should be removed, got %v", p, err)
		}
	}
	if got := h.read("/detached/1/name"); got != "A" {
		t.Fatalf("detached name = %q", got)
	}
	if got := h.read("/frame/1/clients"); got != "client:2" {
		t.Fatalf("frame clients = %q", got)
	}
	if err := h.m.Detach(a, true); err == nil {
		t.Fatalf("detaching a detached client should fail")
	}
	h.checkReachability()
}

func TestResizeCommand_AdjustsNeighbor(t *testing.T) {
	h := newHarness(t, 300, 400)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)
	if err := h.m.Move(b, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}

	p := h.m.ActivePage()
	if len(p.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(p.Columns))
	}
	left, _ := h.m.Column(p.Columns[0])
	right, _ := h.m.Column(p.Columns[1])
	if err := h.m.ResizeColumn(left, 100); err != nil {
		t.Fatalf("ResizeColumn: %v", err)
	}
	if left.Rect.Width != 100 || right.Rect.Width != 200 {
		t.Fatalf("expected 100/200, got %d/%d", left.Rect.Width, right.Rect.Width)
	}

	if err := h.write(ColumnPath(left.ID)+"/ctl", "resize 0 0 200 400"); err != nil {
		t.Fatalf("resize write: %v", err)
	}
	if right.Rect.Width != 100 {
		t.Fatalf("expected neighbor width 100, got %d", right.Rect.Width)
	}
	if left.Rect.Width+right.Rect.Width != 300 {
		t.Fatalf("widths sum to %d", left.Rect.Width+right.Rect.Width)
	}
	if got := h.read(ColumnPath(right.ID) + "/geometry"); got != "200 0 100 400" {
		t.Fatalf("neighbor geometry mirror = %q", got)
	}
}

func TestResize_LoneColumnRejected(t *testing.T) {
	h := newHarness(t, 300, 400)
	h.attach(h.create(10, "A"))
	err := h.write("/column/1/ctl", "resize 0 0 100 400")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestArrange_PartitionsPageWidth(t *testing.T) {
	for n := 1; n <= 7; n++ {
		h := newHarness(t, 1001, 700)
		for i := 0; i < n; i++ {
			c := h.create(Window(100+i), "c")
			h.attach(c)
			if i > 0 {
				if err := h.m.Move(c, i); err != nil {
					t.Fatalf("Move: %v", err)
				}
			}
		}
		p := h.m.ActivePage()
		if len(p.Columns) != n {
			t.Fatalf("expected %d columns, got %d", n, len(p.Columns))
		}

		before := make([]tiling.Rect, n)
		x := p.Rect.X
		for i, id := range p.Columns {
			col, _ := h.m.Column(id)
			if col.Rect.X != x {
				t.Fatalf("n=%d column %d starts at %d, want %d", n, i, col.Rect.X, x)
			}
			x += col.Rect.Width
			before[i] = col.Rect
		}
		if x != p.Rect.X+p.Rect.Width {
			t.Fatalf("n=%d columns cover %d, want %d", n, x-p.Rect.X, p.Rect.Width)
		}

		h.m.Arrange(p)
		for i, id := range p.Columns {
			col, _ := h.m.Column(id)
			if col.Rect != before[i] {
				t.Fatalf("arrange is not idempotent: %+v -> %+v", before[i], col.Rect)
			}
		}
	}
}

func TestArrangeColumn_StacksFramesExactly(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	c := h.create(12, "C")
	h.attach(a)
	h.attach(b)
	h.attach(c)
	if err := h.m.Move(b, 1); err != nil {
		t.Fatalf("Move(b): %v", err)
	}
	if err := h.m.Move(c, 1); err != nil {
		t.Fatalf("Move(c): %v", err)
	}

	p := h.m.ActivePage()
	col, _ := h.m.Column(p.Columns[1])
	if len(col.Frames) != 2 {
		t.Fatalf("expected 2 frames in column 2, got %d", len(col.Frames))
	}

	h.m.ArrangeColumn(col)
	y := col.Rect.Y
	before := make([]tiling.Rect, len(col.Frames))
	for i, id := range col.Frames {
		f, _ := h.m.Frame(id)
		if f.Rect.Y != y || f.Rect.Width != col.Rect.Width {
			t.Fatalf("frame %d = %+v, column %+v", i, f.Rect, col.Rect)
		}
		y += f.Rect.Height
		before[i] = f.Rect
	}
	if y != col.Rect.Y+col.Rect.Height {
		t.Fatalf("frames cover %d, want %d", y-col.Rect.Y, col.Rect.Height)
	}

	h.m.ArrangeColumn(col)
	for i, id := range col.Frames {
		f, _ := h.m.Frame(id)
		if f.Rect != before[i] {
			t.Fatalf("second arrange moved frame %d: %+v -> %+v", i, before[i], f.Rect)
		}
	}
	h.checkReachability()
}

func TestSelectClient_PropagatesUpward(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)
	if err := h.m.Move(b, 1); err != nil {
		t.Fatalf("Move: %v", err)
	}

	if err := h.m.SelectClient(a, true); err != nil {
		t.Fatalf("SelectClient: %v", err)
	}
	fa := a.Frame()
	p := h.m.ActivePage()
	want := map[string]string{
		PathSel:                     "page:1",
		PagePath(p.ID) + "/sel":     columnRef(p.Columns[0]),
		"/column/1/sel":             frameRef(fa),
		FramePath(fa) + "/sel":      "client:1",
		ClientPath(a.ID) + "/sel":   "1",
		ClientPath(a.ID) + "/frame": frameRef(fa),
	}
	for path, v := range want {
		if got := h.read(path); got != v {
			t.Fatalf("%s = %q, want %q", path, got, v)
		}
	}

	if err := h.m.SelectClient(b, false); err != nil {
		t.Fatalf("SelectClient: %v", err)
	}
	if got := h.read(PagePath(p.ID) + "/sel"); got != columnRef(p.Columns[1]) {
		t.Fatalf("page sel after selecting B = %q", got)
	}
	if h.ws.focus != 11 {
		t.Fatalf("focus = %d", h.ws.focus)
	}

	detached := h.create(12, "C")
	err := h.m.SelectClient(detached, true)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("selecting a detached client should be a ValidationError, got %v", err)
	}

	if err := h.m.SelectClient(nil, false); err != nil {
		t.Fatalf("SelectClient(nil): %v", err)
	}
	if h.ws.focus != 0 || h.m.Focused() != nil {
		t.Fatalf("nil selection should revert focus, got %d", h.ws.focus)
	}
}

func TestDestroy_ClampsSelection(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	c := h.create(12, "C")
	h.attach(a)
	h.attach(b)
	h.attach(c)

	f, _ := h.m.Frame(1)
	if f.Sel != 2 {
		t.Fatalf("expected C selected, got %d", f.Sel)
	}

	h.m.Destroy(12)
	if f.Sel != 1 || f.Clients[f.Sel] != b.ID {
		t.Fatalf("expected selection clamped onto B, got %d", f.Sel)
	}
	if h.ws.focus != 11 {
		t.Fatalf("focus should move to B, got %d", h.ws.focus)
	}
	if _, ok := h.m.ClientByWindow(12); ok {
		t.Fatalf("destroyed client still registered")
	}

	h.m.Destroy(10)
	if f.Sel != 0 || len(f.Clients) != 1 {
		t.Fatalf("expected [B] sel 0, got %v sel %d", f.Clients, f.Sel)
	}

	h.m.Destroy(11)
	if _, ok := h.m.Frame(1); ok {
		t.Fatalf("empty frame should be removed")
	}
	p := h.m.ActivePage()
	if len(p.Columns) != 1 {
		t.Fatalf("last column must be retained, got %d columns", len(p.Columns))
	}
	col, _ := h.m.Column(p.Columns[0])
	if col.Sel != -1 {
		t.Fatalf("empty column selection should be unset, got %d", col.Sel)
	}
	if got := h.read(ColumnPath(col.ID) + "/sel"); got != "" {
		t.Fatalf("column sel mirror = %q", got)
	}
	if h.ws.focus != 0 {
		t.Fatalf("focus should revert to root, got %d", h.ws.focus)
	}
	if paths := h.nodes.Walk("/client"); len(paths) != 0 {
		t.Fatalf("client nodes left behind: %v", paths)
	}
	h.checkReachability()
}

func TestDestroy_DetachedAndTransientCleared(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.ws.transient[11] = 10
	b := h.create(11, "B")
	if b.Transient != 10 {
		t.Fatalf("transient not read")
	}

	h.m.Destroy(10)
	if b.Transient != 0 {
		t.Fatalf("transient reference to destroyed client should be cleared")
	}
	if _, err := h.nodes.Read(DetachedPath(a.ID) + "/name"); !errors.Is(err, ctl.ErrNotFound) {
		t.Fatalf("detached nodes should be removed, got %v", err)
	}
	if !reflect.DeepEqual(h.m.Detached(), []ClientID{b.ID}) {
		t.Fatalf("detached pool = %v", h.m.Detached())
	}
}

func TestAttach_TransientJoinsTargetFrame(t *testing.T) {
	h := newHarness(t, 1280, 800)
	if err := h.write(PathAttach, "stack"); err != nil {
		t.Fatalf("set attach mode: %v", err)
	}
	a := h.create(10, "A")
	h.attach(a)
	h.ws.transient[11] = 10
	dialog := h.create(11, "dialog")
	h.attach(dialog)
	other := h.create(12, "other")
	h.attach(other)

	if dialog.Frame() != a.Frame() {
		t.Fatalf("transient should share its target's frame")
	}
	f, _ := h.m.Frame(a.Frame())
	if !reflect.DeepEqual(f.Clients, []ClientID{a.ID, dialog.ID}) {
		t.Fatalf("frame members = %v", f.Clients)
	}
	if other.Frame() == a.Frame() {
		t.Fatalf("stack mode should give a regular client its own frame")
	}
	col, _ := h.m.Column(f.column)
	if len(col.Frames) != 2 {
		t.Fatalf("expected 2 frames in the column, got %d", len(col.Frames))
	}
}

func TestPages_SwitchMapsAndUnmaps(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)

	if err := h.write(PathCtl, "select new"); err != nil {
		t.Fatalf("select new: %v", err)
	}
	if len(h.m.Pages()) != 2 || h.read(PathSel) != "page:2" {
		t.Fatalf("expected page 2 active, sel=%q", h.read(PathSel))
	}
	if h.ws.mapped[10] {
		t.Fatalf("clients of the inactive page should be unmapped")
	}
	if h.ws.focus != 0 {
		t.Fatalf("empty page should leave focus on root")
	}

	// The unmap was ours and must not withdraw the client.
	h.m.Withdrawn(10)
	if !a.Attached {
		t.Fatalf("self-inflicted unmap detached the client")
	}

	if err := h.write(PathCtl, "select 0"); err != nil {
		t.Fatalf("select 0: %v", err)
	}
	if !h.ws.mapped[10] || h.ws.focus != 10 {
		t.Fatalf("switching back should map and focus A")
	}

	if err := h.write("/page/2/ctl", "close"); err != nil {
		t.Fatalf("close page: %v", err)
	}
	if len(h.m.Pages()) != 1 {
		t.Fatalf("expected empty page removed")
	}
	if err := h.write("/page/1/ctl", "close"); err == nil {
		t.Fatalf("closing the last page should fail")
	}

	h.m.Withdrawn(10)
	if a.Attached {
		t.Fatalf("client-initiated unmap should detach")
	}
	h.checkReachability()
}

func TestClosePage_ActiveShowsNeighbor(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)

	if err := h.write(PathCtl, "select new"); err != nil {
		t.Fatalf("select new: %v", err)
	}
	if h.ws.mapped[10] {
		t.Fatalf("page 1 should be hidden")
	}

	if err := h.write("/page/2/ctl", "close"); err != nil {
		t.Fatalf("close active page: %v", err)
	}
	if len(h.m.Pages()) != 1 || h.m.ActivePage() != h.m.Pages()[0] {
		t.Fatalf("remaining page should be active")
	}
	if !h.ws.mapped[10] || h.ws.focus != 10 {
		t.Fatalf("closing the active page should map and focus A, mapped=%v focus=%d", h.ws.mapped[10], h.ws.focus)
	}
	if got := h.read(PathSel); got != "page:1" {
		t.Fatalf("/sel = %q", got)
	}
	h.checkReachability()
}

func TestClosePage_ActiveMiddlePageKeepsIndex(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)
	if err := h.write(PathCtl, "select new"); err != nil {
		t.Fatalf("select new: %v", err)
	}
	b := h.create(11, "B")
	h.attach(b)
	if err := h.write(PathCtl, "select 0"); err != nil {
		t.Fatalf("select 0: %v", err)
	}
	if err := h.write(PathCtl, "select new"); err != nil {
		t.Fatalf("select new: %v", err)
	}
	pages := h.m.Pages()
	if len(pages) != 3 || h.m.ActivePage() != pages[2] {
		t.Fatalf("expected third page active")
	}
	if err := h.write(PathCtl, "select 1"); err != nil {
		t.Fatalf("select 1: %v", err)
	}
	if err := h.m.Detach(b, true); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	if err := h.write(PagePath(pages[1].ID)+"/ctl", "close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.m.ActivePage() != pages[2] {
		t.Fatalf("the page after the closed one should become active")
	}
	if h.ws.mapped[10] {
		t.Fatalf("page 1 must stay hidden")
	}
	h.checkReachability()
}

func TestFloating_ExitUsesEntryDecoration(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)

	tab, border := h.render.TabHeight(1), h.m.Settings().Border
	if err := h.m.Exec(ClientPath(a.ID)+"/ctl", "move floating"); err != nil {
		t.Fatalf("move floating: %v", err)
	}
	if err := h.m.Exec(ClientPath(a.ID)+"/ctl", "resize 100 100 300 200"); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := h.write(PathBorder, "10"); err != nil {
		t.Fatalf("border: %v", err)
	}
	if err := h.m.Exec(ClientPath(a.ID)+"/ctl", "detach"); err != nil {
		t.Fatalf("detach: %v", err)
	}

	want := tiling.Rect{X: 100 - border, Y: 100 - tab, Width: 300, Height: 200}
	if a.Rect != want {
		t.Fatalf("rect after leaving the floating set = %+v, want %+v", a.Rect, want)
	}
}

func TestWithdrawn_HiddenDetachDoesNotSwallowNextUnmap(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)
	if err := h.write(PathCtl, "select new"); err != nil {
		t.Fatalf("select new: %v", err)
	}
	h.m.Withdrawn(10)
	if !a.Attached {
		t.Fatalf("our own unmap detached the client")
	}

	// A is already hidden, so detaching it produces no UnmapNotify.
	if err := h.m.Detach(a, true); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	h.attach(a)
	if !h.ws.mapped[10] {
		t.Fatalf("reattached client should be mapped")
	}

	h.m.Withdrawn(10)
	if a.Attached {
		t.Fatalf("client-initiated unmap was ignored")
	}
	h.checkReachability()
}

func TestRefreshProperty(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)

	h.ws.names[10] = "renamed"
	h.m.RefreshProperty(10, PropName, true)
	if a.Name != "A" {
		t.Fatalf("deleted properties must be ignored")
	}

	h.m.RefreshProperty(10, PropName, false)
	if got := h.read("/client/1/name"); got != "renamed" {
		t.Fatalf("name mirror = %q", got)
	}
	last := h.render.draws[len(h.render.draws)-1]
	if last.label != "renamed" {
		t.Fatalf("tab not redrawn, last label %q", last.label)
	}

	_ = h.nodes.Publish(PathEvent, "")
	h.ws.names[10] = ""
	h.m.RefreshProperty(10, PropName, false)
	if a.Name != "renamed" {
		t.Fatalf("empty names must not overwrite, got %q", a.Name)
	}
	if got := h.read(PathEvent); got != "ClientUpdate 1" {
		t.Fatalf("expected client update event, got %q", got)
	}

	if a.Hints.Flags != HintPSize || a.Hints.BaseWidth != 200 {
		t.Fatalf("missing hints should fall back to PSize, got %+v", a.Hints)
	}
	h.ws.hints[10] = SizeHints{Flags: HintPWinGravity, Gravity: tiling.GravitySouthEast}
	h.m.RefreshProperty(10, PropNormalHints, false)
	if a.Hints.EffectiveGravity() != tiling.GravitySouthEast {
		t.Fatalf("gravity not refreshed: %+v", a.Hints)
	}

	h.ws.protos[10] = ProtoDelete
	h.m.RefreshProperty(10, PropProtocols, false)
	if err := h.m.Close(a); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(h.ws.deleted) != 1 || len(h.ws.killed) != 0 {
		t.Fatalf("expected graceful close, deleted=%v killed=%v", h.ws.deleted, h.ws.killed)
	}

	// Events for windows that vanished are dropped.
	h.m.RefreshProperty(99, PropName, false)
}

func TestClose_KillsWithoutDeleteProtocol(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)
	if err := h.write("/client/1/ctl", "close"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(h.ws.killed) != 1 || h.ws.killed[0] != 10 {
		t.Fatalf("expected kill, got %v", h.ws.killed)
	}
	if !a.Attached {
		t.Fatalf("close is only a request")
	}

	h.ws.gone[10] = true
	err := h.m.Close(a)
	var cf *CollaboratorFailure
	if !errors.As(err, &cf) || !errors.Is(err, errGone) {
		t.Fatalf("expected CollaboratorFailure, got %v", err)
	}
}

func TestCreate_CollaboratorFailure(t *testing.T) {
	h := newHarness(t, 1280, 800)
	h.ws.gone[10] = true
	_, err := h.m.Create(10, WindowAttributes{})
	var cf *CollaboratorFailure
	if !errors.As(err, &cf) {
		t.Fatalf("expected CollaboratorFailure, got %v", err)
	}
	if len(h.m.Detached()) != 0 {
		t.Fatalf("failed create must not register a client")
	}
	if _, err := h.m.Create(0, WindowAttributes{}); err == nil {
		t.Fatalf("window 0 must be rejected")
	}
}

func TestTabs_LastTabTakesRemainder(t *testing.T) {
	h := newHarness(t, 301, 400)
	for i := 0; i < 3; i++ {
		h.attach(h.create(Window(10+i), "t"))
	}
	h.m.settings.Border = 0
	h.render.draws = nil
	h.m.Arrange(h.m.ActivePage())

	if len(h.render.draws) != 3 {
		t.Fatalf("expected 3 tab draws, got %d", len(h.render.draws))
	}
	widths := []int{100, 100, 101}
	for i, d := range h.render.draws {
		if d.rect.Width != widths[i] || d.rect.Height != 16 {
			t.Fatalf("tab %d rect %+v", i, d.rect)
		}
		if d.selected != (i == 2) {
			t.Fatalf("tab %d selected=%v", i, d.selected)
		}
	}
}

func TestSettingsNodes(t *testing.T) {
	h := newHarness(t, 300, 400)
	a := h.create(10, "A")
	h.attach(a)

	var verr *ValidationError
	if err := h.write(PathBorder, "wide"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := h.write(PathBorder, "-1"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := h.write(PathBorder, "5"); err != nil {
		t.Fatalf("border write: %v", err)
	}
	if h.read(PathBorder) != "5" || h.m.Settings().Border != 5 {
		t.Fatalf("border not applied")
	}
	want := tiling.Rect{X: 5, Y: 16, Width: 290, Height: 379}
	if a.Rect != want {
		t.Fatalf("client rect = %+v, want %+v", a.Rect, want)
	}
	if h.ws.rects[10] != want {
		t.Fatalf("window not moved: %+v", h.ws.rects[10])
	}
}

func TestStyleNodes(t *testing.T) {
	h := newHarness(t, 300, 400)
	a := h.create(10, "A")
	h.attach(a)

	if got := h.read(PathFocusColor); got != DefaultStyle().Focus {
		t.Fatalf("focuscolor = %q", got)
	}

	var verr *ValidationError
	if err := h.write(PathNormalColor, "grey"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := h.write(PathFont, "  "); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for an empty font, got %v", err)
	}

	if err := h.write(PathFocusColor, "#112233"); err != nil {
		t.Fatalf("focuscolor write: %v", err)
	}
	if h.render.style.Focus != "#112233" || h.read(PathFocusColor) != "#112233" {
		t.Fatalf("focus color not applied: renderer %+v", h.render.style)
	}

	if err := h.write(PathFont, "lucidasans-12"); err != nil {
		t.Fatalf("font write: %v", err)
	}
	want := tiling.Rect{X: 3, Y: 24, Width: 294, Height: 373}
	if a.Rect != want {
		t.Fatalf("taller tabs should re-arrange, rect %+v want %+v", a.Rect, want)
	}

	h.render.styleErr = errors.New("no such font")
	var cerr *CollaboratorFailure
	if err := h.write(PathFont, "missing"); !errors.As(err, &cerr) {
		t.Fatalf("expected CollaboratorFailure, got %v", err)
	}
	if h.read(PathFont) != "lucidasans-12" || h.m.Settings().Style.Font != "lucidasans-12" {
		t.Fatalf("rejected font must leave the settings alone")
	}
}

func TestReachability_RandomOperations(t *testing.T) {
	h := newHarness(t, 1600, 900)
	rng := rand.New(rand.NewSource(7))
	next := Window(100)

	attached := func() []*Client {
		var out []*Client
		for _, c := range h.m.clients {
			if c.Attached {
				out = append(out, c)
			}
		}
		return out
	}

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(7); op {
		case 0, 1:
			h.create(next, "c")
			next++
		case 2:
			if d := h.m.Detached(); len(d) > 0 {
				c, _ := h.m.Client(d[rng.Intn(len(d))])
				h.attach(c)
			}
		case 3:
			if cs := attached(); len(cs) > 0 {
				if err := h.m.Detach(cs[rng.Intn(len(cs))], rng.Intn(2) == 0); err != nil {
					t.Fatalf("Detach: %v", err)
				}
			}
		case 4:
			ws := h.m.Windows()
			if len(ws) > 0 {
				h.m.Destroy(ws[rng.Intn(len(ws))])
			}
		case 5:
			if cs := attached(); len(cs) > 0 {
				c := cs[rng.Intn(len(cs))]
				p := h.m.pageOf(c)
				if err := h.m.Move(c, rng.Intn(len(p.Columns)+1)); err != nil {
					t.Fatalf("Move: %v", err)
				}
			}
		case 6:
			if cs := attached(); len(cs) > 0 {
				c := cs[rng.Intn(len(cs))]
				if err := h.m.SetFloating(c, !c.Floating()); err != nil {
					t.Fatalf("SetFloating: %v", err)
				}
			}
		}

		h.checkReachability()
		for _, p := range h.m.Pages() {
			if len(p.Columns) == 0 {
				t.Fatalf("step %d: page %d has no columns", step, p.ID)
			}
			sum := 0
			for _, id := range p.Columns {
				col := h.m.columns[id]
				sum += col.Rect.Width
				for _, fid := range col.Frames {
					if len(h.m.frames[fid].Clients) == 0 {
						t.Fatalf("step %d: empty frame %d survived", step, fid)
					}
				}
			}
			if sum != p.Rect.Width {
				t.Fatalf("step %d: column widths sum to %d, page is %d", step, sum, p.Rect.Width)
			}
		}
	}
}
