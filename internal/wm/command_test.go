package wm

import (
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/tabwm/internal/tiling"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"select", Command{Verb: VerbSelect}},
		{"select next", Command{Verb: VerbSelect, Target: Target{Kind: TargetNext}}},
		{"select  prev ", Command{Verb: VerbSelect, Target: Target{Kind: TargetPrev}}},
		{"select 3", Command{Verb: VerbSelect, Target: Target{Kind: TargetIndex, Index: 3}}},
		{"select client:7", Command{Verb: VerbSelect, Target: Target{Kind: TargetRef, RefKind: "client", RefID: 7}}},
		{"select floating", Command{Verb: VerbSelect, Target: Target{Kind: TargetFloating}}},
		{"select column", Command{Verb: VerbSelect, Target: Target{Kind: TargetColumns}}},
		{"attach", Command{Verb: VerbAttach}},
		{"close", Command{Verb: VerbClose}},
		{"resize 1 2 30 40", Command{Verb: VerbResize, Rect: tiling.Rect{X: 1, Y: 2, Width: 30, Height: 40}}},
		{"move 2", Command{Verb: VerbMove, Column: 2}},
		{"move floating", Command{Verb: VerbMove, Column: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if err != nil {
				t.Fatalf("ParseCommand(%q): %v", tt.line, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseCommand_Invalid(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"frobnicate",
		"select 1 2",
		"select -1",
		"select window:3",
		"select client:x",
		"select client:0",
		"resize 1 2 3",
		"resize 0 0 -5 10",
		"resize a b c d",
		"move",
		"move -2",
		"move left",
	} {
		_, err := ParseCommand(line)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ParseCommand(%q): expected ValidationError, got %v", line, err)
		}
	}
}

func TestVerbString(t *testing.T) {
	if VerbResize.String() != "resize" {
		t.Fatalf("VerbResize = %q", VerbResize.String())
	}
	if got := Verb(42).String(); got != "verb(42)" {
		t.Fatalf("unknown verb = %q", got)
	}
}

func TestExec_RejectedCommandChangesNothing(t *testing.T) {
	h := newHarness(t, 1280, 800)
	h.attach(h.create(10, "A"))
	h.attach(h.create(11, "B"))
	before := h.m.Snapshot()

	for _, tc := range []struct{ path, line string }{
		{PathCtl, "frobnicate"},
		{PathCtl, "select 4"},
		{PathCtl, "resize 0 0 -5 10"},
		{"/page/1/ctl", "select 3"},
		{"/page/1/ctl", "select floating"},
		{"/column/1/ctl", "move 1"},
		{"/column/1/ctl", "resize 0 0 100 100"},
		{"/frame/1/ctl", "move floating"},
		{"/client/1/ctl", "select next"},
		{"/client/1/ctl", "attach"},
	} {
		err := h.m.Exec(tc.path, tc.line)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s <- %q: expected ValidationError, got %v", tc.path, tc.line, err)
		}
	}

	if after := h.m.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("rejected commands changed state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestExec_SelectTargets(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	c := h.create(12, "C")
	h.attach(a)
	h.attach(b)
	h.attach(c)

	if err := h.m.Exec("/frame/1/ctl", "select 0"); err != nil {
		t.Fatalf("select 0: %v", err)
	}
	if h.m.Focused() != a {
		t.Fatalf("expected A focused")
	}
	if err := h.m.Exec("/frame/1/ctl", "select prev"); err != nil {
		t.Fatalf("select prev: %v", err)
	}
	if h.m.Focused() != c {
		t.Fatalf("prev should wrap around to C")
	}
	if err := h.m.Exec(PathCtl, "select client:2"); err != nil {
		t.Fatalf("select client:2: %v", err)
	}
	if h.m.Focused() != b || h.read("/frame/1/sel") != "client:2" {
		t.Fatalf("expected B selected")
	}
	if err := h.m.Exec(PathCtl, "select client:99"); err == nil {
		t.Fatalf("selecting a missing client should fail")
	}
}

func TestExec_DetachAndAttach(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)

	if err := h.m.Exec("/frame/1/ctl", "detach"); err != nil {
		t.Fatalf("frame detach: %v", err)
	}
	if b.Attached {
		t.Fatalf("frame detach should act on the shown client")
	}
	if h.m.Focused() != a {
		t.Fatalf("focus should fall back to A")
	}

	if err := h.m.Exec(PathCtl, "attach"); err != nil {
		t.Fatalf("global attach: %v", err)
	}
	if !b.Attached {
		t.Fatalf("attach without argument should take the oldest detached client")
	}
	if err := h.m.Exec(PathCtl, "attach"); err == nil {
		t.Fatalf("attach with an empty pool should fail")
	}

	if err := h.m.Exec(PathCtl, "detach client:1"); err != nil {
		t.Fatalf("detach client:1: %v", err)
	}
	if err := h.m.Exec(DetachedPath(a.ID)+"/ctl", "attach"); err != nil {
		t.Fatalf("attach via detached node: %v", err)
	}
	if !a.Attached || h.read(ClientPath(a.ID)+"/name") != "A" {
		t.Fatalf("client nodes not restored after attach")
	}
	h.checkReachability()
}

func TestExec_MoveAndFloat(t *testing.T) {
	h := newHarness(t, 1200, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)

	if err := h.m.Exec(ClientPath(b.ID)+"/ctl", "move 1"); err != nil {
		t.Fatalf("move 1: %v", err)
	}
	p := h.m.ActivePage()
	if len(p.Columns) != 2 || h.read(ColumnPath(p.Columns[1])+"/frames") != frameRef(b.Frame()) {
		t.Fatalf("B should own the new column")
	}

	if err := h.m.Exec(ClientPath(b.ID)+"/ctl", "move floating"); err != nil {
		t.Fatalf("move floating: %v", err)
	}
	if !b.Floating() || len(p.Columns) != 1 {
		t.Fatalf("floating B should leave one column, got %d", len(p.Columns))
	}
	if h.read(PagePath(p.ID)+"/mode") != "floating" || h.read(PagePath(p.ID)+"/sel") != "client:2" {
		t.Fatalf("page should be in floating mode on B")
	}
	if h.read(ClientPath(b.ID)+"/frame") != "floating" {
		t.Fatalf("client frame mirror = %q", h.read(ClientPath(b.ID)+"/frame"))
	}

	if err := h.m.Exec(PagePath(p.ID)+"/ctl", "select column"); err != nil {
		t.Fatalf("select column: %v", err)
	}
	if h.m.Focused() != a {
		t.Fatalf("column mode should focus A")
	}

	if err := h.m.Exec(ClientPath(b.ID)+"/ctl", "resize 40 50 300 200"); err != nil {
		t.Fatalf("floating resize: %v", err)
	}
	want := tiling.Rect{X: 40, Y: 50, Width: 300, Height: 200}
	if b.Rect != want || h.ws.rects[11] != want {
		t.Fatalf("floating rect = %+v", b.Rect)
	}
	if err := h.m.Exec(ClientPath(b.ID)+"/ctl", "resize 0 0 1 1"); err != nil {
		t.Fatalf("tiny resize: %v", err)
	}
	if b.Rect.Width != 64 || b.Rect.Height != 48 {
		t.Fatalf("floating resize should clamp to the minimum, got %+v", b.Rect)
	}
}

func TestExec_MoveFrame(t *testing.T) {
	h := newHarness(t, 1200, 800)
	if err := h.write(PathAttach, "stack"); err != nil {
		t.Fatalf("attach mode: %v", err)
	}
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)

	fb := b.Frame()
	if err := h.m.Exec(FramePath(fb)+"/ctl", "move 1"); err != nil {
		t.Fatalf("frame move: %v", err)
	}
	p := h.m.ActivePage()
	if len(p.Columns) != 2 {
		t.Fatalf("expected a new column, got %d", len(p.Columns))
	}
	if h.read(FramePath(fb)+"/column") != columnRef(p.Columns[1]) {
		t.Fatalf("frame column mirror = %q", h.read(FramePath(fb)+"/column"))
	}

	if err := h.m.Exec(FramePath(fb)+"/ctl", "move 0"); err != nil {
		t.Fatalf("frame move back: %v", err)
	}
	if len(p.Columns) != 1 {
		t.Fatalf("emptied column should be dropped, got %d", len(p.Columns))
	}
	col, _ := h.m.Column(p.Columns[0])
	if len(col.Frames) != 2 {
		t.Fatalf("expected both frames in the column, got %d", len(col.Frames))
	}
	h.checkReachability()
}

func TestTabClicked(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	h.attach(a)
	h.attach(h.create(11, "B"))

	var got []Event
	h.m.OnEvent(func(e Event) { got = append(got, e) })

	h.m.TabClicked(1, 0, 1)
	if h.m.Focused() != a {
		t.Fatalf("button 1 should select the clicked tab")
	}
	last := got[len(got)-1]
	if last.String() != "Button1Press 1" || h.read(PathEvent) != "Button1Press 1" {
		t.Fatalf("last event = %v", last)
	}

	got = nil
	h.m.TabClicked(1, 1, 3)
	if h.m.Focused() != a || len(got) != 1 || got[0].String() != "Button3Press 2" {
		t.Fatalf("button 3 should only publish, got %v", got)
	}

	h.m.TabClicked(1, 9, 1)
	h.m.TabClicked(77, 0, 1)
	if len(got) != 1 {
		t.Fatalf("clicks outside any tab must be ignored")
	}
}

func TestClientClicked(t *testing.T) {
	h := newHarness(t, 1280, 800)
	a := h.create(10, "A")
	b := h.create(11, "B")
	h.attach(a)
	h.attach(b)
	if h.m.Focused() != b {
		t.Fatalf("B should hold the focus after attaching")
	}

	var got []Event
	h.m.OnEvent(func(e Event) { got = append(got, e) })

	h.m.ClientClicked(10, 3)
	if h.m.Focused() != a || h.ws.focus != 10 {
		t.Fatalf("a click on A should select it")
	}
	if last := got[len(got)-1]; last.String() != "Button3Press 1" {
		t.Fatalf("last event = %v", last)
	}

	if err := h.m.Detach(b, true); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	got = nil
	h.m.ClientClicked(11, 1)
	h.m.ClientClicked(99, 1)
	if len(got) != 0 {
		t.Fatalf("clicks on detached or unknown windows must be ignored, got %v", got)
	}
}
