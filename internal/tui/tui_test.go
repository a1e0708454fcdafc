package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/ipc"
)

type fakeClient struct {
	dirs   map[string][]ctl.Entry
	nodes  map[string]string
	writes []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		dirs: map[string][]ctl.Entry{
			"/": {
				{Name: "client", Path: "/client", Dir: true},
				{Name: "ctl", Path: "/ctl", Kind: "command"},
				{Name: "sel", Path: "/sel", Kind: "mirror"},
			},
			"/client": {
				{Name: "1", Path: "/client/1", Dir: true},
			},
		},
		nodes: map[string]string{"/sel": "page:1", "/ctl": ""},
	}
}

func (f *fakeClient) Ping() (*ipc.StatusData, error) { return &ipc.StatusData{Nodes: 3}, nil }

func (f *fakeClient) Read(path string) (ipc.NodeData, error) {
	content, ok := f.nodes[path]
	if !ok {
		return ipc.NodeData{}, ctl.ErrNotFound
	}
	return ipc.NodeData{Path: path, Kind: "mirror", Content: content}, nil
}

func (f *fakeClient) Write(path, data string) error {
	f.writes = append(f.writes, path+" "+data)
	return nil
}

func (f *fakeClient) List(path string) ([]ctl.Entry, error) {
	entries, ok := f.dirs[path]
	if !ok {
		return nil, ctl.ErrNotFound
	}
	return entries, nil
}

func (f *fakeClient) Watch(ctx context.Context, path string, fn func(ctl.Change) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadedTab returns a sized tab showing the root listing.
func loadedTab(t *testing.T, fc *fakeClient) NodesTab {
	t.Helper()
	n := NewNodesTab(fc)
	n, _ = n.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	msg := n.Init()()
	n, _ = n.Update(msg)
	if n.dir != "/" || len(n.list.Items()) != 3 {
		t.Fatalf("root not loaded: dir=%q items=%d", n.dir, len(n.list.Items()))
	}
	return n
}

func TestNodesTab_Navigation(t *testing.T) {
	fc := newFakeClient()
	n := loadedTab(t, fc)

	n, cmd := n.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("enter on a directory should load it")
	}
	n, _ = n.Update(cmd())
	if n.dir != "/client" || len(n.list.Items()) != 1 {
		t.Fatalf("expected /client with one entry, got %q (%d)", n.dir, len(n.list.Items()))
	}

	n, cmd = n.Update(key("backspace"))
	if cmd == nil {
		t.Fatalf("backspace should load the parent")
	}
	n, _ = n.Update(cmd())
	if n.dir != "/" {
		t.Fatalf("expected /, got %q", n.dir)
	}
}

func TestNodesTab_WriteCommand(t *testing.T) {
	fc := newFakeClient()
	n := loadedTab(t, fc)

	n, _ = n.Update(key("down"))
	if n.selectedPath() != "/ctl" {
		t.Fatalf("selected %q", n.selectedPath())
	}
	n, _ = n.Update(key("w"))
	if !n.writing {
		t.Fatalf("w on a command node should open the prompt")
	}
	n, _ = n.Update(key("select next"))
	n, cmd := n.Update(key("enter"))
	if n.writing || cmd == nil {
		t.Fatalf("enter should send the write")
	}
	msg, ok := cmd().(writeDoneMsg)
	if !ok || msg.err != nil {
		t.Fatalf("unexpected write result %+v", msg)
	}
	if len(fc.writes) != 1 || fc.writes[0] != "/ctl select next" {
		t.Fatalf("writes = %v", fc.writes)
	}
}

func TestNodesTab_DestructiveWriteNeedsConfirmation(t *testing.T) {
	fc := newFakeClient()
	n := loadedTab(t, fc)

	n, _ = n.Update(key("down"))
	n, _ = n.Update(key("w"))
	n, _ = n.Update(key("close"))
	n, _ = n.Update(key("enter"))
	if n.confirm == nil {
		t.Fatalf("close should ask for confirmation")
	}
	if !n.capturing() {
		t.Fatalf("confirmation should capture input")
	}

	n, _ = n.Update(key("esc"))
	if n.confirm != nil {
		t.Fatalf("esc should dismiss the confirmation")
	}
	if len(fc.writes) != 0 {
		t.Fatalf("cancelled write was sent: %v", fc.writes)
	}
}

func TestNodesTab_MirrorIsNotWritable(t *testing.T) {
	fc := newFakeClient()
	n := loadedTab(t, fc)

	n, _ = n.Update(key("down"))
	n, _ = n.Update(key("down"))
	if n.selectedPath() != "/sel" {
		t.Fatalf("selected %q", n.selectedPath())
	}
	n, _ = n.Update(key("w"))
	if n.writing {
		t.Fatalf("mirror nodes must not open the write prompt")
	}
}

func TestDestructive(t *testing.T) {
	tests := map[string]bool{
		"close":        true,
		" detach ":     true,
		"detach 1":     true,
		"select next":  false,
		"closed":       false,
		"attach":       false,
		"resize 0 0 1": false,
	}
	for in, want := range tests {
		if got := destructive(in); got != want {
			t.Errorf("destructive(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEventsTab_KeepsLastEvents(t *testing.T) {
	e := EventsTab{}
	e, _ = e.Update(tea.WindowSizeMsg{Width: 80, Height: 5})
	for i := 0; i < maxEvents+10; i++ {
		e, _ = e.Update(eventMsg{line: "PageUpdate 1"})
	}
	if len(e.lines) != maxEvents {
		t.Fatalf("expected %d lines, got %d", maxEvents, len(e.lines))
	}
	e, _ = e.Update(watchEndedMsg{err: context.Canceled})
	if !strings.Contains(e.View(), "event stream closed") {
		t.Fatalf("view should report the closed stream")
	}
}

func TestRenderStatusBar(t *testing.T) {
	if !strings.Contains(renderStatusBar(false, "", 0, 80), "daemon not running") {
		t.Fatalf("disconnected status missing")
	}
	bar := renderStatusBar(true, "page:2", 40, 80)
	if !strings.Contains(bar, "sel:page:2") || !strings.Contains(bar, "nodes:40") {
		t.Fatalf("status bar = %q", bar)
	}
}
