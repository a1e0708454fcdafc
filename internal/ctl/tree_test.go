package ctl

import (
	"errors"
	"testing"
)

func TestTree_ReadWriteKinds(t *testing.T) {
	tree := NewTree()
	var got string
	if err := tree.Create("/client/1/name", KindMirror, "term", nil); err != nil {
		t.Fatalf("Create mirror: %v", err)
	}
	if err := tree.Create("/client/1/ctl", KindCommand, "", func(data string) error {
		got = data
		return nil
	}); err != nil {
		t.Fatalf("Create command: %v", err)
	}

	if v, err := tree.Read("/client/1/name"); err != nil || v != "term" {
		t.Fatalf("Read name = %q, %v", v, err)
	}
	if err := tree.Write("/client/1/name", "x"); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := tree.Write("/client/1/ctl", "close\n"); err != nil {
		t.Fatalf("Write ctl: %v", err)
	}
	if got != "close" {
		t.Fatalf("handler saw %q", got)
	}
	if v, _ := tree.Read("/client/1/ctl"); v != "" {
		t.Fatalf("command nodes read empty, got %q", v)
	}
	if _, err := tree.Read("/client/2/name"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tree.Create("/client/1/name", KindMirror, "", nil); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if err := tree.Create("relative", KindMirror, "", nil); !errors.Is(err, ErrBadPath) {
		t.Fatalf("expected ErrBadPath, got %v", err)
	}
}

func TestTree_List(t *testing.T) {
	tree := NewTree()
	for _, p := range []string{"/ctl", "/page/10/name", "/page/9/name", "/page/9/sel", "/event"} {
		if err := tree.Create(p, KindMirror, "", nil); err != nil {
			t.Fatalf("Create %s: %v", p, err)
		}
	}

	root, err := tree.List("/")
	if err != nil {
		t.Fatalf("List /: %v", err)
	}
	want := []string{"page", "ctl", "event"}
	if len(root) != len(want) {
		t.Fatalf("List / = %+v", root)
	}
	for i, name := range want {
		if root[i].Name != name {
			t.Fatalf("entry %d = %q, want %q", i, root[i].Name, name)
		}
	}

	pages, err := tree.List("/page")
	if err != nil {
		t.Fatalf("List /page: %v", err)
	}
	if len(pages) != 2 || pages[0].Name != "9" || pages[1].Name != "10" || !pages[0].Dir {
		t.Fatalf("unexpected page listing %+v", pages)
	}

	if _, err := tree.List("/ctl"); err == nil {
		t.Fatalf("listing a node should fail")
	}
	if _, err := tree.List("/nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTree_WatchAndBusyRemove(t *testing.T) {
	tree := NewTree()
	if err := tree.Create("/client/3/name", KindMirror, "a", nil); err != nil {
		t.Fatal(err)
	}

	w, err := tree.Watch("/client/3/name", 4)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if c := <-w.C; c.Content != "a" {
		t.Fatalf("initial content %q", c.Content)
	}

	_ = tree.Set("/client/3/name", "b")
	_ = tree.Set("/client/3/name", "b")
	if c := <-w.C; c.Content != "b" {
		t.Fatalf("update content %q", c.Content)
	}

	if err := tree.Remove("/client/3/name"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if c := <-w.C; !c.Removed {
		t.Fatalf("expected removal notice, got %+v", c)
	}
	if _, err := tree.Read("/client/3/name"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale node must not be readable, got %v", err)
	}

	tree.Unwatch(w)
	if _, ok := <-w.C; ok {
		t.Fatalf("watch channel should be closed")
	}
	if paths := tree.Walk("/client"); len(paths) != 0 {
		t.Fatalf("node should be freed after last watch, got %v", paths)
	}
}

func TestTree_PublishRepeats(t *testing.T) {
	tree := NewTree()
	_ = tree.Create("/event", KindMirror, "", nil)
	w, _ := tree.Watch("/event", 8)
	<-w.C

	_ = tree.Publish("/event", "PageUpdate 1")
	_ = tree.Publish("/event", "PageUpdate 1")
	for i := 0; i < 2; i++ {
		if c := <-w.C; c.Content != "PageUpdate 1" {
			t.Fatalf("event %d = %q", i, c.Content)
		}
	}
	tree.Unwatch(w)
}
