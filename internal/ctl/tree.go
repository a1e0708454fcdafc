// Package ctl holds the control-node hierarchy: addressable mirror, command
// and setting nodes that external tools read and write.
package ctl

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Kind classifies a node.
type Kind int

const (
	// KindMirror nodes hold content written only by the window manager.
	KindMirror Kind = iota
	// KindCommand nodes interpret writes as verbs. Reads return "".
	KindCommand
	// KindSetting nodes hold a value that writes replace after validation.
	KindSetting
)

func (k Kind) String() string {
	switch k {
	case KindMirror:
		return "mirror"
	case KindCommand:
		return "command"
	case KindSetting:
		return "setting"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	ErrNotFound = errors.New("node not found")
	ErrExists   = errors.New("node already exists")
	ErrReadOnly = errors.New("node is read-only")
	ErrBusy     = errors.New("node is still referenced")
	ErrBadPath  = errors.New("invalid node path")
)

// WriteFunc handles an external write. A non-nil error rejects the write.
type WriteFunc func(data string) error

type node struct {
	kind    Kind
	content string
	write   WriteFunc
	watches map[uuid.UUID]*Watch
	stale   bool
}

// Entry describes one child of a listed directory.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Dir  bool   `json:"dir"`
	Kind string `json:"kind,omitempty"`
}

// Change is delivered to watchers when a node's content changes or the node
// goes away.
type Change struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Removed bool   `json:"removed,omitempty"`
}

// Watch is a subscription to one node. It holds a reference on the node, so
// the node cannot be removed until the watch is closed.
type Watch struct {
	ID   uuid.UUID
	Path string
	C    <-chan Change

	ch      chan Change
	dropped int
}

// Dropped reports how many changes were discarded because the reader fell behind.
func (w *Watch) Dropped() int { return w.dropped }

// Tree is the node store. Node handlers run without the tree lock held, so a
// handler may update other nodes.
type Tree struct {
	mu    sync.Mutex
	nodes map[string]*node
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*node)}
}

// Clean validates and normalizes a node path.
func Clean(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q must be absolute", ErrBadPath, p)
	}
	return path.Clean(p), nil
}

// Create adds a node. Command and setting nodes need a write handler.
func (t *Tree) Create(p string, kind Kind, content string, write WriteFunc) error {
	p, err := Clean(p)
	if err != nil {
		return err
	}
	if p == "/" {
		return fmt.Errorf("%w: cannot create root", ErrBadPath)
	}
	if kind != KindMirror && write == nil {
		return fmt.Errorf("%s node %s needs a write handler", kind, p)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.nodes[p]; ok {
		if !n.stale {
			return fmt.Errorf("%w: %s", ErrExists, p)
		}
		for id, w := range n.watches {
			delete(n.watches, id)
			close(w.ch)
		}
	}
	t.nodes[p] = &node{kind: kind, content: content, write: write}
	return nil
}

// Set replaces a node's content and notifies watchers. Setting identical
// content is a no-op.
func (t *Tree) Set(p, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[p]
	if !ok || n.stale {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if n.content == content {
		return nil
	}
	n.content = content
	t.notifyLocked(n, Change{Path: p, Content: content})
	return nil
}

// Publish sets content and notifies watchers even when it is unchanged. It
// is used for event nodes where repeated lines are meaningful.
func (t *Tree) Publish(p, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[p]
	if !ok || n.stale {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	n.content = content
	t.notifyLocked(n, Change{Path: p, Content: content})
	return nil
}

// Remove deletes a node. A watched node is unlinked from listings right away
// but ErrBusy is returned; it is freed when the last watch closes.
func (t *Tree) Remove(p string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[p]
	if !ok || n.stale {
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if len(n.watches) > 0 {
		n.stale = true
		t.notifyLocked(n, Change{Path: p, Removed: true})
		return fmt.Errorf("%w: %s has %d watchers", ErrBusy, p, len(n.watches))
	}
	delete(t.nodes, p)
	return nil
}

// Read returns a node's content.
func (t *Tree) Read(p string) (string, error) {
	p, err := Clean(p)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[p]
	if !ok || n.stale {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if n.kind == KindCommand {
		return "", nil
	}
	return n.content, nil
}

// Write hands data to the node's handler. Mirror nodes reject writes.
func (t *Tree) Write(p, data string) error {
	p, err := Clean(p)
	if err != nil {
		return err
	}

	t.mu.Lock()
	n, ok := t.nodes[p]
	if !ok || n.stale {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if n.kind == KindMirror {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrReadOnly, p)
	}
	write := n.write
	t.mu.Unlock()

	return write(strings.TrimRight(data, "\n"))
}

// Stat returns the kind of a node.
func (t *Tree) Stat(p string) (Kind, error) {
	p, err := Clean(p)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[p]
	if !ok || n.stale {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return n.kind, nil
}

// List returns the direct children of dir, directories first.
func (t *Tree) List(dir string) ([]Entry, error) {
	dir, err := Clean(dir)
	if err != nil {
		return nil, err
	}
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if n, ok := t.nodes[dir]; ok && !n.stale {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	seen := make(map[string]Entry)
	for p, n := range t.nodes {
		if n.stale || !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if _, ok := seen[name]; ok {
			continue
		}
		e := Entry{Name: name, Path: prefix + name, Dir: isDir}
		if !isDir {
			e.Kind = n.kind.String()
		}
		seen[name] = e
	}
	if len(seen) == 0 && dir != "/" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}

	out := make([]Entry, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dir != out[j].Dir {
			return out[i].Dir
		}
		return naturalLess(out[i].Name, out[j].Name)
	})
	return out, nil
}

// Walk returns every live node path under prefix in sorted order.
func (t *Tree) Walk(prefix string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []string
	for p, n := range t.nodes {
		if !n.stale && (p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/")) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out
}

// Watch subscribes to changes of one node. The first value on the channel is
// the current content.
func (t *Tree) Watch(p string, buffer int) (*Watch, error) {
	p, err := Clean(p)
	if err != nil {
		return nil, err
	}
	if buffer < 1 {
		buffer = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.nodes[p]
	if !ok || n.stale {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}

	ch := make(chan Change, buffer)
	w := &Watch{ID: uuid.New(), Path: p, C: ch, ch: ch}
	if n.watches == nil {
		n.watches = make(map[uuid.UUID]*Watch)
	}
	n.watches[w.ID] = w
	if n.kind != KindCommand {
		ch <- Change{Path: p, Content: n.content}
	}
	return w, nil
}

// Unwatch releases a watch. A node removed while watched is freed here once
// its last watch goes away.
func (t *Tree) Unwatch(w *Watch) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.nodes[w.Path]
	if !ok {
		return
	}
	if _, ok := n.watches[w.ID]; !ok {
		return
	}
	delete(n.watches, w.ID)
	close(w.ch)
	if n.stale && len(n.watches) == 0 {
		delete(t.nodes, w.Path)
	}
}

func (t *Tree) notifyLocked(n *node, c Change) {
	for _, w := range n.watches {
		select {
		case w.ch <- c:
		default:
			w.dropped++
		}
	}
}

// naturalLess orders "page/10" after "page/9".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ad, an := leadingNumber(a)
		bd, bn := leadingNumber(b)
		if ad != "" && bd != "" {
			if an != bn {
				return an < bn
			}
			a, b = a[len(ad):], b[len(bd):]
			continue
		}
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		a, b = a[1:], b[1:]
	}
	return len(a) < len(b)
}

func leadingNumber(s string) (string, int) {
	i := 0
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' && i < 9 {
		n = n*10 + int(s[i]-'0')
		i++
	}
	return s[:i], n
}
