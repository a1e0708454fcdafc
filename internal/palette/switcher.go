package palette

import (
	"sort"
	"strconv"
	"strings"
)

// Window is one managed client as seen through the control nodes.
type Window struct {
	Ref      string // "client:<id>"
	Name     string
	Page     string // page name; empty when detached
	Focused  bool
	Detached bool
}

// Snapshot maps control node paths to their content.
type Snapshot map[string]string

// refPath turns a reference such as "frame:3" into "/frame/3".
func refPath(ref string) string {
	kind, id, ok := strings.Cut(ref, ":")
	if !ok {
		return ""
	}
	return "/" + kind + "/" + id
}

func (s Snapshot) lines(path string) []string {
	var out []string
	for _, l := range strings.Split(s[path], "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// ids returns the numeric ids under /<kind>/ in ascending order.
func (s Snapshot) ids(kind string) []string {
	prefix := "/" + kind + "/"
	seen := map[int]bool{}
	for path := range s {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		id, _, _ := strings.Cut(rest, "/")
		if n, err := strconv.Atoi(id); err == nil {
			seen[n] = true
		}
	}
	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = strconv.Itoa(n)
	}
	return out
}

// Focused follows the sel chain from the root down to a client reference.
func (s Snapshot) Focused() string {
	ref := s["/sel"]
	// page, column, frame, client
	for range 4 {
		if ref == "" || strings.HasPrefix(ref, "client:") {
			return ref
		}
		ref = s[refPath(ref)+"/sel"]
	}
	return ""
}

// Windows lists clients page by page in layout order, floating clients after
// the columns, and detached clients last.
func (s Snapshot) Windows() []Window {
	focused := s.Focused()
	var out []Window
	for _, id := range s.ids("page") {
		page := "/page/" + id
		name := s[page+"/name"]

		var refs []string
		for _, col := range s.lines(page + "/columns") {
			for _, frame := range s.lines(refPath(col) + "/frames") {
				refs = append(refs, s.lines(refPath(frame)+"/clients")...)
			}
		}
		refs = append(refs, s.lines(page+"/floating")...)

		for _, ref := range refs {
			out = append(out, Window{
				Ref:     ref,
				Name:    s[refPath(ref)+"/name"],
				Page:    name,
				Focused: ref == focused,
			})
		}
	}
	for _, id := range s.ids("detached") {
		out = append(out, Window{
			Ref:      "client:" + id,
			Name:     s["/detached/"+id+"/name"],
			Detached: true,
		})
	}
	return out
}

// SwitcherItems builds chooser rows grouped under page headers. Picking an
// attached client selects it; picking a detached one attaches it.
func SwitcherItems(windows []Window) []Item {
	var items []Item
	section, started := "", false
	for _, w := range windows {
		header := w.Page
		if w.Detached {
			header = "detached"
		}
		if !started || header != section {
			items = append(items, Item{Label: header, IsHeader: true})
			section, started = header, true
		}

		label := w.Name
		if label == "" {
			label = w.Ref
		}
		action := "select " + w.Ref
		if w.Detached {
			action = "attach " + w.Ref
		}
		items = append(items, Item{Label: label, Action: action, Info: w.Ref, IsActive: w.Focused})
	}
	return items
}
