package palette

import "testing"

func twoPageSnapshot() Snapshot {
	return Snapshot{
		"/sel":             "page:1",
		"/page/1/name":     "1",
		"/page/1/sel":      "column:1",
		"/page/1/columns":  "column:1\ncolumn:2",
		"/page/1/floating": "client:4",
		"/column/1/frames": "frame:1",
		"/column/1/sel":    "frame:1",
		"/column/2/frames": "frame:2",
		"/frame/1/clients": "client:1\nclient:2",
		"/frame/1/sel":     "client:2",
		"/frame/2/clients": "client:3",
		"/client/1/name":   "editor",
		"/client/2/name":   "shell",
		"/client/3/name":   "browser",
		"/client/4/name":   "dialog",
		"/page/2/name":     "mail",
		"/page/2/columns":  "column:3",
		"/column/3/frames": "frame:3",
		"/frame/3/clients": "client:5",
		"/client/5/name":   "",
		"/detached/6/name": "music",
	}
}

func TestSnapshot_Focused(t *testing.T) {
	if got := twoPageSnapshot().Focused(); got != "client:2" {
		t.Fatalf("Focused() = %q, want client:2", got)
	}
	if got := (Snapshot{"/sel": ""}).Focused(); got != "" {
		t.Fatalf("empty manager focused %q", got)
	}
	floating := Snapshot{"/sel": "page:1", "/page/1/sel": "client:9"}
	if got := floating.Focused(); got != "client:9" {
		t.Fatalf("floating focus = %q", got)
	}
}

func TestSnapshot_WindowsInLayoutOrder(t *testing.T) {
	windows := twoPageSnapshot().Windows()
	want := []Window{
		{Ref: "client:1", Name: "editor", Page: "1"},
		{Ref: "client:2", Name: "shell", Page: "1", Focused: true},
		{Ref: "client:3", Name: "browser", Page: "1"},
		{Ref: "client:4", Name: "dialog", Page: "1"},
		{Ref: "client:5", Name: "", Page: "mail"},
		{Ref: "client:6", Name: "music", Detached: true},
	}
	if len(windows) != len(want) {
		t.Fatalf("got %d windows, want %d: %+v", len(windows), len(want), windows)
	}
	for i := range want {
		if windows[i] != want[i] {
			t.Errorf("window %d = %+v, want %+v", i, windows[i], want[i])
		}
	}
}

func TestSwitcherItems(t *testing.T) {
	items := SwitcherItems(twoPageSnapshot().Windows())

	var headers, active []string
	actions := map[string]string{}
	for _, it := range items {
		if it.IsHeader {
			headers = append(headers, it.Label)
			continue
		}
		actions[it.Label] = it.Action
		if it.IsActive {
			active = append(active, it.Label)
		}
	}
	if len(headers) != 3 || headers[0] != "1" || headers[1] != "mail" || headers[2] != "detached" {
		t.Fatalf("headers = %v", headers)
	}
	if actions["shell"] != "select client:2" {
		t.Fatalf("shell action = %q", actions["shell"])
	}
	if actions["music"] != "attach client:6" {
		t.Fatalf("music action = %q", actions["music"])
	}
	if actions["client:5"] != "select client:5" {
		t.Fatalf("unnamed client should fall back to its ref, got %v", actions)
	}
	if len(active) != 1 || active[0] != "shell" {
		t.Fatalf("active = %v", active)
	}
}
