package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/tabwm/internal/config"
	"github.com/1broseidon/tabwm/internal/wm"
	"github.com/1broseidon/tabwm/internal/wm/wmtest"
)

func TestCommandPath_FollowsSelection(t *testing.T) {
	m, ws, _ := wmtest.New(t, 800, 600)
	wmtest.Manage(t, m, ws, 10, "a")
	c := wmtest.Manage(t, m, ws, 11, "b")

	sel := m.SelectedClient()
	if sel != c {
		t.Fatalf("expected the last managed client to be selected")
	}

	tests := map[config.Scope]string{
		config.ScopeGlobal: wm.PathCtl,
		config.ScopePage:   wm.PagePath(m.ActivePage().ID) + "/ctl",
		config.ScopeColumn: wm.ColumnPath(m.SelectedColumn().ID) + "/ctl",
		config.ScopeFrame:  wm.FramePath(m.SelectedFrame().ID) + "/ctl",
		config.ScopeClient: wm.ClientPath(c.ID) + "/ctl",
	}
	for scope, want := range tests {
		got, err := CommandPath(m, scope)
		if err != nil {
			t.Fatalf("CommandPath(%s): %v", scope, err)
		}
		if got != want {
			t.Errorf("CommandPath(%s) = %q, want %q", scope, got, want)
		}
	}
}

func TestCommandPath_NothingSelected(t *testing.T) {
	m, _, _ := wmtest.New(t, 800, 600)

	if _, err := CommandPath(m, config.ScopeClient); err == nil {
		t.Fatalf("expected an error without a selected client")
	}
	if got, err := CommandPath(m, config.ScopeGlobal); err != nil || got != wm.PathCtl {
		t.Fatalf("global scope = %q, %v", got, err)
	}
	if _, err := CommandPath(m, config.Scope("desk")); err == nil {
		t.Fatalf("expected an error for an unknown scope")
	}
}

func TestRun_WritesToSelectedClient(t *testing.T) {
	m, ws, _ := wmtest.New(t, 800, 600)
	c := wmtest.Manage(t, m, ws, 10, "a")

	err := Run(m, config.Binding{Keys: "Mod4-d", Scope: config.ScopeClient, Command: "detach"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if c.Attached {
		t.Fatalf("client should be detached")
	}
	if ws.Mapped(10) {
		t.Fatalf("detached window should be hidden")
	}
}

func TestRun_ReportsCommandErrors(t *testing.T) {
	m, ws, _ := wmtest.New(t, 800, 600)
	wmtest.Manage(t, m, ws, 10, "a")

	err := Run(m, config.Binding{Keys: "Mod4-x", Scope: config.ScopeGlobal, Command: "frobnicate"})
	var verr *wm.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}

func TestIgnoreMasks(t *testing.T) {
	got := ignoreMasks([]uint16{1, 2, 16})
	if len(got) != 7 {
		t.Fatalf("expected 7 combinations, got %v", got)
	}
	seen := make(map[uint16]bool)
	for _, m := range got {
		if m == 0 || seen[m] {
			t.Fatalf("unexpected mask set %v", got)
		}
		seen[m] = true
	}
	if !seen[19] {
		t.Fatalf("missing full combination in %v", got)
	}
}
