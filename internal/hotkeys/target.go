package hotkeys

import (
	"fmt"

	"github.com/1broseidon/tabwm/internal/config"
	"github.com/1broseidon/tabwm/internal/wm"
)

// CommandPath resolves the command node a binding of the given scope writes
// to: the global node, or that of the selected page, column, frame or
// client.
func CommandPath(m *wm.WM, scope config.Scope) (string, error) {
	switch scope {
	case config.ScopeGlobal:
		return wm.PathCtl, nil
	case config.ScopePage:
		if p := m.ActivePage(); p != nil {
			return wm.PagePath(p.ID) + "/ctl", nil
		}
	case config.ScopeColumn:
		if col := m.SelectedColumn(); col != nil {
			return wm.ColumnPath(col.ID) + "/ctl", nil
		}
	case config.ScopeFrame:
		if f := m.SelectedFrame(); f != nil {
			return wm.FramePath(f.ID) + "/ctl", nil
		}
	case config.ScopeClient:
		if c := m.SelectedClient(); c != nil {
			return wm.ClientPath(c.ID) + "/ctl", nil
		}
	default:
		return "", fmt.Errorf("unknown scope %q", scope)
	}
	return "", fmt.Errorf("no %s is selected", scope)
}

// Run executes a binding against m. Call it on the manager goroutine.
func Run(m *wm.WM, b config.Binding) error {
	path, err := CommandPath(m, b.Scope)
	if err != nil {
		return err
	}
	if err := m.Exec(path, b.Command); err != nil {
		return fmt.Errorf("%s: %s: %w", b.Keys, b.Command, err)
	}
	return nil
}
