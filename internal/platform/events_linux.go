//go:build linux

package platform

import (
	"github.com/1broseidon/tabwm/internal/tiling"
	"github.com/1broseidon/tabwm/internal/wm"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Listen connects the root window handlers. X callbacks run on the event
// loop goroutine, so each one only posts work for the manager.
func (b *LinuxBackend) Listen(m *wm.WM, post Poster) {
	b.mu.Lock()
	b.wm, b.post = m, post
	b.mu.Unlock()

	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		w := ev.Window
		post(func() error { return b.manage(m, w) })
	}).Connect(xu, root)

	xevent.ConfigureRequestFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
		post(func() error {
			b.configure(m, ev)
			return nil
		})
	}).Connect(xu, root)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		w := ev.Window
		xevent.Detach(xu, w)
		b.conn.UngrabClientButtons(w)
		post(func() error {
			m.Destroy(wm.Window(w))
			return nil
		})
	}).Connect(xu, root)

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		w := ev.Window
		post(func() error {
			m.Withdrawn(wm.Window(w))
			return nil
		})
	}).Connect(xu, root)
}

func (b *LinuxBackend) watchProperties(w xproto.Window) {
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		kind := PropertyKind(b.conn.PropertyName(ev.Atom))
		if kind == wm.PropOther {
			return
		}
		deleted := ev.State == xproto.PropertyDelete
		b.mu.Lock()
		post, m := b.post, b.wm
		b.mu.Unlock()
		if post == nil {
			return
		}
		post(func() error {
			m.RefreshProperty(wm.Window(w), kind, deleted)
			return nil
		})
	}).Connect(b.conn.XUtil, w)
}

func (b *LinuxBackend) manage(m *wm.WM, w xproto.Window) error {
	info, err := b.conn.Info(w)
	if err != nil {
		return &wm.CollaboratorFailure{Op: "get attributes", Window: wm.Window(w), Err: err}
	}
	if info.OverrideRedirect {
		return nil
	}
	if !b.conn.IsNormalWindow(w) {
		// Docks and desktops are shown but never managed.
		return b.conn.Map(w)
	}
	_, err = m.Manage(wm.Window(w), attributesFrom(info))
	return err
}

// configure pins managed windows to their layout and grants requests of
// everything else.
func (b *LinuxBackend) configure(m *wm.WM, ev xevent.ConfigureRequestEvent) {
	c, ok := m.ClientByWindow(wm.Window(ev.Window))
	if !ok {
		b.conn.ConfigureUnmanaged(ev)
		return
	}
	m.RequestGeometry(c.Window, requestedRect(c.Rect, ev.ValueMask, ev.X, ev.Y, ev.Width, ev.Height))
}

// requestedRect overlays the fields a configure request sets onto cur.
func requestedRect(cur tiling.Rect, mask uint16, x, y int16, width, height uint16) tiling.Rect {
	r := cur
	if mask&xproto.ConfigWindowX != 0 {
		r.X = int(x)
	}
	if mask&xproto.ConfigWindowY != 0 {
		r.Y = int(y)
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		r.Width = int(width)
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		r.Height = int(height)
	}
	return r
}
