//go:build linux

package platform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/tabwm/internal/tiling"
	"github.com/1broseidon/tabwm/internal/wm"
	"github.com/1broseidon/tabwm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WMName is advertised through _NET_SUPPORTING_WM_CHECK.
const WMName = "tabwm"

// Options configures a Linux backend.
type Options struct {
	// Display overrides $DISPLAY when set.
	Display string
	Tabs    x11.TabStyle

	// Background is the root window pixel.
	Background uint32
}

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
	tabs *x11.TabBars

	mu     sync.Mutex
	screen tiling.Rect
	post   Poster
	wm     *wm.WM
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend connects to the display and takes over window management.
func NewLinuxBackend(opts Options) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	if err := conn.BecomeWM(); err != nil {
		conn.Close()
		return nil, err
	}

	b := &LinuxBackend{conn: conn}
	if err := b.RefreshScreen(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.AnnounceWM(WMName); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to announce window manager: %w", err)
	}
	if err := conn.SetRootBackground(opts.Background); err != nil {
		conn.Close()
		return nil, err
	}
	b.tabs, err = x11.NewTabBars(conn, opts.Tabs, b.tabClicked)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b == nil || b.conn == nil {
		return
	}
	if b.tabs != nil {
		b.tabs.Close()
	}
	b.conn.Close()
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Quit makes EventLoop return.
func (b *LinuxBackend) Quit() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// RefreshScreen re-reads the work area pages are laid out in.
func (b *LinuxBackend) RefreshScreen() error {
	g, err := b.conn.Workarea()
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.screen = tiling.Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
	b.mu.Unlock()
	return nil
}

// ScreenRect implements wm.WindowSystem.
func (b *LinuxBackend) ScreenRect() tiling.Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.screen
}

// SelectInput subscribes to the client's structure and property events and
// routes property changes to the manager. The window also joins the
// save-set and loses its border.
func (b *LinuxBackend) SelectInput(w wm.Window) error {
	if err := b.conn.SelectClientInput(xproto.Window(w)); err != nil {
		return err
	}
	if err := b.conn.PrepareClient(xproto.Window(w)); err != nil {
		return err
	}
	b.watchProperties(xproto.Window(w))
	return nil
}

func (b *LinuxBackend) Name(w wm.Window) (string, error) {
	return b.conn.WindowTitle(xproto.Window(w))
}

func (b *LinuxBackend) TransientFor(w wm.Window) (wm.Window, error) {
	owner, err := b.conn.TransientFor(xproto.Window(w))
	return wm.Window(owner), err
}

func (b *LinuxBackend) NormalHints(w wm.Window) (wm.SizeHints, error) {
	h, err := b.conn.NormalHints(xproto.Window(w))
	if err != nil {
		return wm.SizeHints{}, err
	}
	return sizeHintsFrom(h), nil
}

func (b *LinuxBackend) Protocols(w wm.Window) (wm.Protocol, error) {
	names, err := b.conn.Protocols(xproto.Window(w))
	if err != nil {
		return 0, err
	}
	return protocolsFrom(names), nil
}

// Map shows a client and grabs the client buttons on it.
func (b *LinuxBackend) Map(w wm.Window) error {
	if err := b.conn.Map(xproto.Window(w)); err != nil {
		return err
	}
	return b.conn.GrabClientButtons(xproto.Window(w), func(button int) {
		b.clientClicked(w, button)
	})
}

// Unmap releases the client buttons and hides the client.
func (b *LinuxBackend) Unmap(w wm.Window) error {
	b.conn.UngrabClientButtons(xproto.Window(w))
	return b.conn.Unmap(xproto.Window(w))
}

func (b *LinuxBackend) Raise(w wm.Window) error { return b.conn.Raise(xproto.Window(w)) }
func (b *LinuxBackend) Focus(w wm.Window) error { return b.conn.Focus(xproto.Window(w)) }

func (b *LinuxBackend) MoveResize(w wm.Window, r tiling.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(w), x11.Geometry{
		X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
	})
}

func (b *LinuxBackend) SendDelete(w wm.Window) error { return b.conn.SendDelete(xproto.Window(w)) }
func (b *LinuxBackend) Kill(w wm.Window) error       { return b.conn.Kill(xproto.Window(w)) }

// TabHeight implements wm.Renderer.
func (b *LinuxBackend) TabHeight(n int) int {
	if n == 0 {
		return 0
	}
	return b.tabs.Height()
}

func (b *LinuxBackend) PlaceFrame(frame wm.FrameID, strip tiling.Rect) {
	b.tabs.Place(int(frame), x11.Geometry{X: strip.X, Y: strip.Y, Width: strip.Width, Height: strip.Height})
}

func (b *LinuxBackend) DrawTab(frame wm.FrameID, label string, r tiling.Rect, selected bool) {
	b.tabs.Draw(int(frame), label, r.X, r.Width, selected)
}

func (b *LinuxBackend) ReleaseFrame(frame wm.FrameID) {
	b.tabs.Release(int(frame))
}

// SetStyle implements wm.Renderer. The padding is kept.
func (b *LinuxBackend) SetStyle(s wm.Style) error {
	style, err := TabStyle(s, b.tabs.Padding())
	if err != nil {
		return err
	}
	return b.tabs.Restyle(style)
}

// TabStyle converts a manager style into strip drawing parameters.
func TabStyle(s wm.Style, padding int) (x11.TabStyle, error) {
	style := x11.TabStyle{Font: s.Font, Padding: padding}
	colors := []struct {
		dst   *uint32
		value string
	}{
		{&style.Focus, s.Focus},
		{&style.Normal, s.Normal},
		{&style.Text, s.Text},
		{&style.FocusText, s.FocusText},
	}
	for _, c := range colors {
		v, err := wm.ParseColor(c.value)
		if err != nil {
			return x11.TabStyle{}, err
		}
		*c.dst = v
	}
	return style, nil
}

func (b *LinuxBackend) clientClicked(w wm.Window, button int) {
	b.mu.Lock()
	post, m := b.post, b.wm
	b.mu.Unlock()
	if post == nil {
		return
	}
	post(func() error {
		m.ClientClicked(w, button)
		return nil
	})
}

func (b *LinuxBackend) tabClicked(strip, index, button int) {
	b.mu.Lock()
	post, m := b.post, b.wm
	b.mu.Unlock()
	if post == nil {
		return
	}
	post(func() error {
		m.TabClicked(wm.FrameID(strip), index, button)
		return nil
	})
}

// SetClientList implements daemon.Publisher.
func (b *LinuxBackend) SetClientList(windows []wm.Window) error {
	ids := make([]xproto.Window, len(windows))
	for i, w := range windows {
		ids[i] = xproto.Window(w)
	}
	return b.conn.SetClientList(ids)
}

func (b *LinuxBackend) SetDesktops(names []string, current int) error {
	return b.conn.SetDesktops(names, current)
}

func (b *LinuxBackend) SetActiveWindow(w wm.Window) error {
	return b.conn.SetActiveWindow(xproto.Window(w))
}

// ListWindows returns every top-level window.
func (b *LinuxBackend) ListWindows() ([]wm.Window, error) {
	children, err := b.conn.Children()
	if err != nil {
		return nil, err
	}
	out := make([]wm.Window, len(children))
	for i, w := range children {
		out[i] = wm.Window(w)
	}
	return out, nil
}

// Adopt manages every window that is mapped, or was iconified by a previous
// manager, when the daemon starts.
func (b *LinuxBackend) Adopt(m *wm.WM) error {
	children, err := b.conn.Children()
	if err != nil {
		return err
	}
	var errs []error
	for _, w := range children {
		info, err := b.conn.Info(w)
		if err != nil || info.OverrideRedirect {
			continue
		}
		if !info.Viewable && !b.iconic(w) {
			continue
		}
		if !b.conn.IsNormalWindow(w) {
			continue
		}
		if _, err := m.Manage(wm.Window(w), attributesFrom(info)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *LinuxBackend) iconic(w xproto.Window) bool {
	state, err := icccm.WmStateGet(b.conn.XUtil, w)
	return err == nil && state.State == icccm.StateIconic
}

func attributesFrom(info x11.WindowInfo) wm.WindowAttributes {
	return wm.WindowAttributes{
		Rect: tiling.Rect{
			X:      info.X,
			Y:      info.Y,
			Width:  info.Width,
			Height: info.Height,
		},
		Border: info.Border,
		Mapped: info.Viewable,
	}
}

func sizeHintsFrom(h *icccm.NormalHints) wm.SizeHints {
	return wm.SizeHints{
		Flags:      wm.HintFlags(h.Flags),
		BaseWidth:  int(h.BaseWidth),
		BaseHeight: int(h.BaseHeight),
		MinWidth:   int(h.MinWidth),
		MinHeight:  int(h.MinHeight),
		MaxWidth:   int(h.MaxWidth),
		MaxHeight:  int(h.MaxHeight),
		Gravity:    tiling.Gravity(h.WinGravity),
	}
}

func protocolsFrom(names []string) wm.Protocol {
	var p wm.Protocol
	for _, name := range names {
		switch name {
		case "WM_DELETE_WINDOW":
			p |= wm.ProtoDelete
		case "WM_TAKE_FOCUS":
			p |= wm.ProtoTakeFocus
		}
	}
	return p
}

// PropertyKind maps a property name onto the kinds the manager tracks.
func PropertyKind(name string) wm.PropertyKind {
	switch name {
	case "WM_NAME", "_NET_WM_NAME":
		return wm.PropName
	case "WM_TRANSIENT_FOR":
		return wm.PropTransient
	case "WM_NORMAL_HINTS":
		return wm.PropNormalHints
	case "WM_PROTOCOLS":
		return wm.PropProtocols
	default:
		return wm.PropOther
	}
}
