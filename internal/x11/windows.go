package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientEventMask is selected on every managed window.
const ClientEventMask = xproto.EventMaskStructureNotify | xproto.EventMaskPropertyChange

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X, Y          int
	Width, Height int
	Border        int
}

// WindowInfo is what the manager needs to know about a window before
// adopting it.
type WindowInfo struct {
	Geometry
	OverrideRedirect bool
	Viewable         bool
}

// ClientButtons are grabbed on every shown client.
var ClientButtons = []string{"Mod1-1", "Mod1-3"}

// SelectClientInput subscribes to structure and property changes of w.
func (c *Connection) SelectClientInput(w xproto.Window) error {
	return xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), w,
		xproto.CwEventMask, []uint32{ClientEventMask}).Check()
}

// PrepareClient adds w to the save-set, so it is mapped again if the manager
// dies, and removes its border.
func (c *Connection) PrepareClient(w xproto.Window) error {
	xc := c.XUtil.Conn()
	if err := xproto.ChangeSaveSetChecked(xc, xproto.SetModeInsert, w).Check(); err != nil {
		return fmt.Errorf("failed to add 0x%x to the save-set: %w", w, err)
	}
	return xproto.ConfigureWindowChecked(xc, w,
		xproto.ConfigWindowBorderWidth, []uint32{0}).Check()
}

// GrabClientButtons grabs ClientButtons on w, replacing earlier grabs. fn
// runs on the event loop with the pressed button number.
func (c *Connection) GrabClientButtons(w xproto.Window, fn func(button int)) error {
	mousebind.Detach(c.XUtil, w)
	for _, b := range ClientButtons {
		err := mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			fn(int(ev.Detail))
		}).Connect(c.XUtil, w, b, false, true)
		if err != nil {
			mousebind.Detach(c.XUtil, w)
			return fmt.Errorf("failed to grab %s on 0x%x: %w", b, w, err)
		}
	}
	return nil
}

// UngrabClientButtons drops the grabs and callbacks of GrabClientButtons.
func (c *Connection) UngrabClientButtons(w xproto.Window) {
	mousebind.Detach(c.XUtil, w)
}

// Info reads the attributes and geometry of w.
func (c *Connection) Info(w xproto.Window) (WindowInfo, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), w).Reply()
	if err != nil {
		return WindowInfo{}, err
	}
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(w)).Reply()
	if err != nil {
		return WindowInfo{}, err
	}
	return WindowInfo{
		Geometry: Geometry{
			X:      int(geom.X),
			Y:      int(geom.Y),
			Width:  int(geom.Width),
			Height: int(geom.Height),
			Border: int(geom.BorderWidth),
		},
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// Children lists the top-level windows in stacking order.
func (c *Connection) Children() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	return tree.Children, nil
}

// WindowTitle prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) WindowTitle(w xproto.Window) (string, error) {
	title, err := ewmh.WmNameGet(c.XUtil, w)
	if err == nil {
		title = strings.TrimSpace(title)
		if title != "" {
			return title, nil
		}
	}

	title, err = icccm.WmNameGet(c.XUtil, w)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}

// TransientFor returns the WM_TRANSIENT_FOR window of w, or 0.
func (c *Connection) TransientFor(w xproto.Window) (xproto.Window, error) {
	owner, err := icccm.WmTransientForGet(c.XUtil, w)
	if err != nil {
		// Most windows do not carry the property.
		return 0, nil
	}
	return owner, nil
}

// NormalHints reads WM_NORMAL_HINTS.
func (c *Connection) NormalHints(w xproto.Window) (*icccm.NormalHints, error) {
	return icccm.WmNormalHintsGet(c.XUtil, w)
}

// Protocols reads WM_PROTOCOLS as atom names.
func (c *Connection) Protocols(w xproto.Window) ([]string, error) {
	protos, err := icccm.WmProtocolsGet(c.XUtil, w)
	if err != nil {
		// A window without the property takes part in no protocol.
		return nil, nil
	}
	return protos, nil
}

// Map maps w and marks it NormalState.
func (c *Connection) Map(w xproto.Window) error {
	if err := xproto.MapWindowChecked(c.XUtil.Conn(), w).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, w, &icccm.WmState{State: icccm.StateNormal})
}

// Unmap unmaps w and marks it IconicState so it is adopted again after a
// restart.
func (c *Connection) Unmap(w xproto.Window) error {
	if err := xproto.UnmapWindowChecked(c.XUtil.Conn(), w).Check(); err != nil {
		return err
	}
	return icccm.WmStateSet(c.XUtil, w, &icccm.WmState{State: icccm.StateIconic})
}

// Raise puts w on top of the stack.
func (c *Connection) Raise(w xproto.Window) error {
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), w,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

// Focus gives w the input focus. Window 0 gives it back to the root.
func (c *Connection) Focus(w xproto.Window) error {
	if w == 0 {
		return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
			xproto.InputFocusPointerRoot, xproto.TimeCurrentTime).Check()
	}
	return xproto.SetInputFocusChecked(c.XUtil.Conn(), xproto.InputFocusPointerRoot,
		w, xproto.TimeCurrentTime).Check()
}

// MoveResizeWindow moves and resizes a window to the specified geometry and
// tells the client where it ended up.
func (c *Connection) MoveResizeWindow(w xproto.Window, g Geometry) error {
	win := xwindow.New(c.XUtil, w)
	win.Configure(
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		g.X, g.Y, max(g.Width, 1), max(g.Height, 1), 0, 0,
	)
	return c.sendConfigureNotify(w, g)
}

// ConfigureUnmanaged grants a configure request of a window the manager
// does not control.
func (c *Connection) ConfigureUnmanaged(ev xevent.ConfigureRequestEvent) {
	var vals []uint32
	flags := ev.ValueMask
	if flags&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(ev.X))
	}
	if flags&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(ev.Y))
	}
	if flags&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(ev.Width))
	}
	if flags&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(ev.Height))
	}
	if flags&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, uint32(ev.BorderWidth))
	}
	if flags&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(ev.Sibling))
	}
	if flags&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(ev.StackMode))
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), ev.Window, flags, vals)
}

func (c *Connection) sendConfigureNotify(w xproto.Window, g Geometry) error {
	ev := xproto.ConfigureNotifyEvent{
		Event:            w,
		Window:           w,
		AboveSibling:     xevent.NoWindow,
		X:                int16(g.X),
		Y:                int16(g.Y),
		Width:            uint16(g.Width),
		Height:           uint16(g.Height),
		BorderWidth:      0,
		OverrideRedirect: false,
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, w,
		xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}

// SendDelete requests graceful window close via WM_DELETE_WINDOW.
func (c *Connection) SendDelete(w xproto.Window) error {
	deleteAtom, err := xprop.Atm(c.XUtil, "WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := xprop.Atm(c.XUtil, "WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: w,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		w,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// Kill disconnects the client owning w.
func (c *Connection) Kill(w xproto.Window) error {
	return xproto.KillClientChecked(c.XUtil.Conn(), uint32(w)).Check()
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	// Check for normal window type
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" || t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// PropertyName resolves the name of a property atom.
func (c *Connection) PropertyName(atom xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}
