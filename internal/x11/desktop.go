package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_DESKTOP_NAMES",
	"_NET_CURRENT_DESKTOP",
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_STRUT",
	"_NET_WM_STRUT_PARTIAL",
}

// AnnounceWM creates the _NET_SUPPORTING_WM_CHECK window and advertises the
// EWMH hints the manager maintains.
func (c *Connection) AnnounceWM(name string) error {
	win, err := xwindow.Create(c.XUtil, c.Root)
	if err != nil {
		return fmt.Errorf("failed to create check window: %w", err)
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, win.Id); err != nil {
		return err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, win.Id, win.Id); err != nil {
		return err
	}
	if err := ewmh.WmNameSet(c.XUtil, win.Id, name); err != nil {
		return err
	}
	return ewmh.SupportedSet(c.XUtil, supportedAtoms)
}

// SetClientList publishes _NET_CLIENT_LIST.
func (c *Connection) SetClientList(windows []xproto.Window) error {
	if err := ewmh.ClientListSet(c.XUtil, windows); err != nil {
		return fmt.Errorf("failed to set client list: %w", err)
	}
	return nil
}

// SetDesktops publishes the desktop count, their names and the current one.
// A negative current leaves _NET_CURRENT_DESKTOP untouched.
func (c *Connection) SetDesktops(names []string, current int) error {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(len(names))); err != nil {
		return fmt.Errorf("failed to set desktop count: %w", err)
	}
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		return fmt.Errorf("failed to set desktop names: %w", err)
	}
	if current < 0 {
		return nil
	}
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(current)); err != nil {
		return fmt.Errorf("failed to set current desktop: %w", err)
	}
	return nil
}

// SetActiveWindow publishes _NET_ACTIVE_WINDOW. Window 0 means none.
func (c *Connection) SetActiveWindow(w xproto.Window) error {
	if err := ewmh.ActiveWindowSet(c.XUtil, w); err != nil {
		return fmt.Errorf("failed to set active window: %w", err)
	}
	return nil
}
