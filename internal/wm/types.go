package wm

import (
	"fmt"
	"strings"

	"github.com/1broseidon/tabwm/internal/tiling"
)

// Window is the window-system handle of a client.
type Window uint32

// Entity identifiers. They are assigned from per-kind counters that start at
// 1 and are never reused, so 0 means "none".
type (
	ClientID int
	FrameID  int
	ColumnID int
	PageID   int
)

// Protocol is the set of WM_PROTOCOLS a client takes part in.
type Protocol uint8

const (
	ProtoDelete Protocol = 1 << iota
	ProtoTakeFocus
)

// HintFlags mirrors the WM_NORMAL_HINTS flag word.
type HintFlags uint32

const (
	HintUSPosition HintFlags = 1 << iota
	HintUSSize
	HintPPosition
	HintPSize
	HintPMinSize
	HintPMaxSize
	HintPResizeInc
	HintPAspect
	HintPBaseSize
	HintPWinGravity
)

// SizeHints is the parsed WM_NORMAL_HINTS of a client.
type SizeHints struct {
	Flags      HintFlags
	BaseWidth  int
	BaseHeight int
	MinWidth   int
	MinHeight  int
	MaxWidth   int
	MaxHeight  int
	Gravity    tiling.Gravity
}

// EffectiveGravity returns the window gravity, NorthWest unless the hints
// carry one.
func (h SizeHints) EffectiveGravity() tiling.Gravity {
	if h.Flags&HintPWinGravity != 0 {
		return h.Gravity
	}
	return tiling.GravityNorthWest
}

// PropertyKind names the window properties the core reacts to.
type PropertyKind int

const (
	PropOther PropertyKind = iota
	PropName
	PropTransient
	PropNormalHints
	PropProtocols
)

func (k PropertyKind) String() string {
	switch k {
	case PropName:
		return "name"
	case PropTransient:
		return "transient"
	case PropNormalHints:
		return "normal-hints"
	case PropProtocols:
		return "protocols"
	default:
		return "other"
	}
}

// Mode selects which of a page's two client sets holds the focus path.
type Mode int

const (
	ModeColumn Mode = iota
	ModeFloating
)

func (m Mode) String() string {
	if m == ModeFloating {
		return "floating"
	}
	return "column"
}

// AttachMode controls where a new client lands inside the selected column.
type AttachMode int

const (
	// AttachTab adds the client as a tab of the selected frame.
	AttachTab AttachMode = iota
	// AttachStack gives the client a new frame below the selected one.
	AttachStack
)

func (a AttachMode) String() string {
	if a == AttachStack {
		return "stack"
	}
	return "tab"
}

// ParseAttachMode parses "tab" or "stack".
func ParseAttachMode(s string) (AttachMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tab", "":
		return AttachTab, nil
	case "stack":
		return AttachStack, nil
	default:
		return AttachTab, fmt.Errorf("attach mode must be tab or stack, got %q", s)
	}
}

// WindowAttributes is what the window system reports for a new window.
type WindowAttributes struct {
	Rect   tiling.Rect
	Border int
	Mapped bool
}

// MaxNameLen is the longest display name kept for a client, in bytes.
const MaxNameLen = 255

// Client is a managed window.
type Client struct {
	ID        ClientID
	Window    Window
	Name      string
	Border    int
	Hints     SizeHints
	Proto     Protocol
	Transient Window
	Rect      tiling.Rect
	Attached  bool
	Maximized bool

	frame       FrameID
	page        PageID // set only for floating clients
	ignoreUnmap int
	mapped      bool

	// decoration applied by the last gravitate on entering the floating set
	floatTab    int
	floatBorder int
	nodes       nodeRecord
}

// Frame returns the id of the frame holding the client, or 0.
func (c *Client) Frame() FrameID { return c.frame }

// Floating reports whether the client sits in a page's floating set.
func (c *Client) Floating() bool { return c.frame == 0 && c.page != 0 }

// Frame is a tabbed container showing one of its clients.
type Frame struct {
	ID      FrameID
	Clients []ClientID
	Sel     int
	Rect    tiling.Rect

	column ColumnID
	weight int
	nodes  nodeRecord
}

// Column is a vertical stack of frames.
type Column struct {
	ID     ColumnID
	Frames []FrameID
	Sel    int
	Rect   tiling.Rect

	page   PageID
	weight int
	nodes  nodeRecord
}

// Page is a workspace: columns plus a floating set.
type Page struct {
	ID       PageID
	Name     string
	Columns  []ColumnID
	Sel      int
	Floating []ClientID
	FloatSel int
	Mode     Mode
	Rect     tiling.Rect

	nodes nodeRecord
}

func truncateName(s string) string {
	if len(s) <= MaxNameLen {
		return s
	}
	cut := MaxNameLen
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
