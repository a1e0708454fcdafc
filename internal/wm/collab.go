package wm

import "github.com/1broseidon/tabwm/internal/tiling"

// WindowSystem is the set of window-system primitives the core drives.
type WindowSystem interface {
	// SelectInput subscribes to structure and property changes of w.
	SelectInput(w Window) error
	Name(w Window) (string, error)
	// TransientFor returns 0 when w is not transient.
	TransientFor(w Window) (Window, error)
	// NormalHints returns an error when w carries no WM_NORMAL_HINTS.
	NormalHints(w Window) (SizeHints, error)
	Protocols(w Window) (Protocol, error)

	Map(w Window) error
	Unmap(w Window) error
	Raise(w Window) error
	// Focus gives w the input focus. Window 0 reverts focus to the root.
	Focus(w Window) error
	MoveResize(w Window, r tiling.Rect) error
	SendDelete(w Window) error
	Kill(w Window) error

	// ScreenRect is the area pages are laid out in.
	ScreenRect() tiling.Rect
}

// Renderer draws frame decorations.
type Renderer interface {
	// TabHeight is the height of the tab strip for a frame with n clients.
	TabHeight(n int) int
	// PlaceFrame positions the tab strip of a frame before its tabs are drawn.
	PlaceFrame(frame FrameID, strip tiling.Rect)
	DrawTab(frame FrameID, label string, r tiling.Rect, selected bool)
	// ReleaseFrame frees decoration resources of a removed frame.
	ReleaseFrame(frame FrameID)
	// SetStyle switches font and colors. Tab heights may change.
	SetStyle(s Style) error
}
