package tiling

import (
	"fmt"
	"strings"
)

// Gravity is the ICCCM window gravity: the point of a window that stays fixed
// on screen when its decoration changes size.
type Gravity int

const (
	GravityForget Gravity = iota
	GravityNorthWest
	GravityNorth
	GravityNorthEast
	GravityWest
	GravityCenter
	GravityEast
	GravitySouthWest
	GravitySouth
	GravitySouthEast
	GravityStatic
)

var gravityNames = [...]string{
	"forget", "northwest", "north", "northeast", "west", "center",
	"east", "southwest", "south", "southeast", "static",
}

func (g Gravity) String() string {
	if g < 0 || int(g) >= len(gravityNames) {
		return fmt.Sprintf("gravity(%d)", int(g))
	}
	return gravityNames[g]
}

// ParseGravity maps a gravity name to its value.
func ParseGravity(s string) (Gravity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range gravityNames {
		if name == s {
			return Gravity(i), nil
		}
	}
	return GravityNorthWest, fmt.Errorf("unknown gravity %q", s)
}

// GravityOffset returns the shift applied to a w×h window with the given gravity
// when a tab strip of height tab and a border of width border are added. With
// invert the shift for removing that decoration is returned instead.
// Forget and unknown gravities are left where they are.
func GravityOffset(g Gravity, w, h, tab, border int, invert bool) (dx, dy int) {
	if g <= GravityForget || g > GravityStatic {
		return 0, 0
	}
	switch g {
	case GravityEast, GravityCenter, GravityWest:
		dy = -(h / 2) + tab
	case GravitySouthEast, GravitySouth, GravitySouthWest:
		dy = -h
	default: // static, northwest, north, northeast
		dy = tab
	}

	switch g {
	case GravityNorth, GravityCenter, GravitySouth:
		dx = -(w / 2) + border
	case GravityNorthEast, GravityEast, GravitySouthEast:
		dx = -(w + border)
	default: // static, northwest, west, southwest
		dx = border
	}

	if invert {
		dx, dy = -dx, -dy
	}
	return dx, dy
}

// Gravitate shifts r by the offset for g. Calling it with invert=false and then
// invert=true with the same arguments restores r.
func Gravitate(r Rect, g Gravity, tab, border int, invert bool) Rect {
	dx, dy := GravityOffset(g, r.Width, r.Height, tab, border, invert)
	r.X += dx
	r.Y += dy
	return r
}
