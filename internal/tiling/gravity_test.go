package tiling

import "testing"

func TestGravitate_RoundTrip(t *testing.T) {
	orig := Rect{X: 40, Y: 60, Width: 301, Height: 199}
	for g := GravityForget; g <= GravityStatic; g++ {
		t.Run(g.String(), func(t *testing.T) {
			moved := Gravitate(orig, g, 17, 3, false)
			back := Gravitate(moved, g, 17, 3, true)
			if back != orig {
				t.Fatalf("round trip changed rect: %+v -> %+v -> %+v", orig, moved, back)
			}
		})
	}
}

func TestGravityOffset(t *testing.T) {
	const w, h, tab, border = 100, 50, 10, 3
	tests := []struct {
		g      Gravity
		dx, dy int
	}{
		{GravityNorthWest, border, tab},
		{GravityStatic, border, tab},
		{GravityNorth, -(w / 2) + border, tab},
		{GravityNorthEast, -(w + border), tab},
		{GravityWest, border, -(h / 2) + tab},
		{GravityCenter, -(w / 2) + border, -(h / 2) + tab},
		{GravityEast, -(w + border), -(h / 2) + tab},
		{GravitySouthWest, border, -h},
		{GravitySouth, -(w / 2) + border, -h},
		{GravitySouthEast, -(w + border), -h},
	}
	for _, tt := range tests {
		dx, dy := GravityOffset(tt.g, w, h, tab, border, false)
		if dx != tt.dx || dy != tt.dy {
			t.Fatalf("%s: got (%d,%d), want (%d,%d)", tt.g, dx, dy, tt.dx, tt.dy)
		}
		idx, idy := GravityOffset(tt.g, w, h, tab, border, true)
		if idx != -tt.dx || idy != -tt.dy {
			t.Fatalf("%s inverted: got (%d,%d)", tt.g, idx, idy)
		}
	}
}

func TestGravityOffset_ForgetIsUntouched(t *testing.T) {
	for _, g := range []Gravity{GravityForget, Gravity(42)} {
		dx, dy := GravityOffset(g, 100, 50, 10, 3, false)
		if dx != 0 || dy != 0 {
			t.Fatalf("%s: got (%d,%d), want (0,0)", g, dx, dy)
		}
	}
	r := Rect{X: 5, Y: 7, Width: 30, Height: 20}
	if got := Gravitate(r, GravityForget, 16, 2, false); got != r {
		t.Fatalf("forget gravity moved rect to %+v", got)
	}
}

func TestParseGravity(t *testing.T) {
	g, err := ParseGravity("SouthEast")
	if err != nil || g != GravitySouthEast {
		t.Fatalf("expected southeast, got %v (%v)", g, err)
	}
	if _, err := ParseGravity("up"); err == nil {
		t.Fatalf("expected error for unknown gravity")
	}
}
