package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestFitLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		cols  int
		want  string
	}{
		{name: "fits", label: "xterm", cols: 10, want: "xterm"},
		{name: "truncated", label: "a very long title", cols: 9, want: "a very..."},
		{name: "no room", label: "xterm", cols: 0, want: ""},
		{name: "narrow", label: "xterm", cols: 2, want: "xt"},
		{name: "latin1 kept", label: "café", cols: 10, want: "caf\xe9"},
		{name: "wide runes", label: "日本", cols: 10, want: "????"},
		{name: "control chars", label: "a\tb", cols: 10, want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitLabel(tt.label, tt.cols); got != tt.want {
				t.Fatalf("FitLabel(%q, %d) = %q, want %q", tt.label, tt.cols, got, tt.want)
			}
		})
	}
}

func TestFitLabel_CapsAt255Bytes(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	if got := FitLabel(string(long), 1000); len(got) != 255 {
		t.Fatalf("len = %d, want 255", len(got))
	}
}

func TestTabAt(t *testing.T) {
	tabs := []tab{{x: 0, width: 100}, {x: 100, width: 100}, {x: 200, width: 101}}
	for _, tt := range []struct {
		x    int
		want int
	}{
		{0, 0}, {99, 0}, {100, 1}, {300, 2}, {301, -1}, {-1, -1},
	} {
		if got := tabAt(tabs, tt.x); got != tt.want {
			t.Fatalf("tabAt(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestUpdateStrutsForMonitor(t *testing.T) {
	mon := &Monitor{Width: 1920, Height: 1080}
	var acc dockStruts

	// A 30px top panel spanning the whole screen.
	updateStrutsForMonitor(mon, 1920, 1080, &ewmh.WmStrutPartial{
		Top: 30, TopStartX: 0, TopEndX: 1919,
	}, &acc)
	updateStrutsForMonitor(mon, 3840, 1080, &ewmh.WmStrutPartial{
		Left: 50, LeftStartY: 0, LeftEndY: 1079,
	}, &acc)
	// A right dock on a second monitor does not count.
	updateStrutsForMonitor(mon, 3840, 1080, &ewmh.WmStrutPartial{
		Right: 40, RightStartY: 0, RightEndY: 1079,
	}, &acc)

	if acc.top != 30 {
		t.Fatalf("top = %d, want 30", acc.top)
	}
	if acc.left != 50 {
		t.Fatalf("left = %d, want 50", acc.left)
	}
	if acc.right != 0 || acc.bottom != 0 {
		t.Fatalf("unexpected struts %+v", acc)
	}
}
