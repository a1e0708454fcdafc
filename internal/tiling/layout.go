package tiling

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect represents a window position and size
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// String renders the rectangle in the "x y w h" form used by geometry nodes.
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.X, r.Y, r.Width, r.Height)
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ParseRect parses "x y w h". Width and height must be positive.
func ParseRect(s string) (Rect, error) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return Rect{}, fmt.Errorf("geometry %q: expected 4 integers, got %d fields", s, len(fields))
	}

	var vals [4]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return Rect{}, fmt.Errorf("geometry %q: field %d is not an integer", s, i+1)
		}
		vals[i] = v
	}

	r := Rect{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width <= 0 || r.Height <= 0 {
		return Rect{}, fmt.Errorf("geometry %q: width and height must be positive", s)
	}
	return r, nil
}

// Inset shrinks r by the given edge amounts, never below zero size.
func Inset(r Rect, left, top, right, bottom int) Rect {
	out := Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Partition splits total into len(weights) integer shares proportional to the
// weights. Non-positive weights count as the average of the positive ones, and
// when no weight is positive the split is even. The shares always sum to total;
// rounding remainders go to the last share.
func Partition(total int, weights []int) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	w := make([]int, n)
	sum, positive := 0, 0
	for _, v := range weights {
		if v > 0 {
			sum += v
			positive++
		}
	}
	fill := 1
	if positive > 0 {
		fill = sum / positive
		if fill < 1 {
			fill = 1
		}
	}
	sum = 0
	for i, v := range weights {
		if v <= 0 {
			v = fill
		}
		w[i] = v
		sum += v
	}

	shares := make([]int, n)
	used := 0
	for i := 0; i < n-1; i++ {
		shares[i] = int(int64(total) * int64(w[i]) / int64(sum))
		used += shares[i]
	}
	shares[n-1] = total - used
	return shares
}

// SplitColumns partitions r horizontally by weights.
func SplitColumns(r Rect, weights []int) []Rect {
	widths := Partition(r.Width, weights)
	out := make([]Rect, len(widths))
	x := r.X
	for i, w := range widths {
		out[i] = Rect{X: x, Y: r.Y, Width: w, Height: r.Height}
		x += w
	}
	return out
}

// SplitRows partitions r vertically by weights.
func SplitRows(r Rect, weights []int) []Rect {
	heights := Partition(r.Height, weights)
	out := make([]Rect, len(heights))
	y := r.Y
	for i, h := range heights {
		out[i] = Rect{X: r.X, Y: y, Width: r.Width, Height: h}
		y += h
	}
	return out
}

// ResizePair moves the boundary between sizes[i] and its neighbor so that
// sizes[i] becomes want. The neighbor is the next sibling, or the previous one
// when i is last. Both sizes are clamped to min. It returns the updated sizes,
// the neighbor index, and false when there is no neighbor to trade with.
func ResizePair(sizes []int, i, want, min int) ([]int, int, bool) {
	if i < 0 || i >= len(sizes) || len(sizes) < 2 {
		return sizes, -1, false
	}

	j := i + 1
	if j == len(sizes) {
		j = i - 1
	}

	pair := sizes[i] + sizes[j]
	if min*2 > pair {
		min = pair / 2
	}
	if want < min {
		want = min
	}
	if want > pair-min {
		want = pair - min
	}

	out := append([]int(nil), sizes...)
	out[i] = want
	out[j] = pair - want
	return out, j, true
}

// Spread adds freed to the given sizes evenly, remainder to the last entry.
func Spread(sizes []int, freed int) []int {
	if len(sizes) == 0 {
		return sizes
	}
	out := append([]int(nil), sizes...)
	each := freed / len(out)
	for i := range out {
		out[i] += each
	}
	out[len(out)-1] += freed - each*len(out)
	return out
}
