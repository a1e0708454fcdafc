package x11

import (
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
	"github.com/mattn/go-runewidth"
)

// TabStyle configures how tab strips look.
type TabStyle struct {
	Font      string
	Padding   int
	Focus     uint32
	Normal    uint32
	Text      uint32
	FocusText uint32
}

// ClickFunc receives a button press on the tab at index of a strip.
type ClickFunc func(strip, index, button int)

type tab struct {
	label    string
	x, width int
	selected bool
}

type tabStrip struct {
	win    *xwindow.Window
	geom   Geometry
	tabs   []tab
	mapped bool
}

// TabBars draws one override-redirect strip per frame. Drawing happens on
// the manager goroutine, clicks and exposes arrive on the event loop.
type TabBars struct {
	conn *Connection

	mu      sync.Mutex
	look    look
	strips  map[int]*tabStrip
	onClick ClickFunc
}

// look holds the server-side resources of one TabStyle.
type look struct {
	style     TabStyle
	font      xproto.Font
	ascent    int
	descent   int
	charWidth int
	focusGC   xproto.Gcontext
	normalGC  xproto.Gcontext
	fillGC    xproto.Gcontext
}

// NewTabBars opens the tab font and creates the graphics contexts.
func NewTabBars(conn *Connection, style TabStyle, onClick ClickFunc) (*TabBars, error) {
	t := &TabBars{
		conn:    conn,
		strips:  make(map[int]*tabStrip),
		onClick: onClick,
	}
	lk, err := t.load(style)
	if err != nil {
		return nil, err
	}
	t.look = lk
	return t, nil
}

func (t *TabBars) load(style TabStyle) (look, error) {
	xc := t.conn.XUtil.Conn()
	font, err := xproto.NewFontId(xc)
	if err != nil {
		return look{}, err
	}
	if err := xproto.OpenFontChecked(xc, font, uint16(len(style.Font)), style.Font).Check(); err != nil {
		return look{}, fmt.Errorf("failed to open font %q: %w", style.Font, err)
	}
	info, err := xproto.QueryFont(xc, xproto.Fontable(font)).Reply()
	if err != nil {
		xproto.CloseFont(xc, font)
		return look{}, fmt.Errorf("failed to query font %q: %w", style.Font, err)
	}

	lk := look{
		style:     style,
		font:      font,
		ascent:    int(info.FontAscent),
		descent:   int(info.FontDescent),
		charWidth: max(int(info.MaxBounds.CharacterWidth), 1),
	}
	gcs := []struct {
		dst    *xproto.Gcontext
		fg, bg uint32
	}{
		{&lk.focusGC, style.FocusText, style.Focus},
		{&lk.normalGC, style.Text, style.Normal},
		{&lk.fillGC, style.Focus, style.Focus},
	}
	for _, g := range gcs {
		if *g.dst, err = t.newGC(font, g.fg, g.bg); err != nil {
			t.free(lk)
			return look{}, err
		}
	}
	return lk, nil
}

// free releases the resources of lk. Zero ids are skipped.
func (t *TabBars) free(lk look) {
	xc := t.conn.XUtil.Conn()
	for _, gc := range []xproto.Gcontext{lk.focusGC, lk.normalGC, lk.fillGC} {
		if gc != 0 {
			xproto.FreeGC(xc, gc)
		}
	}
	if lk.font != 0 {
		xproto.CloseFont(xc, lk.font)
	}
}

func (t *TabBars) newGC(font xproto.Font, fg, bg uint32) (xproto.Gcontext, error) {
	xc := t.conn.XUtil.Conn()
	gc, err := xproto.NewGcontextId(xc)
	if err != nil {
		return 0, err
	}
	mask := uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont)
	err = xproto.CreateGCChecked(xc, gc, xproto.Drawable(t.conn.Root), mask,
		[]uint32{fg, bg, uint32(font)}).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create graphics context: %w", err)
	}
	return gc, nil
}

// Restyle switches every strip to style. On error the current style stays.
// Callers re-place and redraw strips afterwards, since the height may change.
func (t *TabBars) Restyle(style TabStyle) error {
	lk, err := t.load(style)
	if err != nil {
		return err
	}

	t.mu.Lock()
	old := t.look
	t.look = lk
	for _, s := range t.strips {
		s.win.Change(xproto.CwBackPixel, style.Normal)
		xproto.ClearArea(t.conn.XUtil.Conn(), false, s.win.Id, 0, 0, 0, 0)
		for _, tb := range s.tabs {
			t.drawTab(s, tb)
		}
	}
	t.mu.Unlock()

	t.free(old)
	return nil
}

// Padding is the configured space around labels.
func (t *TabBars) Padding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.look.style.Padding
}

// Height is the strip height for the configured font.
func (t *TabBars) Height() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.look.ascent + t.look.descent + 2*t.look.style.Padding
}

// Place moves the strip of id to g, creating it on first use. Tabs drawn
// before the previous Place are forgotten.
func (t *TabBars) Place(id int, g Geometry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.strips[id]
	if !ok {
		win, err := t.createStrip(id)
		if err != nil {
			return
		}
		s = &tabStrip{win: win}
		t.strips[id] = s
	}
	s.geom = g
	s.tabs = s.tabs[:0]
	s.win.MoveResize(g.X, g.Y, max(g.Width, 1), max(g.Height, 1))
	if !s.mapped {
		s.win.Map()
		s.mapped = true
	}
	s.win.Stack(xproto.StackModeAbove)
}

func (t *TabBars) createStrip(id int) (*xwindow.Window, error) {
	win, err := xwindow.Generate(t.conn.XUtil)
	if err != nil {
		return nil, err
	}
	mask := xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask
	err = win.CreateChecked(t.conn.Root, 0, 0, 1, 1, mask,
		t.look.style.Normal, 1,
		uint32(xproto.EventMaskExposure|xproto.EventMaskButtonPress))
	if err != nil {
		return nil, err
	}

	xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			t.redraw(id)
		}
	}).Connect(t.conn.XUtil, win.Id)
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		t.click(id, int(ev.EventX), int(ev.Detail))
	}).Connect(t.conn.XUtil, win.Id)
	return win, nil
}

// Draw renders one tab of the strip last placed for id. x is in root
// coordinates.
func (t *TabBars) Draw(id int, label string, x, width int, selected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.strips[id]
	if !ok {
		return
	}
	tb := tab{label: label, x: x - s.geom.X, width: width, selected: selected}
	s.tabs = append(s.tabs, tb)
	t.drawTab(s, tb)
}

func (t *TabBars) redraw(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.strips[id]; ok {
		for _, tb := range s.tabs {
			t.drawTab(s, tb)
		}
	}
}

func (t *TabBars) drawTab(s *tabStrip, tb tab) {
	xc := t.conn.XUtil.Conn()
	d := xproto.Drawable(s.win.Id)
	w, h := uint16(max(tb.width, 1)), uint16(max(s.geom.Height, 1))

	lk := t.look
	gc := lk.normalGC
	if tb.selected {
		gc = lk.focusGC
		xproto.PolyFillRectangle(xc, d, lk.fillGC, []xproto.Rectangle{{X: int16(tb.x), Width: w, Height: h}})
	} else {
		xproto.ClearArea(xc, false, s.win.Id, int16(tb.x), 0, w, h)
	}

	pad := lk.style.Padding
	text := FitLabel(tb.label, (tb.width-2*pad)/lk.charWidth)
	if text == "" {
		return
	}
	xproto.ImageText8(xc, byte(len(text)), d, gc,
		int16(tb.x+pad), int16(pad+lk.ascent), text)
}

func (t *TabBars) click(id, x, button int) {
	t.mu.Lock()
	index := -1
	if s, ok := t.strips[id]; ok {
		index = tabAt(s.tabs, x)
	}
	onClick := t.onClick
	t.mu.Unlock()

	if index >= 0 && onClick != nil {
		onClick(id, index, button)
	}
}

// Release destroys the strip of id.
func (t *TabBars) Release(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.strips[id]
	if !ok {
		return
	}
	xevent.Detach(t.conn.XUtil, s.win.Id)
	s.win.Destroy()
	delete(t.strips, id)
}

// Close destroys every strip and frees the font.
func (t *TabBars) Close() {
	t.mu.Lock()
	ids := make([]int, 0, len(t.strips))
	for id := range t.strips {
		ids = append(ids, id)
	}
	t.mu.Unlock()
	for _, id := range ids {
		t.Release(id)
	}
	t.mu.Lock()
	lk := t.look
	t.look = look{}
	t.mu.Unlock()
	t.free(lk)
}

// tabAt returns the index of the tab under x, or -1.
func tabAt(tabs []tab, x int) int {
	for i, tb := range tabs {
		if x >= tb.x && x < tb.x+tb.width {
			return i
		}
	}
	return -1
}

// FitLabel truncates label to at most cols display columns and replaces
// runes a core font cannot draw.
func FitLabel(label string, cols int) string {
	if cols <= 0 {
		return ""
	}
	fitted := runewidth.Truncate(label, cols, "...")
	if runewidth.StringWidth(fitted) > cols {
		fitted = runewidth.Truncate(label, cols, "")
	}

	var b strings.Builder
	for _, r := range fitted {
		switch {
		case r < 0x20:
			b.WriteByte(' ')
		case r <= 0xff:
			b.WriteByte(byte(r))
		default:
			// Latin-1 fonts have no glyph; keep the column count.
			for range runewidth.RuneWidth(r) {
				b.WriteByte('?')
			}
		}
		if b.Len() >= 255 {
			break
		}
	}
	out := b.String()
	if len(out) > 255 {
		out = out[:255]
	}
	return out
}
