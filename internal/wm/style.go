package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tabwm/internal/ctl"
)

// DefaultFont is the core X font tabs are drawn with.
const DefaultFont = "fixed"

// Style is the look of tab strips: a core font name and #rrggbb colors.
type Style struct {
	Font      string
	Focus     string
	Normal    string
	Text      string
	FocusText string
}

// DefaultStyle matches the stock configuration.
func DefaultStyle() Style {
	return Style{
		Font:      DefaultFont,
		Focus:     "#285577",
		Normal:    "#222222",
		Text:      "#888888",
		FocusText: "#ffffff",
	}
}

// Validate checks the font name and every color.
func (s Style) Validate() error {
	if strings.TrimSpace(s.Font) == "" {
		return fmt.Errorf("font must not be empty")
	}
	for _, c := range []string{s.Focus, s.Normal, s.Text, s.FocusText} {
		if _, err := ParseColor(c); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor converts "#rrggbb" into a 24-bit pixel value.
func ParseColor(s string) (uint32, error) {
	if len(s) != 7 || s[0] != '#' {
		return 0, fmt.Errorf("color %q must look like #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	return uint32(v), nil
}

func (m *WM) writeFont(data string) error {
	font := strings.TrimSpace(data)
	if font == "" {
		return invalid("font", "font name must not be empty")
	}
	s := m.settings
	s.Style.Font = font
	return m.ApplySettings(s)
}

func (m *WM) colorSetting(name string, apply func(*Style, string)) ctl.WriteFunc {
	return func(data string) error {
		color := strings.TrimSpace(data)
		if _, err := ParseColor(color); err != nil {
			return invalid(name, "%v", err)
		}
		s := m.settings
		apply(&s.Style, color)
		return m.ApplySettings(s)
	}
}

// restyle hands a changed style to the renderer. The old style stays in
// effect when the renderer rejects the new one.
func (m *WM) restyle(s Style) error {
	if s == m.settings.Style {
		return nil
	}
	if err := m.render.SetStyle(s); err != nil {
		return &CollaboratorFailure{Op: "restyle", Err: err}
	}
	return nil
}
