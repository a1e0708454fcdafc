package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/tabwm/internal/wm"
	"gopkg.in/yaml.v3"
)

// Colors holds the tab bar palette as #rrggbb strings.
type Colors struct {
	Focus      string `yaml:"focus"`
	Normal     string `yaml:"normal"`
	Text       string `yaml:"text"`
	FocusText  string `yaml:"focus_text"`
	Background string `yaml:"background"`
}

// Binding maps a key sequence to a command written to the command node of
// the selected entity at Scope.
type Binding struct {
	Keys    string
	Scope   Scope
	Command string
}

// Scope names the entity a binding's command is written to.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopePage   Scope = "page"
	ScopeColumn Scope = "column"
	ScopeFrame  Scope = "frame"
	ScopeClient Scope = "client"
)

var scopes = []Scope{ScopeGlobal, ScopePage, ScopeColumn, ScopeFrame, ScopeClient}

const (
	DefaultBorder            = 3
	DefaultTabFont           = wm.DefaultFont
	DefaultTabPadding        = 4
	DefaultReconcileInterval = 10 * time.Second
)

// Config is the effective daemon configuration.
type Config struct {
	Display    string `yaml:"display,omitempty"`
	XAuthority string `yaml:"xauthority,omitempty"`
	LogLevel   string `yaml:"log_level"`
	SocketPath string `yaml:"socket_path,omitempty"`

	Border         int    `yaml:"border"`
	PagePadding    int    `yaml:"page_padding"`
	MinColumnWidth int    `yaml:"min_column_width"`
	MinFrameHeight int    `yaml:"min_frame_height"`
	Attach         string `yaml:"attach"`

	TabFont    string `yaml:"tab_font"`
	TabPadding int    `yaml:"tab_padding"`
	Colors     Colors `yaml:"colors"`

	ReconcileInterval time.Duration `yaml:"reconcile_interval"`

	// MenuHotkey launches the window switcher; empty disables it.
	MenuHotkey  string `yaml:"menu_hotkey"`
	MenuBackend string `yaml:"menu_backend"`

	// Bindings maps key sequences (xgbutil keybind syntax, e.g. "Mod4-j") to
	// "<scope> <command>", e.g. "frame select next".
	Bindings map[string]string `yaml:"bindings"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	s := wm.DefaultSettings()
	return &Config{
		LogLevel:       "info",
		Border:         DefaultBorder,
		PagePadding:    s.PagePadding,
		MinColumnWidth: s.MinWidth,
		MinFrameHeight: s.MinHeight,
		Attach:         s.Attach.String(),
		TabFont:        DefaultTabFont,
		TabPadding:     DefaultTabPadding,
		Colors: Colors{
			Focus:      s.Style.Focus,
			Normal:     s.Style.Normal,
			Text:       s.Style.Text,
			FocusText:  s.Style.FocusText,
			Background: "#000000",
		},
		ReconcileInterval: DefaultReconcileInterval,
		MenuHotkey:        "Mod4-p",
		MenuBackend:       "auto",
		Bindings: map[string]string{
			"Mod4-j":       "frame select next",
			"Mod4-k":       "frame select prev",
			"Mod4-h":       "page select prev",
			"Mod4-l":       "page select next",
			"Mod4-Tab":     "column select next",
			"Mod4-Return":  "global select new",
			"Mod4-d":       "client detach",
			"Mod4-a":       "global attach",
			"Mod4-q":       "client close",
			"Mod4-space":   "client move floating",
			"Mod4-Shift-l": "client move 1",
		},
	}
}

// Settings converts the layout knobs into core settings.
func (c *Config) Settings() wm.Settings {
	attach, err := wm.ParseAttachMode(c.Attach)
	if err != nil {
		attach = wm.AttachTab
	}
	return wm.Settings{
		Border:      c.Border,
		MinWidth:    c.MinColumnWidth,
		MinHeight:   c.MinFrameHeight,
		PagePadding: c.PagePadding,
		Attach:      attach,
		Style: wm.Style{
			Font:      c.TabFont,
			Focus:     c.Colors.Focus,
			Normal:    c.Colors.Normal,
			Text:      c.Colors.Text,
			FocusText: c.Colors.FocusText,
		},
	}
}

// SlogLevel maps log_level onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParsedBindings returns the bindings sorted by key sequence.
func (c *Config) ParsedBindings() ([]Binding, error) {
	keys := make([]string, 0, len(c.Bindings))
	for k := range c.Bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Binding, 0, len(keys))
	for _, k := range keys {
		b, err := parseBinding(k, c.Bindings[k])
		if err != nil {
			return nil, &ValidationError{Path: "bindings." + k, Err: err}
		}
		out = append(out, b)
	}
	return out, nil
}

func parseBinding(keys, value string) (Binding, error) {
	scope, command, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || strings.TrimSpace(command) == "" {
		return Binding{}, fmt.Errorf("expected \"<scope> <command>\", got %q", value)
	}
	s := Scope(scope)
	valid := false
	for _, known := range scopes {
		if s == known {
			valid = true
			break
		}
	}
	if !valid {
		return Binding{}, fmt.Errorf("unknown scope %q", scope)
	}
	command = strings.TrimSpace(command)
	if _, err := wm.ParseCommand(command); err != nil {
		return Binding{}, err
	}
	return Binding{Keys: keys, Scope: s, Command: command}, nil
}

// ParseColor converts "#rrggbb" into a 24-bit pixel value.
func ParseColor(s string) (uint32, error) {
	return wm.ParseColor(s)
}

// Save writes the effective configuration to the default path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.Border < 0 {
		return &ValidationError{Path: "border", Err: fmt.Errorf("border must be >= 0")}
	}
	if c.PagePadding < 0 {
		return &ValidationError{Path: "page_padding", Err: fmt.Errorf("page_padding must be >= 0")}
	}
	if c.MinColumnWidth < 1 {
		return &ValidationError{Path: "min_column_width", Err: fmt.Errorf("min_column_width must be >= 1")}
	}
	if c.MinFrameHeight < 1 {
		return &ValidationError{Path: "min_frame_height", Err: fmt.Errorf("min_frame_height must be >= 1")}
	}
	if _, err := wm.ParseAttachMode(c.Attach); err != nil {
		return &ValidationError{Path: "attach", Err: err}
	}
	if strings.TrimSpace(c.TabFont) == "" {
		return &ValidationError{Path: "tab_font", Err: fmt.Errorf("tab_font is required")}
	}
	if c.TabPadding < 0 {
		return &ValidationError{Path: "tab_padding", Err: fmt.Errorf("tab_padding must be >= 0")}
	}
	for name, v := range map[string]string{
		"colors.focus":      c.Colors.Focus,
		"colors.normal":     c.Colors.Normal,
		"colors.text":       c.Colors.Text,
		"colors.focus_text": c.Colors.FocusText,
		"colors.background": c.Colors.Background,
	} {
		if _, err := ParseColor(v); err != nil {
			return &ValidationError{Path: name, Err: err}
		}
	}
	switch c.MenuBackend {
	case "auto", "rofi", "dmenu":
	default:
		return &ValidationError{Path: "menu_backend", Err: fmt.Errorf("menu_backend must be one of: auto, rofi, dmenu")}
	}
	if c.ReconcileInterval < time.Second {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be at least 1s")}
	}
	if _, err := c.ParsedBindings(); err != nil {
		return err
	}
	return nil
}
