package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	log_level
//	border
//	page_padding
//	min_column_width
//	min_frame_height
//	attach
//	tab_font
//	colors.focus
//	reconcile_interval
//	menu_hotkey
//	bindings
//	bindings.<keys>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	head, rest, nested := strings.Cut(path, ".")

	scalars := map[string]any{
		"display":            cfg.Display,
		"xauthority":         cfg.XAuthority,
		"log_level":          cfg.LogLevel,
		"socket_path":        cfg.SocketPath,
		"border":             cfg.Border,
		"page_padding":       cfg.PagePadding,
		"min_column_width":   cfg.MinColumnWidth,
		"min_frame_height":   cfg.MinFrameHeight,
		"attach":             cfg.Attach,
		"tab_font":           cfg.TabFont,
		"tab_padding":        cfg.TabPadding,
		"reconcile_interval": cfg.ReconcileInterval.String(),
		"menu_hotkey":        cfg.MenuHotkey,
		"menu_backend":       cfg.MenuBackend,
	}
	if v, ok := scalars[head]; ok {
		if nested {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch head {
	case "colors":
		if !nested {
			return cfg.Colors, nil
		}
		colors := map[string]string{
			"focus":      cfg.Colors.Focus,
			"normal":     cfg.Colors.Normal,
			"text":       cfg.Colors.Text,
			"focus_text": cfg.Colors.FocusText,
			"background": cfg.Colors.Background,
		}
		if v, ok := colors[rest]; ok {
			return v, nil
		}
	case "bindings":
		if !nested {
			return cfg.Bindings, nil
		}
		if v, ok := cfg.Bindings[rest]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("no binding for %q", rest)
	}
	return nil, fmt.Errorf("unknown path: %s", path)
}
