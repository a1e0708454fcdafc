package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColors struct {
	Focus      *string `yaml:"focus"`
	Normal     *string `yaml:"normal"`
	Text       *string `yaml:"text"`
	FocusText  *string `yaml:"focus_text"`
	Background *string `yaml:"background"`
}

// RawConfig is one config file as written. Nil fields were not set and
// leave the value underneath untouched when layered.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Display    *string `yaml:"display"`
	XAuthority *string `yaml:"xauthority"`
	LogLevel   *string `yaml:"log_level"`
	SocketPath *string `yaml:"socket_path"`

	Border         *int    `yaml:"border"`
	PagePadding    *int    `yaml:"page_padding"`
	MinColumnWidth *int    `yaml:"min_column_width"`
	MinFrameHeight *int    `yaml:"min_frame_height"`
	Attach         *string `yaml:"attach"`

	TabFont    *string    `yaml:"tab_font"`
	TabPadding *int       `yaml:"tab_padding"`
	Colors     *RawColors `yaml:"colors"`

	ReconcileInterval *time.Duration `yaml:"reconcile_interval"`

	MenuHotkey  *string `yaml:"menu_hotkey"`
	MenuBackend *string `yaml:"menu_backend"`

	// A binding mapped to an empty string removes the default for that key.
	Bindings map[string]string `yaml:"bindings"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	overrideString(&out.Display, overlay.Display)
	overrideString(&out.XAuthority, overlay.XAuthority)
	overrideString(&out.LogLevel, overlay.LogLevel)
	overrideString(&out.SocketPath, overlay.SocketPath)
	overrideInt(&out.Border, overlay.Border)
	overrideInt(&out.PagePadding, overlay.PagePadding)
	overrideInt(&out.MinColumnWidth, overlay.MinColumnWidth)
	overrideInt(&out.MinFrameHeight, overlay.MinFrameHeight)
	overrideString(&out.Attach, overlay.Attach)
	overrideString(&out.TabFont, overlay.TabFont)
	overrideInt(&out.TabPadding, overlay.TabPadding)
	overrideString(&out.MenuHotkey, overlay.MenuHotkey)
	overrideString(&out.MenuBackend, overlay.MenuBackend)
	if overlay.ReconcileInterval != nil {
		out.ReconcileInterval = overlay.ReconcileInterval
	}

	if overlay.Colors != nil {
		merged := RawColors{}
		if out.Colors != nil {
			merged = *out.Colors
		}
		overrideString(&merged.Focus, overlay.Colors.Focus)
		overrideString(&merged.Normal, overlay.Colors.Normal)
		overrideString(&merged.Text, overlay.Colors.Text)
		overrideString(&merged.FocusText, overlay.Colors.FocusText)
		overrideString(&merged.Background, overlay.Colors.Background)
		out.Colors = &merged
	}

	if overlay.Bindings != nil {
		bindings := make(map[string]string, len(out.Bindings)+len(overlay.Bindings))
		for k, v := range out.Bindings {
			bindings[k] = v
		}
		for k, v := range overlay.Bindings {
			bindings[k] = v
		}
		out.Bindings = bindings
	}
	return out
}

func overrideString(dst **string, v *string) {
	if v != nil {
		*dst = v
	}
}

func overrideInt(dst **int, v *int) {
	if v != nil {
		*dst = v
	}
}
