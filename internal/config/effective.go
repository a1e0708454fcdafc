package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig layers raw over the defaults.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	setString(&cfg.Display, raw.Display)
	setString(&cfg.XAuthority, raw.XAuthority)
	setString(&cfg.LogLevel, raw.LogLevel)
	setString(&cfg.SocketPath, raw.SocketPath)
	setInt(&cfg.Border, raw.Border)
	setInt(&cfg.PagePadding, raw.PagePadding)
	setInt(&cfg.MinColumnWidth, raw.MinColumnWidth)
	setInt(&cfg.MinFrameHeight, raw.MinFrameHeight)
	setString(&cfg.Attach, raw.Attach)
	setString(&cfg.TabFont, raw.TabFont)
	setInt(&cfg.TabPadding, raw.TabPadding)
	setString(&cfg.MenuHotkey, raw.MenuHotkey)
	setString(&cfg.MenuBackend, raw.MenuBackend)
	if raw.ReconcileInterval != nil {
		cfg.ReconcileInterval = *raw.ReconcileInterval
	}

	if raw.Colors != nil {
		setString(&cfg.Colors.Focus, raw.Colors.Focus)
		setString(&cfg.Colors.Normal, raw.Colors.Normal)
		setString(&cfg.Colors.Text, raw.Colors.Text)
		setString(&cfg.Colors.FocusText, raw.Colors.FocusText)
		setString(&cfg.Colors.Background, raw.Colors.Background)
	}

	for keys, value := range raw.Bindings {
		if keys == "" {
			return nil, &ValidationError{Path: "bindings", Err: fmt.Errorf("bindings contains an empty key sequence")}
		}
		if value == "" {
			delete(cfg.Bindings, keys)
			continue
		}
		cfg.Bindings[keys] = value
	}

	return cfg, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
