// Package palette shows a dmenu-style chooser and reports the picked row.
package palette

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the chooser without picking.
var ErrCancelled = errors.New("palette cancelled")

// Item is a single row of a chooser.
type Item struct {
	Label    string // Display text
	Action   string // Written to the control node when picked
	Info     string // Hidden data passed through the chooser
	IsHeader bool   // Non-selectable section header
	IsActive bool   // Highlighted as the current row
}

// Backend shows a list of items and returns the picked one.
type Backend interface {
	Show(prompt string, items []Item) (Item, error)
}

// AutoDetect selects the first available backend in priority order.
func AutoDetect() (Backend, error) {
	name, err := DetectBackend()
	if err != nil {
		return nil, err
	}
	return NewBackend(name)
}

// NewBackend creates a backend by name.
//
// Supported names: auto, rofi, dmenu.
func NewBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return AutoDetect()
	case "rofi":
		if _, err := exec.LookPath("rofi"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", "rofi")
		}
		return NewRofiBackend(), nil
	case "dmenu":
		if _, err := exec.LookPath("dmenu"); err != nil {
			return nil, fmt.Errorf("palette backend %q not found in PATH", "dmenu")
		}
		return NewDmenuBackend(), nil
	default:
		return nil, fmt.Errorf("unknown palette backend: %q (expected: auto, rofi, dmenu)", name)
	}
}
