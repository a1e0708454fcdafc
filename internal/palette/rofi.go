package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindDmenu
)

// runFunc runs a chooser with stdin and returns its stdout.
type runFunc func(command string, args []string, stdin string) (string, error)

type dmenuLikeBackend struct {
	command string
	kind    backendKind
	run     runFunc
}

// NewRofiBackend returns a backend driving rofi in dmenu mode.
func NewRofiBackend() Backend {
	return &dmenuLikeBackend{command: "rofi", kind: kindRofi, run: execRun}
}

// NewDmenuBackend returns a backend driving dmenu.
func NewDmenuBackend() Backend {
	return &dmenuLikeBackend{command: "dmenu", kind: kindDmenu, run: execRun}
}

func execRun(command string, args []string, stdin string) (string, error) {
	cmd := exec.Command(command, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil && !isCancelExit(err) {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return string(out), fmt.Errorf("%s failed: %s", command, msg)
		}
		return string(out), fmt.Errorf("%s failed: %w", command, err)
	}
	if err != nil {
		return string(out), ErrCancelled
	}
	return string(out), nil
}

func (b *dmenuLikeBackend) Show(prompt string, items []Item) (Item, error) {
	if len(items) == 0 {
		return Item{}, fmt.Errorf("palette: no items to show")
	}

	displayItems := make([]Item, len(items))
	copy(displayItems, items)

	input, selected := b.formatInput(displayItems)
	out, err := b.run(b.command, b.buildArgs(prompt, selected), input)
	selection := strings.TrimSpace(out)
	if err != nil && !errors.Is(err, ErrCancelled) {
		return Item{}, err
	}
	if selection == "" {
		return Item{}, ErrCancelled
	}

	item, err := b.parseSelection(selection, displayItems)
	if err != nil {
		return Item{}, err
	}
	if item.IsHeader {
		return Item{}, ErrCancelled
	}
	return item, nil
}

func (b *dmenuLikeBackend) buildArgs(prompt string, selected int) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		// Labels may repeat, so pick by row index.
		args = append(args, "-format", "i", "-no-custom", "-markup-rows")
		if selected >= 0 {
			args = append(args, "-a", strconv.Itoa(selected), "-selected-row", strconv.Itoa(selected))
		}

	case kindDmenu:
		args = []string{"-i", "-l", "20"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}

	return args
}

// formatInput renders items one per line and returns the row to preselect,
// or -1.
func (b *dmenuLikeBackend) formatInput(items []Item) (string, int) {
	// dmenu answers with the label text, so labels must be unique.
	if b.kind == kindDmenu {
		seen := make(map[string]int)
		for i := range items {
			key := sanitizeLabel(items[i].Label)
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	lines := make([]string, 0, len(items))
	selected := -1
	for i, item := range items {
		lines = append(lines, b.formatItem(item))
		if item.IsActive && !item.IsHeader && selected == -1 {
			selected = i
		}
	}
	return strings.Join(lines, "\n"), selected
}

func (b *dmenuLikeBackend) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.kind != kindRofi {
		return display
	}

	display = html.EscapeString(display)
	if item.IsHeader {
		display = fmt.Sprintf("<b>%s</b>", display)
	}

	// One NUL, then key/value pairs delimited by \x1f.
	var attrs []string
	if item.IsHeader {
		attrs = append(attrs, "nonselectable", "true")
	}
	if item.Info != "" {
		attrs = append(attrs, "info", sanitizeRofiField(item.Info))
	}
	if len(attrs) == 0 {
		return display
	}
	return display + "\x00" + strings.Join(attrs, "\x1f")
}

func (b *dmenuLikeBackend) parseSelection(selection string, items []Item) (Item, error) {
	if b.kind == kindRofi {
		idx, err := strconv.Atoi(selection)
		if err != nil {
			return findByLabel(selection, items)
		}
		if idx < 0 || idx >= len(items) {
			return Item{}, fmt.Errorf("palette: index %d out of range", idx)
		}
		return items[idx], nil
	}
	return findByLabel(selection, items)
}

func findByLabel(selection string, items []Item) (Item, error) {
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(value string) string {
	value = strings.ReplaceAll(value, "\x00", " ")
	value = strings.ReplaceAll(value, "\x1f", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// 1 means no selection, 130 is Ctrl+C.
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	default:
		return false
	}
}
