// Package tui is an interactive inspector for a running daemon's control
// nodes.
package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/ipc"
)

// Client is the daemon connection the inspector uses. *ipc.Client
// implements it.
type Client interface {
	Ping() (*ipc.StatusData, error)
	Read(path string) (ipc.NodeData, error)
	Write(path, data string) error
	List(path string) ([]ctl.Entry, error)
	Watch(ctx context.Context, path string, fn func(ctl.Change) error) error
}

// TUI represents the terminal user interface.
type TUI struct {
	client Client
}

// New creates a new TUI instance.
func New(client Client) *TUI {
	return &TUI{client: client}
}

// Run starts the TUI main loop.
func (t *TUI) Run() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(newModel(ctx, t.client), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
