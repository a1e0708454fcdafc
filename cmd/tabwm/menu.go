package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/1broseidon/tabwm/internal/config"
	"github.com/1broseidon/tabwm/internal/ipc"
	"github.com/1broseidon/tabwm/internal/palette"
	"github.com/1broseidon/tabwm/internal/wm"
)

func runMenu(args []string) int {
	fs, socket := clientFlagSet("menu", "menu [--socket PATH] [--backend NAME]")
	backendName := fs.String("backend", "", "Chooser to use: auto, rofi, dmenu (default: menu_backend)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "menu takes no arguments")
		fs.Usage()
		return 2
	}

	if *backendName == "" {
		*backendName = "auto"
		if cfg, err := config.Load(); err == nil {
			*backendName = cfg.MenuBackend
		}
	}
	backend, err := palette.NewBackend(*backendName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := switchWindow(client, backend); err != nil {
		if errors.Is(err, palette.ErrCancelled) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// switchWindow offers every client in a chooser and writes the picked
// action to the global control node.
func switchWindow(client *ipc.Client, backend palette.Backend) error {
	nodes, err := client.Tree("/")
	if err != nil {
		return err
	}
	snap := make(palette.Snapshot, len(nodes))
	for _, n := range nodes {
		snap[n.Path] = n.Content
	}

	items := palette.SwitcherItems(snap.Windows())
	if len(items) == 0 {
		return fmt.Errorf("no windows are managed")
	}
	item, err := backend.Show("tabwm", items)
	if err != nil {
		return err
	}
	return client.Write(wm.PathCtl, item.Action)
}
