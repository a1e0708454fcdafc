package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/1broseidon/tabwm/internal/config"
)

// x11SocketDir holds one socket per running X server, named X<n>.
const x11SocketDir = "/tmp/.X11-unix"

// applyDisplayEnv makes DISPLAY and XAUTHORITY point at the server the
// daemon should manage. Config values win, then the environment, then
// whatever can be discovered on disk.
func applyDisplayEnv(cfg *config.Config, logger *slog.Logger) {
	display := resolveDisplay(cfg.Display, os.Getenv("DISPLAY"), x11SocketDir)
	if display != "" {
		if err := os.Setenv("DISPLAY", display); err != nil {
			logger.Warn("failed to set DISPLAY", "error", err)
		}
	}

	home, _ := os.UserHomeDir()
	xauth := resolveXAuthority(cfg.XAuthority, os.Getenv("XAUTHORITY"), home)
	if xauth != "" {
		if err := os.Setenv("XAUTHORITY", xauth); err != nil {
			logger.Warn("failed to set XAUTHORITY", "error", err)
		}
	}
	logger.Debug("display environment", "display", display, "xauthority", xauth)
}

func resolveDisplay(configured, env, socketDir string) string {
	if configured != "" {
		return configured
	}
	if env != "" {
		return env
	}
	return detectDisplayFromSockets(socketDir)
}

// detectDisplayFromSockets returns ":<n>" for the highest numbered X socket
// in dir, or "" when there is none.
func detectDisplayFromSockets(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	best := -1
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "X") {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil || n < 0 {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return ""
	}
	return ":" + strconv.Itoa(best)
}

func resolveXAuthority(configured, env, home string) string {
	if configured != "" {
		return configured
	}
	if env != "" {
		return env
	}
	if home == "" {
		return ""
	}
	path := filepath.Join(home, ".Xauthority")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
