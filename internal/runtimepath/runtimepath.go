package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Dir returns the runtime directory used for the tabwm IPC socket.
// Priority:
// 1) xdg runtime dir (XDG_RUNTIME_DIR, else /run/user/<uid>) if it exists
// 2) /tmp/tabwm-runtime-<uid> (created)
func Dir() (string, error) {
	if dir := xdg.RuntimeDir; dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}

	tmpDir := fmt.Sprintf("/tmp/tabwm-runtime-%d", os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path. A non-empty override (the
// socket_path config key or --socket flag) wins.
func SocketPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "tabwm.sock"), nil
}
