package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func setRuntimeDir(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)
}

func TestDir_UsesXDGRuntimeDirWhenSet(t *testing.T) {
	td := t.TempDir()
	setRuntimeDir(t, td)

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if got != td {
		t.Fatalf("Dir() = %q, want %q", got, td)
	}
}

func TestDir_FallsBackWhenRuntimeDirMissing(t *testing.T) {
	setRuntimeDir(t, filepath.Join(t.TempDir(), "does-not-exist"))

	got, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	want := fmt.Sprintf("/tmp/tabwm-runtime-%d", os.Getuid())
	if got != want {
		t.Fatalf("Dir() = %q, want %q", got, want)
	}
}

func TestSocketPath(t *testing.T) {
	td := t.TempDir()
	setRuntimeDir(t, td)

	socket, err := SocketPath("")
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if socket != filepath.Join(td, "tabwm.sock") {
		t.Fatalf("SocketPath() = %q", socket)
	}

	socket, err = SocketPath("/run/custom.sock")
	if err != nil || socket != "/run/custom.sock" {
		t.Fatalf("override ignored: %q, %v", socket, err)
	}
}
