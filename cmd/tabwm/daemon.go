package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/1broseidon/tabwm/internal/config"
	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/daemon"
	"github.com/1broseidon/tabwm/internal/hotkeys"
	"github.com/1broseidon/tabwm/internal/ipc"
	"github.com/1broseidon/tabwm/internal/platform"
	"github.com/1broseidon/tabwm/internal/runtimepath"
	"github.com/1broseidon/tabwm/internal/wm"
	"github.com/1broseidon/tabwm/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/tabwm/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabwm daemon [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Take over window management of the X display and serve control nodes.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	applyDisplayEnv(cfg, logger)

	style, err := tabStyle(cfg)
	if err != nil {
		logger.Error("invalid tab style", "error", err)
		return 1
	}
	background, err := config.ParseColor(cfg.Colors.Background)
	if err != nil {
		logger.Error("invalid background color", "error", err)
		return 1
	}

	backend, err := platform.NewLinuxBackend(platform.Options{
		Display:    cfg.Display,
		Tabs:       style,
		Background: background,
	})
	if err != nil {
		logger.Error("failed to take over the display", "error", err)
		return 1
	}
	defer backend.Disconnect()

	nodes := ctl.NewTree()
	m, err := wm.New(backend, backend, nodes, cfg.Settings(), logger)
	if err != nil {
		logger.Error("failed to create window manager", "error", err)
		return 1
	}

	// Nothing else touches m until the queue starts, so the synchronizer
	// can subscribe from here.
	queue := daemon.NewQueue(daemon.DefaultQueueSize, logger)
	syncer := daemon.NewStateSynchronizer(m, backend, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go queue.Run(ctx)

	// Creating nodes and dropping detached clients publish no event, so
	// every job ends with a sync.
	post := func(fn func() error) {
		queue.Post(func() error {
			err := fn()
			syncer.Sync()
			return err
		})
	}
	do := func(ctx context.Context, fn func() error) error {
		return queue.Do(ctx, func() error {
			err := fn()
			syncer.Sync()
			return err
		})
	}

	backend.Listen(m, post)

	keys, err := hotkeys.NewHandler(backend, func(b config.Binding) {
		post(func() error { return hotkeys.Run(m, b) })
	})
	if err != nil {
		logger.Error("failed to create hotkey handler", "error", err)
		return 1
	}
	registerBindings(keys, cfg, logger)

	socketPath, err := runtimepath.SocketPath(cfg.SocketPath)
	if err != nil {
		logger.Error("failed to resolve socket path", "error", err)
		return 1
	}
	server := ipc.NewServer(socketPath, nodes, do, logger)
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer server.Stop()

	if err := do(ctx, func() error { return backend.Adopt(m) }); err != nil {
		logger.Warn("failed to adopt existing windows", "error", err)
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ReconcileInterval,
		Logger:   logger,
	}, queue, syncer, daemon.WindowListerFrom(backend.ListWindows))
	reconciler.ReconcileNow(ctx)
	go reconciler.Run(ctx)

	reload := func(next *config.Config) {
		err := do(ctx, func() error {
			if err := backend.RefreshScreen(); err != nil {
				logger.Warn("failed to refresh screen", "error", err)
			}
			return m.ApplySettings(next.Settings())
		})
		if err != nil {
			logger.Warn("config reload rejected", "error", err)
			return
		}
		keys.Reset()
		registerBindings(keys, next, logger)
		logger.Info("configuration reloaded")
	}

	watchPath := *path
	if watchPath == "" {
		watchPath, err = config.DefaultConfigPath()
	}
	if err == nil {
		watcher := config.NewWatcher(watchPath, logger, reload)
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("config file will not be watched", "error", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				next, err := loadConfig(*path)
				if err != nil {
					logger.Warn("config reload failed", "error", err)
					continue
				}
				reload(next.Config)

			case os.Interrupt, syscall.SIGTERM:
				logger.Info("shutting down")
				server.Stop()
				cancel()
				os.Exit(0)
			}
		}
	}()

	logger.Info("tabwm running", "socket", socketPath)
	backend.EventLoop()
	return 0
}

func registerBindings(keys *hotkeys.Handler, cfg *config.Config, logger *slog.Logger) {
	bindings, err := cfg.ParsedBindings()
	if err != nil {
		logger.Warn("ignoring invalid bindings", "error", err)
	}
	if err := keys.Register(bindings); err != nil {
		logger.Warn("some bindings could not be grabbed", "error", err)
	}

	if cfg.MenuHotkey == "" {
		return
	}
	if err := keys.RegisterFunc(cfg.MenuHotkey, func() { launchMenu(logger) }); err != nil {
		logger.Warn("failed to register menu hotkey", "keys", cfg.MenuHotkey, "error", err)
	}
}

// launchMenu runs "tabwm menu" in the background. The chooser blocks on user
// input, so it cannot run on the event loop.
func launchMenu(logger *slog.Logger) {
	exe, err := os.Executable()
	if err != nil {
		logger.Warn("menu: failed to find executable", "error", err)
		return
	}
	cmd := exec.Command(exe, "menu")
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		logger.Warn("menu: failed to launch", "error", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Warn("menu exited with an error", "error", err)
		}
	}()
}

func tabStyle(cfg *config.Config) (x11.TabStyle, error) {
	return platform.TabStyle(cfg.Settings().Style, cfg.TabPadding)
}
