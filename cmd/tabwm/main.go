package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/tabwm/internal/config"
	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/ipc"
	"github.com/1broseidon/tabwm/internal/runtimepath"
	"github.com/1broseidon/tabwm/internal/tui"
	"github.com/1broseidon/tabwm/internal/wm"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "read":
		os.Exit(runRead(os.Args[2:]))
	case "write":
		os.Exit(runWrite(os.Args[2:]))
	case "ls":
		os.Exit(runList(os.Args[2:]))
	case "tree":
		os.Exit(runTree(os.Args[2:]))
	case "watch":
		os.Exit(runWatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tabwm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Run the window manager (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  read <path>         Print a control node")
	fmt.Fprintln(w, "  write <path> <cmd>  Write a command or setting to a node")
	fmt.Fprintln(w, "  ls [path]           List a control directory")
	fmt.Fprintln(w, "  tree [prefix]       Print every node under prefix")
	fmt.Fprintln(w, "  watch <path>        Stream changes of a node")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  menu                Pick a window with rofi or dmenu")
	fmt.Fprintln(w, "  tui                 Open interactive node inspector")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'tabwm <command> --help' for command-specific options.")
}

// clientFlagSet returns a flag set carrying the --socket option shared by
// every command that talks to the daemon.
func clientFlagSet(name, usage string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket := fs.String("socket", "", "Daemon socket path (default: socket_path or $XDG_RUNTIME_DIR/tabwm.sock)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabwm "+usage)
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	return fs, socket
}

// parseFlags returns the exit code to use when parsing stops the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

// resolveSocket picks the socket from the flag, then the config file, then
// the runtime directory.
func resolveSocket(flagValue string) (string, error) {
	override := flagValue
	if override == "" {
		if cfg, err := config.Load(); err == nil {
			override = cfg.SocketPath
		}
	}
	return runtimepath.SocketPath(override)
}

func newClient(socket string) (*ipc.Client, error) {
	path, err := resolveSocket(socket)
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(path), nil
}

func runStatus(args []string) int {
	fs, socket := clientFlagSet("status", "status [--socket PATH]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	status, err := client.Ping()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("daemon_running: true")
	fmt.Printf("nodes:          %d\n", status.Nodes)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	if sel, err := client.Read(wm.PathSel); err == nil {
		fmt.Printf("sel:            %s\n", sel.Content)
	}
	return 0
}

func runRead(args []string) int {
	fs, socket := clientFlagSet("read", "read [--socket PATH] <path>")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "read requires exactly one <path>")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	node, err := client.Read(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(node.Content)
	return 0
}

func runWrite(args []string) int {
	fs, socket := clientFlagSet("write", "write [--socket PATH] <path> <data...>")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "write requires <path> and <data>")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data := strings.Join(fs.Args()[1:], " ")
	if err := client.Write(fs.Arg(0), data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runList(args []string) int {
	fs, socket := clientFlagSet("ls", "ls [--socket PATH] [path]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "ls takes at most one path")
		fs.Usage()
		return 2
	}
	path := "/"
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	entries, err := client.List(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, e := range entries {
		fmt.Println(formatEntry(e))
	}
	return 0
}

func formatEntry(e ctl.Entry) string {
	if e.Dir {
		return e.Name + "/"
	}
	if e.Kind == "" {
		return e.Name
	}
	return fmt.Sprintf("%-12s %s", e.Name, e.Kind)
}

func runTree(args []string) int {
	fs, socket := clientFlagSet("tree", "tree [--socket PATH] [prefix]")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "tree takes at most one prefix")
		fs.Usage()
		return 2
	}
	prefix := "/"
	if fs.NArg() == 1 {
		prefix = fs.Arg(0)
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	nodes, err := client.Tree(prefix)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	for _, n := range nodes {
		if n.Kind == "command" {
			fmt.Printf("%s (%s)\n", n.Path, n.Kind)
			continue
		}
		fmt.Printf("%s = %s\n", n.Path, n.Content)
	}
	return 0
}

func runWatch(args []string) int {
	fs, socket := clientFlagSet("watch", "watch [--socket PATH] <path>")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "watch requires exactly one <path>")
		fs.Usage()
		return 2
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = client.Watch(ctx, fs.Arg(0), func(c ctl.Change) error {
		if c.Removed {
			fmt.Printf("%s removed\n", c.Path)
			return nil
		}
		fmt.Println(c.Content)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tabwm config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tabwm config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  tabwm config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tabwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if _, err := res.Config.ParsedBindings(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tabwm/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tabwm/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs, socket := clientFlagSet("tui", "tui [--socket PATH]")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: tabwm tui [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive inspector for the control nodes of a running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓        Navigate entries")
		fmt.Fprintln(os.Stderr, "  Enter, l        Open directory")
		fmt.Fprintln(os.Stderr, "  Backspace, h    Parent directory")
		fmt.Fprintln(os.Stderr, "  w               Write to a command or setting node")
		fmt.Fprintln(os.Stderr, "  r               Refresh")
		fmt.Fprintln(os.Stderr, "  Tab, 1/2        Switch between nodes and events")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C       Quit")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client, err := newClient(*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.New(client).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
