package wm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/tabwm/internal/tiling"
)

// Verb is a command understood by ctl nodes.
type Verb int

const (
	VerbSelect Verb = iota
	VerbAttach
	VerbDetach
	VerbClose
	VerbResize
	VerbMove
)

var verbList = [...]string{
	VerbSelect: "select",
	VerbAttach: "attach",
	VerbDetach: "detach",
	VerbClose:  "close",
	VerbResize: "resize",
	VerbMove:   "move",
}

func (v Verb) String() string {
	if v < 0 || int(v) >= len(verbList) {
		return fmt.Sprintf("verb(%d)", int(v))
	}
	return verbList[v]
}

func lookupVerb(s string) (Verb, bool) {
	for i, name := range verbList {
		if name == s {
			return Verb(i), true
		}
	}
	return 0, false
}

// TargetKind classifies the argument of select, attach, detach and close.
type TargetKind int

const (
	TargetSelf TargetKind = iota
	TargetIndex
	TargetPrev
	TargetNext
	TargetNew
	TargetFloating
	TargetColumns
	TargetRef
)

// Target is a parsed command argument.
type Target struct {
	Kind    TargetKind
	Index   int
	RefKind string
	RefID   int
}

// Command is a parsed ctl write.
type Command struct {
	Verb   Verb
	Target Target
	Rect   tiling.Rect
	// Column is the destination of move; -1 means the floating set.
	Column int
}

// ParseCommand parses one command line. It never touches state, so a write
// that fails here changes nothing.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, invalid("command", "empty command")
	}
	verb, ok := lookupVerb(fields[0])
	if !ok {
		return Command{}, invalid("command", "unknown verb %q", fields[0])
	}
	args := fields[1:]
	cmd := Command{Verb: verb}

	switch verb {
	case VerbSelect, VerbAttach, VerbDetach, VerbClose:
		if len(args) > 1 {
			return Command{}, invalid(fields[0], "expected at most one argument, got %d", len(args))
		}
		if len(args) == 1 {
			t, err := parseTarget(args[0])
			if err != nil {
				return Command{}, invalid(fields[0], "%v", err)
			}
			cmd.Target = t
		}
	case VerbResize:
		r, err := tiling.ParseRect(strings.Join(args, " "))
		if err != nil {
			return Command{}, invalid("resize", "%v", err)
		}
		cmd.Rect = r
	case VerbMove:
		if len(args) != 1 {
			return Command{}, invalid("move", "expected a column index or \"floating\"")
		}
		if args[0] == "floating" {
			cmd.Column = -1
			break
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return Command{}, invalid("move", "bad column index %q", args[0])
		}
		cmd.Column = n
	}
	return cmd, nil
}

var refKinds = map[string]bool{"client": true, "frame": true, "column": true, "page": true}

func parseTarget(s string) (Target, error) {
	switch s {
	case "prev":
		return Target{Kind: TargetPrev}, nil
	case "next":
		return Target{Kind: TargetNext}, nil
	case "new":
		return Target{Kind: TargetNew}, nil
	case "floating":
		return Target{Kind: TargetFloating}, nil
	case "column":
		return Target{Kind: TargetColumns}, nil
	}
	if kind, id, ok := strings.Cut(s, ":"); ok {
		if !refKinds[kind] {
			return Target{}, errorf("unknown entity kind %q", kind)
		}
		n, err := strconv.Atoi(id)
		if err != nil || n <= 0 {
			return Target{}, errorf("bad %s id %q", kind, id)
		}
		return Target{Kind: TargetRef, RefKind: kind, RefID: n}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Target{}, errorf("bad target %q", s)
	}
	return Target{Kind: TargetIndex, Index: n}, nil
}

func errorf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func unsupported(cmd Command, node string) error {
	return invalid(cmd.Verb.String(), "not supported on %s nodes", node)
}

// Exec runs a command line against the node at path. It is what the ctl
// nodes call on write, exposed for callers that resolve paths themselves.
func (m *WM) Exec(path, line string) error {
	return m.nodes.Write(path, line)
}

func (m *WM) globalCommand(data string) error {
	cmd, err := ParseCommand(data)
	if err != nil {
		return err
	}

	if cmd.Verb == VerbSelect {
		return m.selectGlobal(cmd.Target)
	}

	var c *Client
	switch cmd.Target.Kind {
	case TargetSelf:
		if cmd.Verb == VerbAttach {
			if len(m.detached) == 0 {
				return invalid("attach", "no detached clients")
			}
			c = m.clients[m.detached[0]]
		} else if c = m.SelectedClient(); c == nil {
			return invalid(cmd.Verb.String(), "nothing is selected")
		}
	case TargetRef:
		if cmd.Target.RefKind != "client" {
			return invalid(cmd.Verb.String(), "target must be a client")
		}
		var ok bool
		if c, ok = m.Client(ClientID(cmd.Target.RefID)); !ok {
			return invalid(cmd.Verb.String(), "no client %d", cmd.Target.RefID)
		}
	default:
		return invalid(cmd.Verb.String(), "target must be a client")
	}
	return m.applyClient(c, cmd)
}

func (m *WM) selectGlobal(t Target) error {
	switch t.Kind {
	case TargetNew:
		return m.SelectPage(m.NewPage())
	case TargetRef:
		return m.selectRef(t)
	case TargetPrev, TargetNext, TargetIndex:
		i, ok := cycle(t, m.active, len(m.pages))
		if !ok {
			return invalid("select", "no page at %s", describeTarget(t))
		}
		return m.SelectPage(m.pages[i])
	default:
		return invalid("select", "expected a page index, prev, next, new or entity reference")
	}
}

func (m *WM) selectRef(t Target) error {
	switch t.RefKind {
	case "client":
		c, ok := m.Client(ClientID(t.RefID))
		if !ok {
			return invalid("select", "no client %d", t.RefID)
		}
		return m.SelectClient(c, true)
	case "frame":
		f, ok := m.Frame(FrameID(t.RefID))
		if !ok {
			return invalid("select", "no frame %d", t.RefID)
		}
		return m.SelectFrame(f)
	case "column":
		col, ok := m.Column(ColumnID(t.RefID))
		if !ok {
			return invalid("select", "no column %d", t.RefID)
		}
		return m.SelectColumn(col)
	default:
		p, ok := m.Page(PageID(t.RefID))
		if !ok {
			return invalid("select", "no page %d", t.RefID)
		}
		return m.SelectPage(p)
	}
}

func (m *WM) pageCommand(id PageID, data string) error {
	cmd, err := ParseCommand(data)
	if err != nil {
		return err
	}
	p, ok := m.Page(id)
	if !ok {
		return invalid(cmd.Verb.String(), "no page %d", id)
	}

	switch cmd.Verb {
	case VerbSelect:
		switch cmd.Target.Kind {
		case TargetSelf:
			return m.SelectPage(p)
		case TargetFloating:
			if err := m.SetMode(p, ModeFloating); err != nil {
				return err
			}
			return m.SelectPage(p)
		case TargetColumns:
			if err := m.SetMode(p, ModeColumn); err != nil {
				return err
			}
			return m.SelectPage(p)
		case TargetPrev, TargetNext, TargetIndex:
			i, ok := cycle(cmd.Target, p.Sel, len(p.Columns))
			if !ok {
				return invalid("select", "no column at %s", describeTarget(cmd.Target))
			}
			return m.SelectColumn(m.columns[p.Columns[i]])
		}
		return invalid("select", "expected a column index, prev, next, floating or column")
	case VerbClose:
		return m.ClosePage(p)
	}
	return unsupported(cmd, "page")
}

func (m *WM) columnCommand(id ColumnID, data string) error {
	cmd, err := ParseCommand(data)
	if err != nil {
		return err
	}
	col, ok := m.Column(id)
	if !ok {
		return invalid(cmd.Verb.String(), "no column %d", id)
	}

	switch cmd.Verb {
	case VerbSelect:
		if cmd.Target.Kind == TargetSelf {
			return m.SelectColumn(col)
		}
		i, ok := cycle(cmd.Target, col.Sel, len(col.Frames))
		if !ok {
			return invalid("select", "no frame at %s", describeTarget(cmd.Target))
		}
		return m.SelectFrame(m.frames[col.Frames[i]])
	case VerbResize:
		return m.ResizeColumn(col, cmd.Rect.Width)
	}
	return unsupported(cmd, "column")
}

func (m *WM) frameCommand(id FrameID, data string) error {
	cmd, err := ParseCommand(data)
	if err != nil {
		return err
	}
	f, ok := m.Frame(id)
	if !ok {
		return invalid(cmd.Verb.String(), "no frame %d", id)
	}

	switch cmd.Verb {
	case VerbSelect:
		if cmd.Target.Kind == TargetSelf {
			return m.SelectFrame(f)
		}
		i, ok := cycle(cmd.Target, f.Sel, len(f.Clients))
		if !ok {
			return invalid("select", "no client at %s", describeTarget(cmd.Target))
		}
		return m.SelectClient(m.clients[f.Clients[i]], true)
	case VerbResize:
		return m.ResizeFrame(f, cmd.Rect.Height)
	case VerbMove:
		if cmd.Column < 0 {
			return invalid("move", "frames cannot float")
		}
		return m.MoveFrame(f, cmd.Column)
	case VerbDetach, VerbClose:
		if cmd.Target.Kind != TargetSelf {
			return invalid(cmd.Verb.String(), "takes no argument on frame nodes")
		}
		return m.applyClient(m.shownClient(f), cmd)
	}
	return unsupported(cmd, "frame")
}

func (m *WM) clientCommand(id ClientID, data string) error {
	cmd, err := ParseCommand(data)
	if err != nil {
		return err
	}
	c, ok := m.Client(id)
	if !ok {
		return invalid(cmd.Verb.String(), "no client %d", id)
	}
	if cmd.Verb != VerbResize && cmd.Verb != VerbMove && cmd.Target.Kind != TargetSelf {
		return invalid(cmd.Verb.String(), "takes no argument on client nodes")
	}
	return m.applyClient(c, cmd)
}

// applyClient runs a verb that acts on a single client.
func (m *WM) applyClient(c *Client, cmd Command) error {
	switch cmd.Verb {
	case VerbSelect:
		return m.SelectClient(c, true)
	case VerbAttach:
		return m.Attach(c)
	case VerbDetach:
		return m.Detach(c, true)
	case VerbClose:
		return m.Close(c)
	case VerbResize:
		return m.ResizeClient(c, cmd.Rect)
	case VerbMove:
		if cmd.Column < 0 {
			return m.SetFloating(c, true)
		}
		return m.Move(c, cmd.Column)
	}
	return unsupported(cmd, "client")
}

func describeTarget(t Target) string {
	switch t.Kind {
	case TargetPrev:
		return "prev"
	case TargetNext:
		return "next"
	case TargetIndex:
		return strconv.Itoa(t.Index)
	case TargetRef:
		return t.RefKind + ":" + strconv.Itoa(t.RefID)
	default:
		return "target"
	}
}
