package tui

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/ipc"
)

// nodeItem implements list.Item for one directory entry.
type nodeItem struct {
	entry ctl.Entry
}

func (i nodeItem) Title() string {
	if i.entry.Dir {
		return i.entry.Name + "/"
	}
	return i.entry.Name
}

func (i nodeItem) Description() string {
	if i.entry.Dir {
		return "directory"
	}
	return i.entry.Kind
}

func (i nodeItem) FilterValue() string { return i.entry.Name }

// dirLoadedMsg carries a directory listing.
type dirLoadedMsg struct {
	dir     string
	entries []ctl.Entry
	err     error
}

// nodeReadMsg carries the content of one node.
type nodeReadMsg struct {
	node ipc.NodeData
	err  error
}

// writeDoneMsg is sent after a write completes.
type writeDoneMsg struct {
	path string
	data string
	err  error
}

// statusMsg shows a transient line under the detail pane.
type statusMsg struct {
	text string
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

// NodesTab browses the node tree and writes to command and setting nodes.
type NodesTab struct {
	client Client
	list   list.Model

	dir      string
	selected ipc.NodeData
	readErr  string

	writing   bool
	textInput textinput.Model

	confirm   *huh.Form
	confirmed *bool
	pending   writeDoneMsg

	statusText string

	width  int
	height int
}

// NewNodesTab creates a NodesTab rooted at /.
func NewNodesTab(client Client) NodesTab {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("15")).
		BorderForeground(lipgloss.Color("62"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color("250")).
		BorderForeground(lipgloss.Color("62"))

	l := list.New(nil, delegate, 0, 0)
	l.Title = "/"
	l.Styles.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)

	ti := textinput.New()
	ti.Placeholder = "e.g. select next, resize 0 0 400 300"
	ti.CharLimit = 256

	return NodesTab{
		client:    client,
		list:      l,
		dir:       "/",
		textInput: ti,
	}
}

// Init implements tea.Model.
func (n NodesTab) Init() tea.Cmd {
	return n.loadDir(n.dir)
}

// capturing reports whether the tab consumes every key.
func (n NodesTab) capturing() bool {
	return n.writing || n.confirm != nil
}

// Update handles messages for the nodes tab.
func (n NodesTab) Update(msg tea.Msg) (NodesTab, tea.Cmd) {
	if n.confirm != nil {
		return n.updateConfirm(msg)
	}
	if n.writing {
		return n.updateWriting(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		n.width = msg.Width
		n.height = msg.Height
		n.list.SetSize(n.listWidth(), n.height)
		return n, nil

	case dirLoadedMsg:
		if msg.err != nil {
			return n, showStatus(fmt.Sprintf("list %s: %v", msg.dir, msg.err))
		}
		n.dir = msg.dir
		n.list.Title = msg.dir
		items := make([]list.Item, 0, len(msg.entries))
		for _, e := range msg.entries {
			items = append(items, nodeItem{entry: e})
		}
		cmd := n.list.SetItems(items)
		return n, tea.Batch(cmd, n.readSelected())

	case nodeReadMsg:
		if msg.err != nil {
			n.selected = ipc.NodeData{}
			n.readErr = msg.err.Error()
			return n, nil
		}
		n.selected = msg.node
		n.readErr = ""
		return n, nil

	case writeDoneMsg:
		if msg.err != nil {
			return n, showStatus(fmt.Sprintf("rejected: %v", msg.err))
		}
		return n, tea.Batch(
			showStatus(fmt.Sprintf("wrote %q to %s", msg.data, msg.path)),
			n.loadDir(n.dir),
		)

	case statusMsg:
		n.statusText = msg.text
		return n, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		n.statusText = ""
		return n, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "right", "l":
			if item, ok := n.list.SelectedItem().(nodeItem); ok && item.entry.Dir {
				return n, n.loadDir(item.entry.Path)
			}
			return n, nil
		case "backspace", "left", "h":
			if n.dir != "/" {
				return n, n.loadDir(path.Dir(n.dir))
			}
			return n, nil
		case "r":
			return n, n.loadDir(n.dir)
		case "w":
			if item, ok := n.list.SelectedItem().(nodeItem); ok && writable(item.entry) {
				n.writing = true
				n.textInput.Reset()
				if item.entry.Kind == ctl.KindSetting.String() {
					n.textInput.SetValue(n.selected.Content)
				}
				n.textInput.Focus()
				return n, textinput.Blink
			}
			return n, showStatus("select a command or setting node to write")
		}
	}

	before := n.selectedPath()
	var cmd tea.Cmd
	n.list, cmd = n.list.Update(msg)
	if n.selectedPath() != before {
		return n, tea.Batch(cmd, n.readSelected())
	}
	return n, cmd
}

func (n NodesTab) updateWriting(msg tea.Msg) (NodesTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			n.writing = false
			n.textInput.Blur()
			data := strings.TrimSpace(n.textInput.Value())
			item, ok := n.list.SelectedItem().(nodeItem)
			if data == "" || !ok {
				return n, nil
			}
			if destructive(data) {
				return n, n.askConfirm(item.entry.Path, data)
			}
			return n, n.write(item.entry.Path, data)
		case "esc":
			n.writing = false
			n.textInput.Blur()
			return n, nil
		}
	case tea.WindowSizeMsg:
		n.width = msg.Width
		n.height = msg.Height
		return n, nil
	}

	var cmd tea.Cmd
	n.textInput, cmd = n.textInput.Update(msg)
	return n, cmd
}

func (n *NodesTab) askConfirm(p, data string) tea.Cmd {
	n.pending = writeDoneMsg{path: p, data: data}
	n.confirmed = new(bool)
	n.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write %q to %s?", data, p)).
				Description("This closes or hides a window.").
				Affirmative("Yes").
				Negative("No").
				Value(n.confirmed),
		),
	).WithShowHelp(false)
	return n.confirm.Init()
}

func (n NodesTab) updateConfirm(msg tea.Msg) (NodesTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		n.confirm = nil
		return n, showStatus("write cancelled")
	}

	form, cmd := n.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		n.confirm = f
	}

	switch n.confirm.State {
	case huh.StateCompleted:
		n.confirm = nil
		if *n.confirmed {
			return n, n.write(n.pending.path, n.pending.data)
		}
		return n, showStatus("write cancelled")
	case huh.StateAborted:
		n.confirm = nil
		return n, showStatus("write cancelled")
	}
	return n, cmd
}

func (n NodesTab) selectedPath() string {
	if item, ok := n.list.SelectedItem().(nodeItem); ok {
		return item.entry.Path
	}
	return ""
}

func (n NodesTab) loadDir(dir string) tea.Cmd {
	client := n.client
	return func() tea.Msg {
		entries, err := client.List(dir)
		return dirLoadedMsg{dir: dir, entries: entries, err: err}
	}
}

func (n NodesTab) readSelected() tea.Cmd {
	item, ok := n.list.SelectedItem().(nodeItem)
	if !ok || item.entry.Dir {
		return nil
	}
	client := n.client
	p := item.entry.Path
	return func() tea.Msg {
		node, err := client.Read(p)
		return nodeReadMsg{node: node, err: err}
	}
}

func (n NodesTab) write(p, data string) tea.Cmd {
	client := n.client
	return func() tea.Msg {
		return writeDoneMsg{path: p, data: data, err: client.Write(p, data)}
	}
}

func showStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func writable(e ctl.Entry) bool {
	return !e.Dir && (e.Kind == ctl.KindCommand.String() || e.Kind == ctl.KindSetting.String())
}

// destructive reports whether a command line closes or hides a window.
func destructive(data string) bool {
	verb, _, _ := strings.Cut(strings.TrimSpace(data), " ")
	return verb == "close" || verb == "detach"
}

func (n NodesTab) listWidth() int {
	w := n.width * 2 / 5
	if w < 20 {
		w = 20
	}
	return w
}

// View implements tea.Model.
func (n NodesTab) View() string {
	if n.width == 0 || n.height == 0 {
		return ""
	}

	leftWidth := n.listWidth()
	rightWidth := n.width - leftWidth
	if rightWidth < 10 {
		rightWidth = 10
	}

	left := lipgloss.NewStyle().
		Width(leftWidth).
		Height(n.height).
		Render(n.list.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, left, n.renderDetail(rightWidth))
}

func (n NodesTab) renderDetail(width int) string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(10)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)

	item, ok := n.list.SelectedItem().(nodeItem)
	switch {
	case !ok:
		b.WriteString(helpStyle.Render("empty directory"))
	case item.entry.Dir:
		b.WriteString(titleStyle.Render(item.entry.Path + "/"))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: open"))
	default:
		b.WriteString(titleStyle.Render(item.entry.Path))
		b.WriteString("\n\n")
		b.WriteString(labelStyle.Render("kind:"))
		b.WriteString(valueStyle.Render(item.entry.Kind))
		b.WriteString("\n")
		if n.readErr != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(n.readErr))
		} else if n.selected.Path == item.entry.Path && item.entry.Kind != ctl.KindCommand.String() {
			b.WriteString(labelStyle.Render("content:"))
			b.WriteString("\n")
			b.WriteString(valueStyle.Render(n.selected.Content))
		}
		b.WriteString("\n")
	}

	if n.writing {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Render("Write:"))
		b.WriteString("\n")
		b.WriteString(n.textInput.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter: send  esc: cancel"))
	}
	if n.confirm != nil {
		b.WriteString("\n")
		b.WriteString(n.confirm.View())
	}
	if n.statusText != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(n.statusText))
	}

	style := lipgloss.NewStyle().
		Width(width).
		Height(n.height).
		Padding(1, 2).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(lipgloss.Color("236"))

	return style.Render(b.String())
}
