package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/tabwm/internal/wm"
)

const statusInterval = 2 * time.Second

// daemonStatusMsg reports the result of a periodic ping.
type daemonStatusMsg struct {
	connected bool
	nodes     int
	sel       string
}

// model is the root bubbletea model for the TUI.
type model struct {
	client Client

	// Tab navigation
	activeTab Tab

	// Sub-models
	nodesTab  NodesTab
	eventsTab EventsTab

	// Daemon state
	daemonConnected bool
	nodeCount       int
	sel             string

	// Terminal dimensions
	width  int
	height int
}

func newModel(ctx context.Context, client Client) model {
	return model{
		client:    client,
		activeTab: TabNodes,
		nodesTab:  NewNodesTab(client),
		eventsTab: NewEventsTab(ctx, client),
	}
}

func (m model) pollStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		status, err := client.Ping()
		if err != nil {
			return daemonStatusMsg{}
		}
		msg := daemonStatusMsg{connected: true, nodes: status.Nodes}
		if sel, err := client.Read(wm.PathSel); err == nil {
			msg.sel = sel.Content
		}
		return msg
	}
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1) = 4 lines
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.pollStatus(), m.nodesTab.Init(), m.eventsTab.Init())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		subMsg := tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()}
		m.nodesTab, _ = m.nodesTab.Update(subMsg)
		m.eventsTab, _ = m.eventsTab.Update(subMsg)
		return m, nil

	case daemonStatusMsg:
		m.daemonConnected = msg.connected
		m.nodeCount = msg.nodes
		m.sel = msg.sel
		return m, tea.Tick(statusInterval, func(time.Time) tea.Msg { return m.pollStatus()() })

	case eventMsg, watchEndedMsg:
		var cmd tea.Cmd
		m.eventsTab, cmd = m.eventsTab.Update(msg)
		return m, cmd

	case dirLoadedMsg, nodeReadMsg, writeDoneMsg, statusMsg, clearStatusMsg:
		var cmd tea.Cmd
		m.nodesTab, cmd = m.nodesTab.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The write prompt and confirmation consume every other key.
		if m.activeTab == TabNodes && m.nodesTab.capturing() {
			var cmd tea.Cmd
			m.nodesTab, cmd = m.nodesTab.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabNodes
			return m, nil
		case "2":
			m.activeTab = TabEvents
			return m, nil
		}
	}

	// Delegate to active tab's sub-model
	var cmd tea.Cmd
	switch m.activeTab {
	case TabNodes:
		m.nodesTab, cmd = m.nodesTab.Update(msg)
	case TabEvents:
		m.eventsTab, cmd = m.eventsTab.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.daemonConnected, m.sel, m.nodeCount, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.activeTab, m.width)

	var content string
	switch m.activeTab {
	case TabNodes:
		content = m.nodesTab.View()
	case TabEvents:
		content = m.eventsTab.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}
