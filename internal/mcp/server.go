// Package mcp exposes the control-node tree of a running daemon as MCP
// tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/ipc"
)

const (
	ServerName    = "tabwm"
	ServerVersion = "0.1.0"
)

// NodeClient is the daemon connection the tools use. *ipc.Client implements it.
type NodeClient interface {
	Read(path string) (ipc.NodeData, error)
	Write(path, data string) error
	List(path string) ([]ctl.Entry, error)
	Tree(prefix string) ([]ipc.NodeData, error)
}

// Server is the MCP server for tabwm's control nodes.
type Server struct {
	mcpServer *mcpsdk.Server
	client    NodeClient
	logger    *slog.Logger
}

// NewServer creates a new MCP server that talks to the daemon through client.
func NewServer(client NodeClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_nodes",
		Description: "List the children of a control-node directory. Directories include /client, /detached, /frame, /column, /page and /def; leaf kinds are mirror (read-only), command (write verbs) and setting.",
	}, s.handleListNodes)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "read_node",
		Description: "Read one control node, e.g. /sel for the active page, /client/3/name for a window title or /page/1/mode.",
	}, s.handleReadNode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "write_node",
		Description: "Write a command to a ctl node or a value to a setting node. Verbs: select [index|prev|next|new|floating|column|kind:id], attach, detach, close, resize x y w h, move column|floating. A rejected write changes nothing.",
	}, s.handleWriteNode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_tree",
		Description: "Dump every control node under a prefix with its content. Use this to see the whole layout (pages, columns, frames, clients) at once.",
	}, s.handleGetTree)
}
