package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tabwm/internal/ipc"
	"github.com/1broseidon/tabwm/internal/wm"
)

func (s *Server) handleListNodes(_ context.Context, _ *mcpsdk.CallToolRequest, args ListNodesInput) (*mcpsdk.CallToolResult, ListNodesOutput, error) {
	path := strings.TrimSpace(args.Path)
	if path == "" {
		path = "/"
	}
	entries, err := s.client.List(path)
	if err != nil {
		s.logger.Debug("list_nodes failed", "path", path, "error", err)
		return nil, ListNodesOutput{}, fmt.Errorf("failed to list %s: %w", path, err)
	}

	out := ListNodesOutput{Path: path, Entries: make([]NodeEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, NodeEntry{Name: e.Name, Path: e.Path, Dir: e.Dir, Kind: e.Kind})
	}
	return nil, out, nil
}

func (s *Server) handleReadNode(_ context.Context, _ *mcpsdk.CallToolRequest, args ReadNodeInput) (*mcpsdk.CallToolResult, ReadNodeOutput, error) {
	path := strings.TrimSpace(args.Path)
	if path == "" {
		return nil, ReadNodeOutput{}, fmt.Errorf("path is required")
	}
	node, err := s.client.Read(path)
	if err != nil {
		return nil, ReadNodeOutput{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil, nodeOutput(node), nil
}

func (s *Server) handleWriteNode(_ context.Context, _ *mcpsdk.CallToolRequest, args WriteNodeInput) (*mcpsdk.CallToolResult, WriteNodeOutput, error) {
	path := strings.TrimSpace(args.Path)
	data := strings.TrimSpace(args.Data)
	if path == "" || data == "" {
		return nil, WriteNodeOutput{}, fmt.Errorf("path and data are required")
	}

	if err := s.client.Write(path, data); err != nil {
		s.logger.Info("write_node rejected", "path", path, "data", data, "error", err)
		return nil, WriteNodeOutput{}, fmt.Errorf("write %q to %s rejected: %w", data, path, err)
	}
	s.logger.Info("write_node", "path", path, "data", data)

	out := WriteNodeOutput{Path: path, Accepted: true}
	if sel, err := s.client.Read(wm.PathSel); err == nil {
		out.Sel = sel.Content
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Wrote %q to %s", data, path)},
		},
	}, out, nil
}

func (s *Server) handleGetTree(_ context.Context, _ *mcpsdk.CallToolRequest, args GetTreeInput) (*mcpsdk.CallToolResult, GetTreeOutput, error) {
	prefix := strings.TrimSpace(args.Prefix)
	if prefix == "" {
		prefix = "/"
	}
	nodes, err := s.client.Tree(prefix)
	if err != nil {
		return nil, GetTreeOutput{}, fmt.Errorf("failed to read tree %s: %w", prefix, err)
	}

	out := GetTreeOutput{Nodes: make([]ReadNodeOutput, 0, len(nodes))}
	for _, n := range nodes {
		// Command nodes have no content worth returning.
		if n.Kind == "command" {
			continue
		}
		out.Nodes = append(out.Nodes, nodeOutput(n))
	}
	return nil, out, nil
}

func nodeOutput(n ipc.NodeData) ReadNodeOutput {
	return ReadNodeOutput{Path: n.Path, Kind: n.Kind, Content: n.Content}
}
