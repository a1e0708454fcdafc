package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tabwm/internal/ctl"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, command CommandType, payload any) error {
	req := Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, &RemoteError{Code: resp.Code, Message: resp.Error}
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(command CommandType, payload any) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, command, payload); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

func decode[T any](resp *Response, what string) (T, error) {
	var v T
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return v, fmt.Errorf("failed to parse %s data: %w", what, err)
	}
	return v, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() (*StatusData, error) {
	resp, err := c.sendRequest(CommandPing, nil)
	if err != nil {
		return nil, err
	}
	status, err := decode[StatusData](resp, "status")
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Read returns one node.
func (c *Client) Read(path string) (NodeData, error) {
	resp, err := c.sendRequest(CommandRead, PathPayload{Path: path})
	if err != nil {
		return NodeData{}, err
	}
	return decode[NodeData](resp, "node")
}

// Write writes data to a node. Command nodes apply it as a verb.
func (c *Client) Write(path, data string) error {
	_, err := c.sendRequest(CommandWrite, WritePayload{Path: path, Data: data})
	return err
}

// List returns the children of a directory.
func (c *Client) List(path string) ([]ctl.Entry, error) {
	resp, err := c.sendRequest(CommandList, PathPayload{Path: path})
	if err != nil {
		return nil, err
	}
	data, err := decode[ListData](resp, "list")
	return data.Entries, err
}

// Tree returns every node under prefix with its content.
func (c *Client) Tree(prefix string) ([]NodeData, error) {
	resp, err := c.sendRequest(CommandTree, PathPayload{Path: prefix})
	if err != nil {
		return nil, err
	}
	data, err := decode[TreeData](resp, "tree")
	return data.Nodes, err
}

// Watch streams changes of one node to fn until ctx is done, the node is
// removed or fn returns an error. The first change carries the current
// content of mirror and setting nodes.
func (c *Client) Watch(ctx context.Context, path string, fn func(ctl.Change) error) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, CommandWatch, PathPayload{Path: path}); err != nil {
		return err
	}
	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		return err
	}
	conn.SetDeadline(time.Time{})

	for {
		resp, err := readResponse(reader)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		change, err := decode[ctl.Change](resp, "change")
		if err != nil {
			return err
		}
		if err := fn(change); err != nil {
			return err
		}
		if change.Removed {
			return nil
		}
	}
}
