package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/tabwm/internal/ctl"
	"github.com/1broseidon/tabwm/internal/wm"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing  CommandType = "PING"
	CommandRead  CommandType = "READ"
	CommandWrite CommandType = "WRITE"
	CommandList  CommandType = "LIST"
	CommandTree  CommandType = "TREE"
	CommandWatch CommandType = "WATCH"
)

// Error codes carried in Response.Code so clients can tell failures apart.
const (
	CodeNotFound = "not_found"
	CodeReadOnly = "read_only"
	CodeBadPath  = "bad_path"
	CodeInvalid  = "invalid"
	CodeInternal = "internal"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client. A WATCH
// request is answered by one OK response followed by one response per
// change, each carrying a ctl.Change.
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// PathPayload is the payload of READ, LIST, TREE and WATCH.
type PathPayload struct {
	Path string `json:"path"`
}

// WritePayload is the payload of WRITE.
type WritePayload struct {
	Path string `json:"path"`
	Data string `json:"data"`
}

// StatusData represents the data returned by PING
type StatusData struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	Nodes         int   `json:"nodes"`
}

// NodeData is one node and its content.
type NodeData struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

// ListData is returned by LIST.
type ListData struct {
	Entries []ctl.Entry `json:"entries"`
}

// TreeData is returned by TREE.
type TreeData struct {
	Nodes []NodeData `json:"nodes"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
		Code:   CodeInternal,
	}
}

// ErrorResponseFor classifies err into an error response.
func ErrorResponseFor(err error) *Response {
	resp := NewErrorResponse(err.Error())
	resp.Code = codeFor(err)
	return resp
}

func codeFor(err error) string {
	var verr *wm.ValidationError
	switch {
	case errors.Is(err, ctl.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ctl.ErrReadOnly):
		return CodeReadOnly
	case errors.Is(err, ctl.ErrBadPath):
		return CodeBadPath
	case errors.As(err, &verr):
		return CodeInvalid
	default:
		return CodeInternal
	}
}

// RemoteError is a failure reported by the daemon. It matches the ctl
// sentinel errors with errors.Is.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string { return "daemon error: " + e.Message }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ctl.ErrNotFound:
		return e.Code == CodeNotFound
	case ctl.ErrReadOnly:
		return e.Code == CodeReadOnly
	case ctl.ErrBadPath:
		return e.Code == CodeBadPath
	}
	return false
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
