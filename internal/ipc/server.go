package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tabwm/internal/ctl"
)

// Runner executes fn on the goroutine that owns the node tree. The daemon
// passes its manager queue, so a request never observes half of a layout
// transition.
type Runner func(ctx context.Context, fn func() error) error

const (
	writeTimeout = 5 * time.Second
	runTimeout   = 5 * time.Second
	watchBuffer  = 64
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	nodes        *ctl.Tree
	run          Runner
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server. Every request touching nodes runs
// through run; watches subscribe to nodes directly.
func NewServer(socketPath string, nodes *ctl.Tree, run Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		nodes:      nodes,
		run:        run,
		logger:     logger,
		startTime:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	conn.SetReadDeadline(time.Now().Add(writeTimeout))
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	if req.Command == CommandWatch {
		conn.SetReadDeadline(time.Time{})
		s.handleWatch(conn, reader, req.Payload)
		return
	}
	s.send(conn, s.handleCommand(req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPing:
		return s.handlePing()
	case CommandRead:
		return s.handleRead(req.Payload)
	case CommandWrite:
		return s.handleWrite(req.Payload)
	case CommandList:
		return s.handleList(req.Payload)
	case CommandTree:
		return s.handleTree(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// exec runs fn through the runner with the request timeout.
func (s *Server) exec(fn func() error) error {
	ctx, cancel := context.WithTimeout(s.ctx, runTimeout)
	defer cancel()
	return s.run(ctx, fn)
}

func (s *Server) handlePing() *Response {
	var count int
	if err := s.exec(func() error {
		count = len(s.nodes.Walk("/"))
		return nil
	}); err != nil {
		return ErrorResponseFor(err)
	}
	resp, _ := NewOKResponse(StatusData{
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Nodes:         count,
	})
	return resp
}

func (s *Server) handleRead(payload json.RawMessage) *Response {
	var req PathPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid read payload: %v", err))
	}
	var node NodeData
	err := s.exec(func() error {
		var err error
		node, err = s.readNode(req.Path)
		return err
	})
	if err != nil {
		return ErrorResponseFor(err)
	}
	resp, _ := NewOKResponse(node)
	return resp
}

func (s *Server) readNode(p string) (NodeData, error) {
	kind, err := s.nodes.Stat(p)
	if err != nil {
		return NodeData{}, err
	}
	content, err := s.nodes.Read(p)
	if err != nil {
		return NodeData{}, err
	}
	clean, _ := ctl.Clean(p)
	return NodeData{Path: clean, Kind: kind.String(), Content: content}, nil
}

func (s *Server) handleWrite(payload json.RawMessage) *Response {
	var req WritePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid write payload: %v", err))
	}
	if req.Path == "" {
		return NewErrorResponse("path is required")
	}

	if err := s.exec(func() error { return s.nodes.Write(req.Path, req.Data) }); err != nil {
		s.logger.Debug("IPC write rejected", "path", req.Path, "data", req.Data, "error", err)
		return ErrorResponseFor(err)
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleList(payload json.RawMessage) *Response {
	req := PathPayload{Path: "/"}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid list payload: %v", err))
		}
	}
	var entries []ctl.Entry
	err := s.exec(func() error {
		var err error
		entries, err = s.nodes.List(req.Path)
		return err
	})
	if err != nil {
		return ErrorResponseFor(err)
	}
	resp, _ := NewOKResponse(ListData{Entries: entries})
	return resp
}

func (s *Server) handleTree(payload json.RawMessage) *Response {
	req := PathPayload{Path: "/"}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid tree payload: %v", err))
		}
	}
	prefix, err := ctl.Clean(req.Path)
	if err != nil {
		return ErrorResponseFor(err)
	}

	data := TreeData{Nodes: []NodeData{}}
	err = s.exec(func() error {
		for _, p := range s.nodes.Walk(prefix) {
			node, err := s.readNode(p)
			if err != nil {
				continue
			}
			data.Nodes = append(data.Nodes, node)
		}
		return nil
	})
	if err != nil {
		return ErrorResponseFor(err)
	}
	resp, _ := NewOKResponse(data)
	return resp
}

// handleWatch streams changes of one node until the client hangs up, the
// node is removed or the server stops.
func (s *Server) handleWatch(conn net.Conn, reader *bufio.Reader, payload json.RawMessage) {
	var req PathPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid watch payload: %v", err)))
		return
	}
	w, err := s.nodes.Watch(req.Path, watchBuffer)
	if err != nil {
		s.send(conn, ErrorResponseFor(err))
		return
	}
	defer s.nodes.Unwatch(w)

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	go func() {
		// Any read result means the client went away.
		io.Copy(io.Discard, reader)
		cancel()
	}()

	ok, _ := NewOKResponse(PathPayload{Path: w.Path})
	if !s.send(conn, ok) {
		return
	}
	s.logger.Debug("IPC watch started", "path", w.Path, "watch", w.ID)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("IPC watch ended", "path", w.Path, "watch", w.ID)
			return
		case change, open := <-w.C:
			if !open {
				return
			}
			resp, _ := NewOKResponse(change)
			if !s.send(conn, resp) || change.Removed {
				return
			}
		}
	}
}

func (s *Server) send(conn net.Conn, resp *Response) bool {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return false
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
		return false
	}
	return true
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// Wait blocks until every connection handler has returned.
func (s *Server) Wait() {
	s.wg.Wait()
}
