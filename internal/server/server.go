// Package server speaks the host protocol over stdio: Content-Length framed
// JSON-RPC carrying editor events in and proof views out.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"nuprlnav/internal/checker"
	"nuprlnav/internal/proof"
	"nuprlnav/internal/session"
	"nuprlnav/internal/snapcache"
	"nuprlnav/internal/source"
	"nuprlnav/internal/trace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("server exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("server exit without shutdown")
)

// Options configures a Server.
type Options struct {
	Runner  checker.Runner
	Cache   *snapcache.Cache
	Version string
	// WorkspaceRoot is used until the host sends one in initialize.
	WorkspaceRoot string
}

// Server handles stdio JSON-RPC for one editor.
type Server struct {
	in      *bufio.Reader
	out     *bufio.Writer
	sendMu  sync.Mutex
	session *session.Session
	version string

	mu                sync.Mutex
	shutdownRequested bool
}

// NewServer constructs a server reading from in and writing to out.
func NewServer(in io.Reader, out io.Writer, opts Options) *Server {
	s := &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		version: opts.Version,
	}
	s.session = session.New(session.Options{
		Runner:        opts.Runner,
		Presenter:     s,
		Editor:        s,
		Cache:         opts.Cache,
		WorkspaceRoot: opts.WorkspaceRoot,
	})
	return s
}

// Session exposes the sync controller, e.g. for a file watcher.
func (s *Server) Session() *session.Session {
	return s.session
}

// Run serves messages until exit or EOF.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(ctx, &msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, msg *rpcMessage) error {
	ctx, span := trace.Start(ctx, trace.ScopeEvent, "rpc."+msg.Method)
	defer span.End("")
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		s.mu.Lock()
		s.shutdownRequested = true
		s.mu.Unlock()
		return s.sendResponse(msg.ID, nil)
	case "exit":
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.shutdownRequested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "nuprl/didOpen":
		return s.handleDidOpen(ctx, msg)
	case "nuprl/didChange":
		return s.handleDidChange(msg)
	case "nuprl/didSave":
		return s.handleDidSave(ctx, msg)
	case "nuprl/didChangeSelection":
		return s.handleSelection(ctx, msg)
	case "reduce":
		return s.handleReduce(ctx, msg)
	case "jump_to_proof_node":
		return s.handleJump(ctx, msg)
	case "next_hole":
		s.session.NextHole(ctx)
		return s.ack(msg)
	case "previous_hole":
		s.session.PreviousHole(ctx)
		return s.ack(msg)
	case "nuprl/holes":
		return s.handleHoles(msg)
	case "nuprl/resolve":
		return s.handleResolve(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

// decodeParams unmarshals params. A failure is answered with -32602 for
// requests and logged for notifications; ok is false in both cases.
func (s *Server) decodeParams(msg *rpcMessage, v any) (ok bool, err error) {
	if len(msg.Params) == 0 {
		return true, nil
	}
	uerr := json.Unmarshal(msg.Params, v)
	if uerr == nil {
		return true, nil
	}
	if len(msg.ID) == 0 {
		s.logf("%s: invalid params: %v", msg.Method, uerr)
		return false, nil
	}
	return false, s.sendError(msg.ID, codeInvalidParams, "invalid params")
}

// ack answers a notification-style method that was sent as a request.
func (s *Server) ack(msg *rpcMessage) error {
	if len(msg.ID) == 0 {
		return nil
	}
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	root := ""
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = uriToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		s.session.SetWorkspaceRoot(root)
	}
	return s.sendResponse(msg.ID, initializeResult{ServerInfo: serverInfo{Name: "nuprlnav", Version: s.version}})
}

func (s *Server) handleDidOpen(ctx context.Context, msg *rpcMessage) error {
	var params didOpenParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	path := uriToPath(params.URI)
	if path == "" {
		return nil
	}
	var pos source.Position
	if params.Position != nil {
		pos = params.Position.source()
	}
	if err := s.session.Open(ctx, session.Document{Path: path, Text: params.Text, Version: params.Version}, pos); err != nil {
		s.logf("check %s: %v", path, err)
	}
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	s.session.Change(session.Document{Path: uriToPath(params.URI), Text: params.Text, Version: params.Version})
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, msg *rpcMessage) error {
	var params didSaveParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	text := ""
	if params.Text != nil {
		text = *params.Text
	}
	path := uriToPath(params.URI)
	if err := s.session.Save(ctx, path, text); err != nil {
		s.logf("check %s: %v", path, err)
	}
	return nil
}

func (s *Server) handleSelection(ctx context.Context, msg *rpcMessage) error {
	var params selectionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	s.session.Select(ctx, uriToPath(params.URI), params.Position.source())
	return nil
}

func (s *Server) handleReduce(ctx context.Context, msg *rpcMessage) error {
	var params reduceParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	if _, err := s.session.Reduce(ctx, params.Expr, params.MaxSteps); err != nil {
		s.logf("reduce: %v", err)
	}
	return s.ack(msg)
}

func (s *Server) handleJump(ctx context.Context, msg *rpcMessage) error {
	var params jumpParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	if params.ObjID == nil || params.NodeID == nil {
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeInvalidParams, "objId and nodeId are required")
		}
		return nil
	}
	s.session.JumpToNode(ctx, proof.ObjectID(source.Clamp(*params.ObjID)), proof.NodeID(source.Clamp(*params.NodeID)))
	return s.ack(msg)
}

func (s *Server) handleHoles(msg *rpcMessage) error {
	var params uriParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	spans, _ := s.session.Holes(uriToPath(params.URI))
	items := make([]holeItem, 0, len(spans))
	for _, sp := range spans {
		items = append(items, holeItem{Range: rangeOf(sp)})
	}
	return s.sendResponse(msg.ID, items)
}

func (s *Server) handleResolve(msg *rpcMessage) error {
	var params selectionParams
	if ok, err := s.decodeParams(msg, &params); !ok {
		return err
	}
	return s.sendResponse(msg.ID, s.session.ViewAt(uriToPath(params.URI), params.Position.source()))
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	if len(id) == 0 {
		return nil
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) notify(method string, params any) {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	if err := s.send(msg); err != nil {
		s.logf("failed to send %s: %v", method, err)
	}
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func (s *Server) logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "nuprlnav: "+format+"\n", args...)
}
