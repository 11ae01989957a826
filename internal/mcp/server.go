package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fystack/solana-mcp/internal/solana"
	"github.com/fystack/solana-mcp/pkg/common/logger"
	"github.com/fystack/solana-mcp/pkg/events"
)

const ServerName = "solana-mcp"

// Server answers MCP JSON-RPC messages. It is transport agnostic: HTTP and
// stdio both feed raw messages into Handle.
type Server struct {
	registry *Registry
	emitter  events.Emitter
	info     Implementation
	log      *slog.Logger
}

type Option func(*Server)

// WithEmitter publishes an audit event after every tool call.
func WithEmitter(e events.Emitter) Option {
	return func(s *Server) { s.emitter = e }
}

func WithVersion(version string) Option {
	return func(s *Server) { s.info.Version = version }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

func NewServer(registry *Registry, opts ...Option) *Server {
	s := &Server{
		registry: registry,
		info:     Implementation{Name: ServerName, Version: "dev"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.With("component", "mcp")
	}
	return s
}

func (s *Server) Registry() *Registry { return s.registry }

// Handle processes one JSON-RPC message and returns the encoded reply, or
// nil when the message is a notification.
func (s *Server) Handle(ctx context.Context, msg []byte) []byte {
	msg = bytes.TrimSpace(msg)
	if len(msg) > 0 && msg[0] == '[' {
		return encode(errorResponse(nil, InvalidRequest, "batch requests are not supported"))
	}

	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return encode(errorResponse(nil, ParseError, "parse error: "+err.Error()))
	}
	if req.JSONRPC != JSONRPCVersion || req.Method == "" {
		if req.IsNotification() {
			return nil
		}
		return encode(errorResponse(req.ID, InvalidRequest, "invalid request"))
	}

	result, rpcErr := s.dispatch(ctx, &req)
	if req.IsNotification() {
		return nil
	}
	if rpcErr != nil {
		return encode(errorResponse(req.ID, rpcErr.Code, rpcErr.Message))
	}
	return encode(&Response{JSONRPC: JSONRPCVersion, ID: req.ID, Result: result})
}

func (s *Server) dispatch(ctx context.Context, req *Request) (any, *Error) {
	switch req.Method {
	case MethodInitialize:
		return s.initialize(req.Params)
	case MethodPing:
		return struct{}{}, nil
	case MethodToolsList:
		return s.listTools(), nil
	case MethodToolsCall:
		return s.callTool(ctx, req.Params)
	default:
		if strings.HasPrefix(req.Method, notificationPrefix) {
			return nil, nil
		}
		return nil, &Error{Code: MethodNotFound, Message: "method not found: " + req.Method}
	}
}

func (s *Server) initialize(raw json.RawMessage) (any, *Error) {
	var params InitializeParams
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return nil, &Error{Code: InvalidParams, Message: "invalid initialize params: " + err.Error()}
		}
	}
	version := params.ProtocolVersion
	if version == "" {
		version = LatestProtocolVersion
	}
	if params.ClientInfo != nil {
		s.log.Info("Client connected", "client", params.ClientInfo.Name, "version", params.ClientInfo.Version, "protocol", version)
	}
	return &InitializeResult{
		ProtocolVersion: version,
		Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
		ServerInfo:      s.info,
	}, nil
}

func (s *Server) listTools() *ListToolsResult {
	return &ListToolsResult{Tools: lo.Map(s.registry.Tools(), func(t *Tool, _ int) ToolDescriptor {
		return t.Descriptor()
	})}
}

func (s *Server) callTool(ctx context.Context, raw json.RawMessage) (any, *Error) {
	var params CallToolParams
	if err := json.Unmarshal(raw, &params); err != nil || params.Name == "" {
		return nil, &Error{Code: InvalidParams, Message: "tools/call requires a tool name"}
	}
	tool, ok := s.registry.Lookup(params.Name)
	if !ok {
		return nil, &Error{Code: InvalidParams, Message: fmt.Sprintf("%v: %s", ErrUnknownTool, params.Name)}
	}

	start := time.Now()
	resp, err := tool.Call(ctx, params.Arguments)
	if err != nil {
		var argErr *ArgumentError
		if errors.As(err, &argErr) {
			return nil, &Error{Code: InvalidParams, Message: argErr.Error()}
		}
		return nil, &Error{Code: InternalError, Message: err.Error()}
	}
	elapsed := time.Since(start)

	env := resp.Header()
	s.log.Info("Tool call", "tool", tool.Name, "status", env.Status, "duration", elapsed)
	s.audit(ctx, tool, env, elapsed)

	result, err := ToolResult(resp)
	if err != nil {
		return nil, &Error{Code: InternalError, Message: err.Error()}
	}
	return result, nil
}

// ToolResult wraps a normalized response for MCP: the JSON text as
// content and the same object as structured content.
func ToolResult(resp solana.Response) (*CallToolResult, error) {
	text, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &CallToolResult{
		Content:           []Content{{Type: "text", Text: string(text)}},
		StructuredContent: resp,
		IsError:           resp.Header().Status == solana.StatusError,
	}, nil
}

func (s *Server) audit(ctx context.Context, tool *Tool, env *solana.Envelope, elapsed time.Duration) {
	if s.emitter == nil {
		return
	}
	err := s.emitter.EmitToolCall(ctx, events.ToolCallEvent{
		Tool:       tool.Name,
		Method:     tool.Method,
		Status:     env.Status,
		Message:    env.Message,
		DurationMs: elapsed.Milliseconds(),
	})
	if err != nil {
		s.log.Warn("Failed to emit tool call event", "tool", tool.Name, "err", err)
	}
}

func errorResponse(id json.RawMessage, code int, message string) *Response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &Response{JSONRPC: JSONRPCVersion, ID: id, Error: &Error{Code: code, Message: message}}
}

func encode(resp *Response) []byte {
	b, err := json.Marshal(resp)
	if err != nil {
		// only reachable with an unencodable result
		b, _ = json.Marshal(errorResponse(resp.ID, InternalError, err.Error()))
	}
	return b
}
