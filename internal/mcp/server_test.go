package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/solana-mcp/internal/rpc"
	"github.com/fystack/solana-mcp/internal/solana"
	"github.com/fystack/solana-mcp/pkg/events"
)

type recordingEmitter struct {
	calls []events.ToolCallEvent
	err   error
}

func (e *recordingEmitter) EmitToolCall(_ context.Context, call events.ToolCallEvent) error {
	e.calls = append(e.calls, call)
	return e.err
}

func (e *recordingEmitter) Emit(context.Context, events.Event) error { return e.err }

func (e *recordingEmitter) Close() {}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(results map[string]string, opts ...Option) (*Server, *stubCaller) {
	reg, caller := newTestRegistry(results)
	opts = append([]Option{WithLogger(quietLogger()), WithVersion("1.2.3")}, opts...)
	return NewServer(reg, opts...), caller
}

func handle(t *testing.T, s *Server, msg string) map[string]any {
	t.Helper()
	reply := s.Handle(context.Background(), []byte(msg))
	require.NotNil(t, reply, "expected a reply to %s", msg)
	var out map[string]any
	require.NoError(t, json.Unmarshal(reply, &out))
	return out
}

func errorCode(t *testing.T, reply map[string]any) int {
	t.Helper()
	e, ok := reply["error"].(map[string]any)
	require.True(t, ok, "expected an error reply, got %v", reply)
	return int(e["code"].(float64))
}

func TestInitialize(t *testing.T) {
	s, _ := newTestServer(nil)

	reply := handle(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"inspector","version":"0.1"}}}`)

	assert.Equal(t, float64(1), reply["id"])
	result := reply["result"].(map[string]any)
	assert.Equal(t, "2025-03-26", result["protocolVersion"])
	assert.Equal(t, map[string]any{"name": "solana-mcp", "version": "1.2.3"}, result["serverInfo"])
	assert.Contains(t, result["capabilities"], "tools")

	reply = handle(t, s, `{"jsonrpc":"2.0","id":"a","method":"initialize"}`)
	assert.Equal(t, "a", reply["id"])
	assert.Equal(t, LatestProtocolVersion, reply["result"].(map[string]any)["protocolVersion"])
}

func TestNotificationsGetNoReply(t *testing.T) {
	s, _ := newTestServer(nil)

	assert.Nil(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	assert.Nil(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"notifications/cancelled","params":{"requestId":1}}`)))
	assert.Nil(t, s.Handle(context.Background(), []byte(`{"jsonrpc":"2.0","method":"ping"}`)))
}

func TestPing(t *testing.T) {
	s, _ := newTestServer(nil)

	reply := handle(t, s, `{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	assert.Equal(t, map[string]any{}, reply["result"])
}

func TestListTools(t *testing.T) {
	s, _ := newTestServer(nil)

	reply := handle(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)

	tools := reply["result"].(map[string]any)["tools"].([]any)
	require.Len(t, tools, len(s.Registry().Tools()))
	first := tools[0].(map[string]any)
	assert.Equal(t, "get_balance", first["name"])
	assert.Equal(t, "Get the SOL balance for a Solana wallet address.", first["description"])
	assert.Equal(t, "object", first["inputSchema"].(map[string]any)["type"])
}

func TestCallTool(t *testing.T) {
	emitter := &recordingEmitter{}
	s, _ := newTestServer(map[string]string{
		"getBalance": `{"context":{"slot":1},"value":123000000000}`,
	}, WithEmitter(emitter))

	reply := handle(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_balance","arguments":{"address":"`+testAddress+`"}}}`)

	result := reply["result"].(map[string]any)
	assert.Equal(t, false, result["isError"])
	content := result["content"].([]any)
	require.Len(t, content, 1)
	text := content[0].(map[string]any)["text"].(string)
	assert.JSONEq(t, `{"status":"success","address":"`+testAddress+`","balance_lamports":123000000000,"balance_sol":123}`, text)
	assert.Equal(t, "success", result["structuredContent"].(map[string]any)["status"])

	require.Len(t, emitter.calls, 1)
	assert.Equal(t, "get_balance", emitter.calls[0].Tool)
	assert.Equal(t, "getBalance", emitter.calls[0].Method)
	assert.Equal(t, "success", emitter.calls[0].Status)
}

func TestCallToolReportsNodeErrors(t *testing.T) {
	emitter := &recordingEmitter{err: errors.New("nats down")}
	s, caller := newTestServer(nil, WithEmitter(emitter))
	caller.rpcErr = &rpc.RPCError{Code: -32004, Message: "Block not available for slot 5"}

	reply := handle(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_block_time","arguments":{"slot":5}}}`)

	result := reply["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])
	structured := result["structuredContent"].(map[string]any)
	assert.Equal(t, "RPC error: Block not available for slot 5", structured["message"])
	assert.Equal(t, map[string]any{"code": float64(-32004), "message": "Block not available for slot 5"}, structured["error"])
	require.Len(t, emitter.calls, 1, "emitter failures do not fail the call")
	assert.Equal(t, "error", emitter.calls[0].Status)
}

func TestCallToolTransportFailure(t *testing.T) {
	s, _ := newTestServer(nil)

	reply := handle(t, s, `{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"get_genesis_hash"}}`)

	result := reply["result"].(map[string]any)
	assert.Equal(t, true, result["isError"])
	assert.Equal(t, "Failed to get genesis hash: connection refused", result["structuredContent"].(map[string]any)["message"])
}

func TestProtocolErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		code int
	}{
		{"parse error", `{"jsonrpc":`, ParseError},
		{"batch", `[{"jsonrpc":"2.0","id":1,"method":"ping"}]`, InvalidRequest},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, InvalidRequest},
		{"missing method", `{"jsonrpc":"2.0","id":1}`, InvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, MethodNotFound},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_everything"}}`, InvalidParams},
		{"missing tool name", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{}}`, InvalidParams},
		{"invalid arguments", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_balance","arguments":{}}}`, InvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, caller := newTestServer(nil)

			reply := handle(t, s, tt.msg)

			assert.Equal(t, tt.code, errorCode(t, reply))
			assert.Empty(t, caller.calls)
		})
	}
}

func TestToolResult(t *testing.T) {
	healthy := false
	resp := &solana.HealthResponse{
		Envelope: solana.Envelope{Status: solana.StatusSuccess, Message: "Node is unhealthy"},
		Healthy:  &healthy,
	}

	result, err := ToolResult(resp)
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.JSONEq(t, `{"status":"success","message":"Node is unhealthy","healthy":false}`, result.Content[0].Text)
	assert.Same(t, resp, result.StructuredContent)
}
