package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/solana-mcp/internal/rpc"
	"github.com/fystack/solana-mcp/internal/solana"
)

// stubCaller answers every method from a table of raw results.
type stubCaller struct {
	results map[string]string
	rpcErr  *rpc.RPCError
	calls   []string
	params  [][]any
}

func (s *stubCaller) Send(_ context.Context, method string, params []any) (*rpc.RPCResponse, error) {
	s.calls = append(s.calls, method)
	s.params = append(s.params, params)
	if s.rpcErr != nil {
		return &rpc.RPCResponse{JSONRPC: rpc.JSONRPCVersion, ID: rpc.RequestID, Error: s.rpcErr}, nil
	}
	result, ok := s.results[method]
	if !ok {
		return nil, &rpc.TransportError{Method: method, Err: errors.New("connection refused")}
	}
	return &rpc.RPCResponse{JSONRPC: rpc.JSONRPCVersion, ID: rpc.RequestID, Result: json.RawMessage(result)}, nil
}

const (
	testAddress = "So11111111111111111111111111111111111111112"
	testProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

func newTestRegistry(results map[string]string) (*Registry, *stubCaller) {
	caller := &stubCaller{results: results}
	return NewRegistry(solana.NewService(caller)), caller
}

func TestRegistryOrderAndNames(t *testing.T) {
	reg, _ := newTestRegistry(nil)

	tools := reg.Tools()
	require.Len(t, tools, 31)
	assert.Equal(t, "get_balance", tools[0].Name)
	assert.Equal(t, "get_minimum_balance_for_rent_exemption", tools[26].Name)
	assert.Equal(t, "get_recent_prioritization_fees", tools[30].Name)

	for _, tool := range tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotEmpty(t, tool.Method, tool.Name)
		assert.Equal(t, tool.Name, snakeCase(tool.Method), "tool name follows the method name")

		var schema map[string]any
		require.NoError(t, json.Unmarshal(tool.InputSchema, &schema), tool.Name)
		assert.Equal(t, "object", schema["type"], tool.Name)
		assert.Contains(t, schema, "properties", tool.Name)
		assert.NotContains(t, schema, "$ref", tool.Name)
	}
}

func snakeCase(method string) string {
	out := make([]rune, 0, len(method)+4)
	for _, r := range method {
		if r >= 'A' && r <= 'Z' {
			out = append(out, '_', r+('a'-'A'))
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

func TestInputSchema(t *testing.T) {
	reg, _ := newTestRegistry(nil)

	tool, ok := reg.Lookup("get_balance")
	require.True(t, ok)

	var schema struct {
		Properties map[string]struct {
			Type        string   `json:"type"`
			Description string   `json:"description"`
			Enum        []string `json:"enum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))

	assert.Equal(t, []string{"address"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["address"].Type)
	assert.Equal(t, "The Solana wallet address to check", schema.Properties["address"].Description)
	assert.Equal(t, []string{"processed", "confirmed", "finalized"}, schema.Properties["commitment"].Enum)

	tool, ok = reg.Lookup("get_blocks")
	require.True(t, ok)
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))
	assert.Equal(t, []string{"start_slot"}, schema.Required)
	assert.Equal(t, "integer", schema.Properties["end_slot"].Type)
}

func TestRegistryCall(t *testing.T) {
	reg, caller := newTestRegistry(map[string]string{
		"getBalance": `{"context":{"slot":1},"value":123000000000}`,
	})

	resp, err := reg.Call(context.Background(), "get_balance", json.RawMessage(`{"address":"`+testAddress+`","commitment":"confirmed"}`))
	require.NoError(t, err)

	balance, ok := resp.(*solana.BalanceResponse)
	require.True(t, ok)
	assert.Equal(t, solana.StatusSuccess, balance.Status)
	assert.Equal(t, 123.0, *balance.BalanceSOL)
	assert.Equal(t, []string{"getBalance"}, caller.calls)
	assert.Equal(t, []any{testAddress, map[string]any{"commitment": "confirmed"}}, toAny(t, caller.params[0]))
}

// toAny round trips params so typed maps compare equal to decoded JSON.
func toAny(t *testing.T, params []any) []any {
	t.Helper()
	b, err := json.Marshal(params)
	require.NoError(t, err)
	var out []any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestRegistryCallNoArgs(t *testing.T) {
	reg, _ := newTestRegistry(map[string]string{"getHealth": `"ok"`})

	for _, args := range []string{``, `null`, `{}`} {
		resp, err := reg.Call(context.Background(), "get_health", json.RawMessage(args))
		require.NoError(t, err, args)
		assert.Equal(t, solana.StatusSuccess, resp.Header().Status)
	}
}

func TestRegistryCallErrors(t *testing.T) {
	reg, caller := newTestRegistry(nil)

	_, err := reg.Call(context.Background(), "get_everything", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	tests := []struct {
		name    string
		tool    string
		args    string
		message string
	}{
		{"missing required", "get_balance", `{}`, "missing required argument(s): address"},
		{"null required", "get_block", `{"slot":null}`, "missing required argument(s): slot"},
		{"not an object", "get_balance", `["Addr1"]`, "arguments must be a JSON object"},
		{"unknown field", "get_balance", `{"address":"` + testAddress + `","wallet":"B"}`, `unknown field "wallet"`},
		{"wrong type", "get_block", `{"slot":"ten"}`, "cannot unmarshal"},
		{"bad commitment", "get_balance", `{"address":"` + testAddress + `","commitment":"latest"}`, `commitment failed "oneof"`},
		{"bad address", "get_balance", `{"address":"Addr1"}`, `address failed "solana_address"`},
		{"bad address in list", "get_multiple_accounts", `{"addresses":["` + testAddress + `","nope"]}`, `addresses[1] failed "solana_address"`},
		{"limit too large", "get_blocks_with_limit", `{"start_slot":1,"limit":500001}`, `limit failed "max" (500000)`},
		{"empty address list", "get_inflation_reward", `{"addresses":[]}`, `addresses failed "min" (1)`},
		{"bad filter", "get_program_accounts", `{"program_id":"` + testProgram + `","filters":[{}]}`, `filters[0].memcmp failed "required_without"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Call(context.Background(), tt.tool, json.RawMessage(tt.args))

			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.tool, argErr.Tool)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
	assert.Empty(t, caller.calls, "invalid arguments never reach the node")
}
