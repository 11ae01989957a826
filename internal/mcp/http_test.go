package mcp

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPServer(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	s, _ := newTestServer(results)
	mux := http.NewServeMux()
	NewHTTPHandler(s).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPHealth(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Equal(t, 31, health.Tools)
}

func TestHTTPToolCall(t *testing.T) {
	srv := newTestHTTPServer(t, map[string]string{"getBlockHeight": `250`})

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_block_height","arguments":{}}}`
	resp, err := http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var reply struct {
		Result CallToolResult `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reply))
	assert.False(t, reply.Result.IsError)
	assert.JSONEq(t, `{"status":"success","blockHeight":250}`, reply.Result.Content[0].Text)
}

func TestHTTPNotificationAccepted(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	resp, err := http.Post(srv.URL+"/mcp", "application/json", strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Empty(t, b)
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	srv := newTestHTTPServer(t, nil)

	resp, err := http.Get(srv.URL + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	var apiErr APIErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr))
	assert.Equal(t, "error", apiErr.Status)
}
