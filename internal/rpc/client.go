package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fystack/solana-mcp/pkg/common/logger"
	"github.com/fystack/solana-mcp/pkg/ratelimiter"
	"github.com/fystack/solana-mcp/pkg/retry"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = retry.DefaultInterval
	maxErrorBody      = 512

	throttleLogThreshold = 50 * time.Millisecond
)

type ClientConfig struct {
	URL        string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Auth       *AuthConfig
	Limiter    *ratelimiter.RateLimiter
}

// Client posts JSON-RPC 2.0 requests to a single Solana endpoint. It holds
// no per-call state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	url        string
	auth       *AuthConfig
	limiter    *ratelimiter.RateLimiter
	maxRetries int
	retryDelay time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        strings.TrimSuffix(cfg.URL, "/"),
		auth:       cfg.Auth,
		limiter:    cfg.Limiter,
		maxRetries: cfg.MaxRetries,
		retryDelay: delay,
	}
}

func (c *Client) URL() string { return c.url }

// Send performs one logical JSON-RPC call and returns the decoded response
// verbatim, including any error member. Only transport failures are
// returned as errors, always as *TransportError.
func (c *Client) Send(ctx context.Context, method string, params []any) (*RPCResponse, error) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(RPCRequest{
		JSONRPC: JSONRPCVersion,
		ID:      RequestID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("marshal request: %w", err)}
	}

	var resp *RPCResponse
	err = retry.Exponential(ctx, func() error {
		r, err := c.post(ctx, method, body)
		if err != nil {
			if te, ok := err.(*TransportError); ok && !te.retryable() {
				return retry.Permanent(te)
			}
			return err
		}
		resp = r
		return nil
	}, retry.ExponentialConfig{
		InitialInterval: c.retryDelay,
		MaxRetries:      c.maxRetries,
		OnRetry: func(err error, next time.Duration) {
			logger.Warn("RPC call failed, retrying", "method", method, "next", next, "err", err)
		},
	})
	if err != nil {
		if IsTransportError(err) {
			return nil, err
		}
		// context cancellation surfaced by the retry loop
		return nil, &TransportError{Method: method, Err: err}
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, method string, body []byte) (*RPCResponse, error) {
	if c.limiter != nil {
		waited, err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, &TransportError{Method: method, Err: fmt.Errorf("rate limit: %w", err)}
		}
		if waited > throttleLogThreshold {
			logger.Debug("Throttled Solana RPC call", "method", method, "waited", waited)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth.apply(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	logger.Debug("RPC request completed", "method", method, "url", c.url, "status", resp.StatusCode, "elapsed", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response from %s: %s", c.url, truncate(data, maxErrorBody)),
		}
	}

	var rpcResp RPCResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, retry.Permanent(&TransportError{Method: method, Err: fmt.Errorf("unmarshal RPC response: %w", err)})
	}
	return &rpcResp, nil
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
