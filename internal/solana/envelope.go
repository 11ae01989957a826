package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fystack/solana-mcp/internal/rpc"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Caller is the transport an operation runs over. *rpc.Client satisfies it.
type Caller interface {
	Send(ctx context.Context, method string, params []any) (*rpc.RPCResponse, error)
}

// Envelope is the status block every normalized response starts with.
// Message is also set on some successful calls to explain missing data.
type Envelope struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Error   *rpc.RPCError `json:"error,omitempty"`
}

// Header gives generic code access to the embedded envelope.
func (e *Envelope) Header() *Envelope { return e }

func (e *Envelope) Succeeded() bool { return e.Status == StatusSuccess }

// Response is implemented by every *XxxResponse through the embedded Envelope.
type Response interface {
	Header() *Envelope
}

// operation describes how one JSON-RPC method's raw result maps onto R.
type operation[R any] struct {
	method string
	// action completes "Failed to ..." for transport and decode failures.
	action string
	decode func(result json.RawMessage, out *R) error
	// onRPCError may claim an RPC error and turn it into a successful response.
	onRPCError func(rpcErr *rpc.RPCError, out *R) bool
}

// invoke runs op once and always returns a fully built response.
func invoke[R any, P interface {
	*R
	Response
}](ctx context.Context, c Caller, op operation[R], params []any) *R {
	out := new(R)
	env := P(out).Header()

	resp, err := c.Send(ctx, op.method, params)
	if err != nil {
		env.Status = StatusError
		env.Message = fmt.Sprintf("Failed to %s: %v", op.action, err)
		return out
	}

	if resp.Error != nil {
		if op.onRPCError != nil && op.onRPCError(resp.Error, out) {
			return out
		}
		env.Status = StatusError
		env.Message = "RPC error: " + resp.Error.Message
		env.Error = resp.Error
		return out
	}

	if err := op.decode(resp.Result, out); err != nil {
		*out = *new(R)
		env.Status = StatusError
		env.Message = fmt.Sprintf("Failed to %s: %v", op.action, err)
		return out
	}
	if env.Status == "" {
		env.Status = StatusSuccess
	}
	return out
}

var (
	errMissingResult = errors.New("missing result")
	errMissingValue  = errors.New("missing value")
)

// unmarshalResult decodes a result that must be present.
func unmarshalResult(raw json.RawMessage, v any) error {
	if rpc.IsNull(raw) {
		return errMissingResult
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// contextual is the {context, value} wrapper many methods reply with.
type contextual[T any] struct {
	Context *Context `json:"context"`
	Value   T        `json:"value"`
}

type Context struct {
	Slot       uint64 `json:"slot"`
	APIVersion string `json:"apiVersion,omitempty"`
}

// field decodes a bare result into the pointer field chosen by pick.
func field[R any, T any](pick func(out *R) **T) func(json.RawMessage, *R) error {
	return func(raw json.RawMessage, out *R) error {
		v := new(T)
		if err := unmarshalResult(raw, v); err != nil {
			return err
		}
		*pick(out) = v
		return nil
	}
}
