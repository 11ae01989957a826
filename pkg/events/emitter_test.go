package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fystack/solana-mcp/pkg/infra"
)

type enqueued struct {
	topic   string
	message []byte
	options *infra.EnqueueOptions
}

type fakeQueue struct {
	msgs   []enqueued
	err    error
	closed bool
}

func (q *fakeQueue) Enqueue(_ context.Context, topic string, message []byte, options *infra.EnqueueOptions) error {
	if q.err != nil {
		return q.err
	}
	q.msgs = append(q.msgs, enqueued{topic: topic, message: message, options: options})
	return nil
}

func (q *fakeQueue) Close() { q.closed = true }

func TestEmitToolCall(t *testing.T) {
	q := &fakeQueue{}
	e := NewEmitter(q, "solana_mcp").(*emitter)
	at := time.Unix(1_700_000_000, 5)
	e.now = func() time.Time { return at }

	err := e.EmitToolCall(context.Background(), ToolCallEvent{
		Tool:       "get_balance",
		Method:     "getBalance",
		Status:     "success",
		DurationMs: 12,
	})
	require.NoError(t, err)
	require.Len(t, q.msgs, 1)

	msg := q.msgs[0]
	assert.Equal(t, "solana_mcp.tool_call", msg.topic)
	require.NotNil(t, msg.options)

	var got struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		Timestamp int64           `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.message, &got))
	assert.Equal(t, msg.options.IdempotentKey, got.ID)
	id, err := ulid.Parse(got.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), id.Time())
	assert.Equal(t, "tool_call", got.Type)
	assert.Equal(t, int64(1_700_000_000), got.Timestamp)
	assert.JSONEq(t, `{"tool":"get_balance","method":"getBalance","status":"success","duration_ms":12}`, string(got.Data))
}

func TestEmitWithoutID(t *testing.T) {
	q := &fakeQueue{}
	e := NewEmitter(q, "audit")

	require.NoError(t, e.Emit(context.Background(), Event{Type: "startup", Data: map[string]string{"version": "dev"}}))

	require.Len(t, q.msgs, 1)
	assert.Equal(t, "audit.startup", q.msgs[0].topic)
	assert.Nil(t, q.msgs[0].options)

	var got Event
	require.NoError(t, json.Unmarshal(q.msgs[0].message, &got))
	assert.Equal(t, "startup", got.Type)
}

func TestEmitPropagatesQueueError(t *testing.T) {
	e := NewEmitter(&fakeQueue{err: errors.New("nats: connection closed")}, "audit")

	err := e.EmitToolCall(context.Background(), ToolCallEvent{Tool: "get_health"})
	assert.EqualError(t, err, "nats: connection closed")
}

func TestClose(t *testing.T) {
	q := &fakeQueue{}
	NewEmitter(q, "audit").Close()
	assert.True(t, q.closed)
}

func TestToolCallIDsAreUniqueAndOrdered(t *testing.T) {
	q := &fakeQueue{}
	e := NewEmitter(q, "audit")

	for i := 0; i < 50; i++ {
		require.NoError(t, e.EmitToolCall(context.Background(), ToolCallEvent{Tool: "get_slot"}))
	}

	prev := ""
	for _, m := range q.msgs {
		id := m.options.IdempotentKey
		assert.Greater(t, id, prev)
		prev = id
	}
}
