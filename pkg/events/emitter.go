package events

import (
	"context"
	"encoding/json"
	mathrand "math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/fystack/solana-mcp/pkg/infra"
)

const (
	ToolCallEventType = "tool_call"
)

// ToolCallEvent records one served tool call. Arguments are not included.
type ToolCallEvent struct {
	Tool       string `json:"tool"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type Emitter interface {
	EmitToolCall(ctx context.Context, call ToolCallEvent) error
	Emit(ctx context.Context, event Event) error
	Close()
}

type emitter struct {
	queue         infra.MessageQueue
	subjectPrefix string
	now           func() time.Time

	entropyMu sync.Mutex
	entropy   *ulid.MonotonicEntropy
}

func NewEmitter(queue infra.MessageQueue, subjectPrefix string) Emitter {
	return &emitter{
		queue:         queue,
		subjectPrefix: subjectPrefix,
		now:           time.Now,
		entropy:       ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0),
	}
}

// newID returns a ULID; it doubles as the JetStream dedup key.
func (e *emitter) newID(at time.Time) string {
	e.entropyMu.Lock()
	defer e.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), e.entropy).String()
}

// Subject is where events of eventType are published under prefix.
func Subject(prefix, eventType string) string {
	return prefix + "." + eventType
}

func (e *emitter) EmitToolCall(ctx context.Context, call ToolCallEvent) error {
	now := e.now().UTC()
	return e.Emit(ctx, Event{
		ID:        e.newID(now),
		Type:      ToolCallEventType,
		Data:      call,
		Timestamp: now.Unix(),
	})
}

func (e *emitter) Emit(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var opts *infra.EnqueueOptions
	if event.ID != "" {
		opts = &infra.EnqueueOptions{IdempotentKey: event.ID}
	}
	return e.queue.Enqueue(ctx, Subject(e.subjectPrefix, event.Type), data, opts)
}

func (e *emitter) Close() {
	if e.queue != nil {
		e.queue.Close()
	}
}
