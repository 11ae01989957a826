package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/fystack/solana-mcp/pkg/common/logger"
)

var MaxMsgSize int32 = 64 * 1024 // 64KB

// MessageQueue is the publish side the audit emitter writes to.
type MessageQueue interface {
	Enqueue(ctx context.Context, topic string, message []byte, options *EnqueueOptions) error
	Close()
}

type EnqueueOptions struct {
	IdempotentKey string
}

// natsQueue publishes fire-and-forget on core NATS.
type natsQueue struct {
	nc *nats.Conn
}

func NewNATSQueue(nc *nats.Conn) MessageQueue {
	return &natsQueue{nc: nc}
}

func (q *natsQueue) Enqueue(_ context.Context, topic string, message []byte, options *EnqueueOptions) error {
	msg := &nats.Msg{Subject: topic, Data: message, Header: header(options)}
	if err := q.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("error enqueueing message: %w", err)
	}
	return nil
}

func (q *natsQueue) Close() {
	if q.nc != nil {
		_ = q.nc.Drain()
	}
}

// streamQueue publishes into a JetStream stream and waits for the ack.
type streamQueue struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewStreamQueue creates or updates streamName to capture subjects and
// returns a queue publishing into it.
func NewStreamQueue(ctx context.Context, nc *nats.Conn, streamName string, subjects []string) (MessageQueue, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: "Stream for " + streamName,
		Subjects:    subjects,
		MaxMsgSize:  MaxMsgSize,
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("create JetStream stream %s: %w", streamName, err)
	}
	logger.Info("JetStream stream ready", "stream", streamName, "subjects", subjects)

	return &streamQueue{nc: nc, js: js}, nil
}

func (q *streamQueue) Enqueue(ctx context.Context, topic string, message []byte, options *EnqueueOptions) error {
	_, err := q.js.PublishMsg(ctx, &nats.Msg{
		Subject: topic,
		Data:    message,
		Header:  header(options),
	})
	if err != nil {
		return fmt.Errorf("error enqueueing message: %w", err)
	}
	return nil
}

func (q *streamQueue) Close() {
	if q.nc != nil {
		_ = q.nc.Drain()
	}
}

func header(options *EnqueueOptions) nats.Header {
	h := nats.Header{}
	if options != nil && options.IdempotentKey != "" {
		h.Set(jetstream.MsgIDHeader, options.IdempotentKey)
	}
	return h
}
