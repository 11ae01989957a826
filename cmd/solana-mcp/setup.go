package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fystack/solana-mcp/internal/rpc"
	"github.com/fystack/solana-mcp/internal/solana"
	"github.com/fystack/solana-mcp/pkg/common/config"
	"github.com/fystack/solana-mcp/pkg/common/logger"
	"github.com/fystack/solana-mcp/pkg/events"
	"github.com/fystack/solana-mcp/pkg/infra"
	"github.com/fystack/solana-mcp/pkg/ratelimiter"
)

// loadConfig loads configuration and initialises the process logger.
func loadConfig(path string, debug bool, logWriter io.Writer) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{
		Level:      level,
		Writer:     logWriter,
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

func newService(cfg *config.Config) *solana.Service {
	var limiter *ratelimiter.RateLimiter
	if cfg.Solana.RateLimit.RPS > 0 {
		limiter = ratelimiter.New(cfg.Solana.RateLimit.RPS, cfg.Solana.RateLimit.Burst)
	}

	client := rpc.NewClient(rpc.ClientConfig{
		URL:        cfg.Solana.RPCURL,
		Timeout:    cfg.Solana.Timeout,
		MaxRetries: cfg.Solana.Retries(),
		RetryDelay: cfg.Solana.RetryDelay,
		Auth:       cfg.Solana.Auth,
		Limiter:    limiter,
	})
	logger.Info("Solana RPC client ready",
		"url", client.URL(),
		"timeout", cfg.Solana.Timeout,
		"max_retries", cfg.Solana.Retries(),
		"rps", cfg.Solana.RateLimit.RPS,
	)
	return solana.NewService(client)
}

// newEmitter connects to NATS when configured. A nil emitter disables
// audit events.
func newEmitter(ctx context.Context, cfg config.NatsConfig) (events.Emitter, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	nc, err := infra.GetNATSConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	queue := infra.NewNATSQueue(nc)
	if cfg.Stream != "" {
		queue, err = infra.NewStreamQueue(ctx, nc, cfg.Stream, []string{cfg.SubjectPrefix + ".>"})
		if err != nil {
			nc.Close()
			return nil, err
		}
	}
	logger.Info("Publishing tool call events", "nats", nc.ConnectedUrl(), "subject", events.Subject(cfg.SubjectPrefix, events.ToolCallEventType), "stream", cfg.Stream)
	return events.NewEmitter(queue, cfg.SubjectPrefix), nil
}
