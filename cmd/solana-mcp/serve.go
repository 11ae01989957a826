package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fystack/solana-mcp/internal/mcp"
	"github.com/fystack/solana-mcp/pkg/common/logger"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	ConfigPath string `help:"Path to config file (optional)." name:"config" type:"path"`
	Stdio      bool   `help:"Serve newline-delimited JSON-RPC on stdin/stdout instead of HTTP." name:"stdio"`
	Debug      bool   `help:"Enable debug logs." name:"debug"`
}

func (c *ServeCmd) Run() error {
	// stdout carries protocol frames in stdio mode
	logWriter := os.Stdout
	if c.Stdio {
		logWriter = os.Stderr
	}
	cfg, err := loadConfig(c.ConfigPath, c.Debug, logWriter)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []mcp.Option{mcp.WithVersion(version)}
	emitter, err := newEmitter(ctx, cfg.Nats)
	if err != nil {
		return err
	}
	if emitter != nil {
		defer emitter.Close()
		opts = append(opts, mcp.WithEmitter(emitter))
	}

	registry, err := mcp.NewRegistry(newService(cfg)).Filter(cfg.Server.Tools.Include, cfg.Server.Tools.Exclude)
	if err != nil {
		return err
	}
	server := mcp.NewServer(registry, opts...)

	if c.Stdio {
		logger.Info("Serving MCP on stdio", "tools", len(server.Registry().Tools()))
		err := server.ServeStdio(ctx, os.Stdin, os.Stdout)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return serveHTTP(ctx, cfg.Server.Addr(), server)
}

func serveHTTP(ctx context.Context, addr string, server *mcp.Server) error {
	mux := http.NewServeMux()
	mcp.NewHTTPHandler(server).Register(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("MCP server listening", "addr", addr, "endpoint", "/mcp", "tools", len(server.Registry().Tools()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// gctx is also done when ListenAndServe fails
		<-gctx.Done()
		logger.Info("Shutting down MCP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("MCP server stopped")
	return nil
}
