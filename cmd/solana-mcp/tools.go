package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"

	"github.com/fystack/solana-mcp/internal/mcp"
	"github.com/fystack/solana-mcp/internal/solana"
)

type ToolsCmd struct {
	Schema bool `help:"Print the input schema of every tool as JSON." name:"schema"`
}

func (c *ToolsCmd) Run() error {
	// the registry only needs a service to bind to; nothing is called
	registry := mcp.NewRegistry(solana.NewService(nil))

	if c.Schema {
		descriptors := lo.Map(registry.Tools(), func(t *mcp.Tool, _ int) mcp.ToolDescriptor {
			return t.Descriptor()
		})
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptors)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tMETHOD\tDESCRIPTION")
	for _, t := range registry.Tools() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, t.Method, t.Description)
	}
	return w.Flush()
}

type CallCmd struct {
	Tool       string `arg:"" help:"Tool name, e.g. get_balance."`
	Arguments  string `arg:"" optional:"" help:"Tool arguments as a JSON object." default:"{}"`
	ConfigPath string `help:"Path to config file (optional)." name:"config" type:"path"`
	Debug      bool   `help:"Enable debug logs." name:"debug"`
}

var errToolFailed = errors.New("tool call failed")

func (c *CallCmd) Run() error {
	cfg, err := loadConfig(c.ConfigPath, c.Debug, os.Stderr)
	if err != nil {
		return err
	}
	registry, err := mcp.NewRegistry(newService(cfg)).Filter(cfg.Server.Tools.Include, cfg.Server.Tools.Exclude)
	if err != nil {
		return err
	}

	resp, err := registry.Call(context.Background(), c.Tool, json.RawMessage(strings.TrimSpace(c.Arguments)))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.Header().Succeeded() {
		return errToolFailed
	}
	return nil
}
