package main

import (
	"github.com/alecthomas/kong"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type CLI struct {
	Serve ServeCmd `cmd:"" help:"Run the MCP server over HTTP or stdio."`
	Tools ToolsCmd `cmd:"" help:"List the tools the server exposes."`
	Call  CallCmd  `cmd:"" help:"Call one tool against the configured node and print the response."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("solana-mcp"),
		kong.Description("Solana JSON-RPC tools for MCP clients."),
		kong.UsageOnError(),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
