// Package main hosts the contextslicer engine over the Model Context
// Protocol so an external coding agent can request a context bundle without
// shelling out to the contextslicer CLI.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/contextslicer/contextslicer/internal/buildinfo"
	"github.com/contextslicer/contextslicer/internal/mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "contextslicer-mcp",
		Version: buildinfo.Version,
	}, nil)

	mcpserver.Register(server)

	slog.Info("contextslicer-mcp starting", "transport", "stdio")
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
