package tool

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"
)

// MCPArgument is the single string argument every published tool takes.
const MCPArgument = "name"

// NewMCPServer publishes every tool of registry on a new MCP server.
// Serve it with server.ServeStdio or a streamable HTTP server.
func NewMCPServer(registry *Registry, version string, logger *slog.Logger) (*server.MCPServer, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "mcp-server")

	srv := server.NewMCPServer("namescan", version, server.WithToolCapabilities(false))
	for _, t := range registry.Tools() {
		srv.AddTool(mcp.NewTool(t.Name(),
			mcp.WithDescription(t.Description()),
			mcp.WithString(MCPArgument, mcp.Required(), mcp.Description("Name to search for")),
		), mcpHandler(t, logger))
	}
	return srv, nil
}

func mcpHandler(t Tool, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input := cast.ToString(req.GetArguments()[MCPArgument])

		result, err := t.Invoke(ctx, input)
		if err != nil {
			logger.Error("tool invocation failed", "tool", t.Name(), "err", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		text, err := Encode(result)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(text), nil
	}
}
