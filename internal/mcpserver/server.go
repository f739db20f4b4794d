// Package mcpserver exposes the renderer to programmatic collaborators over
// the Model Context Protocol (stdio transport).
package mcpserver

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/itchyny/gojq"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bnomei/nereid-sub000/internal/model"
)

// Deps holds what a Server needs.
type Deps struct {
	// Diagram is the path used when a tool call does not name one.
	Diagram string
	Options model.RenderOptions
	Logger  *slog.Logger
	Version string
}

// Server wraps an MCP server with the nereid tool handlers.
type Server struct {
	diagram   string
	opts      model.RenderOptions
	logger    *slog.Logger
	mcpServer *server.MCPServer

	mu    sync.RWMutex
	codes map[string]*gojq.Code
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		diagram: deps.Diagram,
		opts:    deps.Options,
		logger:  logger,
		codes:   make(map[string]*gojq.Code),
	}

	mcpSrv := server.NewMCPServer(
		"nereid",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("nereid renders sequence diagrams to Unicode text. Use nereid.render_text for the picture, nereid.render_index for the text plus every object's cell spans, nereid.query to filter that document with jq, and nereid.object_spans to look up one object reference."),
	)
	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve runs the stdio transport until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying server for tests or other transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: renderTextTool(), Handler: s.handleRenderText},
		{Tool: renderIndexTool(), Handler: s.handleRenderIndex},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: objectSpansTool(), Handler: s.handleObjectSpans},
	}
}

func pathOption() mcp.ToolOption {
	return mcp.WithString("path", mcp.Description("Diagram file (JSON or YAML). Defaults to the configured diagram."))
}

func renderTextTool() mcp.Tool {
	return mcp.NewTool("nereid.render_text",
		mcp.WithDescription("Render a sequence diagram to Unicode text"),
		pathOption(),
	)
}

func renderIndexTool() mcp.Tool {
	return mcp.NewTool("nereid.render_index",
		mcp.WithDescription("Render a sequence diagram and return text, size and highlight index"),
		pathOption(),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("nereid.query",
		mcp.WithDescription("Apply a jq filter to the rendered diagram document"),
		mcp.WithString("filter", mcp.Required(), mcp.Description("jq filter, e.g. .index[].ref")),
		pathOption(),
	)
}

func objectSpansTool() mcp.Tool {
	return mcp.NewTool("nereid.object_spans",
		mcp.WithDescription("Return the cell spans of one object reference"),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Object reference, e.g. d:demo/seq/message/m1")),
		pathOption(),
	)
}
