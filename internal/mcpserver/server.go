// pattern: Imperative Shell

// Package mcpserver exposes the launch operations as tools over the
// Model Context Protocol stdio transport.
package mcpserver

import (
	"context"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"fourddev/internal/logging"
)

// DefaultName is the server name announced to clients.
const DefaultName = "4d-dev"

// Launcher is the subset of launch.Service the tools call.
type Launcher interface {
	OpenProject(ctx context.Context, projectPath, appPath string) (string, error)
	OpenMethod(ctx context.Context, methodPaths []string, appPath string) (string, error)
}

// Server wraps an MCP server with the openProject and openMethod tools.
type Server struct {
	mcp      *server.MCPServer
	launcher Launcher
	logger   *logging.ScopedLogger
}

// New creates a tool server named name. An empty name uses DefaultName.
// logProvider must implement logging.LoggerProvider (both *logging.Manager
// and *logging.TestLogManager satisfy this interface).
func New(name, version string, launcher Launcher, logProvider logging.LoggerProvider) *Server {
	if name == "" {
		name = DefaultName
	}

	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		launcher: launcher,
		logger:   logProvider.For("mcp"),
	}

	s.mcp.AddTool(openProjectTool(), s.handleOpenProject)
	s.mcp.AddTool(openMethodTool(), s.handleOpenMethod)

	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks the protocol over in and out until in is exhausted or ctx
// is cancelled. Out carries protocol frames only; diagnostics go to the
// log file.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(s.logger.StdLogger())

	s.logger.Info("tool server started")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tool server: %w", err)
	}
	s.logger.Info("tool server stopped")
	return nil
}
