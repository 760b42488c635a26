// pattern: Imperative Shell

package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	toolOpenProject = "openProject"
	toolOpenMethod  = "openMethod"

	appPathDescription = "Optional absolute path to 4D.app. If omitted, the server searches for the application by bundle id."
)

func openProjectTool() mcp.Tool {
	return mcp.NewTool(toolOpenProject,
		mcp.WithDescription("Open a 4D project (.4DProject) in the 4D application."),
		mcp.WithString("projectPath",
			mcp.Required(),
			mcp.Description("Path to the .4DProject file."),
		),
		mcp.WithString("appPath",
			mcp.Description(appPathDescription),
		),
	)
}

func openMethodTool() mcp.Tool {
	return mcp.NewTool(toolOpenMethod,
		mcp.WithDescription("Open one or more 4D method files (.4dm) in the 4D application."),
		mcp.WithArray("methodPaths",
			mcp.Required(),
			mcp.Description("Paths to .4dm files, opened in order."),
			mcp.WithStringItems(),
			mcp.MinItems(1),
		),
		mcp.WithString("appPath",
			mcp.Description(appPathDescription),
		),
	)
}

func (s *Server) handleOpenProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath, err := req.RequireString("projectPath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	appPath := req.GetString("appPath", "")

	s.logger.Debug("tool called", "tool", toolOpenProject, "projectPath", projectPath, "appPath", appPath)
	msg, err := s.launcher.OpenProject(ctx, projectPath, appPath)
	return s.result(toolOpenProject, msg, err), nil
}

func (s *Server) handleOpenMethod(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	methodPaths, err := req.RequireStringSlice("methodPaths")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	appPath := req.GetString("appPath", "")

	s.logger.Debug("tool called", "tool", toolOpenMethod, "methodPaths", methodPaths, "appPath", appPath)
	msg, err := s.launcher.OpenMethod(ctx, methodPaths, appPath)
	return s.result(toolOpenMethod, msg, err), nil
}

// result turns a launcher outcome into a tool result. Failures are
// reported to the client as error results carrying the message verbatim.
func (s *Server) result(tool, msg string, err error) *mcp.CallToolResult {
	if err != nil {
		s.logger.Warn("tool failed", "tool", tool, "error", err)
		return mcp.NewToolResultError(err.Error())
	}
	s.logger.Info("tool succeeded", "tool", tool)
	return mcp.NewToolResultText(msg)
}
