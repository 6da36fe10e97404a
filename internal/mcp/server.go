// Package mcp exposes the refactoring engine over the Model Context
// Protocol with a stdio transport. Tools are thin shims over the ops
// package; all pipeline semantics live there.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/lcr/internal/debug"
	"github.com/standardbeagle/lcr/internal/ops"
	"github.com/standardbeagle/lcr/internal/version"
)

// Server wires the operation surface into an MCP server.
type Server struct {
	engine *ops.Engine
	server *mcp.Server
}

// NewServer creates the MCP server over an open engine.
func NewServer(engine *ops.Engine) *Server {
	s := &Server{engine: engine}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "lcr-mcp-server",
		Version: version.Version,
	}, nil)

	s.registerTools()
	return s
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	locatorProps := map[string]*jsonschema.Schema{
		"path": {
			Type:        "string",
			Description: "Absolute path of the file containing the symbol",
		},
		"line": {
			Type:        "integer",
			Description: "1-based line of the symbol occurrence (omit for name-based lookup)",
		},
		"column": {
			Type:        "integer",
			Description: "1-based column of the symbol occurrence",
		},
		"symbol": {
			Type:        "string",
			Description: "Symbol name for name-based lookup within the file",
		},
	}

	renameProps := map[string]*jsonschema.Schema{}
	for k, v := range locatorProps {
		renameProps[k] = v
	}
	renameProps["new_name"] = &jsonschema.Schema{
		Type:        "string",
		Description: "Replacement identifier",
	}
	renameProps["preview"] = &jsonschema.Schema{
		Type:        "boolean",
		Description: "Compute and return the change without writing anything",
	}
	renameProps["rename_file"] = &jsonschema.Schema{
		Type:        "boolean",
		Description: "Also rename the declaring file when its name matches the old symbol name",
	}

	s.server.AddTool(&mcp.Tool{
		Name:        "rename_symbol",
		Description: "Rename a symbol across the project. Locates the symbol by position or name, updates every reference, and either previews or commits the change atomically per file.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: renameProps,
			Required:   []string{"path", "new_name"},
		},
	}, s.handleRename)

	s.server.AddTool(&mcp.Tool{
		Name:        "find_references",
		Description: "Find every reference to a symbol across the project, classified as read, write, or definition.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: locatorProps,
			Required:   []string{"path"},
		},
	}, s.handleReferences)

	s.server.AddTool(&mcp.Tool{
		Name:        "resolve_symbol",
		Description: "Resolve a symbol by position or name. Ambiguous names return candidate locations instead of a guess.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: locatorProps,
			Required:   []string{"path"},
		},
	}, s.handleResolve)

	s.server.AddTool(&mcp.Tool{
		Name:        "project_status",
		Description: "Report the open project: document and module counts, snapshot version, and whether files changed on disk since the last load.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleStatus)
}

func (s *Server) handleRename(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ops.RenameRequest
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	debug.LogMCP("rename_symbol %s -> %s (preview=%v)\n", params.Path, params.NewName, params.Preview)
	return createJSONResponse(s.engine.Rename(ctx, params))
}

func (s *Server) handleReferences(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ops.QueryRequest
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	debug.LogMCP("find_references %s\n", params.Path)
	return createJSONResponse(s.engine.References(ctx, params))
}

func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params ops.QueryRequest
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	return createJSONResponse(s.engine.Resolve(ctx, params))
}

func (s *Server) handleStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return createJSONResponse(s.engine.Status())
}

// Start runs the server on the stdio transport until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
