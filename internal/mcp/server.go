// Package mcp provides an MCP (Model Context Protocol) server for gosense.
// This lets AI agents request import path completion, lookup entries and
// template contexts through MCP tools instead of CLI commands.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gosense/gosense/internal/logging"
	"github.com/gosense/gosense/internal/report"
)

// Server wraps the MCP server with gosense-specific functionality
type Server struct {
	mcpServer    *server.MCPServer
	gatherer     *report.DataGatherer
	projectRoot  string
	tools        map[string]bool
	logger       *slog.Logger
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	Tools   []string      // Which tools to expose (empty = all)
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
	Logger  *slog.Logger
}

// Version is reported to MCP clients.
const Version = "0.1.0"

// AllTools lists all available tools
var AllTools = []string{
	"gosense_sdk_packages",
	"gosense_local_packages",
	"gosense_complete",
	"gosense_lookup",
	"gosense_imports",
	"gosense_template_context",
}

// DefaultTools is the default set of tools to expose
var DefaultTools = AllTools

// New creates an MCP server answering queries through g. Relative file
// arguments resolve against projectRoot.
func New(g *report.DataGatherer, projectRoot string, cfg Config) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"gosense",
		Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcpServer:    mcpServer,
		gatherer:     g,
		projectRoot:  projectRoot,
		tools:        make(map[string]bool),
		logger:       cfg.Logger,
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	toolsToRegister := cfg.Tools
	if len(toolsToRegister) == 0 {
		toolsToRegister = DefaultTools
	}

	for _, toolName := range toolsToRegister {
		if err := s.registerTool(toolName); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", toolName, err)
		}
		s.tools[toolName] = true
	}

	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	schema, ok := toolSchemaRegistry[name]
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	opts := []mcp.ToolOption{mcp.WithDescription(schema.Description)}
	for _, p := range schema.Parameters {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		switch p.Type {
		case "number":
			opts = append(opts, mcp.WithNumber(p.Name, propOpts...))
		default:
			opts = append(opts, mcp.WithString(p.Name, propOpts...))
		}
	}

	s.mcpServer.AddTool(mcp.NewTool(name, opts...), s.handler(name))
	return nil
}

// handler adapts CallTool to an MCP tool handler.
func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.updateActivity()

		result, err := s.CallTool(ctx, name, req.GetArguments())
		if err != nil {
			s.logger.Debug("mcp tool failed", "tool", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}

	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			fmt.Fprintf(os.Stderr, "gosense serve: timeout after %v of inactivity\n", s.timeout)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the sorted list of registered tools
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

var (
	fileParam    = ParameterSchema{Name: "file", Type: "string", Description: "Go source file, absolute or relative to the project root", Required: true}
	pathParam    = ParameterSchema{Name: "path", Type: "string", Description: "Import path typed so far, opening quote included (e.g. \"net/ht)"}
	offsetParam  = ParameterSchema{Name: "offset", Type: "number", Description: "Cursor byte offset in the file", Required: true}
	contentParam = ParameterSchema{Name: "content", Type: "string", Description: "Unsaved file content (default: read the file from disk)"}
)

// toolSchemaRegistry holds the schema definitions for all tools.
// registerTool builds the MCP tool definitions from it.
var toolSchemaRegistry = map[string]ToolSchema{
	"gosense_sdk_packages": {
		Name:        "gosense_sdk_packages",
		Description: "List every package of the Go toolchain serving the file's module. The typed path does not filter the result.",
		Parameters:  []ParameterSchema{fileParam, pathParam},
	},
	"gosense_local_packages": {
		Name:        "gosense_local_packages",
		Description: "List project packages in the file's directory and below, formatted for the shape of the typed path.",
		Parameters:  []ParameterSchema{fileParam, pathParam},
	},
	"gosense_complete": {
		Name:        "gosense_complete",
		Description: "Complete at a byte offset: import paths inside an import literal, otherwise declarations, imported packages and keywords.",
		Parameters:  []ParameterSchema{fileParam, offsetParam, contentParam},
	},
	"gosense_lookup": {
		Name:        "gosense_lookup",
		Description: "List lookup entries (text, style, tail and type text) for the file's package-level declarations and struct fields.",
		Parameters:  []ParameterSchema{fileParam},
	},
	"gosense_imports": {
		Name:        "gosense_imports",
		Description: "List the file's imports and the package names they bind.",
		Parameters:  []ParameterSchema{fileParam},
	},
	"gosense_template_context": {
		Name:        "gosense_template_context",
		Description: "Report which code-template contexts (GO, GO_FUNCTION) apply at a byte offset.",
		Parameters:  []ParameterSchema{fileParam, offsetParam, contentParam},
	},
}

// Describe returns the schema of a known tool, registered or not.
func Describe(name string) (ToolSchema, bool) {
	schema, ok := toolSchemaRegistry[name]
	return schema, ok
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the JSON result string or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s (run 'gosense serve --list' to see available tools)", name)
	}

	file, _ := args["file"].(string)
	if file == "" {
		return "", fmt.Errorf("file parameter is required")
	}
	file = s.resolvePath(file)

	var (
		result interface{}
		err    error
	)
	switch name {
	case "gosense_sdk_packages":
		raw, _ := args["path"].(string)
		result, err = s.gatherer.GatherSDKPackages(ctx, file, raw)

	case "gosense_local_packages":
		raw, _ := args["path"].(string)
		result, err = s.gatherer.GatherLocalPackages(ctx, file, raw)

	case "gosense_complete":
		offset, ok := intArg(args, "offset")
		if !ok {
			return "", fmt.Errorf("offset parameter is required")
		}
		result, err = s.gatherer.GatherCompletion(ctx, file, contentArg(args), offset)

	case "gosense_lookup":
		result, err = s.gatherer.GatherEntries(ctx, file)

	case "gosense_imports":
		result, err = s.gatherer.GatherImports(ctx, file)

	case "gosense_template_context":
		offset, ok := intArg(args, "offset")
		if !ok {
			return "", fmt.Errorf("offset parameter is required")
		}
		result, err = s.gatherer.GatherContexts(ctx, file, contentArg(args), offset)

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
	if err != nil {
		return "", err
	}
	return toJSON(result)
}

func (s *Server) resolvePath(file string) string {
	if filepath.IsAbs(file) || s.projectRoot == "" {
		return file
	}
	return filepath.Join(s.projectRoot, file)
}

// Helper functions

func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func contentArg(args map[string]interface{}) []byte {
	if content, ok := args["content"].(string); ok {
		return []byte(content)
	}
	return nil
}

func toJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
