// Package mcptool loads tools from a remote MCP (Model Context Protocol)
// server and wraps each as an engine tool, so an external tool-execution
// proxy can serve the catalog instead of in-process bindings. Success and
// application-level failure both come back as textual content, which is
// exactly what the executor expects.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// Options configure MCP loading.
type Options struct {
	// ClientName identifies this client to the server.
	ClientName    string
	ClientVersion string
	Logger        logging.Logger
}

// Loader owns the client sessions opened against MCP servers. Close it when
// the process shuts down; tools stop working once their session is closed.
type Loader struct {
	clientName    string
	clientVersion string
	logger        logging.Logger
	sessions      []*mcp.ClientSession
}

// NewLoader constructs a Loader.
func NewLoader(optFns ...func(o *Options)) *Loader {
	opts := Options{
		ClientName:    "commerce-agent",
		ClientVersion: "1.0.0",
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Loader{
		clientName:    opts.ClientName,
		clientVersion: opts.ClientVersion,
		logger:        opts.Logger,
	}
}

// LoadCommand starts the server as a subprocess speaking MCP over stdio and
// returns its tools.
func (l *Loader) LoadCommand(ctx context.Context, command string, args ...string) ([]tool.Tool, error) {
	cmd := exec.Command(command, args...)
	return l.connect(ctx, &mcp.CommandTransport{Command: cmd})
}

// LoadSSE connects to a server exposing MCP over SSE at the given endpoint
// and returns its tools.
func (l *Loader) LoadSSE(ctx context.Context, endpoint string) ([]tool.Tool, error) {
	return l.connect(ctx, &mcp.SSEClientTransport{Endpoint: endpoint})
}

func (l *Loader) connect(ctx context.Context, transport mcp.Transport) ([]tool.Tool, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: l.clientName, Version: l.clientVersion}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to MCP server: %w", err)
	}

	var tools []tool.Tool
	for t, err := range session.Tools(ctx, nil) {
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("list MCP tools: %w", err)
		}
		if t == nil {
			continue
		}
		l.logger.Info("mcptool.loaded", "tool", t.Name, "description", t.Description)
		tools = append(tools, &remoteTool{session: session, tool: t})
	}

	l.sessions = append(l.sessions, session)
	return tools, nil
}

// Close closes all open server sessions.
func (l *Loader) Close() error {
	var firstErr error
	for _, s := range l.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.sessions = nil
	return firstErr
}

// remoteTool proxies one server-side tool through an MCP session.
type remoteTool struct {
	session *mcp.ClientSession
	tool    *mcp.Tool
}

// Name implements tool.Tool.
func (r *remoteTool) Name() string { return r.tool.Name }

// Description implements tool.Tool.
func (r *remoteTool) Description() string { return r.tool.Description }

// Parameters implements tool.Tool by flattening the server's JSON schema
// into the minimal map shape the engine validates against.
func (r *remoteTool) Parameters() map[string]any {
	return schemaToMap(r.tool.InputSchema)
}

// Call implements tool.Tool.
func (r *remoteTool) Call(ctx context.Context, args map[string]any) (string, error) {
	result, err := r.session.CallTool(ctx, &mcp.CallToolParams{Name: r.tool.Name, Arguments: args})
	if err != nil {
		return "", tool.NewError(r.tool.Name, tool.CodeTransport, err.Error())
	}
	text := contentText(result.Content)
	if result.IsError {
		return "", tool.NewError(r.tool.Name, tool.CodeExecution, text)
	}
	return text, nil
}

// schemaToMap converts an MCP input schema into a plain map. The SDK leaves
// the schema untyped, so marshal whatever the server sent; nil or
// unmarshalable values degrade to an open object schema.
func schemaToMap(s any) map[string]any {
	fallback := map[string]any{"type": "object", "properties": map[string]any{}}
	if s == nil {
		return fallback
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fallback
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fallback
	}
	if _, ok := out["type"]; !ok {
		out["type"] = "object"
	}
	return out
}

func contentText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
