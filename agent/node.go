package agent

import (
	"context"
	"time"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/model"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// DefaultWindow bounds how many recent messages a node passes to the model.
// Older context is invisible to the model, not summarized; the value is a
// tuning constant, configurable per node.
const DefaultWindow = 6

// DefaultModelTimeout bounds a single model call.
const DefaultModelTimeout = 2 * time.Minute

// NodeOptions configure a Node. Use functional options with NewNode.
type NodeOptions struct {
	Window       int
	ModelTimeout time.Duration
	Logger       logging.Logger
}

// Node is one specialist agent: a system prompt, a bound tool subset and a
// bounded message window over a shared model. Nodes are created at startup
// and immutable thereafter; Run never mutates prior state.
type Node struct {
	name         string
	instruction  string
	llm          model.Model
	tools        []tool.Tool
	window       int
	modelTimeout time.Duration
	logger       logging.Logger
}

// NewNode creates a specialist node bound to the given tool subset.
func NewNode(name, instruction string, llm model.Model, tools []tool.Tool, optFns ...func(o *NodeOptions)) *Node {
	opts := NodeOptions{
		Window:       DefaultWindow,
		ModelTimeout: DefaultModelTimeout,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Node{
		name:         name,
		instruction:  instruction,
		llm:          llm,
		tools:        tools,
		window:       opts.Window,
		modelTimeout: opts.ModelTimeout,
		logger:       opts.Logger,
	}
}

// Name returns the node's unique name, used as a graph state and a routing
// target.
func (n *Node) Name() string { return n.name }

// Tools returns the node's bound tool subset.
func (n *Node) Tools() []tool.Tool { return n.tools }

// Window returns the node's message window size.
func (n *Node) Window() int { return n.window }

// Run performs one model turn over the last Window messages and returns the
// resulting assistant message: either a plain answer or a set of tool call
// requests. Run is total: transport and model errors are converted into an
// assistant message carrying a readable error string so the conversation
// continues instead of aborting the turn. Tools are never executed here.
func (n *Node) Run(ctx context.Context, state *core.State) core.Message {
	req := model.Request{
		Instructions: n.instruction,
		Messages:     state.Window(n.window),
		Tools:        ToolDefinitions(n.tools),
	}

	ctx, cancel := context.WithTimeout(ctx, n.modelTimeout)
	defer cancel()

	start := time.Now()
	resp, err := n.llm.Generate(ctx, req)
	if err != nil {
		n.logger.Warn("agent.model.error", "agent", n.name, "error", err.Error())
		return core.NewAssistantMessage(n.name, "Error executing agent logic: "+err.Error())
	}

	calls := make([]core.ToolCall, len(resp.ToolCalls))
	for i, tc := range resp.ToolCalls {
		if tc.ID == "" {
			// Some backends omit call ids; results still need one to link to.
			tc.ID = core.NewID()
		}
		if tc.Arguments == nil {
			tc.Arguments = map[string]any{}
		}
		calls[i] = tc
	}

	n.logger.Debug("agent.model.completed",
		"agent", n.name,
		"window", len(req.Messages),
		"tool_calls", len(calls),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return core.NewAssistantMessage(n.name, resp.Content, calls...)
}

// ToolDefinitions converts a tool subset into the schema declarations
// advertised to models.
func ToolDefinitions(tools []tool.Tool) []model.ToolDefinition {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return defs
}
