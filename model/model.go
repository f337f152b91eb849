// Package model defines the language-model boundary. The engine sees a
// black-box request/response service: a request carries instructions, a
// windowed message history and the tool schemas bound to the calling agent;
// the response is either plain text or a set of tool call requests.
// Provider bindings live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// Parameters is a minimal JSON-schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the normalized model input assembled by an agent node.
type Request struct {
	Instructions string           `json:"instructions"`
	Messages     []core.Message   `json:"messages"`
	Tools        []ToolDefinition `json:"tools,omitempty"`
}

// Response is the normalized model output. ToolCalls is non-empty when the
// model requested tool execution instead of (or in addition to) answering.
type Response struct {
	Content   string          `json:"content,omitempty"`
	ToolCalls []core.ToolCall `json:"tool_calls,omitempty"`
}

// Info describes a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface agents use to drive generation. Generate
// must honor ctx cancellation and deadlines; callers treat any error as a
// transport failure to be surfaced as conversation content.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Info() Info
}

// Func adapts a plain function to the Model interface. Handy for tests and
// for scripting deterministic behavior.
type Func func(ctx context.Context, req Request) (*Response, error)

// Generate implements Model.
func (f Func) Generate(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }

// Info implements Model.
func (f Func) Info() Info { return Info{Name: "func", Provider: "local", SupportsTools: true} }

// MockModel is a lightweight in-memory Model for tests and examples. It
// matches canned responses against the latest message content.
type MockModel struct {
	info      Info
	responses map[string]*Response
	fallback  string
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider, SupportsTools: true},
		responses: map[string]*Response{},
	}
}

// AddResponse registers a canned response for an exact input text.
func (m *MockModel) AddResponse(input string, resp *Response) { m.responses[input] = resp }

// AddTextResponse registers a canned plain-text completion.
func (m *MockModel) AddTextResponse(input, text string) {
	m.responses[input] = &Response{Content: text}
}

// SetFallback sets the text returned when no canned response matches.
func (m *MockModel) SetFallback(text string) { m.fallback = text }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}
	last := req.Messages[len(req.Messages)-1]
	if resp, ok := m.responses[last.Content]; ok {
		return resp, nil
	}
	if m.fallback != "" {
		return &Response{Content: m.fallback}, nil
	}
	return &Response{Content: "Mock response to: " + strings.TrimSpace(last.Content)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
