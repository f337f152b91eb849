package core

import (
	"time"

	"github.com/google/uuid"
)

// Conversation roles. A message carries exactly one role; the ordered
// sequence of messages is the sole conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleSystem    = "system"
)

// ToolCall is a structured request emitted by a model response naming a tool
// and its arguments. The ID correlates the request with its eventual result
// message.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Message is one turn of dialogue. Messages are immutable once appended to a
// session: the engine only ever adds new messages, it never rewrites or
// removes prior ones. Content may be empty when the turn is pure tool calls.
type Message struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Author     string     `json:"author,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewID generates a unique identifier for messages and tool calls.
func NewID() string { return uuid.NewString() }

func newMessage(role string) Message {
	return Message{ID: NewID(), Role: role, Timestamp: time.Now().UTC()}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(text string) Message {
	m := newMessage(RoleUser)
	m.Content = text
	return m
}

// NewSystemMessage creates a system instruction message.
func NewSystemMessage(text string) Message {
	m := newMessage(RoleSystem)
	m.Content = text
	return m
}

// NewAssistantMessage creates an assistant message authored by the named
// agent. Text may be empty when the message only carries tool calls.
func NewAssistantMessage(author, text string, calls ...ToolCall) Message {
	m := newMessage(RoleAssistant)
	m.Author = author
	m.Content = text
	m.ToolCalls = calls
	return m
}

// NewToolResultMessage records the outcome of a tool call. Failures are
// encoded in content by the caller; a tool result is emitted for every
// request, success or not, so the model can reason about errors.
func NewToolResultMessage(callID, toolName, content string) Message {
	m := newMessage(RoleTool)
	m.ToolCallID = callID
	m.Author = toolName
	m.Content = content
	return m
}

// HasToolCalls reports whether this message requests tool execution.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Clone returns a deep copy including tool call argument maps.
func (m Message) Clone() Message {
	c := m
	if len(m.ToolCalls) > 0 {
		c.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, tc := range m.ToolCalls {
			c.ToolCalls[i] = tc.Clone()
		}
	}
	return c
}

// Clone returns a deep copy of the tool call and its argument map.
func (t ToolCall) Clone() ToolCall {
	c := t
	if t.Arguments != nil {
		c.Arguments = make(map[string]any, len(t.Arguments))
		for k, v := range t.Arguments {
			c.Arguments[k] = v
		}
	}
	return c
}
