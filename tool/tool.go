// Package tool implements the tool-calling subsystem: the Tool interface,
// a schema-validating function adapter and the Registry that agents draw
// their bound subsets from. Tool results are always textual; execution
// errors are normalized into *Error values the executor renders as result
// content so a failed call never aborts a conversation.
package tool

import (
	"context"
	"fmt"

	"github.com/drt-labs-ai/conversional-commerce-agent/internal/util"
)

// Tool is an invocable capability exposed to agents. Implementations must be
// safe for concurrent use: the executor may run several calls from one
// assistant turn in parallel.
type Tool interface {
	// Name returns the unique tool identifier (snake_case).
	Name() string

	// Description is the natural-language description shown to models.
	Description() string

	// Parameters returns a minimal JSON-schema object describing arguments.
	Parameters() map[string]any

	// Call executes the tool. The returned string is the textual result fed
	// back to the model; errors are normalized by the caller.
	Call(ctx context.Context, args map[string]any) (string, error)
}

// Error codes used across tool implementations.
const (
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeExecution        = "EXECUTION_ERROR"
	CodeTransport        = "TRANSPORT_ERROR"
)

// Error represents a failure during tool execution.
type Error struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

// NewError creates an Error for the named tool.
func NewError(tool, code, message string) *Error {
	return &Error{Tool: tool, Code: code, Message: message}
}

// ValidationError is re-exported so callers can detect argument failures
// without importing internal packages.
type ValidationError = util.ValidationError
