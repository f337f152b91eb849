package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/drt-labs-ai/conversional-commerce-agent/internal/util"
)

// FunctionTool adapts a plain Go function into a Tool. Arguments are
// validated against the declared schema before the function runs; a request
// missing a required field fails with CodeInvalidArguments and never reaches
// the implementation. FunctionTool has no mutable state after construction.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          func(ctx context.Context, args map[string]any) (string, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema.
func NewFunctionTool(
	name, description string,
	parameters map[string]any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	if parameters == nil {
		parameters = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return &FunctionTool{name: name, description: description, parameters: parameters, fn: fn}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct's
// exported fields via reflection.
func NewFunctionToolFromStruct(
	name, description string,
	argsType any,
	fn func(ctx context.Context, args map[string]any) (string, error),
) *FunctionTool {
	return NewFunctionTool(name, description, util.SchemaFromStruct(argsType), fn)
}

// Name implements Tool.
func (t *FunctionTool) Name() string { return t.name }

// Description implements Tool.
func (t *FunctionTool) Description() string { return t.description }

// Parameters implements Tool.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates args against the schema and invokes the wrapped function.
// Failures come back as *Error: validation problems carry
// CodeInvalidArguments, everything else CodeExecution unless the function
// already returned an *Error.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (string, error) {
	if err := util.ValidateArguments(args, t.parameters); err != nil {
		return "", NewError(t.name, CodeInvalidArguments, err.Error())
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		var toolErr *Error
		if errors.As(err, &toolErr) {
			return "", toolErr
		}
		return "", NewError(t.name, CodeExecution, err.Error())
	}
	return result, nil
}

// StringArg extracts a string argument, with ok=false when absent or of the
// wrong type.
func StringArg(args map[string]any, name string) (string, bool) {
	v, ok := args[name].(string)
	return v, ok
}

// IntArg extracts an integer argument, accepting the float64 values JSON
// decoding produces.
func IntArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// RequireString extracts a mandatory string argument.
func RequireString(args map[string]any, name string) (string, error) {
	v, ok := StringArg(args, name)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required string argument %q", name)
	}
	return v, nil
}
