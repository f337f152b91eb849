package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// -------------------- FunctionTool Tests --------------------

func echoTool() *FunctionTool {
	return NewFunctionTool(
		"echo",
		"Echoes the input back.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(ctx context.Context, args map[string]any) (string, error) {
			return args["text"].(string), nil
		},
	)
}

func TestFunctionToolCall(t *testing.T) {
	e := echoTool()
	assert.Equal(t, "echo", e.Name())
	assert.NotEmpty(t, e.Description())

	result, err := e.Call(context.Background(), map[string]any{"text": "hello"})
	assert.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestFunctionToolInvalidArguments(t *testing.T) {
	e := echoTool()

	_, err := e.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	var toolErr *Error
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeInvalidArguments, toolErr.Code)
	assert.Equal(t, "echo", toolErr.Tool)

	// Wrong type is also rejected before the function runs.
	_, err = e.Call(context.Background(), map[string]any{"text": 42})
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeInvalidArguments, toolErr.Code)
}

func TestFunctionToolErrorNormalization(t *testing.T) {
	plain := NewFunctionTool("fail", "always fails", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return "", errors.New("backend down")
	})
	_, err := plain.Call(context.Background(), map[string]any{})
	var toolErr *Error
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Message, "backend down")

	// A *Error returned by the function passes through untouched.
	typed := NewFunctionTool("fail2", "fails typed", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return "", NewError("fail2", CodeTransport, "connection refused")
	})
	_, err = typed.Call(context.Background(), map[string]any{})
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeTransport, toolErr.Code)
}

func TestFunctionToolNilSchemaDefaults(t *testing.T) {
	tl := NewFunctionTool("open", "no schema", nil, func(ctx context.Context, args map[string]any) (string, error) {
		return "ok", nil
	})
	schema := tl.Parameters()
	assert.Equal(t, "object", schema["type"])

	result, err := tl.Call(context.Background(), map[string]any{"anything": true})
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}
	tl := NewFunctionToolFromStruct("search", "search things", args{}, func(ctx context.Context, a map[string]any) (string, error) {
		return "found", nil
	})

	_, err := tl.Call(context.Background(), map[string]any{})
	assert.Error(t, err)

	result, err := tl.Call(context.Background(), map[string]any{"query": "drill"})
	assert.NoError(t, err)
	assert.Equal(t, "found", result)
}

// -------------------- Argument Helper Tests --------------------

func TestArgumentHelpers(t *testing.T) {
	args := map[string]any{"s": "text", "f": float64(7), "i": 3}

	v, ok := StringArg(args, "s")
	assert.True(t, ok)
	assert.Equal(t, "text", v)
	_, ok = StringArg(args, "missing")
	assert.False(t, ok)

	assert.Equal(t, 7, IntArg(args, "f", 0))
	assert.Equal(t, 3, IntArg(args, "i", 0))
	assert.Equal(t, 9, IntArg(args, "missing", 9))

	_, err := RequireString(args, "missing")
	assert.Error(t, err)
	got, err := RequireString(args, "s")
	assert.NoError(t, err)
	assert.Equal(t, "text", got)
}

// -------------------- Registry Tests --------------------

func namedTool(name string) Tool {
	return NewFunctionTool(name, "tool "+name, nil, func(ctx context.Context, args map[string]any) (string, error) {
		return name, nil
	})
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(namedTool("search_products"), namedTool("get_cart"))
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("search_products")
	assert.True(t, ok)
	_, ok = r.Get("nope")
	assert.False(t, ok)

	r.Register(namedTool("add_to_cart"))
	assert.Equal(t, []string{"add_to_cart", "get_cart", "search_products"}, r.Names())
}

func TestRegistrySubset(t *testing.T) {
	r := NewRegistry(namedTool("a"), namedTool("b"), namedTool("c"))

	subset, err := r.Subset("c", "a")
	assert.NoError(t, err)
	assert.Len(t, subset, 2)
	assert.Equal(t, "c", subset[0].Name())

	_, err = r.Subset("a", "ghost")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRegistryFilter(t *testing.T) {
	r := NewRegistry(
		namedTool("search_products"),
		namedTool("vector_search"),
		namedTool("add_to_cart"),
		namedTool("place_order"),
	)

	search := r.Filter(func(name string) bool { return strings.Contains(name, "search") })
	assert.Len(t, search, 2)

	cart := r.Filter(func(name string) bool {
		return strings.Contains(name, "cart") || strings.Contains(name, "order")
	})
	assert.Len(t, cart, 2)
}
