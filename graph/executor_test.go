package graph

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

type mockTool struct {
	name     string
	delay    time.Duration
	result   string
	err      error
	panicMsg any
	calls    atomic.Int32
}

func (m *mockTool) Name() string               { return m.name }
func (m *mockTool) Description() string        { return "mock tool" }
func (m *mockTool) Parameters() map[string]any { return map[string]any{} }
func (m *mockTool) Call(ctx context.Context, _ map[string]any) (string, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.panicMsg != nil {
		panic(m.panicMsg)
	}
	return m.result, m.err
}

func toolMap(tools ...tool.Tool) map[string]tool.Tool {
	out := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		out[t.Name()] = t
	}
	return out
}

func TestExecutorSingleCall(t *testing.T) {
	e := NewExecutor()
	tools := toolMap(&mockTool{name: "one", result: "42"})

	results := e.Execute(context.Background(), tools, []core.ToolCall{{ID: "c1", Name: "one"}})
	assert.Len(t, results, 1)
	assert.Equal(t, core.RoleTool, results[0].Role)
	assert.Equal(t, "c1", results[0].ToolCallID)
	assert.Equal(t, "one", results[0].Author)
	assert.Equal(t, "42", results[0].Content)
}

func TestExecutorEmptyBatch(t *testing.T) {
	e := NewExecutor()
	assert.Nil(t, e.Execute(context.Background(), nil, nil))
}

func TestExecutorPreservesRequestOrder(t *testing.T) {
	// The slow call is requested first; its result must still come first.
	e := NewExecutor()
	tools := toolMap(
		&mockTool{name: "slow", delay: 60 * time.Millisecond, result: "s"},
		&mockTool{name: "fast", delay: 5 * time.Millisecond, result: "f"},
	)
	calls := []core.ToolCall{
		{ID: "1", Name: "slow"},
		{ID: "2", Name: "fast"},
		{ID: "3", Name: "slow"},
	}

	results := e.Execute(context.Background(), tools, calls)
	assert.Len(t, results, 3)
	assert.Equal(t, "1", results[0].ToolCallID)
	assert.Equal(t, "2", results[1].ToolCallID)
	assert.Equal(t, "3", results[2].ToolCallID)
	assert.Equal(t, "s", results[0].Content)
	assert.Equal(t, "f", results[1].Content)
}

func TestExecutorRunsConcurrently(t *testing.T) {
	e := NewExecutor()
	tools := toolMap(&mockTool{name: "slow", delay: 50 * time.Millisecond, result: "x"})
	calls := make([]core.ToolCall, 4)
	for i := range calls {
		calls[i] = core.ToolCall{ID: fmt.Sprint(i), Name: "slow"}
	}

	start := time.Now()
	results := e.Execute(context.Background(), tools, calls)
	elapsed := time.Since(start)

	assert.Len(t, results, 4)
	// Four 50ms calls in parallel should finish well under serial time.
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestExecutorMaxParallel(t *testing.T) {
	e := NewExecutor(func(o *ExecutorOptions) { o.MaxParallel = 1 })
	tools := toolMap(&mockTool{name: "slow", delay: 20 * time.Millisecond, result: "x"})
	calls := []core.ToolCall{{ID: "1", Name: "slow"}, {ID: "2", Name: "slow"}, {ID: "3", Name: "slow"}}

	start := time.Now()
	e.Execute(context.Background(), tools, calls)
	// Serialized: at least 3 * 20ms.
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestExecutorErrorBecomesResultContent(t *testing.T) {
	e := NewExecutor()
	tools := toolMap(
		&mockTool{name: "bad", err: errors.New("boom")},
		&mockTool{name: "good", result: "fine"},
	)
	calls := []core.ToolCall{{ID: "1", Name: "bad"}, {ID: "2", Name: "good"}}

	results := e.Execute(context.Background(), tools, calls)
	assert.Equal(t, "Error: boom", results[0].Content)
	assert.Equal(t, "fine", results[1].Content)
}

func TestExecutorPanicIsolation(t *testing.T) {
	e := NewExecutor()
	tools := toolMap(
		&mockTool{name: "explode", panicMsg: "kaboom"},
		&mockTool{name: "calm", result: "ok"},
	)
	calls := []core.ToolCall{{ID: "1", Name: "explode"}, {ID: "2", Name: "calm"}}

	results := e.Execute(context.Background(), tools, calls)
	assert.Len(t, results, 2)
	assert.Contains(t, results[0].Content, "Error:")
	assert.Contains(t, results[0].Content, "kaboom")
	assert.Equal(t, "ok", results[1].Content)
}

func TestExecutorUnknownTool(t *testing.T) {
	e := NewExecutor()
	results := e.Execute(context.Background(), toolMap(), []core.ToolCall{{ID: "1", Name: "ghost"}})
	assert.Len(t, results, 1)
	assert.Contains(t, results[0].Content, `tool "ghost" is not available`)
}

func TestExecutorToolTimeout(t *testing.T) {
	e := NewExecutor(func(o *ExecutorOptions) { o.ToolTimeout = 10 * time.Millisecond })
	tools := toolMap(&mockTool{name: "hang", delay: time.Second, result: "never"})

	results := e.Execute(context.Background(), tools, []core.ToolCall{{ID: "1", Name: "hang"}})
	assert.Contains(t, results[0].Content, "Error:")
}
