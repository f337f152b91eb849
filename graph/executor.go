package graph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// DefaultToolTimeout bounds a single tool call. A timeout is treated like
// any other tool error: surfaced as result content.
const DefaultToolTimeout = 30 * time.Second

// ExecutorOptions configure the tool executor.
type ExecutorOptions struct {
	// MaxParallel caps concurrent sub-calls; <=0 means one goroutine per call.
	MaxParallel int
	// ToolTimeout bounds each individual call.
	ToolTimeout time.Duration
	Logger      logging.Logger
}

// Executor runs the tool call requests of one assistant message. Calls from
// the same message are independent by construction and run concurrently,
// but results are joined and returned in request order so the conversation
// stays reproducible regardless of completion order. Exactly one result
// message is produced per request; failures and panics become result
// content and never raise out of the executor.
type Executor struct {
	maxParallel int
	toolTimeout time.Duration
	logger      logging.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		ToolTimeout: DefaultToolTimeout,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Executor{
		maxParallel: opts.MaxParallel,
		toolTimeout: opts.ToolTimeout,
		logger:      opts.Logger,
	}
}

// Execute invokes each call against the given tool set and returns one tool
// result message per call, in the same relative order the requests were
// issued.
func (e *Executor) Execute(ctx context.Context, tools map[string]tool.Tool, calls []core.ToolCall) []core.Message {
	n := len(calls)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []core.Message{e.executeOne(ctx, tools, calls[0])}
	}

	maxPar := e.maxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]core.Message, n)
	sem := make(chan struct{}, maxPar)
	var wg sync.WaitGroup

	start := time.Now()
	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, call core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(ctx, tools, call)
		}(i, calls[i])
	}
	wg.Wait()

	e.logger.Debug("executor.batch.complete",
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results
}

// executeOne runs a single call with timeout and panic isolation. The result
// message is always produced; errors are rendered as content the model can
// reason about.
func (e *Executor) executeOne(ctx context.Context, tools map[string]tool.Tool, call core.ToolCall) core.Message {
	impl, ok := tools[call.Name]
	if !ok {
		// Registry binding is validated at wiring time, so reaching this
		// means the model requested a name outside its bound subset.
		e.logger.Warn("executor.unknown_tool", "tool", call.Name)
		return core.NewToolResultMessage(call.ID, call.Name, fmt.Sprintf("Error: tool %q is not available", call.Name))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.toolTimeout)
	defer cancel()

	start := time.Now()
	var (
		result string
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in tool %s: %v", call.Name, r)
			}
		}()
		result, err = impl.Call(callCtx, call.Arguments)
	}()

	e.logger.Info("executor.tool.executed",
		"tool", call.Name,
		"call_id", call.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	if err != nil {
		return core.NewToolResultMessage(call.ID, call.Name, "Error: "+err.Error())
	}
	return core.NewToolResultMessage(call.ID, call.Name, result)
}
