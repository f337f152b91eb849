// Package runner drives complete conversation turns: it serializes turns
// per session, feeds the user message into the orchestration graph and
// surfaces exactly one assistant-visible answer per turn, whatever happened
// underneath.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/graph"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/session"
)

// FallbackResponse is surfaced when a turn reached Done without any
// specialist producing an answer (the router finished immediately).
const FallbackResponse = "Task completed."

// Options configure a Runner.
type Options struct {
	Logger logging.Logger
}

// Runner owns one configured orchestration instance: a compiled graph plus
// its session store. Construct once and share; Run is safe for concurrent
// use across sessions, and turns on the same session are serialized through
// the store's per-key lock.
type Runner struct {
	graph  *graph.Graph
	store  session.Store
	logger logging.Logger
}

// New constructs a Runner.
func New(g *graph.Graph, store session.Store, optFns ...func(o *Options)) *Runner {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Runner{graph: g, store: store, logger: opts.Logger}
}

// Run executes one conversation turn for the session and returns the final
// assistant message. The user message is checkpointed before stepping so a
// crash mid-turn resumes with it in history. A turn that hits the step
// ceiling still returns its "could not complete" answer with a nil error;
// the error return covers cancellation and storage failures only.
func (r *Runner) Run(ctx context.Context, sessionID, userText string) (core.Message, error) {
	unlock := r.store.Lock(sessionID)
	defer unlock()

	st, err := r.store.Get(sessionID)
	if err != nil {
		return core.Message{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	st.Append(core.NewUserMessage(userText))
	if err := r.store.Put(sessionID, st); err != nil {
		return core.Message{}, fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}

	turnStart := len(st.Messages)

	runErr := r.graph.RunTurn(ctx, st)
	switch {
	case runErr == nil:
	case errors.Is(runErr, core.ErrStepLimit):
		// Already converted into a visible answer by the graph.
		r.logger.Warn("runner.step_limit", "session", sessionID)
	default:
		return core.Message{}, runErr
	}

	if msg, ok := lastAssistant(st.Messages[turnStart:]); ok {
		return msg, nil
	}

	// Router finished without engaging a specialist; still answer.
	msg := core.NewAssistantMessage(graph.StateSupervisor, FallbackResponse)
	st.Append(msg)
	if err := r.store.Put(sessionID, st); err != nil {
		return core.Message{}, fmt.Errorf("checkpoint session %s: %w", sessionID, err)
	}
	return msg, nil
}

// History returns a copy of the session's full message sequence. It takes
// the session's turn lock, so a read never observes the partial checkpoints
// of a turn still in flight.
func (r *Runner) History(sessionID string) ([]core.Message, error) {
	unlock := r.store.Lock(sessionID)
	defer unlock()

	st, err := r.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return st.Messages, nil
}

func lastAssistant(msgs []core.Message) (core.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == core.RoleAssistant && !msgs[i].HasToolCalls() {
			return msgs[i], true
		}
	}
	return core.Message{}, false
}
