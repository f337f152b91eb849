package graph

import (
	"context"
	"strings"

	"github.com/drt-labs-ai/conversional-commerce-agent/agent"
	"github.com/drt-labs-ai/conversional-commerce-agent/core"
	"github.com/drt-labs-ai/conversional-commerce-agent/logging"
	"github.com/drt-labs-ai/conversional-commerce-agent/session"
	"github.com/drt-labs-ai/conversional-commerce-agent/tool"
)

// Reserved state names. Specialist states use the node name itself and the
// paired tools state appends the Tools suffix.
const (
	StateSupervisor = "Supervisor"
	StateDone       = "Done"

	toolsSuffix = "Tools"
)

// DefaultMaxSteps is the per-turn transition ceiling. The free-text router
// can in principle oscillate, so a hard budget is mandatory; the value is a
// tuning constant preserved from the original deployment, not a derived one.
const DefaultMaxSteps = 100

// StepLimitResponse is the user-visible answer appended when a turn
// exhausts its step budget.
const StepLimitResponse = "Task could not be completed."

// ToolsState returns the paired tools state for a specialist name.
func ToolsState(specialist string) string { return specialist + toolsSuffix }

// Options configure a Graph.
type Options struct {
	MaxSteps int
	Executor *Executor
	Logger   logging.Logger
}

// Graph is the compiled state machine tying the router, the specialist
// nodes and the tool executor together. It is immutable after New and safe
// for concurrent turns on distinct sessions; turns on one session must be
// serialized by the caller (see runner).
type Graph struct {
	router   *agent.Router
	nodes    map[string]*agent.Node
	tools    map[string]map[string]tool.Tool
	store    session.Store
	executor *Executor
	maxSteps int
	logger   logging.Logger
}

// New compiles the graph and validates its wiring: every router member must
// name a specialist, specialist names must be unique and must not collide
// with the reserved states or carry the tools suffix. Wiring mistakes are
// configuration errors, fatal here rather than surfacing mid-conversation.
func New(router *agent.Router, nodes []*agent.Node, store session.Store, optFns ...func(o *Options)) (*Graph, error) {
	opts := Options{
		MaxSteps: DefaultMaxSteps,
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Executor == nil {
		opts.Executor = NewExecutor(func(o *ExecutorOptions) { o.Logger = opts.Logger })
	}

	g := &Graph{
		router:   router,
		nodes:    make(map[string]*agent.Node, len(nodes)),
		tools:    make(map[string]map[string]tool.Tool, len(nodes)),
		store:    store,
		executor: opts.Executor,
		maxSteps: opts.MaxSteps,
		logger:   opts.Logger,
	}

	for _, n := range nodes {
		name := n.Name()
		switch {
		case name == StateSupervisor || name == StateDone || name == core.Finish:
			return nil, core.NewConfigError("graph", "specialist name %q is reserved", name)
		case strings.HasSuffix(name, toolsSuffix):
			return nil, core.NewConfigError("graph", "specialist name %q collides with a tools state", name)
		}
		if _, dup := g.nodes[name]; dup {
			return nil, core.NewConfigError("graph", "duplicate specialist name %q", name)
		}
		g.nodes[name] = n
		byName := make(map[string]tool.Tool, len(n.Tools()))
		for _, t := range n.Tools() {
			byName[t.Name()] = t
		}
		g.tools[name] = byName
	}

	for _, member := range router.Members() {
		if _, ok := g.nodes[member]; !ok {
			return nil, core.NewConfigError("graph", "router member %q has no specialist node", member)
		}
	}

	return g, nil
}

// RunTurn steps the state machine until Done or the step ceiling, mutating
// st in place and checkpointing it through the store after every
// transition. Cancellation is observed only at step boundaries so a
// checkpoint is never abandoned half-written. On step exhaustion the turn
// still ends with a user-visible message and returns core.ErrStepLimit.
func (g *Graph) RunTurn(ctx context.Context, st *core.State) error {
	current := g.entryState(st)
	g.logger.Debug("graph.turn.start", "session", st.SessionID, "entry", current)

	for steps := 0; current != StateDone; steps++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if steps >= g.maxSteps {
			st.Next = core.Finish
			st.Append(core.NewAssistantMessage(StateSupervisor, StepLimitResponse))
			if err := g.checkpoint(st); err != nil {
				return err
			}
			g.logger.Warn("graph.step_limit", "session", st.SessionID, "max_steps", g.maxSteps)
			return core.ErrStepLimit
		}

		next := g.step(ctx, current, st)
		if err := g.checkpoint(st); err != nil {
			return err
		}

		g.logger.Debug("graph.transition", "session", st.SessionID, "from", current, "to", next)
		current = next
	}

	return nil
}

// step executes one state and returns the next. It is total: every state
// always yields a successor, failures included.
func (g *Graph) step(ctx context.Context, current string, st *core.State) string {
	switch {
	case current == StateSupervisor:
		decision := g.router.Decide(ctx, st)
		st.Next = string(decision)
		if decision.IsFinish() {
			return StateDone
		}
		return string(decision)

	case strings.HasSuffix(current, toolsSuffix):
		specialist := strings.TrimSuffix(current, toolsSuffix)
		pending := g.pendingCalls(st, specialist)
		if results := g.executor.Execute(ctx, g.tools[specialist], pending); len(results) > 0 {
			st.Append(results...)
		}
		return specialist

	default: // specialist state
		node, ok := g.nodes[current]
		if !ok {
			// Unreachable after New validation; fail safe to termination.
			g.logger.Error("graph.unknown_state", "state", current)
			st.Next = core.Finish
			return StateDone
		}
		msg := node.Run(ctx, st)
		st.Append(msg)
		if msg.HasToolCalls() {
			return ToolsState(current)
		}
		return StateSupervisor
	}
}

// entryState derives where to resume from the checkpointed state. A fresh
// turn (last message from the user) starts at Supervisor; a state written
// mid-turn resumes at the step after its last completed transition, so a
// replay continues instead of re-running finished work.
func (g *Graph) entryState(st *core.State) string {
	last, ok := st.LastMessage()
	if !ok {
		return StateSupervisor
	}

	switch last.Role {
	case core.RoleAssistant:
		if _, isNode := g.nodes[last.Author]; !isNode {
			return StateSupervisor
		}
		if len(g.pendingCalls(st, last.Author)) > 0 {
			return ToolsState(last.Author)
		}
		if last.HasToolCalls() {
			// All calls already answered; the specialist interprets them.
			return last.Author
		}
		return StateSupervisor
	case core.RoleTool:
		owner, ok := g.callOwner(st, last.ToolCallID)
		if !ok {
			return StateSupervisor
		}
		if len(g.pendingCalls(st, owner)) > 0 {
			// Partially answered batch; finish it before the specialist runs.
			return ToolsState(owner)
		}
		return owner
	default:
		return StateSupervisor
	}
}

// pendingCalls returns the tool calls of the specialist's latest assistant
// message that do not yet have a matching result message. Satisfied calls
// are skipped so a resumed turn never re-invokes completed tools.
func (g *Graph) pendingCalls(st *core.State, specialist string) []core.ToolCall {
	var request core.Message
	found := false
	for i := len(st.Messages) - 1; i >= 0; i-- {
		m := st.Messages[i]
		if m.Role == core.RoleAssistant && m.Author == specialist {
			request = m
			found = true
			break
		}
	}
	if !found || !request.HasToolCalls() {
		return nil
	}

	answered := make(map[string]bool)
	for _, m := range st.Messages {
		if m.Role == core.RoleTool && m.ToolCallID != "" {
			answered[m.ToolCallID] = true
		}
	}

	var pending []core.ToolCall
	for _, call := range request.ToolCalls {
		if !answered[call.ID] {
			pending = append(pending, call)
		}
	}
	return pending
}

// callOwner finds the specialist whose assistant message issued the call.
func (g *Graph) callOwner(st *core.State, callID string) (string, bool) {
	if callID == "" {
		return "", false
	}
	for i := len(st.Messages) - 1; i >= 0; i-- {
		m := st.Messages[i]
		if m.Role != core.RoleAssistant {
			continue
		}
		for _, call := range m.ToolCalls {
			if call.ID == callID {
				_, isNode := g.nodes[m.Author]
				return m.Author, isNode
			}
		}
	}
	return "", false
}

func (g *Graph) checkpoint(st *core.State) error {
	return g.store.Put(st.SessionID, st)
}
