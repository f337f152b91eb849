// Package graph implements the orchestration state machine that drives a
// conversation between the supervisor router and specialist agent nodes.
//
// States are Supervisor, one state per specialist, one paired Tools state
// per specialist, and the terminal Done state. Transitions:
//
//	Supervisor  -> specialist        router selected it
//	Supervisor  -> Done              router returned FINISH
//	specialist  -> specialistTools   the node's message requests tool calls
//	specialist  -> Supervisor        the node produced a plain answer
//	specialistTools -> specialist    unconditional, results fed back
//
// Every transition checkpoints session state through the store before the
// next transition begins, and a per-turn step ceiling forces termination
// when routing oscillates.
package graph
