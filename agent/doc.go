// Package agent implements the model-backed participants of the
// orchestration graph: specialist nodes that answer or request tool calls,
// and the supervisor router that decides which specialist acts next.
package agent
