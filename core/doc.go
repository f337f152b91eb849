// Package core defines the shared data model of the orchestration engine:
// conversation messages, tool call requests and the per-session state that
// the scheduler threads through each turn. Everything here is transport
// agnostic; model providers and tool backends adapt to these types.
package core
