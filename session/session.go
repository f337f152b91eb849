// Package session provides the checkpointer: per-session persistence of the
// accumulating conversation state. The scheduler writes a checkpoint at
// every state-machine transition, so a crash mid-turn resumes from the last
// completed step rather than the start of the turn.
package session

import (
	"github.com/drt-labs-ai/conversional-commerce-agent/core"
)

// Store persists orchestration state keyed by an opaque session identifier.
// Implementations must guarantee per-key atomic upsert so concurrent turns
// on the same session cannot interleave corruptly, and should return clones
// from Get so callers can mutate their copy freely.
type Store interface {
	// Get returns the state for the session, creating an empty one for an
	// unknown id. The returned value is the caller's to mutate.
	Get(sessionID string) (*core.State, error)

	// Put atomically replaces the stored state with a snapshot of st. This
	// is the checkpoint operation: it must complete before the scheduler
	// takes its next transition.
	Put(sessionID string, st *core.State) error

	// Lock serializes turns per session: it blocks while another holder owns
	// the same key and returns an unlock function. Different keys never
	// contend.
	Lock(sessionID string) (unlock func())
}
