package core

import "time"

// Finish is the completion sentinel for routing decisions. When State.Next
// holds this value the scheduler transitions to the terminal state.
const Finish = "FINISH"

// State is the session-scoped orchestration state: the append-only message
// sequence plus the route target chosen by the most recent supervisor
// decision. The session store owns the canonical copy; the scheduler borrows
// a clone for the duration of one turn and checkpoints it back at every
// state-machine transition.
type State struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
	Next      string    `json:"next,omitempty"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

// NewState creates an empty state for the given session identifier.
func NewState(sessionID string) *State {
	now := time.Now().UTC()
	return &State{SessionID: sessionID, Messages: []Message{}, Created: now, Updated: now}
}

// Append adds messages to the history. Prior messages are never touched.
func (s *State) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.Updated = time.Now().UTC()
}

// LastMessage returns the most recent message, if any.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Window returns the last n messages (or all of them when fewer exist). The
// returned slice aliases the history and must be treated as read-only.
func (s *State) Window(n int) []Message {
	if n <= 0 || n >= len(s.Messages) {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// Clone returns a deep copy safe for independent mutation.
func (s *State) Clone() *State {
	c := &State{
		SessionID: s.SessionID,
		Messages:  make([]Message, len(s.Messages)),
		Next:      s.Next,
		Created:   s.Created,
		Updated:   s.Updated,
	}
	for i, m := range s.Messages {
		c.Messages[i] = m.Clone()
	}
	return c
}
