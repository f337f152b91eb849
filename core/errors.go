package core

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned by the scheduler when a turn exhausts its step
// budget. The turn still terminates with a user-visible message and a
// checkpointed state; this error only reports why it stopped early.
var ErrStepLimit = errors.New("step limit exceeded")

// ConfigError reports invalid wiring detected at construction time, such as
// an agent bound to a tool name missing from its registry subset. These are
// programming errors and fatal at startup, never at call time.
type ConfigError struct {
	Component string
	Message   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
}

// NewConfigError creates a ConfigError for the named component.
func NewConfigError(component, format string, args ...any) *ConfigError {
	return &ConfigError{Component: component, Message: fmt.Sprintf(format, args...)}
}
