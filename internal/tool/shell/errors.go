package shell

import (
	"errors"
	"fmt"
)

// CommandError wraps a failure to start or read from a command.
type CommandError struct {
	Cmd   string
	Stage string
	Cause error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }

// -- Sentinels --

var (
	ErrTimeout         = errors.New("command timeout")
	ErrCommandRequired = errors.New("command cannot be empty")
)
