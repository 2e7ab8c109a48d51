// Package sink implements the CommandSink capability the matcher dispatches
// matched rule commands through: a shell sink that runs them as shell
// commands, and an MQTT sink that publishes them for an external consumer.
package sink

import (
	"context"
	"fmt"
	"os/exec"
)

// CommandSink is the one-method capability a matcher dispatches commands
// through. It must not call back into the matcher.
type CommandSink interface {
	Dispatch(cmd string) error
}

// ShellSink runs each command through a shell, synchronously, the same way
// the original button-hold watcher did: `sh -c <command>`.
type ShellSink struct {
	// Shell is the interpreter to invoke; defaults to "sh" when empty.
	Shell string
}

// NewShellSink builds a ShellSink using shell as the interpreter, or "sh" if
// shell is empty.
func NewShellSink(shell string) *ShellSink {
	if shell == "" {
		shell = "sh"
	}
	return &ShellSink{Shell: shell}
}

// Dispatch runs cmd to completion and reports any non-zero exit or launch
// failure. Output is discarded; callers that need it should have the
// command write to a file or socket itself.
func (s *ShellSink) Dispatch(cmd string) error {
	c := exec.CommandContext(context.Background(), s.Shell, "-c", cmd)
	if err := c.Run(); err != nil {
		return fmt.Errorf("run command %q: %w", cmd, err)
	}
	return nil
}
