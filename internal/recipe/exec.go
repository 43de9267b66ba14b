package recipe

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Grace period between forwarding SIGINT and killing the child.
const interruptGrace = 10 * time.Second

// Offset added to the signal number of a child killed by a signal, as
// shells report it.
const signalStatusBase = 128

// A process to start.
type Command struct {
	Step   string   // Recipe step the command belongs to.
	Name   string   // Program name or path.
	Args   []string // Arguments, without the program name.
	Dir    string   // Working directory.
	Env    []string // Complete environment.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Returns the command line for logs.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Starts commands and waits for them.
type Executor interface {
	Run(ctx context.Context, cmd Command) error
}

// Runs commands as child processes. Cancelling the context forwards SIGINT
// to the child, which is killed if it has not exited after a grace period.
type ExecRunner struct{}

// Runs cmd. A non-zero exit status is returned as [*ExitError]; a child
// that exits cleanly after an interrupt is a success.
func (ExecRunner) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout
	c.Stderr = cmd.Stderr
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = interruptGrace

	slog.Debug("exec", "step", cmd.Step, "command", cmd.String(), "dir", cmd.Dir)

	err := c.Run()

	// A child that exits on its own after a forwarded SIGINT still makes
	// Run report the context error, so the process state decides.
	if c.ProcessState == nil {
		return err
	}
	if c.ProcessState.Success() {
		return nil
	}
	return &ExitError{Step: cmd.Step, Code: exitStatus(c.ProcessState)}
}

// Returns the exit status of a finished process, or 128 plus the signal
// number when a signal terminated it.
func exitStatus(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return signalStatusBase + int(ws.Signal())
	}
	return state.ExitCode()
}
