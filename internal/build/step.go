package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/gardenzilla/procurement/internal/runtime"
)

// Runs the steps of one stage inside its container.
type executor struct {
	ctr      *runtime.Container
	root     string                        // Build context for host copies.
	stages   map[string]*runtime.Container // Named stages of the current platform.
	progress io.Writer
}

func (e *executor) steps(ctx context.Context, steps []Step, state *stepState) error {
	for i, step := range steps {
		if err := e.step(ctx, step, state); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Runs an operation, or records a modifier for the steps that follow.
func (e *executor) step(ctx context.Context, step Step, state *stepState) error {
	if step.Run == "" && step.Copy == "" {
		state.apply(step)
		return nil
	}
	return e.operation(ctx, step, state.resolve(step))
}

func (e *executor) operation(ctx context.Context, step Step, resolved *stepState) error {
	if resolved.workdir != "" {
		if err := e.ctr.MkdirAll(ctx, resolved.workdir); err != nil {
			return err
		}
	}

	if step.Copy != "" {
		return e.copy(ctx, step.Copy, resolved.workdir)
	}

	slog.Debug("run", "command", step.Run, "workdir", resolved.workdir)
	result, err := e.ctr.Exec(ctx, runtime.Process{
		Shell:   stepShell,
		Command: step.Run,
		Env:     resolved.environ(),
		Workdir: resolved.workdir,
		Stdout:  e.progress,
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("%w: %q exited with code %d: %s", ErrCommandFailed, step.Run, result.ExitCode, result.Stderr)
	}
	return nil
}
