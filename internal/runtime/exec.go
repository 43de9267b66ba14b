package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync/atomic"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

var execSeq atomic.Uint64

func nextExecID() string {
	return fmt.Sprintf("exec-%d", execSeq.Add(1))
}

// A shell command to run inside a build container.
type Process struct {
	Shell   string    // Shell binary, invoked as "shell -c command".
	Command string    // Command line passed to the shell.
	Env     []string  // "KEY=VALUE" entries layered over the image env.
	Workdir string    // Working directory; empty keeps the image default.
	Stdout  io.Writer // Receives standard output. Nil discards it.
}

// Outcome of a [Container.Exec] call.
type ExecResult struct {
	ExitCode int
	Stderr   string
}

// Runs p inside the container and waits for it to exit. A non-zero exit
// code is reported in the result, not as an error.
func (c *Container) Exec(ctx context.Context, p Process) (*ExecResult, error) {
	exitCode, stderr, err := c.execCommand(ctx, nil, p.Stdout, p.Env, p.Workdir, p.Shell, "-c", p.Command)
	if err != nil {
		return nil, err
	}
	return &ExecResult{ExitCode: exitCode, Stderr: stderr}, nil
}

// Derives a process spec from the container spec with args, env and workdir
// overridden.
func (c *Container) processSpec(ctx context.Context, env []string, workdir string, args ...string) (*specs.Process, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, err
	}

	spec, err := ctr.Spec(ctx)
	if err != nil {
		return nil, err
	}

	pspec := *spec.Process
	pspec.Terminal = false
	pspec.Args = args

	if len(env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, env)
	}
	if workdir != "" {
		pspec.Cwd = workdir
	}

	return &pspec, nil
}

// Layers overrides on top of base. Entries without "=" are dropped and the
// result is sorted by key.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range slices.Concat(base, overrides) {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}

	result := make([]string, 0, len(merged))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		result = append(result, k+"="+merged[k])
	}
	return result
}

// Runs args inside the container and returns the exit code with the
// captured stderr.
func (c *Container) execCommand(ctx context.Context, stdin io.Reader, stdout io.Writer, env []string, workdir string, args ...string) (int, string, error) {
	pspec, err := c.processSpec(ctx, env, workdir, args...)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	var stderr bytes.Buffer
	exitCode, err := c.execProcess(ctx, pspec, stdin, stdout, &stderr)
	if err != nil {
		return 0, "", err
	}
	return exitCode, stderr.String(), nil
}

// Attaches a process to the idle task and waits for it.
//
// When stdin is set, the process stdin is closed once the reader reaches
// EOF. The shim holds both ends of the stdin FIFO, so EOF is not propagated
// otherwise.
func (c *Container) execProcess(ctx context.Context, pspec *specs.Process, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	task, err := c.loadTask(ctx)
	if err != nil {
		return 0, err
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	var stdinDone <-chan struct{}
	if stdin != nil {
		dr := newDoneReader(stdin)
		stdin = dr
		stdinDone = dr.done
	}

	process, err := task.Exec(ctx, nextExecID(), pspec, cio.NewCreator(
		cio.WithStreams(stdin, stdout, stderr),
	))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	return awaitProcess(ctx, process, stdinDone)
}

func (c *Container) loadTask(ctx context.Context) (containerd.Task, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return task, nil
}

// Starts process, waits for it to exit and deletes it.
func awaitProcess(ctx context.Context, process containerd.Process, stdinDone <-chan struct{}) (int, error) {
	statusC, err := process.Wait(ctx)
	if err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := process.Start(ctx); err != nil {
		process.Delete(ctx)
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if stdinDone != nil {
		go func() {
			<-stdinDone
			process.CloseIO(ctx, containerd.WithStdinCloser)
		}()
	}

	exitStatus := <-statusC
	process.Delete(ctx)

	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return int(code), nil
}
