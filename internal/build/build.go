package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	goruntime "runtime"

	"github.com/gardenzilla/procurement/internal/paths"
	"github.com/gardenzilla/procurement/internal/runtime"
)

// Controls recipe execution.
type Options struct {
	Recipe    *Recipe             // Recipe to execute.
	Output    string              // Directory receiving the exported archive.
	Root      string              // Build context for host copy sources.
	Image     runtime.ImageConfig // Config of the exported image.
	Platforms []string            // Target platforms. Defaults to the host.
	Progress  io.Writer           // Receives command output. Nil discards it.
}

// Returned after a successful build.
type Result struct {
	Archives map[string]string // Exported archive path per platform.
}

// Validates and executes a recipe against the container runtime.
func Run(ctx context.Context, rt *runtime.Runtime, opts Options) (*Result, error) {
	if err := opts.Recipe.Validate(); err != nil {
		return nil, err
	}

	if len(opts.Platforms) == 0 {
		opts.Platforms = []string{"linux/" + goruntime.GOARCH}
	}

	slog.Info("executing recipe",
		"recipe", opts.Recipe.Name,
		"output", opts.Output,
		"stages", len(opts.Recipe.Stages),
		"platforms", opts.Platforms,
	)

	if err := os.MkdirAll(opts.Output, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	return newBuilder(rt, opts).build(ctx)
}
