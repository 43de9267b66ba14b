package runtime

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
)

// Creates a directory and its parents inside the container.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.run(ctx, nil, nil, "mkdir", "-p", path)
}

// Extracts the tar stream r into destDir inside the container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.run(ctx, r, nil, "tar", "xf", "-", "-C", destDir)
}

// Writes path from the container to w as a tar stream.
func (c *Container) CopyFrom(ctx context.Context, w io.Writer, path string) error {
	return c.run(ctx, nil, w, "tar", "cf", "-", "-C", filepath.Dir(path), filepath.Base(path))
}

// Runs a helper command and fails on a non-zero exit code.
func (c *Container) run(ctx context.Context, stdin io.Reader, stdout io.Writer, args ...string) error {
	exitCode, stderr, err := c.execCommand(ctx, stdin, stdout, nil, "", args...)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return fmt.Errorf("%w: %s exited with code %d: %s", ErrRuntime, args[0], exitCode, stderr)
	}
	return nil
}
