package image

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/build"
)

// Builds images through a Docker engine.
type Docker struct {
	cli *client.Client
}

// Creates a Docker client configured from the DOCKER_* environment. The
// engine is not contacted until [Docker.Build].
func NewDocker() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create docker client: %w", ErrImageBuild, err)
	}
	return &Docker{cli: cli}, nil
}

// Closes the client.
func (d *Docker) Close() error {
	return d.cli.Close()
}

// Builds def and tags the result. Engine output is written to progress; an
// error reported in the build stream fails the build.
func (d *Docker) Build(ctx context.Context, def *Definition, tag string, progress io.Writer) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if progress == nil {
		progress = io.Discard
	}

	buildCtx, err := buildContext(def)
	if err != nil {
		return fmt.Errorf("%w: failed to create build context: %w", ErrImageBuild, err)
	}

	slog.Info("building image", "backend", "docker", "variant", def.Variant.Name, "tag", tag)

	resp, err := d.cli.ImageBuild(ctx, buildCtx, types.ImageBuildOptions{
		Tags:        []string{tag},
		Dockerfile:  "Dockerfile",
		Remove:      true,
		ForceRemove: true,
		PullParent:  true,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrImageBuild, err)
	}
	defer resp.Body.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, progress, 0, false, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrImageBuild, err)
	}

	slog.Info("image built", "tag", tag)
	return nil
}

// Returns an in-memory tar build context holding the rendered Dockerfile and
// either the binary under its in-image name or the source tree.
func buildContext(def *Definition) (io.Reader, error) {
	dockerfile, err := def.Dockerfile()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if def.Source != "" {
		err = build.WriteTree(tw, def.Source, "")
	} else {
		err = writeBinary(tw, def.Binary)
	}
	if err != nil {
		return nil, err
	}

	// Last, so it replaces a Dockerfile from the source tree.
	if err := tw.WriteHeader(&tar.Header{
		Name:    "Dockerfile",
		Mode:    0644,
		Size:    int64(len(dockerfile)),
		ModTime: time.Now(),
	}); err != nil {
		return nil, err
	}
	if _, err := io.WriteString(tw, dockerfile); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	return &buf, nil
}

func writeBinary(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	if err := tw.WriteHeader(&tar.Header{
		Name:    internal.BinaryName,
		Mode:    0755,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}); err != nil {
		return err
	}

	_, err = io.Copy(tw, f)
	return err
}
