package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
)

const (

	// Snapshotter backing build container filesystems. fuse-overlayfs works
	// without mount(2), so image builds do not require root.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for build containers.
	ociRuntime = "io.containerd.runc.v2"

	// Default containerd namespace for build resources.
	DefaultNamespace = "procurement"

	// Default containerd socket address.
	DefaultAddress = "/run/containerd/containerd.sock"
)

// Client for the containerd daemon used during image builds.
type Runtime struct {
	client *containerd.Client
}

// Connects to containerd at address. All operations are scoped to namespace.
// The runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Starts a build container from base.
//
// The base is pulled from its registry and unpacked for platform, any stale
// container with the same id is removed, and an idle task is started so
// that [Container.Exec] has a process to attach to.
func (rt *Runtime) StartContainer(ctx context.Context, base, id, platform string) (*Container, error) {
	if err := rt.pull(ctx, base, platform); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRuntime, base, err)
	}

	c := &Container{client: rt.client, id: id, platform: platform}
	c.remove(ctx)

	image, err := rt.resolveImage(ctx, base, platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	ctr, err := c.create(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	if err := c.startTask(ctx, ctr); err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return nil, fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Debug("build container started", "id", id, "image", base, "platform", platform)
	return c, nil
}

// Pulls ref for platform and unpacks it into the build snapshotter.
func (rt *Runtime) pull(ctx context.Context, ref, platform string) error {
	slog.Info("pulling base image", "ref", ref, "platform", platform)
	_, err := rt.client.Pull(ctx, ref,
		containerd.WithPlatform(platform),
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(snapshotter),
	)
	return err
}

// Imports a built OCI archive under tag and unpacks it for the host, so the
// result of a build can be run by containerd clients directly.
func (rt *Runtime) ImportImage(ctx context.Context, path, tag string) error {
	if err := rt.importAs(ctx, path, tag); err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	image, err := rt.resolveImage(ctx, tag, hostPlatform())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	if err := image.Unpack(ctx, snapshotter); err != nil {
		return fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("image imported", "tag", tag)
	return nil
}

// Imports the single image of an OCI archive and stores it under tag,
// replacing an existing record of the same name.
func (rt *Runtime) importAs(ctx context.Context, path, tag string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	imported, err := rt.client.Import(ctx, fh)
	if err != nil {
		return err
	}

	// One record per entry of index.json. A multi-platform archive is a
	// single index entry; several entries are unrelated images.
	switch {
	case len(imported) == 0:
		return ErrEmptyArchive
	case len(imported) > 1:
		return ErrMultipleImages
	}
	source := imported[0]

	is := rt.client.ImageService()
	record := images.Image{Name: tag, Target: source.Target}

	if _, err := is.Create(ctx, record); err != nil {
		if !errdefs.IsAlreadyExists(err) {
			return err
		}
		if _, err := is.Update(ctx, record, "target"); err != nil {
			return err
		}
	}

	if source.Name != tag {
		_ = is.Delete(ctx, source.Name)
	}
	return nil
}

// Looks up a stored image restricted to the manifest for platform.
func (rt *Runtime) resolveImage(ctx context.Context, tag, platform string) (containerd.Image, error) {
	p, err := platforms.Parse(platform)
	if err != nil {
		return nil, err
	}

	img, err := rt.client.ImageService().Get(ctx, tag)
	if err != nil {
		return nil, err
	}

	return containerd.NewImageWithPlatform(rt.client, img, platforms.Only(p)), nil
}

// Returns the OCI platform of the host, e.g. "linux/amd64".
func hostPlatform() string {
	return "linux/" + goruntime.GOARCH
}
