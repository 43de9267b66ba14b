package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/containerd/containerd/v2/core/containers"
	"github.com/containerd/containerd/v2/core/content"
	"github.com/containerd/containerd/v2/core/images"
	"github.com/containerd/containerd/v2/core/images/archive"
	"github.com/containerd/containerd/v2/pkg/rootfs"
	"github.com/containerd/platforms"
	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// File name of the archive written by [Container.Export].
const ExportFilename = "image.tar"

// Runtime settings recorded in the exported image config.
type ImageConfig struct {
	Entrypoint []string          // Exec-form entrypoint. Cmd is cleared when set.
	WorkingDir string            // Working directory of the entrypoint.
	StopSignal string            // Signal sent to stop the container, e.g. "SIGINT".
	Labels     map[string]string // Image labels merged over the base image labels.
}

// Applies cfg to an image config. Empty fields keep the base image values.
func (cfg ImageConfig) apply(img *ocispec.ImageConfig) {
	if len(cfg.Entrypoint) > 0 {
		img.Entrypoint = cfg.Entrypoint
		img.Cmd = nil
	}
	if cfg.WorkingDir != "" {
		img.WorkingDir = cfg.WorkingDir
	}
	if cfg.StopSignal != "" {
		img.StopSignal = cfg.StopSignal
	}
	if len(cfg.Labels) > 0 {
		if img.Labels == nil {
			img.Labels = make(map[string]string, len(cfg.Labels))
		}
		for k, v := range cfg.Labels {
			img.Labels[k] = v
		}
	}
}

// Commits the container filesystem and writes output/image.tar.
//
// The snapshot diff becomes one extra layer on top of the base image and cfg
// is applied to the image config. The new manifest, config and index are
// written as leased blobs referenced only by the export; the stored base
// image record is left untouched. Returns the archive path.
func (c *Container) Export(ctx context.Context, output string, cfg ImageConfig) (string, error) {
	loaded, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	info, err := loaded.Info(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	layer, diffID, err := c.snapshotDiff(ctx, info)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	// Blobs written below must survive garbage collection until the
	// archive has been written.
	ctx, done, err := c.client.WithLease(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}
	defer done(context.Background())

	target, err := c.exportTarget(ctx, info.Image, func(manifest *ocispec.Manifest, config *ocispec.Image) {
		manifest.Layers = append(manifest.Layers, layer)
		config.RootFS.DiffIDs = append(config.RootFS.DiffIDs, diffID)
		cfg.apply(&config.Config)
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	path := filepath.Join(output, ExportFilename)
	if err := c.writeArchive(ctx, target, info.Image, path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRuntime, err)
	}

	slog.Info("image exported", "path", path, "entrypoint", cfg.Entrypoint, "stop_signal", cfg.StopSignal)
	return path, nil
}

// Returns the layer descriptor and diff id of the container's changes.
func (c *Container) snapshotDiff(ctx context.Context, info containers.Container) (ocispec.Descriptor, digest.Digest, error) {
	layer, err := rootfs.CreateDiff(ctx,
		info.SnapshotKey,
		c.client.SnapshotService(info.Snapshotter),
		c.client.DiffService(),
	)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}

	diffID, err := images.GetDiffID(ctx, c.client.ContentStore(), layer)
	if err != nil {
		return ocispec.Descriptor{}, "", err
	}
	return layer, diffID, nil
}

// Writes target to an OCI archive at path, restricted to the container's
// platform and annotated with imageName.
func (c *Container) writeArchive(ctx context.Context, target ocispec.Descriptor, imageName, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return err
	}

	return c.client.Export(ctx, f,
		archive.WithManifest(target, imageName),
		archive.WithPlatform(platforms.Only(p)),
	)
}

// Builds the descriptor to export by mutating the platform manifest and
// config of imageName. When the image root is an index, a new index holding
// only the mutated manifest is written, since layers of other platforms are
// not present locally.
func (c *Container) exportTarget(ctx context.Context, imageName string, mutate func(*ocispec.Manifest, *ocispec.Image)) (ocispec.Descriptor, error) {
	img, err := c.client.ImageService().Get(ctx, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	desc, index, err := c.platformManifest(ctx, img.Target, imageName)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	manifestDesc, err := c.mutateManifest(ctx, desc, imageName, mutate)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	if index == nil {
		return manifestDesc, nil
	}
	index.Manifests = []ocispec.Descriptor{manifestDesc}
	return c.writeBlob(ctx, img.Target.MediaType, index, imageName+"-index", content.WithLabels(indexGCLabels(*index)))
}

// Resolves root to the manifest for the container's platform. The index is
// nil when root already is a manifest.
//
// Index entries without platform metadata (common on Docker Hub) are probed
// through their image config.
func (c *Container) platformManifest(ctx context.Context, root ocispec.Descriptor, imageName string) (ocispec.Descriptor, *ocispec.Index, error) {
	if !images.IsIndexType(root.MediaType) {
		return root, nil, nil
	}

	var idx ocispec.Index
	if err := c.readJSON(ctx, root, &idx); err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	if len(idx.Manifests) == 0 {
		return ocispec.Descriptor{}, nil, fmt.Errorf("%w: %s", ErrEmptyIndex, imageName)
	}

	p, err := platforms.Parse(c.platform)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}

	if i, ok := c.matchManifest(ctx, idx, platforms.OnlyStrict(p)); ok {
		return idx.Manifests[i], &idx, nil
	}
	return idx.Manifests[0], &idx, nil
}

// Returns the position of the first manifest in idx matching the platform.
func (c *Container) matchManifest(ctx context.Context, idx ocispec.Index, matcher platforms.MatchComparer) (int, bool) {
	for i, m := range idx.Manifests {
		if m.Platform != nil && matcher.Match(*m.Platform) {
			return i, true
		}
	}
	for i, m := range idx.Manifests {
		if m.Platform != nil || !images.IsManifestType(m.MediaType) {
			continue
		}
		if p, ok := c.configPlatform(ctx, m); ok && matcher.Match(p) {
			return i, true
		}
	}
	return 0, false
}

func (c *Container) configPlatform(ctx context.Context, desc ocispec.Descriptor) (ocispec.Platform, bool) {
	var manifest ocispec.Manifest
	if err := c.readJSON(ctx, desc, &manifest); err != nil {
		return ocispec.Platform{}, false
	}
	var config ocispec.Image
	if err := c.readJSON(ctx, manifest.Config, &config); err != nil {
		return ocispec.Platform{}, false
	}
	return ocispec.Platform{
		OS:           config.OS,
		Architecture: config.Architecture,
		Variant:      config.Variant,
	}, true
}

// Applies mutate to the manifest at desc and its config, and stores both.
func (c *Container) mutateManifest(ctx context.Context, desc ocispec.Descriptor, imageName string, mutate func(*ocispec.Manifest, *ocispec.Image)) (ocispec.Descriptor, error) {
	var manifest ocispec.Manifest
	if err := c.readJSON(ctx, desc, &manifest); err != nil {
		return ocispec.Descriptor{}, err
	}

	var config ocispec.Image
	if err := c.readJSON(ctx, manifest.Config, &config); err != nil {
		return ocispec.Descriptor{}, err
	}

	mutate(&manifest, &config)

	configDesc, err := c.writeBlob(ctx, manifest.Config.MediaType, config, imageName+"-config")
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	manifest.Config = configDesc

	return c.writeBlob(ctx, desc.MediaType, manifest, imageName+"-manifest", content.WithLabels(manifestGCLabels(manifest)))
}

// Decodes the JSON blob at desc from the content store into v.
func (c *Container) readJSON(ctx context.Context, desc ocispec.Descriptor, v any) error {
	b, err := content.ReadBlob(ctx, c.client.ContentStore(), desc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Stores v as a JSON blob and returns its descriptor.
func (c *Container) writeBlob(ctx context.Context, mediaType string, v any, ref string, opts ...content.Opt) (ocispec.Descriptor, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	desc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(b),
		Size:      int64(len(b)),
	}
	if err := content.WriteBlob(ctx, c.client.ContentStore(), ref, bytes.NewReader(b), desc, opts...); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

// GC reference labels linking a manifest to its config and layers.
func manifestGCLabels(m ocispec.Manifest) map[string]string {
	labels := map[string]string{
		"containerd.io/gc.ref.content.config": m.Config.Digest.String(),
	}
	for i, layer := range m.Layers {
		labels[fmt.Sprintf("containerd.io/gc.ref.content.l.%d", i)] = layer.Digest.String()
	}
	return labels
}

// GC reference labels linking an index to its manifests.
func indexGCLabels(idx ocispec.Index) map[string]string {
	labels := make(map[string]string, len(idx.Manifests))
	for i, m := range idx.Manifests {
		labels[fmt.Sprintf("containerd.io/gc.ref.content.m.%d", i)] = m.Digest.String()
	}
	return labels
}
