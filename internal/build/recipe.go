package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardenzilla/procurement/internal/paths"
	"github.com/gardenzilla/procurement/internal/runtime"
)

// Shared state of one recipe execution.
type builder struct {
	rt         *runtime.Runtime
	recipe     *Recipe
	output     string
	root       string
	image      runtime.ImageConfig
	platforms  []string
	progress   io.Writer
	containers []*runtime.Container // Destroyed once the build finishes.
}

func newBuilder(rt *runtime.Runtime, opts Options) *builder {
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	return &builder{
		rt:        rt,
		recipe:    opts.Recipe,
		output:    opts.Output,
		root:      opts.Root,
		image:     opts.Image,
		platforms: opts.Platforms,
		progress:  progress,
	}
}

// Builds every platform in turn and destroys all stage containers.
func (b *builder) build(ctx context.Context) (*Result, error) {
	defer b.destroyContainers(ctx)

	result := &Result{Archives: make(map[string]string, len(b.platforms))}
	for _, platform := range b.platforms {
		archive, err := b.buildPlatform(ctx, platform)
		if err != nil {
			return nil, err
		}
		result.Archives[platform] = archive
	}
	return result, nil
}

// Runs all stages for one platform and returns the exported archive path.
// Named stage containers are tracked per platform for cross-stage copies.
func (b *builder) buildPlatform(ctx context.Context, platform string) (string, error) {
	slog.Info("building platform", "platform", platform)

	output := outputDir(b.output, platform, len(b.platforms))
	if err := os.MkdirAll(output, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileSystem, err)
	}

	stages := make(map[string]*runtime.Container)

	var archive string
	for i, stage := range b.recipe.Stages {
		path, err := b.buildStage(ctx, stage, i, platform, output, stages)
		if err != nil {
			return "", fmt.Errorf("%w: platform %s, stage %s: %w", ErrBuild, platform, stageLabel(stage.Name, i), err)
		}
		if path != "" {
			archive = path
		}
	}
	return archive, nil
}

// Starts the stage container, runs its steps and, unless the stage is
// transient, exports it. Returns the archive path for exported stages.
func (b *builder) buildStage(ctx context.Context, stage Stage, index int, platform, output string, stages map[string]*runtime.Container) (string, error) {
	slog.Info("building stage", "stage", stageLabel(stage.Name, index), "from", stage.From, "platform", platform)

	id := containerID(b.recipe.Name, stage.Name, index, platform)
	ctr, err := b.rt.StartContainer(ctx, stage.From, id, platform)
	if err != nil {
		return "", err
	}

	b.containers = append(b.containers, ctr)
	if stage.Name != "" {
		stages[stage.Name] = ctr
	}

	exec := &executor{ctr: ctr, root: b.root, stages: stages, progress: b.progress}
	if err := exec.steps(ctx, stage.Steps, newStepState()); err != nil {
		return "", err
	}

	if stage.Transient {
		return "", nil
	}

	if err := ctr.Stop(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", runtime.ErrRuntime, err)
	}
	return ctr.Export(ctx, output, b.image)
}

func (b *builder) destroyContainers(ctx context.Context) {
	for _, ctr := range b.containers {
		ctr.Destroy(ctx)
	}
}

// Returns a container id unique to the recipe, stage and platform.
func containerID(recipe, stage string, index int, platform string) string {
	if stage == "" {
		stage = fmt.Sprintf("%d", index+1)
	}
	return fmt.Sprintf("%s-%s-stage-%s", recipe, platformSlug(platform), stage)
}

// Single-platform builds write straight into output; multi-platform builds
// get one subdirectory per platform.
func outputDir(output, platform string, count int) string {
	if count == 1 {
		return output
	}
	return filepath.Join(output, platformSlug(platform))
}

// Turns "linux/amd64" into "linux-amd64".
func platformSlug(platform string) string {
	return strings.ReplaceAll(platform, "/", "-")
}
