package image

import (
	"context"
	"io"
	"log/slog"

	"github.com/gardenzilla/procurement/internal/build"
	"github.com/gardenzilla/procurement/internal/runtime"
)

// Settings for building on containerd.
type ContainerdOptions struct {
	Address   string    // containerd socket. Empty uses [runtime.DefaultAddress].
	Namespace string    // containerd namespace. Empty uses [runtime.DefaultNamespace].
	Output    string    // Directory receiving image.tar.
	Platforms []string  // Target platforms. Defaults to the host.
	Tag       string    // When set, a single-platform result is imported under this name.
	Progress  io.Writer // Receives command output.
}

// Builds def on containerd and returns the exported archive per platform.
func BuildContainerd(ctx context.Context, def *Definition, opts ContainerdOptions) (map[string]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	address := opts.Address
	if address == "" {
		address = runtime.DefaultAddress
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = runtime.DefaultNamespace
	}

	rt, err := runtime.New(address, namespace)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	slog.Info("building image", "backend", "containerd", "variant", def.Variant.Name, "output", opts.Output)

	result, err := build.Run(ctx, rt, build.Options{
		Recipe:    def.Recipe(),
		Output:    opts.Output,
		Root:      def.Context(),
		Image:     def.ImageConfig(),
		Platforms: opts.Platforms,
		Progress:  opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	if opts.Tag != "" && len(result.Archives) == 1 {
		for _, archive := range result.Archives {
			if err := rt.ImportImage(ctx, archive, opts.Tag); err != nil {
				return nil, err
			}
		}
	}

	return result.Archives, nil
}
