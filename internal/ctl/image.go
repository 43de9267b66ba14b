package ctl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/image"
	"github.com/gardenzilla/procurement/internal/recipe"
)

// Represents 'procurectl image'.
type ImageCmd struct {
	Variant   string   `short:"V" help:"Base image variant (${variants})." default:"debian"`
	Binary    string   `short:"b" help:"Release binary. Defaults to <output>/release/${binary}." placeholder:"PATH" type:"path"`
	Workdir   string   `help:"Working directory inside the image." default:"${workdir}"`
	NoUpgrade bool     `help:"Skip the package index refresh and upgrade."`
	Tools     []string `help:"Diagnostic packages to install instead of the variant default."`
	NoTools   bool     `help:"Install no diagnostic packages."`

	FromSource bool   `help:"Compile the binary from the source tree in a builder stage instead of copying it."`
	Builder    string `help:"Go toolchain image for --from-source." default:"${builder}"`
	Version    string `help:"Version stamped into a source build." env:"PROCUREMENT_VERSION"`
	Stage      string `help:"Release stage stamped into a source build." env:"PROCUREMENT_STAGE" default:"release"`
	Commit     string `help:"Git commit stamped into a source build." env:"PROCUREMENT_GIT_COMMIT"`

	Dockerfile DockerfileCmd `cmd:"" help:"Print the rendered Dockerfile."`
	Build      ImageBuildCmd `cmd:"" help:"Build the image."`
}

// Creates the image definition for the flags.
func (c *ImageCmd) definition() (*image.Definition, error) {
	binary := c.Binary
	if binary == "" {
		output := RootCmd.Output
		if !filepath.IsAbs(output) && isLocalDir(RootCmd.Root) {
			output = filepath.Join(RootCmd.Root, output)
		}
		binary = filepath.Join(output, recipe.Release, internal.BinaryName)
	}

	opts := []image.Option{image.WithWorkdir(c.Workdir)}
	if c.FromSource {
		if !isLocalDir(RootCmd.Root) {
			return nil, fmt.Errorf("%w: --from-source needs a local source tree, got %q", image.ErrMissingSource, RootCmd.Root)
		}
		stamp := internal.Stamp{Version: c.Version, Stage: c.Stage, GitCommit: c.Commit}
		opts = append(opts, image.WithSource(RootCmd.Root, stamp))
		if c.Builder != "" {
			opts = append(opts, image.WithBuilder(c.Builder))
		}
	}
	if c.NoUpgrade {
		opts = append(opts, image.WithoutRefresh())
	}
	switch {
	case c.NoTools:
		opts = append(opts, image.WithTools())
	case len(c.Tools) > 0:
		opts = append(opts, image.WithTools(c.Tools...))
	}

	return image.New(c.Variant, binary, opts...)
}

func isLocalDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Represents 'procurectl image dockerfile'.
type DockerfileCmd struct{}

func (c *DockerfileCmd) Run(ctx context.Context) error {
	def, err := RootCmd.Image.definition()
	if err != nil {
		return err
	}
	dockerfile, err := def.Dockerfile()
	if err != nil {
		return err
	}
	fmt.Print(dockerfile)
	return nil
}

// Represents 'procurectl image build'.
type ImageBuildCmd struct {
	Backend   string   `help:"Image builder (docker, containerd)." enum:"docker,containerd" default:"docker"`
	Tag       string   `short:"t" help:"Image name." default:"${tag}"`
	Address   string   `help:"containerd socket." env:"CONTAINERD_ADDRESS" default:"${containerd_address}"`
	Namespace string   `help:"containerd namespace." default:"${containerd_namespace}"`
	Platform  []string `help:"Target platforms for the containerd backend."`
	Archive   string   `help:"Directory receiving image.tar from the containerd backend." default:"${archive_dir}" type:"path"`
}

func (c *ImageBuildCmd) Run(ctx context.Context) error {
	def, err := RootCmd.Image.definition()
	if err != nil {
		return err
	}

	switch c.Backend {
	case "containerd":
		archives, err := image.BuildContainerd(ctx, def, image.ContainerdOptions{
			Address:   c.Address,
			Namespace: c.Namespace,
			Output:    c.Archive,
			Platforms: c.Platform,
			Tag:       c.Tag,
			Progress:  os.Stderr,
		})
		if err != nil {
			return err
		}
		for platform, archive := range archives {
			fmt.Printf("%s\t%s\n", platform, archive)
		}
		return nil

	default:
		docker, err := image.NewDocker()
		if err != nil {
			return err
		}
		defer docker.Close()
		if err := docker.Build(ctx, def, c.Tag, os.Stderr); err != nil {
			return err
		}
		fmt.Println(c.Tag)
		return nil
	}
}
