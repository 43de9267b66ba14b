package ctl

import (
	"context"
	"fmt"
	"os"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/recipe"
)

// Represents 'procurectl sync'.
type SyncCmd struct{}

func (c *SyncCmd) Run(ctx context.Context) error {
	o, err := orchestrator(ctx, recipe.Config{})
	if err != nil {
		return err
	}
	return o.Sync(ctx)
}

// Represents 'procurectl build'.
type BuildCmd struct{}

func (c *BuildCmd) Run(ctx context.Context) error {
	o, err := orchestrator(ctx, recipe.Config{})
	if err != nil {
		return err
	}
	artifact, err := o.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Println(artifact)
	return nil
}

// Represents 'procurectl release'.
type ReleaseCmd struct {
	Version string `help:"Version stamped into the binary." env:"PROCUREMENT_VERSION"`
	Stage   string `help:"Release stage stamped into the binary." env:"PROCUREMENT_STAGE" default:"release"`
	Commit  string `help:"Git commit stamped into the binary." env:"PROCUREMENT_GIT_COMMIT"`
	Strip   string `help:"Strip tool." default:"strip"`
}

func (c *ReleaseCmd) Run(ctx context.Context) error {
	o, err := orchestrator(ctx, recipe.Config{
		Strip: c.Strip,
		Stamp: internal.Stamp{
			Version:   c.Version,
			Stage:     c.Stage,
			GitCommit: c.Commit,
		},
	})
	if err != nil {
		return err
	}
	artifact, err := o.Release(ctx)
	if err != nil {
		return err
	}
	fmt.Println(artifact)
	return nil
}

// Represents 'procurectl run' and its alias 'procurectl dev'.
type RunCmd struct {
	Args []string `arg:"" optional:"" passthrough:"" help:"Arguments passed to the service."`
}

func (c *RunCmd) Run(ctx context.Context) error {
	o, err := orchestrator(ctx, recipe.Config{
		Args:  c.Args,
		Stdin: os.Stdin,
	})
	if err != nil {
		return err
	}
	return o.Run(ctx)
}

// Represents 'procurectl test'.
type TestCmd struct {
	Packages []string `arg:"" optional:"" help:"Packages to test. Defaults to ./..."`
}

func (c *TestCmd) Run(ctx context.Context) error {
	o, err := orchestrator(ctx, recipe.Config{})
	if err != nil {
		return err
	}
	return o.Test(ctx, c.Packages...)
}

// Represents 'procurectl version'.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx context.Context) error {
	fmt.Println(internal.VersionString())
	return nil
}
