package cli

import (
	"context"
	"fmt"

	"github.com/gardenzilla/procurement/internal"
)

// Represents the 'procurement_microservice version' command.
type VersionCmd struct {
	Short bool `short:"s" help:"Print the version number only."`
}

// Executes the version command.
func (c *VersionCmd) Run(ctx context.Context) error {
	if c.Short {
		fmt.Println(internal.Version())
		return nil
	}
	fmt.Println(internal.VersionString())
	if commit := internal.GitCommit(); commit != "" {
		fmt.Println("commit:", commit)
	}
	return nil
}
