package ctl

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/image"
	"github.com/gardenzilla/procurement/internal/recipe"
	"github.com/gardenzilla/procurement/internal/runtime"
)

// Represents the root command for procurectl.
var RootCmd struct {
	Quiet   bool   `short:"q" help:"Suppress informational output."`
	Verbose bool   `short:"v" help:"Attach source locations to log records."`
	Debug   bool   `short:"d" help:"Enable debug output."`
	Root    string `short:"C" help:"Source tree: a directory or a git URL." default:"." placeholder:"SRC"`
	Ref     string `help:"Branch to check out for git sources." placeholder:"BRANCH"`
	EnvFile string `short:"e" help:"Env list file exported to every step. Defaults to ENV.list in the source tree." placeholder:"PATH"`
	Output  string `short:"o" help:"Artifact directory." default:"${output}" placeholder:"DIR"`

	Sync    SyncCmd    `cmd:"" help:"Download module dependencies."`
	Build   BuildCmd   `cmd:"" help:"Compile a debug binary."`
	Release ReleaseCmd `cmd:"" help:"Compile an optimized binary and strip it."`
	Run     RunCmd     `cmd:"" aliases:"dev" help:"Compile and run the service in the foreground."`
	Test    TestCmd    `cmd:"" help:"Run the test suite."`
	Image   ImageCmd   `cmd:"" help:"Package the release binary into a container image."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
// Returns the exit status for the process.
func Execute() int {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name("procurectl"),
		kong.Description("Builds, tests, runs and packages the procurement service."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"output":               recipe.DefaultOutput,
			"binary":               internal.BinaryName,
			"variants":             strings.Join(image.Variants(), ", "),
			"workdir":              image.DefaultWorkdir,
			"builder":              image.DefaultBuilder,
			"tag":                  internal.BinaryName + ":latest",
			"containerd_address":   runtime.DefaultAddress,
			"containerd_namespace": runtime.DefaultNamespace,
			"archive_dir":          filepath.Join(recipe.DefaultOutput, "image"),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	internal.ApplyFlags(RootCmd.Quiet, RootCmd.Verbose, RootCmd.Debug)
	configureLogger()

	return exitCode(kongCtx.Run())
}

// Maps a command error to a process exit status. Tool failures keep the
// tool's own status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *recipe.ExitError
	if errors.As(err, &exitErr) {
		slog.Error("step failed", "step", exitErr.Step, "status", exitErr.Code)
		return exitErr.Code
	}

	slog.Error(err.Error())
	return 1
}

func configureLogger() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     internal.LogLevel(),
		AddSource: internal.IsVerbose(),
	})
	slog.SetDefault(slog.New(handler))
}

// Creates the orchestrator for the global flags.
func orchestrator(ctx context.Context, cfg recipe.Config) (*recipe.Orchestrator, error) {
	cfg.Root = RootCmd.Root
	cfg.Ref = RootCmd.Ref
	cfg.EnvFile = RootCmd.EnvFile
	cfg.Output = RootCmd.Output
	return recipe.New(ctx, cfg, recipe.ExecRunner{})
}
