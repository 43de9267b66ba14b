package recipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/envfile"
	"github.com/gardenzilla/procurement/internal/paths"
)

// Build profiles.
const (
	Debug   = "debug"
	Release = "release"
)

const (

	// Package compiled into the service binary.
	DefaultPackage = "./cmd/procurement_microservice"

	// Directory receiving target/<profile>/<binary>, relative to the root.
	DefaultOutput = "target"
)

// Configures an [Orchestrator].
type Config struct {
	Root     string         // Local directory or git URL of the source tree.
	Ref      string         // Branch to check out for git sources.
	CacheDir string         // Clone cache for git sources. Empty uses [paths.Sources].
	EnvFile  string         // Env list file. Empty uses ENV.list in the root, if present.
	Output   string         // Artifact directory. Relative paths resolve against the root.
	Package  string         // Main package to compile.
	Go       string         // Go tool. Defaults to "go".
	Strip    string         // Strip tool. Defaults to "strip".
	Stamp    internal.Stamp // Linker stamps for release builds.
	Args     []string       // Arguments passed to the binary by run.
	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
}

// Sequences the recipe targets over one source tree.
type Orchestrator struct {
	cfg  Config
	exec Executor
	root string   // Resolved local source directory.
	env  []string // Process environment with the env list file applied.
}

// Resolves the source tree and loads the env list file.
func New(ctx context.Context, cfg Config, exec Executor) (*Orchestrator, error) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Package == "" {
		cfg.Package = DefaultPackage
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.Go == "" {
		cfg.Go = "go"
	}
	if cfg.Strip == "" {
		cfg.Strip = "strip"
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	root, err := resolveSource(ctx, cfg.Root, cfg.Ref, cfg.CacheDir, cfg.Stderr)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(root, cfg.Output)
	}

	vars, err := loadEnv(root, cfg.EnvFile)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:  cfg,
		exec: exec,
		root: root,
		env:  envfile.Merge(os.Environ(), vars),
	}

	slog.Debug("recipe ready", "root", root, "output", cfg.Output, "env_keys", len(vars))
	return o, nil
}

// Reads the env list file. A file named explicitly must exist; the default
// one in the root is optional.
func loadEnv(root, path string) (map[string]string, error) {
	if path != "" {
		return envfile.Read(path)
	}
	return envfile.ReadOptional(filepath.Join(root, envfile.DefaultName))
}

// Returns the resolved source directory.
func (o *Orchestrator) Root() string {
	return o.root
}

// Returns the path of the artifact for profile.
func (o *Orchestrator) Artifact(profile string) string {
	return filepath.Join(o.cfg.Output, profile, internal.BinaryName)
}

// Downloads module dependencies.
func (o *Orchestrator) Sync(ctx context.Context) error {
	slog.Info("syncing dependencies")
	return o.run(ctx, "sync", o.cfg.Go, "mod", "download")
}

// Syncs and compiles a debug binary. Returns the artifact path.
func (o *Orchestrator) Build(ctx context.Context) (string, error) {
	if err := o.Sync(ctx); err != nil {
		return "", err
	}
	return o.compile(ctx, Debug)
}

// Syncs, compiles an optimized stamped binary and strips it. The artifact
// is promoted only after strip succeeded. Returns the artifact path.
func (o *Orchestrator) Release(ctx context.Context) (string, error) {
	if err := o.Sync(ctx); err != nil {
		return "", err
	}
	return o.compile(ctx, Release, func(ctx context.Context, staged string) error {
		slog.Info("stripping symbols", "path", staged)
		return o.run(ctx, "strip", o.cfg.Strip, staged)
	})
}

// Builds a debug binary and runs it in the foreground with the env list
// applied. Cancelling ctx forwards SIGINT. The child's exit status is
// returned as [*ExitError].
func (o *Orchestrator) Run(ctx context.Context) error {
	artifact, err := o.Build(ctx)
	if err != nil {
		return err
	}

	slog.Info("running", "binary", artifact, "args", o.cfg.Args)
	return o.exec.Run(ctx, Command{
		Step:   "run",
		Name:   artifact,
		Args:   o.cfg.Args,
		Dir:    o.root,
		Env:    o.env,
		Stdin:  o.cfg.Stdin,
		Stdout: o.cfg.Stdout,
		Stderr: o.cfg.Stderr,
	})
}

// Runs the test suite. Never compiles a release binary or strips.
func (o *Orchestrator) Test(ctx context.Context, args ...string) error {
	slog.Info("running tests")
	return o.run(ctx, "test", o.cfg.Go, append([]string{"test"}, testArgs(args)...)...)
}

func testArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

// Compiles profile to a staging file, runs post on it, and renames it to
// the artifact path. Any failure removes the staging file and leaves an
// existing artifact untouched.
func (o *Orchestrator) compile(ctx context.Context, profile string, post ...func(context.Context, string) error) (artifact string, err error) {
	artifact = o.Artifact(profile)
	dir := filepath.Dir(artifact)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return "", fmt.Errorf("%w: %w", ErrArtifact, err)
	}

	staged, err := stagingPath(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrArtifact, err)
	}
	defer func() {
		if err != nil {
			os.Remove(staged)
		}
	}()

	slog.Info("compiling", "profile", profile, "package", o.cfg.Package)

	args := append([]string{"build", "-o", staged}, o.buildFlags(profile)...)
	args = append(args, o.cfg.Package)
	if err := o.run(ctx, "compile", o.cfg.Go, args...); err != nil {
		return "", err
	}

	for _, step := range post {
		if err := step(ctx, staged); err != nil {
			return "", err
		}
	}

	if err := os.Rename(staged, artifact); err != nil {
		return "", fmt.Errorf("%w: %w", ErrArtifact, err)
	}

	slog.Info("artifact ready", "profile", profile, "path", artifact)
	return artifact, nil
}

// Returns go build flags for profile.
func (o *Orchestrator) buildFlags(profile string) []string {
	if profile != Release {
		return []string{"-gcflags=all=-N -l"}
	}
	flags := []string{"-trimpath"}
	if ldflags := o.cfg.Stamp.LinkerFlags(); len(ldflags) > 0 {
		flags = append(flags, "-ldflags="+strings.Join(ldflags, " "))
	}
	return flags
}

// Reserves a unique staging file name in dir.
func stagingPath(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "."+internal.BinaryName+".staging-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}

// Runs a tool in the source root with the recipe environment.
func (o *Orchestrator) run(ctx context.Context, step, name string, args ...string) error {
	err := o.exec.Run(ctx, Command{
		Step:   step,
		Name:   name,
		Args:   args,
		Dir:    o.root,
		Env:    o.env,
		Stdout: o.cfg.Stdout,
		Stderr: o.cfg.Stderr,
	})
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStep, step, err)
}
