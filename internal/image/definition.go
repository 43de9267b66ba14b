package image

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/build"
	"github.com/gardenzilla/procurement/internal/recipe"
	"github.com/gardenzilla/procurement/internal/runtime"
)

const (

	// Working directory the binary is copied into.
	DefaultWorkdir = "/app"

	// Signal the container runtime sends to stop the service.
	StopSignal = "SIGINT"

	// Go toolchain image for source builds. Carries strip.
	DefaultBuilder = "golang:1.25-bookworm"

	// Name of the transient stage compiling a source build.
	builderStage = "builder"

	// Source tree and output directory inside the builder stage.
	builderSource = "/src"
	builderOutput = "/out"
)

// A parameterized image definition for the service binary.
//
// The binary either comes from the host (Binary) or is compiled from a
// source tree (Source) in a transient builder stage that runs the release
// steps: dependency sync, compile, strip.
type Definition struct {
	Variant Variant
	Binary  string            // Host path of the release binary.
	Source  string            // Host source tree for source builds. Empty packages Binary.
	Builder string            // Go toolchain image for source builds.
	Stamp   internal.Stamp    // Linker stamps for source builds.
	Workdir string            // Image working directory and binary location.
	Refresh bool              // Refresh the package index and upgrade packages.
	Tools   []string          // OS packages installed on top of the base image.
	Labels  map[string]string // Image labels.
}

// Adjusts a [Definition] created by [New].
type Option func(*Definition)

// Skips the package index refresh and upgrade.
func WithoutRefresh() Option {
	return func(d *Definition) { d.Refresh = false }
}

// Replaces the variant's diagnostic tools. No arguments installs none.
func WithTools(tools ...string) Option {
	return func(d *Definition) { d.Tools = tools }
}

// Sets the image working directory.
func WithWorkdir(dir string) Option {
	return func(d *Definition) { d.Workdir = dir }
}

// Adds an image label.
func WithLabel(key, value string) Option {
	return func(d *Definition) { d.Labels[key] = value }
}

// Compiles the binary from the source tree at dir instead of copying a
// host binary.
func WithSource(dir string, stamp internal.Stamp) Option {
	return func(d *Definition) {
		d.Source = dir
		d.Stamp = stamp
	}
}

// Sets the Go toolchain image for source builds.
func WithBuilder(ref string) Option {
	return func(d *Definition) { d.Builder = ref }
}

// Creates a definition for the named variant packaging binary.
func New(variant, binary string, opts ...Option) (*Definition, error) {
	v, err := Lookup(variant)
	if err != nil {
		return nil, err
	}

	d := &Definition{
		Variant: v,
		Binary:  binary,
		Builder: DefaultBuilder,
		Workdir: DefaultWorkdir,
		Refresh: true,
		Tools:   v.Tools,
		Labels: map[string]string{
			"org.opencontainers.image.title":   internal.BinaryName,
			"org.opencontainers.image.version": internal.Version(),
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Fails with [ErrMissingBinary] unless the release binary is a regular
// file, or with [ErrMissingSource] unless a source build names a module
// root. Backends call this before contacting any daemon.
func (d *Definition) Validate() error {
	if d.Source != "" {
		if err := checkSource(d.Source); err != nil {
			return err
		}
	} else if err := checkBinary(d.Binary); err != nil {
		return err
	}

	if !path.IsAbs(d.Workdir) {
		return fmt.Errorf("%w: workdir %q must be absolute", ErrRender, d.Workdir)
	}
	return nil
}

func checkBinary(binary string) error {
	info, err := os.Stat(binary)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMissingBinary, binary, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrMissingBinary, binary)
	}
	return nil
}

func checkSource(dir string) error {
	info, err := os.Stat(filepath.Join(dir, "go.mod"))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMissingSource, dir, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s has no go.mod", ErrMissingSource, dir)
	}
	return nil
}

// Returns the host directory copy sources are relative to.
func (d *Definition) Context() string {
	if d.Source != "" {
		return d.Source
	}
	return filepath.Dir(d.Binary)
}

// Returns the path of the binary inside the image.
func (d *Definition) Target() string {
	return path.Join(d.Workdir, internal.BinaryName)
}

// Returns the exec-form entrypoint: the copied binary, no arguments.
func (d *Definition) Entrypoint() []string {
	return []string{d.Target()}
}

// Returns the package setup as a single shell command, or "" when the
// definition neither refreshes nor installs anything.
func (d *Definition) Setup() string {
	var cmds []string
	install := d.Variant.installCommand(d.Tools)
	if (d.Refresh || install != "") && d.Variant.Index != "" {
		cmds = append(cmds, d.Variant.Index)
	}
	if d.Refresh {
		cmds = append(cmds, d.Variant.Upgrade)
	}
	if install != "" {
		cmds = append(cmds, install)
	}
	if len(cmds) > 0 && d.Variant.Clean != "" {
		cmds = append(cmds, d.Variant.Clean)
	}
	return strings.Join(cmds, " && ")
}

// Returns the builder stage command compiling and stripping the release
// binary, in the order the release target uses.
func (d *Definition) Compile() string {
	out := path.Join(builderOutput, internal.BinaryName)
	args := []string{"go", "build", "-trimpath"}
	if flags := d.Stamp.LinkerFlags(); len(flags) > 0 {
		args = append(args, "-ldflags="+shellQuote(strings.Join(flags, " ")))
	}
	args = append(args, "-o", out, recipe.DefaultPackage)
	return strings.Join(args, " ") + " && strip " + out
}

// Quotes s for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Returns the runtime settings of the image.
func (d *Definition) ImageConfig() runtime.ImageConfig {
	return runtime.ImageConfig{
		Entrypoint: d.Entrypoint(),
		WorkingDir: d.Workdir,
		StopSignal: StopSignal,
		Labels:     d.Labels,
	}
}

// Translates the definition into a containerd recipe. Host copy sources
// are relative to [Definition.Context]. Source builds add a transient
// builder stage ahead of the exported one.
func (d *Definition) Recipe() *build.Recipe {
	r := &build.Recipe{Name: internal.Name + "-" + d.Variant.Name}

	source := filepath.Base(d.Binary)
	if d.Source != "" {
		r.Stages = append(r.Stages, build.Stage{
			Name:      builderStage,
			From:      d.Builder,
			Transient: true,
			Steps: []build.Step{
				{Workdir: builderSource, Env: map[string]string{"CGO_ENABLED": "0"}},
				{Copy: ". " + builderSource},
				{Run: "go mod download"},
				{Run: d.Compile()},
			},
		})
		source = builderStage + ":" + path.Join(builderOutput, internal.BinaryName)
	}

	var steps []build.Step
	if setup := d.Setup(); setup != "" {
		steps = append(steps, build.Step{Run: setup, Env: d.Variant.Env})
	}
	steps = append(steps,
		build.Step{Workdir: d.Workdir},
		build.Step{Copy: source + " " + d.Target()},
	)

	r.Stages = append(r.Stages, build.Stage{From: d.Variant.Base, Steps: steps})
	return r
}
