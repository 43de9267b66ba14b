package ctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/image"
	"github.com/gardenzilla/procurement/internal/recipe"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"tool status", &recipe.ExitError{Step: "test", Code: 3}, 3},
		{"wrapped tool status", fmt.Errorf("release: %w", &recipe.ExitError{Step: "strip", Code: 2}), 2},
		{"interrupted", &recipe.ExitError{Step: "run", Code: 130}, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestImageDefinitionDefaults(t *testing.T) {
	root := t.TempDir()
	RootCmd.Root = root
	RootCmd.Output = recipe.DefaultOutput
	t.Cleanup(func() { RootCmd.Root, RootCmd.Output = "", "" })

	cmd := ImageCmd{Variant: "debian", Workdir: "/app"}
	def, err := cmd.definition()
	if err != nil {
		t.Fatal(err)
	}

	want := filepath.Join(root, recipe.DefaultOutput, recipe.Release, internal.BinaryName)
	if def.Binary != want {
		t.Fatalf("Binary = %q, want %q", def.Binary, want)
	}
	if !def.Refresh {
		t.Fatal("refresh should default to on")
	}
	if len(def.Tools) == 0 {
		t.Fatal("debian should install its default tools")
	}
}

func TestImageDefinitionFlags(t *testing.T) {
	binary := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(binary, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		cmd       ImageCmd
		wantTools []string
	}{
		{"no tools", ImageCmd{Variant: "debian", Binary: binary, Workdir: "/app", NoTools: true}, nil},
		{"custom tools", ImageCmd{Variant: "fedora", Binary: binary, Workdir: "/app", Tools: []string{"procps"}}, []string{"procps"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := tt.cmd.definition()
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(def.Tools, tt.wantTools) {
				t.Fatalf("Tools = %v, want %v", def.Tools, tt.wantTools)
			}
			if err := def.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestImageDefinitionUnknownVariant(t *testing.T) {
	cmd := ImageCmd{Variant: "alpine", Binary: "bin", Workdir: "/app"}
	if _, err := cmd.definition(); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}

func TestImageDefinitionFromSource(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	RootCmd.Root = root
	t.Cleanup(func() { RootCmd.Root = "" })

	cmd := ImageCmd{Variant: "debian", Workdir: "/app", FromSource: true, Builder: "golang:test", Version: "1.2.0", Stage: "release"}
	def, err := cmd.definition()
	if err != nil {
		t.Fatal(err)
	}
	if def.Source != root || def.Builder != "golang:test" {
		t.Fatalf("definition = %+v, want source build from %s", def, root)
	}
	if def.Stamp.Version != "1.2.0" || def.Stamp.Stage != "release" {
		t.Fatalf("Stamp = %+v", def.Stamp)
	}
	if err := def.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if stages := def.Recipe().Stages; len(stages) != 2 || !stages[0].Transient {
		t.Fatalf("stages = %+v, want transient builder and release", stages)
	}
}

func TestImageDefinitionFromSourceNeedsLocalTree(t *testing.T) {
	RootCmd.Root = "https://github.com/gardenzilla/procurement.git"
	t.Cleanup(func() { RootCmd.Root = "" })

	cmd := ImageCmd{Variant: "debian", Workdir: "/app", FromSource: true}
	if _, err := cmd.definition(); !errors.Is(err, image.ErrMissingSource) {
		t.Fatalf("err = %v, want ErrMissingSource", err)
	}
}
