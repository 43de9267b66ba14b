package build

import (
	"slices"
	"testing"
)

func TestNewStepState(t *testing.T) {
	s := newStepState()
	if s.workdir != "" {
		t.Fatalf("workdir = %q, want empty", s.workdir)
	}
	if len(s.env) != 0 {
		t.Fatalf("env = %v, want empty", s.env)
	}
}

func TestApply(t *testing.T) {
	s := newStepState()

	s.apply(Step{Workdir: "/src"})
	if s.workdir != "/src" {
		t.Fatalf("workdir = %q, want /src", s.workdir)
	}

	s.apply(Step{Env: map[string]string{"CGO_ENABLED": "0", "GOFLAGS": "-mod=mod"}})
	if s.env["CGO_ENABLED"] != "0" || s.env["GOFLAGS"] != "-mod=mod" {
		t.Fatalf("env = %v", s.env)
	}
	if s.workdir != "/src" {
		t.Fatalf("workdir changed to %q after env apply", s.workdir)
	}

	s.apply(Step{Env: map[string]string{"GOFLAGS": "-trimpath"}})
	if s.env["GOFLAGS"] != "-trimpath" {
		t.Fatalf("env[GOFLAGS] = %q, want -trimpath", s.env["GOFLAGS"])
	}
	if s.env["CGO_ENABLED"] != "0" {
		t.Fatalf("env[CGO_ENABLED] = %q, want 0 (preserved)", s.env["CGO_ENABLED"])
	}
}

func TestApplyEmptyFieldsNoOp(t *testing.T) {
	s := newStepState()
	s.apply(Step{Workdir: "/opt"})
	s.apply(Step{})
	if s.workdir != "/opt" {
		t.Fatalf("workdir = %q, want /opt", s.workdir)
	}
}

func TestResolve(t *testing.T) {
	s := newStepState()
	s.apply(Step{Workdir: "/app", Env: map[string]string{"A": "1"}})

	resolved := s.resolve(Step{Workdir: "/tmp", Env: map[string]string{"B": "2"}})
	if resolved.workdir != "/tmp" {
		t.Fatalf("resolved.workdir = %q, want /tmp", resolved.workdir)
	}
	if resolved.env["A"] != "1" || resolved.env["B"] != "2" {
		t.Fatalf("resolved.env = %v, want A=1 B=2", resolved.env)
	}

	if s.workdir != "/app" {
		t.Fatalf("original workdir mutated to %q", s.workdir)
	}
	if _, ok := s.env["B"]; ok {
		t.Fatal("original env mutated: B leaked in")
	}
}

func TestResolveInheritsState(t *testing.T) {
	s := newStepState()
	s.apply(Step{Workdir: "/app"})

	if resolved := s.resolve(Step{}); resolved.workdir != "/app" {
		t.Fatalf("workdir = %q, want /app", resolved.workdir)
	}
}

func TestEnviron(t *testing.T) {
	s := newStepState()
	if len(s.environ()) != 0 {
		t.Fatal("empty state should produce no environ entries")
	}

	s.apply(Step{Env: map[string]string{"DEBIAN_FRONTEND": "noninteractive", "APT_LISTCHANGES_FRONTEND": "none"}})
	want := []string{"APT_LISTCHANGES_FRONTEND=none", "DEBIAN_FRONTEND=noninteractive"}
	if got := s.environ(); !slices.Equal(got, want) {
		t.Fatalf("environ = %v, want %v", got, want)
	}
}
