package build

import (
	"maps"
	"slices"
)

// Shell that runs step commands.
const stepShell = "/bin/sh"

// Modifiers accumulated while walking a stage.
//
// Modifier steps update the state through apply. Operations read their
// effective values through resolve, which leaves the state unchanged.
type stepState struct {
	workdir string
	env     map[string]string
}

func newStepState() *stepState {
	return &stepState{env: make(map[string]string)}
}

// Persists the modifiers of step for all following steps.
func (s *stepState) apply(step Step) {
	if step.Workdir != "" {
		s.workdir = step.Workdir
	}
	maps.Copy(s.env, step.Env)
}

// Returns a copy of the state with the modifiers of step overlaid.
func (s *stepState) resolve(step Step) *stepState {
	resolved := &stepState{
		workdir: s.workdir,
		env:     maps.Clone(s.env),
	}
	resolved.apply(step)
	return resolved
}

// Returns the environment as sorted "KEY=VALUE" entries.
func (s *stepState) environ() []string {
	env := make([]string, 0, len(s.env))
	for _, k := range slices.Sorted(maps.Keys(s.env)) {
		env = append(env, k+"="+s.env[k])
	}
	return env
}
