package build

import "fmt"

// A named sequence of build stages.
type Recipe struct {
	Name   string  // Prefix for build container ids.
	Stages []Stage // Stages in execution order.
}

// One container's worth of steps.
type Stage struct {
	Name      string // Optional; named stages can be copied from.
	From      string // Registry reference of the base image.
	Transient bool   // Transient stages are not exported.
	Steps     []Step
}

// A single operation or modifier.
//
// A step with Run or Copy is an operation; its Workdir and Env apply to
// that operation only. A step with neither is a modifier and changes the
// state for every following step of the stage.
type Step struct {
	Run     string            // Command run with /bin/sh -c.
	Copy    string            // "src dest" or "stage:src dest".
	Workdir string            // Working directory, also the base for relative copy targets.
	Env     map[string]string // Environment for commands.
}

// Checks that the recipe has stages with base images and exactly one
// exported stage.
func (r *Recipe) Validate() error {
	if len(r.Stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidRecipe)
	}

	exported := 0
	for i, stage := range r.Stages {
		if stage.From == "" {
			return fmt.Errorf("%w: stage %s has no base image", ErrInvalidRecipe, stageLabel(stage.Name, i))
		}
		if !stage.Transient {
			exported++
		}
	}

	if exported != 1 {
		return fmt.Errorf("%w: %d exported stages, want exactly one", ErrInvalidRecipe, exported)
	}
	return nil
}

// Labels a stage by name, or by its 1-based position when unnamed.
func stageLabel(name string, index int) string {
	if name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("%d", index+1)
}
